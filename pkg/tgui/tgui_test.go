package tgui

import "testing"

func TestEscaping(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		got  H
		want string
	}{
		{"esc", Esc(`<b> & "q"`), "&lt;b&gt; &amp; &#34;q&#34;"},
		{"raw", Raw("<b>x</b>"), "<b>x</b>"},
		{"bold", B("a<b"), "<b>a&lt;b</b>"},
		{"italic", I("x"), "<i>x</i>"},
		{"code", Code("a&b"), "<code>a&amp;b</code>"},
		{"link", Link("t<x", `http://e/?a="1"`), `<a href="http://e/?a=&#34;1&#34;">t&lt;x</a>`},
	}
	for _, tc := range cases {
		if tc.got.String() != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestJoinHSkipsBlankParts(t *testing.T) {
	t.Parallel()
	got := JoinH("\n", B("head"), Raw(""), Esc("body"), Raw("   "))
	want := "<b>head</b>\n" + "body"
	if got.String() != want {
		t.Fatalf("JoinH = %q, want %q", got, want)
	}
	if JoinH(",").String() != "" {
		t.Fatal("JoinH with no parts should be empty")
	}
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "fxwire/pkg/logx"
)

func TestManagerGetAndPublish(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Telegram.Token = "tok"
	m := NewManager("", cfg, logx.Nop())

	if got := m.Get(); got != cfg {
		t.Fatal("Get returned a different config")
	}

	ch := m.Subscribe(1)
	a, b := Default(), Default()
	a.Social.Handle = "a"
	b.Social.Handle = "b"

	// A full buffer drops the stale version, never the latest.
	m.publish(a)
	m.publish(b)

	got := <-ch
	if got.Social.Handle != "b" {
		t.Fatalf("subscriber got %q, want latest", got.Social.Handle)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra publish: %+v", extra)
	default:
	}
}

func TestWatchReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	write := func(interval string) {
		t.Helper()
		body := "telegram:\n  token: tok\n  chat_id: 1\nsocial:\n  poll_interval: " + interval + "\n"
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	write("5m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m := NewManager(path, cfg, logx.Nop())
	ch := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	// Give the watcher a moment to register before the rewrite.
	time.Sleep(100 * time.Millisecond)
	write("2m")

	select {
	case got := <-ch:
		if d, _ := got.PollInterval(); d != 2*time.Minute {
			t.Fatalf("reloaded interval = %v, want 2m", d)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload published")
	}

	if d, _ := m.Get().PollInterval(); d != 2*time.Minute {
		t.Fatal("Get not updated after reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchRejectsInvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	valid := "telegram:\n  token: tok\n  chat_id: 1\n"
	if err := os.WriteFile(path, []byte(valid), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m := NewManager(path, cfg, logx.Nop())
	ch := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Watch(ctx) }()

	time.Sleep(100 * time.Millisecond)
	// chat_id dropped: the reload must be rejected and the old config kept.
	if err := os.WriteFile(path, []byte("telegram:\n  token: tok\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	select {
	case got := <-ch:
		t.Fatalf("invalid config was published: %+v", got)
	case <-time.After(1 * time.Second):
	}
	if m.Get().Telegram.ChatID != 1 {
		t.Fatal("committed config changed after invalid reload")
	}
}

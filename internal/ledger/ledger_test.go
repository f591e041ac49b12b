package ledger

import (
	"context"
	"path/filepath"
	"testing"

	logx "fxwire/pkg/logx"
)

func openTestStore(t *testing.T, driver, path string) Store {
	t.Helper()
	st, err := Open(Config{Driver: driver, Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open(%s): %v", driver, err)
	}
	return st
}

func TestRecordIdempotent(t *testing.T) {
	t.Parallel()
	drivers := []string{"file", "sqlite"}
	for _, driver := range drivers {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "ledger."+driver)
			st := openTestStore(t, driver, path)
			defer st.Close()

			ok, err := st.WasRecorded(ctx, "x:100")
			if err != nil {
				t.Fatalf("WasRecorded: %v", err)
			}
			if ok {
				t.Fatal("fresh store claims x:100 recorded")
			}

			if err := st.Record(ctx, "x:100", "x"); err != nil {
				t.Fatalf("Record: %v", err)
			}
			// Duplicate insert is a no-op, not an error.
			if err := st.Record(ctx, "x:100", "x"); err != nil {
				t.Fatalf("duplicate Record: %v", err)
			}

			ok, err = st.WasRecorded(ctx, "x:100")
			if err != nil {
				t.Fatalf("WasRecorded: %v", err)
			}
			if !ok {
				t.Fatal("x:100 not recorded after Record")
			}
		})
	}
}

func TestSurvivesReopen(t *testing.T) {
	t.Parallel()
	drivers := []string{"file", "sqlite"}
	for _, driver := range drivers {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "ledger."+driver)

			st := openTestStore(t, driver, path)
			if err := st.Record(ctx, "ff:2024-01-01:USD:CPI:08:30", "forex"); err != nil {
				t.Fatalf("Record: %v", err)
			}
			if err := st.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			st = openTestStore(t, driver, path)
			defer st.Close()
			ok, err := st.WasRecorded(ctx, "ff:2024-01-01:USD:CPI:08:30")
			if err != nil {
				t.Fatalf("WasRecorded: %v", err)
			}
			if !ok {
				t.Fatal("record lost across reopen")
			}
		})
	}
}

func TestEmptyIDIsIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t, "file", filepath.Join(t.TempDir(), "ledger.jsonl"))
	defer st.Close()

	if err := st.Record(ctx, "  ", "x"); err != nil {
		t.Fatalf("Record empty id: %v", err)
	}
	ok, err := st.WasRecorded(ctx, "")
	if err != nil {
		t.Fatalf("WasRecorded: %v", err)
	}
	if ok {
		t.Fatal("empty id reported recorded")
	}
}

func TestUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

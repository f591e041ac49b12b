package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "fxwire/pkg/logx"
)

// fileStore is a dependency-free backend: one append-only JSON Lines
// journal replayed into memory at open. Seen ids never expire, so there
// is no snapshot/compaction cycle - the journal IS the dataset.
type fileStore struct {
	log logx.Logger

	mu      sync.Mutex
	journal *os.File
	seen    map[string]struct{}
}

type seenRecord struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	At     string `json:"at"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("ledger.path is required for file driver")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	seen := map[string]struct{}{}
	if err := replayJournal(path, seen); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	return &fileStore{log: log, journal: f, seen: seen}, nil
}

func replayJournal(path string, out map[string]struct{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		var r seenRecord
		if err := json.Unmarshal(s.Bytes(), &r); err != nil {
			// Tolerate a torn tail line from a crashed write.
			continue
		}
		if r.ID == "" {
			continue
		}
		out[r.ID] = struct{}{}
	}
	return s.Err()
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return nil
	}
	err := s.journal.Close()
	s.journal = nil
	return err
}

func (s *fileStore) Record(ctx context.Context, id, source string) error {
	_ = ctx
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return ErrClosed
	}
	if _, ok := s.seen[id]; ok {
		return nil
	}
	rec := seenRecord{ID: id, Source: source, At: time.Now().UTC().Format(time.RFC3339Nano)}
	if err := json.NewEncoder(s.journal).Encode(rec); err != nil {
		return err
	}
	s.seen[id] = struct{}{}
	return nil
}

func (s *fileStore) WasRecorded(ctx context.Context, id string) (bool, error) {
	_ = ctx
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal == nil {
		return false, ErrClosed
	}
	_, ok := s.seen[id]
	return ok, nil
}

package storage

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

	logx "chored/pkg/logx"
)

// fileStore is a dependency-free persistence backend: one JSON line per
// activation, appended to a single file. It is meant as a debugging fallback;
// RecentActivations scans the whole file.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	f    *os.File
	path string
	w    *bufio.Writer
}

type activationRecord struct {
	At     string `json:"at"`
	Name   string `json:"name"`
	Target uint32 `json:"target"`
	Wraps  uint32 `json:"wraps,omitempty"`
	LateMS int64  `json:"late_ms,omitempty"`
	TookUS int64  `json:"took_us,omitempty"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileStore{log: log, f: f, path: path, w: bufio.NewWriter(f)}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	_ = s.w.Flush()
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *fileStore) AppendActivation(_ context.Context, e ActivationEntry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	rec := activationRecord{
		At:     e.At.Format(time.RFC3339Nano),
		Name:   e.Name,
		Target: e.Target,
		Wraps:  e.Wraps,
		LateMS: e.LateMS,
		TookUS: e.Took.Microseconds(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrDisabled
	}
	if _, err := s.w.Write(append(b, '\n')); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *fileStore) RecentActivations(_ context.Context, name string, limit int) ([]ActivationEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	if s.w != nil {
		_ = s.w.Flush()
	}
	path := s.path
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []ActivationEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec activationRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue // tolerate partial trailing writes
		}
		if name != "" && rec.Name != name {
			continue
		}
		e := ActivationEntry{
			Name:   rec.Name,
			Target: rec.Target,
			Wraps:  rec.Wraps,
			LateMS: rec.LateMS,
			Took:   time.Duration(rec.TookUS) * time.Microsecond,
		}
		if t, perr := time.Parse(time.RFC3339Nano, rec.At); perr == nil {
			e.At = t
		}
		out = append(out, e)
		if len(out) > limit {
			out = out[1:]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	// newest first, matching the sqlite driver
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

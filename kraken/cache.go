package kraken

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// jsonCache persists a JSON document at a fixed path. The zero path disables
// it, load and dump become no-ops.
type jsonCache struct {
	path string
}

func (c jsonCache) load(v any) error {
	if c.path == "" {
		return nil
	}
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (c jsonCache) dump(v any) error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// throttle enforces a minimum spacing between calls.
type throttle struct {
	mu    sync.Mutex
	last  time.Time
	every time.Duration
}

func (t *throttle) wait() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.every > 0 && !t.last.IsZero() {
		if d := t.every - time.Since(t.last); d > 0 {
			time.Sleep(d)
		}
	}
	t.last = time.Now()
}

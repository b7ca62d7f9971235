// Package filerepo persists session keys as a single JSON document on disk.
package filerepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/rs/zerolog/log"
)

const defaultFileName = "session.json"

var _ sessions.Repo = (*FileRepo)(nil)

// FileRepo keeps every key in memory and writes the whole document through
// to disk on each mutation using a temp file and rename.
type FileRepo struct {
	path   string
	values map[string]string
	mu     sync.RWMutex
}

// New opens (or creates) the document in folder. A corrupt document is
// treated as empty and replaced on the next write.
func New(folder string) (*FileRepo, error) {
	if folder == "" {
		return nil, errors.New("[filerepo.New] folder is required")
	}
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("[filerepo.New] creating %s: %w", folder, err)
	}

	r := &FileRepo{
		path:   filepath.Join(folder, defaultFileName),
		values: make(map[string]string),
	}

	data, err := os.ReadFile(r.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("[filerepo.New] reading %s: %w", r.path, err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &r.values); err != nil {
			log.Warn().Err(err).Str("path", r.path).Msg("ignoring corrupt session file")
			r.values = make(map[string]string)
		}
	}
	return r, nil
}

// Path returns the location of the backing document.
func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Get(key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FileRepo) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.values[key]
	r.values[key] = value
	if err := r.flushLocked(); err != nil {
		if existed {
			r.values[key] = prev
		} else {
			delete(r.values, key)
		}
		return err
	}
	return nil
}

func (r *FileRepo) Delete(keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for _, k := range keys {
		if _, ok := r.values[k]; ok {
			delete(r.values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.flushLocked()
}

func (r *FileRepo) flushLocked() error {
	data, err := json.MarshalIndent(r.values, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileRepo.flush] marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("[FileRepo.flush] temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[FileRepo.flush] write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[FileRepo.flush] close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("[FileRepo.flush] chmod: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("[FileRepo.flush] rename: %w", err)
	}
	return nil
}

package memrepo

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/sessions"
)

var _ sessions.Repo = (*MemRepo)(nil)

// MemRepo keeps the credential record in process memory only. A restart
// always starts signed out.
type MemRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func New() *MemRepo {
	return &MemRepo{values: make(map[string]string)}
}

func (r *MemRepo) Get(key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *MemRepo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.values[key] = value
	return nil
}

func (r *MemRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

package repofakes

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/sessions"
)

var _ sessions.Repo = (*FakeKVRepo)(nil)

// FakeKVRepo is an in-memory sessions.Repo. SetErr and DeleteErr make the
// corresponding operations fail, to exercise degraded paths.
type FakeKVRepo struct {
	values map[string]string
	lock   sync.RWMutex

	GetErr    error
	SetErr    error
	DeleteErr error
}

func NewFakeKVRepo() *FakeKVRepo {
	return &FakeKVRepo{
		values: make(map[string]string),
	}
}

func (r *FakeKVRepo) Get(key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.GetErr != nil {
		return "", false, r.GetErr
	}
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FakeKVRepo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.SetErr != nil {
		return r.SetErr
	}
	r.values[key] = value
	return nil
}

func (r *FakeKVRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (r *FakeKVRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.values)
}

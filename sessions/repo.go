package sessions

// Repo is the key-value storage the credential store persists into.
// Implementations must be safe for concurrent use.
type Repo interface {
	// Get returns the value stored under key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes keys. Deleting an absent key is not an error.
	Delete(keys ...string) error
}

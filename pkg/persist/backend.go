package persist

import "context"

// keyPrefix namespaces all snapshot entries in the backing store.
const keyPrefix = "stagehand.actor."

// storageKey derives the storage key for an actor id.
func storageKey(actorID string) string {
	return keyPrefix + actorID
}

// actorIDFromKey reverses storageKey. The second return is false for keys
// outside the snapshot namespace.
func actorIDFromKey(key string) (string, bool) {
	if len(key) <= len(keyPrefix) || key[:len(keyPrefix)] != keyPrefix {
		return "", false
	}
	return key[len(keyPrefix):], true
}

// Backend is the key/value string store underneath the persistence guard.
// It is the guard's only I/O dependency. Implementations may fail on writes
// (quota exhaustion, I/O errors); the guard translates those failures into
// the typed error taxonomy, so backends are free to return raw errors.
type Backend interface {
	// GetItem returns the value stored under key. The boolean reports
	// whether the key was present.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes the entry under key. Removing an absent key is
	// not an error.
	RemoveItem(ctx context.Context, key string) error

	// Clear removes every entry in the store.
	Clear(ctx context.Context) error
}

// Lister is an optional backend capability for enumerating stored keys.
// The guard uses it for diagnostics (listing persisted entries); backends
// that cannot enumerate keys simply don't implement it.
type Lister interface {
	// Keys returns all keys currently present in the store.
	Keys(ctx context.Context) ([]string, error)
}

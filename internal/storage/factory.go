package storage

import "fmt"

// NewStore builds the backend holding graph definitions and the decision
// journal. An empty kind selects the in-memory store; "sqlite" requires a
// build with the sqlite tag and a database path.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// CloseIfSupported releases the store's resources when the backend holds
// any; the in-memory store does not.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}

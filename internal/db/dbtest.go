package db

import "context"

// NewTestStore opens a private in-memory sqlite database with the schema applied.
func NewTestStore() (Store, error) {
	conn, err := Open(context.Background(), ":memory:", Options{MaxRetries: 1})
	if err != nil {
		return nil, err
	}
	return NewStore(conn), nil
}

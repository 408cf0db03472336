// exposes a Store interface that is passed to API calls w/ param requirements
package db

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
)

type Store interface {
	// media functions
	CreateMedia(ctx context.Context, media model.Media) (model.Media, error)
	GetMedia(ctx context.Context, mediaID string) (model.Media, error)
	DeleteMedia(ctx context.Context, mediaID string) error
	ListMedia(ctx context.Context, limit int) ([]model.Media, error)

	Ping(ctx context.Context) error
	Close() error
}

type sqlStore struct {
	db *sqlx.DB
}

// compile-time check that sqlStore implements Store
var _ Store = (*sqlStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

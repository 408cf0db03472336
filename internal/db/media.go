package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
)

// inserts the media row and all of its timestamps in one transaction.
// returns ErrConflict when media_id is already taken.
func (s *sqlStore) CreateMedia(ctx context.Context, media model.Media) (model.Media, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return model.Media{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("[db] CreateMedia: failed to begin transaction")
		return model.Media{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO media (media_id, title) VALUES (?, ?) RETURNING id;`),
		media.MediaID, media.Title,
	).Scan(&media.ID)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn().Str("media_id", media.MediaID).Msg("[db] CreateMedia: media_id already exists")
			return model.Media{}, ErrConflict
		}
		log.Error().Err(err).Msg("[db] CreateMedia: failed to insert media")
		return model.Media{}, fmt.Errorf("insert media: %w", err)
	}

	insertTimestamp := tx.Rebind(`
	INSERT INTO timestamps (type, start_time, end_time, media_id)
	VALUES (?, ?, ?, ?)
	RETURNING id;`)

	timestamps := make([]model.Timestamp, len(media.Timestamps))
	copy(timestamps, media.Timestamps)
	for i := range timestamps {
		ts := &timestamps[i]
		ts.MediaRef = media.ID
		if err := tx.QueryRowxContext(ctx, insertTimestamp,
			ts.Type, ts.StartTime, ts.EndTime, ts.MediaRef,
		).Scan(&ts.ID); err != nil {
			log.Error().Err(err).Int("media", media.ID).Msg("[db] CreateMedia: failed to insert timestamp")
			return model.Media{}, fmt.Errorf("insert timestamp: %w", err)
		}
	}
	media.Timestamps = timestamps

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("[db] CreateMedia: failed to commit")
		return model.Media{}, fmt.Errorf("commit: %w", err)
	}
	return media, nil
}

// fetches a media item and its timestamps by external id. returns ErrNotFound if absent.
func (s *sqlStore) GetMedia(ctx context.Context, mediaID string) (model.Media, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return model.Media{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var m model.Media
	err = conn.GetContext(ctx, &m,
		conn.Rebind(`SELECT id, media_id, title FROM media WHERE media_id = ?;`),
		mediaID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Media{}, ErrNotFound
		}
		log.Error().Err(err).Msg("[db] GetMedia: failed to select media")
		return model.Media{}, err
	}

	byMedia, err := selectTimestamps(ctx, conn, []int{m.ID})
	if err != nil {
		return model.Media{}, err
	}
	m.Timestamps = byMedia[m.ID]
	if m.Timestamps == nil {
		m.Timestamps = []model.Timestamp{}
	}
	return m, nil
}

// removes the media item's timestamps and then the item itself.
func (s *sqlStore) DeleteMedia(ctx context.Context, mediaID string) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("[db] DeleteMedia: failed to begin transaction")
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int
	err = tx.GetContext(ctx, &id, tx.Rebind(`SELECT id FROM media WHERE media_id = ?;`), mediaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		log.Error().Err(err).Msg("[db] DeleteMedia: failed to select media")
		return err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM timestamps WHERE media_id = ?;`), id); err != nil {
		log.Error().Err(err).Int("media", id).Msg("[db] DeleteMedia: failed to delete timestamps")
		return fmt.Errorf("delete timestamps: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM media WHERE id = ?;`), id); err != nil {
		log.Error().Err(err).Int("media", id).Msg("[db] DeleteMedia: failed to delete media")
		return fmt.Errorf("delete media: %w", err)
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("[db] DeleteMedia: failed to commit")
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// returns up to limit media items in insertion order, each with its timestamps.
func (s *sqlStore) ListMedia(ctx context.Context, limit int) ([]model.Media, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	out := []model.Media{}
	err = conn.SelectContext(ctx, &out,
		conn.Rebind(`SELECT id, media_id, title FROM media ORDER BY id LIMIT ?;`),
		limit,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] ListMedia: failed to select media")
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]int, len(out))
	for i, m := range out {
		ids[i] = m.ID
	}
	byMedia, err := selectTimestamps(ctx, conn, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Timestamps = byMedia[out[i].ID]
		if out[i].Timestamps == nil {
			out[i].Timestamps = []model.Timestamp{}
		}
	}
	return out, nil
}

func selectTimestamps(ctx context.Context, conn *sqlx.Conn, mediaIDs []int) (map[int][]model.Timestamp, error) {
	query, args, err := sqlx.In(`
	SELECT id, type, start_time, end_time, media_id
	FROM timestamps
	WHERE media_id IN (?)
	ORDER BY id;`, mediaIDs)
	if err != nil {
		return nil, fmt.Errorf("build timestamps query: %w", err)
	}

	var rows []model.Timestamp
	if err := conn.SelectContext(ctx, &rows, conn.Rebind(query), args...); err != nil {
		log.Error().Err(err).Msg("[db] selectTimestamps: failed to select timestamps")
		return nil, err
	}

	byMedia := make(map[int][]model.Timestamp, len(mediaIDs))
	for _, ts := range rows {
		byMedia[ts.MediaRef] = append(byMedia[ts.MediaRef], ts)
	}
	return byMedia, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
)

const (
	keyPrefix     = "cuepoint:media:"
	versionPrefix = "cuepoint:version:"

	// outlives any entry so a fill can never match a version that was reset
	versionTTL = 24 * time.Hour
)

// NoFill is returned by Get when the version could not be read. Set ignores it.
const NoFill int64 = -1

var errStale = errors.New("media changed since lookup")

// MediaCache is a best-effort store of fetched media records.
//
// Get returns the version observed alongside the entry. A caller that misses
// reads the store and hands that version back to Set, which only writes when
// no Invalidate has happened in between. Invalidate must be called after every
// committed change and reports failures so the caller can surface them.
type MediaCache interface {
	Get(ctx context.Context, mediaID string) (media model.Media, version int64, ok bool)
	Set(ctx context.Context, media model.Media, version int64)
	Invalidate(ctx context.Context, mediaID string) error
}

func NewClient(address, username, password string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     address,
		Username: username,
		Password: password,
		DB:       0,
	})
}

type Cache struct {
	rdb *goredis.Client
	ttl time.Duration
}

var _ MediaCache = (*Cache)(nil)

func NewCache(rdb *goredis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func key(mediaID string) string {
	return keyPrefix + mediaID
}

func versionKey(mediaID string) string {
	return versionPrefix + mediaID
}

func encodeEntry(media model.Media) ([]byte, error) {
	return json.Marshal(media)
}

func decodeEntry(raw []byte) (model.Media, error) {
	var m model.Media
	err := json.Unmarshal(raw, &m)
	return m, err
}

// parseVersion reads a version counter as returned by MGET. A missing key is version 0.
func parseVersion(v interface{}) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(x, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected version value %T", v)
	}
}

func (c *Cache) Get(ctx context.Context, mediaID string) (model.Media, int64, bool) {
	vals, err := c.rdb.MGet(ctx, versionKey(mediaID), key(mediaID)).Result()
	if err != nil {
		log.Warn().Err(err).Str("media_id", mediaID).Msg("[cache] get failed")
		return model.Media{}, NoFill, false
	}

	version, err := parseVersion(vals[0])
	if err != nil {
		log.Warn().Err(err).Str("media_id", mediaID).Msg("[cache] corrupt version")
		return model.Media{}, NoFill, false
	}

	raw, ok := vals[1].(string)
	if !ok {
		return model.Media{}, version, false
	}
	m, err := decodeEntry([]byte(raw))
	if err != nil {
		log.Warn().Err(err).Str("media_id", mediaID).Msg("[cache] corrupt entry")
		return model.Media{}, version, false
	}
	return m, version, true
}

// Set stores media if its version key still holds version. The check and the
// write run under WATCH so a concurrent Invalidate aborts the write.
func (c *Cache) Set(ctx context.Context, media model.Media, version int64) {
	if version == NoFill {
		return
	}
	raw, err := encodeEntry(media)
	if err != nil {
		log.Warn().Err(err).Str("media_id", media.MediaID).Msg("[cache] encode failed")
		return
	}

	vk := versionKey(media.MediaID)
	err = c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, vk).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if current != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key(media.MediaID), raw, c.ttl)
			return nil
		})
		return err
	}, vk)

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, goredis.TxFailedErr):
		log.Debug().Str("media_id", media.MediaID).Msg("[cache] skipped stale fill")
	default:
		log.Warn().Err(err).Str("media_id", media.MediaID).Msg("[cache] set failed")
	}
}

// Invalidate bumps the version and drops the entry in one transaction.
func (c *Cache) Invalidate(ctx context.Context, mediaID string) error {
	vk := versionKey(mediaID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, vk)
		pipe.Expire(ctx, vk, versionTTL)
		pipe.Del(ctx, key(mediaID))
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("media_id", mediaID).Msg("[cache] invalidate failed")
		return fmt.Errorf("invalidate cached media %q: %w", mediaID, err)
	}
	return nil
}

// NoopCache is used when no redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (model.Media, int64, bool) {
	return model.Media{}, NoFill, false
}
func (NoopCache) Set(context.Context, model.Media, int64)  {}
func (NoopCache) Invalidate(context.Context, string) error { return nil }

package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/auth"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/db"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/api"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/api/media/packets"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/mqtt"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/redis"
)

type Options struct {
	DefaultLimit    int
	NullTimeLiteral string
}

type MediaController struct {
	store  db.Store
	cache  redis.MediaCache
	events mqtt.Publisher
	opts   Options
}

func newMediaController(store db.Store, cache redis.MediaCache, events mqtt.Publisher, opts Options) *MediaController {
	if cache == nil {
		cache = redis.NoopCache{}
	}
	if events == nil {
		events = mqtt.NoopPublisher{}
	}
	return &MediaController{store: store, cache: cache, events: events, opts: opts}
}

// MediaModule mounts /media: reads are public, writes need an admin token.
func MediaModule(store db.Store, cache redis.MediaCache, events mqtt.Publisher, opts Options) api.Module {
	ctl := newMediaController(store, cache, events, opts)
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/media/", ctl.createMedia)
		c.POST("/media", ctl.createMedia)
		c.PUBLIC_GET("/media/", ctl.listMedia)
		c.PUBLIC_GET("/media", ctl.listMedia)
		c.PUBLIC_GET("/media/:media_id", ctl.getMedia)
		c.DELETE("/media/:media_id", ctl.deleteMedia)
	})
}

// POST /media/
func (m *MediaController) createMedia(ctx *gin.Context, claims *auth.Claims) (any, *api.APIError) {
	var request packets.CreateMediaRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	logger := log.Ctx(ctx.Request.Context())

	media := model.Media{
		MediaID:    *request.MediaID,
		Title:      *request.Title,
		Timestamps: make([]model.Timestamp, 0, len(request.Timestamps)),
	}
	for _, ts := range request.Timestamps {
		start, err := parseOptionalTime(ts.StartTime)
		if err != nil {
			logger.Error().Err(err).Str("media_id", media.MediaID).Msg("[media] createMedia: bad start_time")
			return nil, api.InternalError()
		}
		end, err := parseOptionalTime(ts.EndTime)
		if err != nil {
			logger.Error().Err(err).Str("media_id", media.MediaID).Msg("[media] createMedia: bad end_time")
			return nil, api.InternalError()
		}
		media.Timestamps = append(media.Timestamps, model.Timestamp{Type: *ts.Type, StartTime: start, EndTime: end})
	}

	created, err := m.store.CreateMedia(ctx.Request.Context(), media)
	if err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, api.NewError(http.StatusConflict,
				fmt.Sprintf("Media item with media_id '%s' already exists", media.MediaID))
		}
		logger.Error().Err(err).Msg("[media] createMedia: store failed")
		return nil, api.InternalError()
	}

	// nothing is cached for an id that did not exist, so a failure here only logs
	if err := m.cache.Invalidate(ctx.Request.Context(), created.MediaID); err != nil {
		logger.Warn().Err(err).Str("media_id", created.MediaID).Msg("[media] createMedia: cache invalidation failed")
	}
	m.events.Publish(ctx.Request.Context(), mqtt.Event{
		Type:       mqtt.EventCreated,
		MediaID:    created.MediaID,
		Title:      created.Title,
		Timestamps: len(created.Timestamps),
	})
	logger.Info().Str("media_id", created.MediaID).Str("by", claims.Subject).Msg("[media] created")

	return request, nil
}

// GET /media/:media_id
func (m *MediaController) getMedia(ctx *gin.Context) (any, *api.APIError) {
	mediaID := ctx.Param("media_id")

	cached, version, ok := m.cache.Get(ctx.Request.Context(), mediaID)
	if ok {
		return packets.NewMediaResponse(cached, m.opts.NullTimeLiteral), nil
	}

	media, err := m.store.GetMedia(ctx.Request.Context(), mediaID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, api.NewError(http.StatusNotFound, "Media item not found")
		}
		log.Ctx(ctx.Request.Context()).Error().Err(err).Msg("[media] getMedia: store failed")
		return nil, api.InternalError()
	}

	// dropped if a write invalidated the id after the lookup above
	m.cache.Set(ctx.Request.Context(), media, version)
	return packets.NewMediaResponse(media, m.opts.NullTimeLiteral), nil
}

// DELETE /media/:media_id
func (m *MediaController) deleteMedia(ctx *gin.Context, claims *auth.Claims) (any, *api.APIError) {
	mediaID := ctx.Param("media_id")

	if err := m.store.DeleteMedia(ctx.Request.Context(), mediaID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, api.NewError(http.StatusNotFound, "Media item not found")
		}
		log.Ctx(ctx.Request.Context()).Error().Err(err).Msg("[media] deleteMedia: store failed")
		return nil, api.InternalError()
	}

	invalidateErr := m.cache.Invalidate(ctx.Request.Context(), mediaID)
	m.events.Publish(ctx.Request.Context(), mqtt.Event{Type: mqtt.EventDeleted, MediaID: mediaID})
	if invalidateErr != nil {
		// the row is gone but a cached copy may still be served until it expires
		log.Ctx(ctx.Request.Context()).Error().Err(invalidateErr).Str("media_id", mediaID).Msg("[media] deleteMedia: cache invalidation failed")
		return nil, api.InternalError()
	}
	log.Ctx(ctx.Request.Context()).Info().Str("media_id", mediaID).Str("by", claims.Subject).Msg("[media] deleted")

	return packets.DeleteMediaResponse{
		Detail: fmt.Sprintf("Media item with media_id '%s' has been deleted.", mediaID),
	}, nil
}

// GET /media/?limit=N
func (m *MediaController) listMedia(ctx *gin.Context) (any, *api.APIError) {
	limit := m.opts.DefaultLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, api.NewError(http.StatusUnprocessableEntity, "limit must be a non-negative integer")
		}
		limit = n
	}

	all, err := m.store.ListMedia(ctx.Request.Context(), limit)
	if err != nil {
		log.Ctx(ctx.Request.Context()).Error().Err(err).Msg("[media] listMedia: store failed")
		return nil, api.InternalError()
	}

	out := make([]packets.MediaResponse, 0, len(all))
	for _, x := range all {
		out = append(out, packets.NewMediaResponse(x, m.opts.NullTimeLiteral))
	}
	return out, nil
}

func parseOptionalTime(s *string) (*model.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}
	return model.ParseTimeOfDay(*s)
}

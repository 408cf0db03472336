package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/api"
)

// Pinger is satisfied by db.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthModule mounts GET /healthz.
func HealthModule(store Pinger) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/healthz", func(ctx *gin.Context) (any, *api.APIError) {
			pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
			defer cancel()

			if err := store.Ping(pingCtx); err != nil {
				log.Ctx(ctx.Request.Context()).Error().Err(err).Msg("[health] database ping failed")
				return nil, api.NewError(http.StatusServiceUnavailable, "database unavailable")
			}
			return gin.H{"status": "ok"}, nil
		})
	})
}

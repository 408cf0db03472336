package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/auth"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/config"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/db"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/cuepoint/internal/http/api/auth/endpoints"
	mediaapi "github.com/Nixie-Tech-LLC/cuepoint/internal/http/api/media/endpoints"
	systemapi "github.com/Nixie-Tech-LLC/cuepoint/internal/http/api/system/endpoints"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/model"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/mqtt"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/redis"
)

// Dependencies are the long-lived services the routes are built from.
type Dependencies struct {
	Store         db.Store
	Authenticator *auth.Authenticator
	Tokens        *auth.TokenService
	Cache         redis.MediaCache
	Events        mqtt.Publisher
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{
			"GET",
			"POST",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Length",
			middleware.RequestIDHeader,
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	api.MountGroup(r, api.GroupConfig{},
		systemapi.HealthModule(deps.Store),
		authapi.TokenModule(deps.Authenticator, deps.Tokens, cfg.AccessTokenTTL),
	)

	api.MountGroup(r, api.GroupConfig{
		Guard: []gin.HandlerFunc{
			middleware.JWTMiddleware(deps.Tokens),
			middleware.RequireRole(model.RoleAdmin),
		},
	},
		mediaapi.MediaModule(deps.Store, deps.Cache, deps.Events, mediaapi.Options{
			DefaultLimit:    cfg.ListDefaultLimit,
			NullTimeLiteral: cfg.NullTimeLiteral,
		}),
	)
}

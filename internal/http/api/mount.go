package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Module is a pluggable feature that attaches its endpoints to a Controller (a gin group).
type Module interface {
	Mount(c *Controller)
}

// ModuleFunc lets you define a Module with a simple function.
type ModuleFunc func(c *Controller)

func (f ModuleFunc) Mount(c *Controller) { f(c) }

// GroupConfig tells the api package how to mount a group.
type GroupConfig struct {
	Prefix     string
	Guard      []gin.HandlerFunc // run before every protected route
	Middleware []gin.HandlerFunc // optional additional middleware
}

// Controller registers routes on a group. PUBLIC_* routes skip the guard chain.
type Controller struct {
	Group *gin.RouterGroup
	guard []gin.HandlerFunc
}

func (c *Controller) PUBLIC_GET(path string, h HandlerFunc) {
	c.Group.GET(path, ResolveEndpoint(h))
}

func (c *Controller) PUBLIC_POST(path string, h HandlerFunc) {
	c.Group.POST(path, ResolveEndpoint(h))
}

func (c *Controller) GET(path string, h HandlerFuncWithClaims) {
	c.Group.GET(path, c.protected(path, h)...)
}

func (c *Controller) POST(path string, h HandlerFuncWithClaims) {
	c.Group.POST(path, c.protected(path, h)...)
}

func (c *Controller) DELETE(path string, h HandlerFuncWithClaims) {
	c.Group.DELETE(path, c.protected(path, h)...)
}

func (c *Controller) protected(path string, h HandlerFuncWithClaims) []gin.HandlerFunc {
	if len(c.guard) == 0 {
		log.Fatal().Str("path", path).Msg("api.Controller: protected route mounted without a guard")
	}
	chain := make([]gin.HandlerFunc, 0, len(c.guard)+1)
	chain = append(chain, c.guard...)
	return append(chain, ResolveEndpointWithClaims(h))
}

// MountGroup mounts one or more Modules under a prefix.
func MountGroup(parent gin.IRoutes, cfg GroupConfig, modules ...Module) {
	var grp *gin.RouterGroup

	switch v := parent.(type) {
	case *gin.Engine:
		grp = v.Group(cfg.Prefix)
	case *gin.RouterGroup:
		if cfg.Prefix != "" {
			grp = v.Group(cfg.Prefix)
		} else {
			grp = v
		}
	default:
		log.Fatal().Str("type", fmt.Sprintf("%T", parent)).Msg("api.MountGroup: unsupported router type")
	}

	// Apply middleware in a deterministic order.
	for _, mw := range cfg.Middleware {
		grp.Use(mw)
	}

	controller := &Controller{Group: grp, guard: cfg.Guard}

	for _, m := range modules {
		m.Mount(controller)
	}
}

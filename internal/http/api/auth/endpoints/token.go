package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/auth"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/api"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/api/auth/packets"
)

// TokenModule mounts the public password-grant endpoint (/token).
func TokenModule(authenticator *auth.Authenticator, tokens *auth.TokenService, ttl time.Duration) api.Module {
	ctl := &TokenIssuer{authenticator: authenticator, tokens: tokens, ttl: ttl}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/token", ctl.issueToken)
	})
}

type TokenIssuer struct {
	authenticator *auth.Authenticator
	tokens        *auth.TokenService
	ttl           time.Duration
}

// POST /token
func (t *TokenIssuer) issueToken(ctx *gin.Context) (any, *api.APIError) {
	var request packets.TokenRequest
	if err := ctx.ShouldBindWith(&request, binding.Form); err != nil {
		return nil, api.NewError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := t.authenticator.Authenticate(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			log.Ctx(ctx.Request.Context()).Warn().Str("username", request.Username).Msg("[auth] rejected login")
			return nil, api.NewError(http.StatusBadRequest, "Incorrect username or password")
		}
		log.Ctx(ctx.Request.Context()).Error().Err(err).Msg("[auth] user lookup failed")
		return nil, api.InternalError()
	}

	token, err := t.tokens.Issue(user.Username, user.Role, t.ttl)
	if err != nil {
		log.Ctx(ctx.Request.Context()).Error().Err(err).Msg("[auth] could not sign token")
		return nil, api.InternalError()
	}

	return packets.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

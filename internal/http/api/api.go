package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/auth"
	"github.com/Nixie-Tech-LLC/cuepoint/internal/http/middleware"
)

// APIError is returned by handlers and rendered as {"detail": Message}.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewError(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// InternalError hides the cause from the client.
func InternalError() *APIError {
	return &APIError{Code: http.StatusInternalServerError, Message: "Internal Server Error"}
}

type HandlerFuncWithClaims func(ctx *gin.Context, claims *auth.Claims) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func ResolveEndpointWithClaims(h HandlerFuncWithClaims) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := middleware.GetClaims(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"detail": middleware.MsgInvalidCredentials})
			return
		}

		result, apiErr := h(ctx, claims)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"detail": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"detail": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

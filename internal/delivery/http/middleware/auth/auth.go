package http_auth_middleware

import (
	"errors"
	"log/slog"
	"net/http"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	service_anonymous_auth "github.com/Klaiveft/What2Watch/internal/service/auth/anonymous"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TokenResolver interface {
	Resolve(t string) (uuid.UUID, error)
}

type Middleware struct {
	resolver TokenResolver
	logger   *slog.Logger
}

func New(
	resolver TokenResolver,
) *Middleware {
	return &Middleware{
		resolver: resolver,
		logger:   slog.Default(),
	}
}

// AuthRequired resolves the anonymous token into a user id. Browsers can not
// set headers on WebSocket upgrades, so the token query parameter is accepted
// as well.
func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		t := ctx.GetHeader(http_common.UserTokenHeader)
		if t == "" {
			t = ctx.Query("token")
		}
		if t == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: "no " + http_common.UserTokenHeader + " header",
			})
			return
		}

		userID, err := m.resolver.Resolve(t)
		if err != nil {
			if errors.Is(err, service_anonymous_auth.ErrUnknownToken) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, http_common.ErrorResponse{
					Message: "invalid token",
				})
				return
			}
			m.logger.Error("failed to resolve token", slog.String("error", err.Error()))
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
			return
		}

		http_common.SetUserID(ctx, userID)
		ctx.Next()
	}
}

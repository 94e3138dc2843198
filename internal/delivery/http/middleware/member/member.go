package http_member_middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_room "github.com/Klaiveft/What2Watch/internal/usecase/room"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MembershipChecker interface {
	Membership(ctx context.Context, code string, userID uuid.UUID) (model.Room, error)
}

type Middleware struct {
	checker MembershipChecker
	logger  *slog.Logger
}

func New(checker MembershipChecker) *Middleware {
	return &Middleware{
		checker: checker,
		logger:  slog.Default(),
	}
}

// MemberRequired lets only participants of :code through. Everyone else is
// pointed at the join screen. Must run after the auth middleware.
func (m *Middleware) MemberRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		code, err := usecase_room.NormalizeCode(ctx.Param("code"))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: err.Error(),
			})
			return
		}

		room, err := m.checker.Membership(ctx, code, http_common.UserID(ctx))
		switch {
		case err == nil:
			http_common.SetRoom(ctx, room)
			ctx.Next()
		case errors.Is(err, usecase_room.ErrNotParticipant):
			ctx.AbortWithStatusJSON(http.StatusForbidden, http_common.ErrorResponse{
				Message:  "you are not a participant of this room",
				Redirect: http_common.JoinPath(code),
			})
		case errors.Is(err, usecase_room.ErrResourceNotFound):
			ctx.AbortWithStatusJSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found",
			})
		default:
			m.logger.Error("membership check failed", slog.String("room_code", code), slog.String("error", err.Error()))
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
	}
}

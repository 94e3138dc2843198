package http_auth

import (
	"log/slog"
	"net/http"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	service_anonymous_auth "github.com/Klaiveft/What2Watch/internal/service/auth/anonymous"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	service   *service_anonymous_auth.Service
	rateLimit gin.HandlerFunc
	logger    *slog.Logger
}

func New(
	service *service_anonymous_auth.Service,
	rateLimit gin.HandlerFunc,
) *Controller {
	return &Controller{
		service:   service,
		rateLimit: rateLimit,
		logger:    slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	auth.POST("/anonymous", c.rateLimit, c.anonymous)
}

// AnonymousResponseDTO DTO for a freshly issued identity
type AnonymousResponseDTO struct {
	UserID string `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Token  string `json:"token" example:"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
}

// Anonymous issues an identity
// @Summary Anonymous sign in
// @Description Issues a new anonymous user and its token. Send the token back in the X-user-token header
// @Tags Auth
// @Produce json
// @Success 201 {object} AnonymousResponseDTO "Identity issued"
// @Header 201 {string} X-user-token "Session token"
// @Failure 429 {object} http_common.ErrorResponse "Too many requests"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /auth/anonymous [post]
func (c *Controller) anonymous(ctx *gin.Context) {
	token, userID, err := c.service.Issue()
	if err != nil {
		c.logger.Error("failed to issue token", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.Header(http_common.UserTokenHeader, token)
	ctx.JSON(http.StatusCreated, AnonymousResponseDTO{
		UserID: userID.String(),
		Token:  token,
	})
}

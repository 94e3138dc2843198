package http_auth_middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	service_anonymous_auth "github.com/Klaiveft/What2Watch/internal/service/auth/anonymous"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type AuthMiddlewareUnitSuite struct {
	suite.Suite
}

type resolverFunc func(t string) (uuid.UUID, error)

func (f resolverFunc) Resolve(t string) (uuid.UUID, error) {
	return f(t)
}

func (s *AuthMiddlewareUnitSuite) TestAuthRequired(t provider.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	user := uuid.New()
	resolver := resolverFunc(func(token string) (uuid.UUID, error) {
		switch token {
		case "good":
			return user, nil
		case "broken":
			return uuid.Nil, errors.Join(service_anonymous_auth.ErrInternal, errors.New("redis down"))
		default:
			return uuid.Nil, service_anonymous_auth.ErrUnknownToken
		}
	})

	testCases := []struct {
		name           string
		target         string
		header         string
		expectedStatus int
	}{
		{name: "Should accept token header", target: "/me", header: "good", expectedStatus: http.StatusOK},
		{name: "Should accept token query for websocket upgrades", target: "/me?token=good", expectedStatus: http.StatusOK},
		{name: "Should reject missing token", target: "/me", expectedStatus: http.StatusUnauthorized},
		{name: "Should reject unknown token", target: "/me", header: "stale", expectedStatus: http.StatusUnauthorized},
		{name: "Should fail on resolver error", target: "/me", header: "broken", expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()

			engine := gin.New()
			engine.GET("/me", New(resolver).AuthRequired(), func(ctx *gin.Context) {
				ctx.String(http.StatusOK, http_common.UserID(ctx).String())
			})

			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set(http_common.UserTokenHeader, tc.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				assert.Equal(t, user.String(), w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(AuthMiddlewareUnitSuite))
}

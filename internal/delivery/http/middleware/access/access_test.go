package http_access_middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type AccessMiddlewareUnitSuite struct {
	suite.Suite
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func serve(engine *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/rooms", nil)
	req.RemoteAddr = ip + ":5555"
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func initEngine(l *Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/rooms", l.RateLimit(), func(ctx *gin.Context) {
		ctx.Status(http.StatusCreated)
	})
	return engine
}

func (s *AccessMiddlewareUnitSuite) TestBurstThenThrottle(t provider.T) {
	t.Parallel()

	c := &clock{now: time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)}
	l := NewLimiter(1, 2)
	l.now = c.Now
	engine := initEngine(l)

	assert.Equal(t, http.StatusCreated, serve(engine, "10.0.0.1").Code)
	assert.Equal(t, http.StatusCreated, serve(engine, "10.0.0.1").Code)

	w := serve(engine, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	// other clients keep their own budget
	assert.Equal(t, http.StatusCreated, serve(engine, "10.0.0.2").Code)

	c.now = c.now.Add(time.Second)
	assert.Equal(t, http.StatusCreated, serve(engine, "10.0.0.1").Code)
}

func (s *AccessMiddlewareUnitSuite) TestIdleVisitorsAreForgotten(t provider.T) {
	t.Parallel()

	c := &clock{now: time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)}
	l := NewLimiter(1, 1)
	l.now = c.Now

	assert.True(t, l.allow("10.0.0.1"))
	assert.Len(t, l.visitors, 1)

	c.now = c.now.Add(l.idle + time.Second)
	assert.True(t, l.allow("10.0.0.2"))
	assert.Len(t, l.visitors, 1)
}

func TestAccessMiddlewareUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(AccessMiddlewareUnitSuite))
}

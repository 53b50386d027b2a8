package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/autoshop-quotes/internal/app"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		middleware  gin.HandlerFunc
		header      string
		fromGin     func(*gin.Context) string
		fromContext func(context.Context) string
	}{
		{"request id", RequestID(), HeaderRequestID, GetRequestID, RequestIDFromContext},
		{"correlation id", CorrelationID(), HeaderCorrelationID, GetCorrelationID, CorrelationIDFromContext},
	}

	for _, tt := range tests {
		t.Run(tt.name+" generated", func(t *testing.T) {
			t.Parallel()

			var fromGin, fromCtx string

			router := gin.New()
			router.Use(tt.middleware)
			router.GET("/test", func(c *gin.Context) {
				fromGin = tt.fromGin(c)
				fromCtx = tt.fromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))

			echoed := w.Header().Get(tt.header)
			_, err := uuid.Parse(echoed)
			require.NoError(t, err)
			assert.Equal(t, echoed, fromGin)
			assert.Equal(t, echoed, fromCtx, "outgoing calls read the ID from context.Context")
		})

		t.Run(tt.name+" propagated", func(t *testing.T) {
			t.Parallel()

			var fromCtx string

			router := gin.New()
			router.Use(tt.middleware)
			router.GET("/test", func(c *gin.Context) {
				fromCtx = tt.fromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(tt.header, "upstream-123")

			w := serve(router, req)
			assert.Equal(t, "upstream-123", w.Header().Get(tt.header))
			assert.Equal(t, "upstream-123", fromCtx)
		})
	}
}

func TestIDFromContext_NotSet(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // nil context is part of the contract
	assert.Empty(t, RequestIDFromContext(nil))
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))

	ctx := ContextWithCorrelationID(ContextWithRequestID(context.Background(), "r-1"), "c-1")
	assert.Equal(t, "r-1", RequestIDFromContext(ctx))
	assert.Equal(t, "c-1", CorrelationIDFromContext(ctx))
}

func TestContextLogger_EnrichedByIDs(t *testing.T) {
	t.Parallel()

	logger, buf := bufferLogger()

	router := gin.New()
	router.Use(ContextLogger(logger), RequestID(), Logging(logger))
	router.GET("/api/v1/quotes", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes?search=orc", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	serve(router, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/api/v1/quotes?search=orc", entry["path"])
	assert.Equal(t, "/api/v1/quotes", entry["route"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestLogging_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			logger, buf := bufferLogger()

			router := gin.New()
			router.Use(Logging(logger))
			router.GET("/api/test", func(c *gin.Context) {
				c.Status(tt.status)
			})

			serve(router, httptest.NewRequest(http.MethodGet, "/api/test", nil))
			assert.Contains(t, buf.String(), `"level":"`+tt.level+`"`)
		})
	}
}

func TestLogging_SkipsProbesAndListedPaths(t *testing.T) {
	t.Parallel()

	logger, buf := bufferLogger()

	router := gin.New()
	router.Use(Logging(logger, "/favicon.ico"))
	router.GET("/-/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(router, httptest.NewRequest(http.MethodGet, "/-/live", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))

	assert.Empty(t, buf.String())
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	logger, buf := bufferLogger()

	router := gin.New()
	router.Use(Recovery(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/panic", func(*gin.Context) { panic("boom") })

	w := serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderRequestID, "req-7")

	w = serve(router, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
	assert.Equal(t, "req-7", resp.TraceID)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("sets a deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(time.Second))
		router.GET("/test", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hasDeadline)
	})

	t.Run("answers 504 when the handler gave up", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/slow", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/slow", nil))
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), dto.ErrorCodeTimeout))
	})

	t.Run("keeps a response already written", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/late", func(c *gin.Context) {
			<-c.Request.Context().Done()
			c.JSON(http.StatusServiceUnavailable, gin.H{"late": true})
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/late", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRequestMemo(t *testing.T) {
	t.Parallel()

	var memoized bool

	router := gin.New()
	router.Use(RequestMemo())
	router.GET("/test", func(c *gin.Context) {
		ctx := c.Request.Context()
		// A memo already present is reused, so the context comes back as is.
		memoized = ctx == app.WithRequestMemo(ctx)
		c.Status(http.StatusOK)
	})

	serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.True(t, memoized)
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/http/middleware"
	"github.com/jsamuelsen/autoshop-quotes/internal/adapters/memory"
	"github.com/jsamuelsen/autoshop-quotes/internal/app"
	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           0,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxRequestSize: 1 << 20,
	}
}

func quoteHandler() *handlers.QuoteHandler {
	catalog := memory.NewCatalog()
	catalog.AddClient(domain.Client{ID: "c1", Name: "Maria Souza"})
	catalog.AddVehicle(domain.Vehicle{ID: "v1", ClientID: "c1", Make: "Fiat", Model: "Uno", Year: 2015, Plate: "ABC-1234"})

	svc := app.NewQuoteService(app.QuoteServiceConfig{
		Repo:    memory.NewQuoteRepository(),
		Catalog: catalog,
		Logger:  discardLogger(),
	})

	return handlers.NewQuoteHandler(svc, app.EditorConfig{Catalog: catalog, Logger: discardLogger()})
}

func TestServerNew(t *testing.T) {
	cfg := testServerConfig()
	logger := discardLogger()

	srv := New(cfg, logger)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.Engine())
	assert.Equal(t, cfg, srv.Config())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())
	srv.Engine().GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	errCh := srv.Start()

	addr := srv.Addr()
	assert.NotEqual(t, "127.0.0.1:0", addr, "Addr should report the bound port")

	resp, err := http.Get("http://" + addr + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	_, ok := <-errCh
	assert.False(t, ok, "error channel should be closed")
}

func TestServerStart_BindFailure(t *testing.T) {
	first := New(testServerConfig(), discardLogger())
	firstErr := first.Start()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = first.Shutdown(ctx)
		<-firstErr
	})

	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)

	cfg := testServerConfig()
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	err, ok := <-New(cfg, discardLogger()).Start()
	require.True(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}

func TestMaxBodySize(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxRequestSize = 16

	srv := New(cfg, discardLogger())
	srv.Engine().POST("/test", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": len(body)})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("small")))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length over limit gets the error envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(strings.Repeat("x", 64)))
		req.Header.Set(middleware.HeaderRequestID, "req-413")

		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, req)

		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, dto.ErrorCodeBadRequest, body.Error.Code)
		assert.Equal(t, "request body exceeds 16 bytes", body.Error.Message)
	})

	t.Run("unknown length is capped while reading", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test", io.NopCloser(strings.NewReader(strings.Repeat("x", 64))))
		req.ContentLength = -1

		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestNewDefaultRouterConfig(t *testing.T) {
	logger := discardLogger()
	appCfg := &config.AppConfig{Name: "test-app", Environment: "test", Version: "1.0.0"}
	health := handlers.NewHealthHandler(nil, handlers.BuildInfo{})
	quotes := quoteHandler()

	cfg := NewDefaultRouterConfig(logger, appCfg, health, quotes)

	assert.Equal(t, logger, cfg.Logger)
	assert.Equal(t, appCfg, cfg.AppConfig)
	assert.Equal(t, health, cfg.HealthHandler)
	assert.Equal(t, quotes, cfg.QuoteHandler)
	assert.Equal(t, DefaultRequestTimeout, cfg.Timeout)
}

func TestSetupMinimalRouter(t *testing.T) {
	engine := gin.New()
	SetupMinimalRouter(engine, discardLogger(), handlers.NewHealthHandler(nil, handlers.BuildInfo{Version: "1.0.0"}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	require.NotPanics(t, func() {
		SetupMinimalRouter(gin.New(), discardLogger(), nil)
	})
}

func TestSetupRouter(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger:        discardLogger(),
		AppConfig:     &config.AppConfig{Name: "test-service", Environment: "test", Version: "1.0.0"},
		HealthHandler: handlers.NewHealthHandler(nil, handlers.BuildInfo{}),
		QuoteHandler:  quoteHandler(),
		Timeout:       time.Second,
	})

	paths := make(map[string]bool)
	for _, r := range engine.Routes() {
		paths[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /-/live",
		"GET /-/ready",
		"GET /api/v1/quotes",
		"POST /api/v1/quotes",
		"PUT /api/v1/quotes/:id/status",
		"POST /api/v1/quotes/:id/work-order",
		"GET /api/v1/quote-form/options",
	} {
		assert.True(t, paths[want], "missing route %s", want)
	}

	t.Run("api responses carry ids", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderCorrelationID))

		var page dto.PaginatedResponse[dto.QuoteSummary]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Empty(t, page.Items)
		assert.False(t, page.HasMore)
	})

	t.Run("errors carry the request id as trace id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/missing", nil)
		req.Header.Set(middleware.HeaderRequestID, "req-404")

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeNotFound, resp.Error.Code)
		assert.NotEmpty(t, resp.TraceID)
	})
}

func TestSetupRouter_NilHandlers(t *testing.T) {
	engine := gin.New()

	require.NotPanics(t, func() {
		SetupRouter(engine, RouterConfig{Logger: discardLogger()})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

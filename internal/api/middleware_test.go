package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/book-expert/edu-content-service/internal/api"
	"github.com/book-expert/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiddlewareEngine(t *testing.T, origins []string) *gin.Engine {
	t.Helper()

	log, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	t.Cleanup(func() { _ = log.Close() })

	engine := gin.New()
	engine.Use(api.Recovery(log), api.RequestID(), api.CORS(origins), api.RequestLogger(log))

	engine.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})
	engine.GET("/panic", func(*gin.Context) {
		panic("boom")
	})

	return engine
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)

	return recorder
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	engine := newMiddlewareEngine(t, nil)

	recorder := serve(engine, httptest.NewRequest(http.MethodGet, "/ok", nil))
	generated := recorder.Header().Get(api.HeaderRequestID)

	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, recorder.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(api.HeaderRequestID, "caller-id")

	recorder = serve(engine, req)
	assert.Equal(t, "caller-id", recorder.Header().Get(api.HeaderRequestID))
}

func TestCORS(t *testing.T) {
	t.Parallel()

	engine := newMiddlewareEngine(t, []string{"http://localhost:3000"})

	t.Run("allowed origin is echoed", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Origin", "http://localhost:3000")

		recorder := serve(engine, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set("Origin", "http://evil.example")

		recorder := serve(engine, req)
		assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodOptions, "/generate-script", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		recorder := serve(engine, req)
		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}

func TestCORS_Wildcard(t *testing.T) {
	t.Parallel()

	engine := newMiddlewareEngine(t, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "http://anything.example")

	recorder := serve(engine, req)
	assert.Equal(t, "http://anything.example", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	engine := newMiddlewareEngine(t, nil)

	recorder := serve(engine, httptest.NewRequest(http.MethodGet, "/panic", nil))
	requireError(t, recorder, http.StatusInternalServerError, api.CodeInternal, "Internal server error")
}

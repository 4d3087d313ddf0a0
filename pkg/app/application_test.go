package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"liora/pkg/config"
	"liora/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeHandler struct {
	method string
	path   string
	status int
}

func (h routeHandler) RegisterRoutes(router *httprouter.Router) {
	router.Handle(h.method, h.path, func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(h.status)
	})
}

func newTestApp(t *testing.T, uploadDir string) *Application {
	t.Helper()

	cfg := &config.Config{
		Port:               "8080",
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     5 * time.Second,
		IdempotencyTTL:     time.Minute,
		MaxRequestSize:     1 << 20,
		ShutdownTimeout:    time.Second,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		UploadDir:          uploadDir,
		Log:                logger.Discard(),
	}

	a := NewApplication(cfg)
	a.SetApp(Options{
		Health:   routeHandler{http.MethodGet, "/health", http.StatusOK},
		API:      []Handler{routeHandler{http.MethodGet, "/api/v1/listings", http.StatusTeapot}},
		Realtime: routeHandler{http.MethodGet, "/ws/chat", http.StatusAccepted},
	})
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func TestSetApp_Routing(t *testing.T) {
	a := newTestApp(t, "")

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"health", "/health", http.StatusOK},
		{"api", "/api/v1/listings", http.StatusTeapot},
		{"realtime", "/ws/chat", http.StatusAccepted},
		{"unknown", "/api/v1/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSetApp_APIStackAppliesCORS(t *testing.T) {
	a := newTestApp(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSetApp_ServesUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loft.jpg"), []byte("jpeg-bytes"), 0o600))
	a := newTestApp(t, dir)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/loft.jpg", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

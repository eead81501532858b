// Package handlers_test exercises the API handlers through real gin
// routers backed by a file-provider store.
package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Danton11/RIND/internal/api/handlers"
	"github.com/Danton11/RIND/internal/records"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*records.Store, *records.FileProvider, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dns_records.txt")
	provider := records.NewFileProvider(path)
	ctx := context.Background()
	require.NoError(t, provider.Initialize(ctx))
	store := records.NewStore(provider, nil)
	require.NoError(t, store.Load(ctx))
	return store, provider, path
}

func recordRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.POST("/records", h.CreateRecord)
	r.GET("/records", h.ListRecords)
	r.GET("/records/:id", h.GetRecord)
	r.PUT("/records/:id", h.UpdateRecord)
	r.DELETE("/records/:id", h.DeleteRecord)
	r.POST("/update", h.LegacyUpdate)
	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)
	return r
}

func newTestRouter(t *testing.T) (*gin.Engine, *records.Store) {
	t.Helper()
	store, provider, _ := newTestStore(t)
	h := handlers.New(store, provider, testLogger(), nil, nil)
	return recordRouter(h), store
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope mirrors models.Response with the payload kept raw so each test
// can decode it into the type it expects.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Timestamp time.Time       `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.False(t, env.Timestamp.IsZero())
	return env
}

func dataAs[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NotNil(t, env.Data)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

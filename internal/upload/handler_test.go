package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	payload  json.RawMessage
	lastPath string
}

func (a *stubAnalyzer) Analyze(_ context.Context, filePath string) json.RawMessage {
	a.lastPath = filePath
	return a.payload
}

func newTestHandler(t *testing.T, analyzer *stubAnalyzer) (*Handler, *DiskStore) {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return NewHandler(store, analyzer, slog.New(slog.DiscardHandler)), store
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUpload_StoresFileAndReturnsAnalysis(t *testing.T) {
	analyzer := &stubAnalyzer{payload: json.RawMessage(`{"ai_observation":"Detected: rust","suggested_severity":"MAJOR"}`)}
	handler, store := newTestHandler(t, analyzer)

	body, contentType := multipartBody(t, "evidence", "boiler.jpg", "not-really-a-jpeg")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	r := chi.NewRouter()
	handler.Register(r)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		URL        string          `json:"url"`
		AIAnalysis json.RawMessage `json:"ai_analysis"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.URL, "http://localhost:8080/uploads/"))
	assert.True(t, strings.HasSuffix(resp.URL, "-boiler.jpg"))
	assert.JSONEq(t, string(analyzer.payload), string(resp.AIAnalysis))

	// The stored file exists on disk and the analyzer got its local path.
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(store.Dir(), entries[0].Name()), analyzer.lastPath)

	stored, err := os.ReadFile(analyzer.lastPath)
	require.NoError(t, err)
	assert.Equal(t, "not-really-a-jpeg", string(stored))
}

func TestUpload_MissingFileIsBadRequest(t *testing.T) {
	handler, _ := newTestHandler(t, &stubAnalyzer{payload: json.RawMessage(`{}`)})

	body, contentType := multipartBody(t, "wrong_field", "boiler.jpg", "x")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	r := chi.NewRouter()
	handler.Register(r)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_SucceedsWithFallbackAnalysis(t *testing.T) {
	// When enrichment degrades, the upload must still return 200 with the
	// fallback payload.
	fallback := json.RawMessage(`{"ai_observation":"AI Analysis Unavailable","suggested_severity":null}`)
	handler, _ := newTestHandler(t, &stubAnalyzer{payload: fallback})

	body, contentType := multipartBody(t, "evidence", "valve.png", "pixels")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	r := chi.NewRouter()
	handler.Register(r)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.JSONEq(t, string(fallback), string(resp["ai_analysis"]))
}

func TestDiskStore_SanitizesHostilePaths(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	stored, err := store.Save("../../etc/passwd", strings.NewReader("nope"))
	require.NoError(t, err)
	assert.NotContains(t, stored.Name, "/")
	assert.NotContains(t, stored.Name, "..")
	assert.Equal(t, store.Dir(), filepath.Dir(stored.LocalPath))
}

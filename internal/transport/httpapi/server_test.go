package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phoenixqa/smartcase/internal/adapter/ai/mock"
	"github.com/phoenixqa/smartcase/internal/domain/testgen"
	"github.com/phoenixqa/smartcase/internal/export"
	"github.com/phoenixqa/smartcase/internal/usecase/generation"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orch, err := generation.New([]testgen.Provider{
		mock.NewProvider("openai"),
		mock.NewProvider("gemini"),
	})
	require.NoError(t, err)

	return NewServer(orch, export.NewWriter(t.TempDir()))
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestServer(t).Router()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "smartcase-api", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestGenerate_Plain(t *testing.T) {
	router := newTestServer(t).Router()

	rec := postJSON(t, router, "/api/generate", gin.H{
		"user_story":    "As a shopper, I want to apply a discount code at checkout.",
		"llm_provider":  "openai",
		"output_format": "plain",
		"num_cases":     3,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Len(t, resp.Plain, 3)
	assert.Empty(t, resp.BDD)
	assert.NotEmpty(t, resp.SessionID)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "plain", resp.Files[0].Kind)
	for _, tc := range resp.Plain {
		assert.Equal(t, "openai", tc.Provider)
	}
}

func TestGenerate_BothFormatsWriteTwoFiles(t *testing.T) {
	router := newTestServer(t).Router()

	rec := postJSON(t, router, "/api/generate", gin.H{
		"user_story":    "As an admin, I want to deactivate accounts.",
		"llm_provider":  "gemini",
		"output_format": "both",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Plain)
	assert.NotEmpty(t, resp.BDD)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "plain", resp.Files[0].Kind)
	assert.Equal(t, "bdd", resp.Files[1].Kind)
}

func TestGenerate_DefaultsToAllProvidersPlain(t *testing.T) {
	router := newTestServer(t).Router()

	rec := postJSON(t, router, "/api/generate", gin.H{
		"user_story": "As a user, I want to reset my password.",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Empty(t, resp.BDD)

	providers := map[string]bool{}
	for _, tc := range resp.Plain {
		providers[tc.Provider] = true
	}
	assert.Len(t, providers, 2, "fan-out should include both configured providers")
}

func TestGenerate_EmptyStory(t *testing.T) {
	router := newTestServer(t).Router()

	rec := postJSON(t, router, "/api/generate", gin.H{
		"user_story": "   ",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestGenerate_MalformedBody(t *testing.T) {
	router := newTestServer(t).Router()

	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_UnknownProvider(t *testing.T) {
	router := newTestServer(t).Router()

	rec := postJSON(t, router, "/api/generate", gin.H{
		"user_story":   "As a user, I want to export reports.",
		"llm_provider": "grok",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownload(t *testing.T) {
	server := newTestServer(t)
	router := server.Router()

	rec := postJSON(t, router, "/api/generate", gin.H{
		"user_story":   "As a user, I want to download my invoices.",
		"llm_provider": "openai",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Files)

	dlReq := httptest.NewRequest(http.MethodGet, "/api/download/"+resp.SessionID+"/"+resp.Files[0].Name, nil)
	dlRec := httptest.NewRecorder()
	router.ServeHTTP(dlRec, dlReq)

	require.Equal(t, http.StatusOK, dlRec.Code)

	want, err := os.ReadFile(resp.Files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, string(want), dlRec.Body.String())
}

func TestDownload_NotFound(t *testing.T) {
	router := newTestServer(t).Router()

	req := httptest.NewRequest(http.MethodGet, "/api/download/session_nope/file.md", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/docsearch/internal/document/application"
	"github.com/davicafu/docsearch/internal/document/domain"
	"github.com/davicafu/docsearch/internal/mocks"
)

func setupRouter(repo *mocks.InMemoryDocumentRepo, debug bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := application.NewDocumentService(repo, nil, time.Minute, "docsearch-api", zap.NewNop())
	r := gin.New()
	RegisterDocumentRoutes(r, NewDocumentHandler(service, debug))
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateDocumentHandler(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	r := setupRouter(repo, false)

	w := doJSON(r, http.MethodPost, "/documents", map[string]string{"title": "Hello", "body": "world"})
	require.Equal(t, http.StatusCreated, w.Code)

	var doc domain.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "Hello", doc.Title)
	assert.Len(t, repo.Outbox, 1)
}

func TestCreateDocumentHandler_Validation(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	r := setupRouter(repo, false)

	w := doJSON(r, http.MethodPost, "/documents", map[string]string{"body": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")

	w = doJSON(r, http.MethodPost, "/documents", map[string]string{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Empty(t, repo.Outbox)
}

func TestCreateDocumentHandler_MultibyteTitle(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	r := setupRouter(repo, false)

	w := doJSON(r, http.MethodPost, "/documents", map[string]string{"title": strings.Repeat("日", 200), "body": "b"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/documents", map[string]string{"title": strings.Repeat("日", 501), "body": "b"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, repo.Outbox, 1)
}

func TestCreateDocumentHandler_PersistenceError(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	repo.Err = errors.New("pq: connection refused")

	w := doJSON(setupRouter(repo, false), http.MethodPost, "/documents", map[string]string{"title": "t"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = doJSON(setupRouter(repo, true), http.MethodPost, "/documents", map[string]string{"title": "t"})
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestGetDocumentHandler(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	doc, _ := domain.NewDocument("stored", "body")
	repo.Documents[doc.ID] = *doc
	r := setupRouter(repo, false)

	w := doJSON(r, http.MethodGet, "/documents/"+doc.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/documents/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/documents/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateDocumentHandler(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	doc, _ := domain.NewDocument("v1", "b1")
	repo.Documents[doc.ID] = *doc
	r := setupRouter(repo, false)

	w := doJSON(r, http.MethodPut, "/documents/"+doc.ID.String(), map[string]string{"title": "v2", "body": "b2"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v2", repo.Documents[doc.ID].Title)
	assert.Len(t, repo.Outbox, 1)

	w = doJSON(r, http.MethodPut, "/documents/"+uuid.NewString(), map[string]string{"title": "v2"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDocumentsHandler(t *testing.T) {
	repo := mocks.NewInMemoryDocumentRepo()
	r := setupRouter(repo, false)

	w := doJSON(r, http.MethodGet, "/documents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

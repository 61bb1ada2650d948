package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claudehenchoz/trinket/pkg/handler"
	"github.com/claudehenchoz/trinket/pkg/store"
	"github.com/claudehenchoz/trinket/requests"
	"github.com/claudehenchoz/trinket/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	l := zaptest.NewLogger(t)
	r, err := store.NewRepository(l, t.TempDir())
	require.NoError(t, err)
	return handler.NewHTTP(l, store.New(l, r))
}

func post(t *testing.T, h http.Handler, route handler.Route, request interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(request)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/trinket/"+string(route), bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPSaveAndQuery(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, handler.RouteSave, &requests.Save{Content: "hello world"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var saveReply responses.Save
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saveReply))
	require.NotNil(t, saveReply.Snippet)
	assert.NotEmpty(t, saveReply.Snippet.ID)
	assert.Equal(t, "hello world", saveReply.Snippet.Content)

	rec = post(t, h, handler.RouteQuery, &requests.Query{Pattern: "WORLD"})
	require.Equal(t, http.StatusOK, rec.Code)

	var queryReply responses.Query
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queryReply))
	require.Equal(t, 1, queryReply.Total)
	assert.Equal(t, saveReply.Snippet.ID, queryReply.Results[0].Snippet.ID)
	assert.NotEmpty(t, queryReply.Results[0].Matches)
}

func TestHTTPQueryNoMatch(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, handler.RouteQuery, &requests.Query{Pattern: "nothing here"})
	require.Equal(t, http.StatusOK, rec.Code)

	var queryReply responses.Query
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queryReply))
	assert.Equal(t, 0, queryReply.Total)
}

func TestHTTPReload(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, handler.RouteReload, &requests.Reload{})
	require.Equal(t, http.StatusOK, rec.Code)

	var reloadReply responses.Reload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reloadReply))
	assert.True(t, reloadReply.Success)
	assert.Equal(t, 0, reloadReply.Stats.NumberOfSnippets)
}

func TestHTTPUnknownRoute(t *testing.T) {
	h := newTestHandler(t)

	rec := post(t, h, handler.Route("nope"), struct{}{})
	require.Equal(t, http.StatusOK, rec.Code)

	var errReply responses.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errReply))
	assert.Equal(t, 1, errReply.Code)
}

func TestHTTPBadJSON(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/trinket/save", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var errReply responses.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errReply))
	assert.Equal(t, 2, errReply.Code)
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/trinket/query", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

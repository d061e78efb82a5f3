package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeCluster answers just enough of the Elasticsearch API for the adapter
type fakeCluster struct {
	mu       sync.Mutex
	requests []recorded
	indices  map[string]bool
}

func newFakeCluster(t *testing.T) (*fakeCluster, *httptest.Server) {
	fc := &fakeCluster{indices: map[string]bool{}}
	srv := httptest.NewServer(http.HandlerFunc(fc.serve))
	t.Cleanup(srv.Close)
	return fc, srv
}

func (fc *fakeCluster) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	fc.mu.Lock()
	fc.requests = append(fc.requests, recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	fc.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/":
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"version":{"number":"8.15.0"}}`))

	case len(parts) == 1 && r.Method == http.MethodHead:
		fc.mu.Lock()
		exists := fc.indices[parts[0]]
		fc.mu.Unlock()
		if exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}

	case len(parts) == 1 && r.Method == http.MethodPut:
		fc.mu.Lock()
		fc.indices[parts[0]] = true
		fc.mu.Unlock()
		_, _ = w.Write([]byte(`{"acknowledged":true}`))

	case len(parts) == 2 && parts[1] == "_search":
		if parts[0] == "bn_missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
			return
		}
		if parts[0] == "bn_broken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"parsing_exception"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":12},"hits":[{"_id":"9"},{"_id":"bogus"},{"_id":"3"}]}}`))

	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodPut:
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))

	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodDelete:
		if parts[2] == "404" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		if parts[2] == "500" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"shard failure"}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":"deleted"}`))

	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unexpected request"}`))
	}
}

func (fc *fakeCluster) last() recorded {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.requests[len(fc.requests)-1]
}

func newTestElastic(t *testing.T, url string) *Elastic {
	t.Helper()
	e, err := NewElastic(ElasticConfig{Addresses: []string{url}, Prefix: "bn_", Refresh: "true"})
	require.NoError(t, err)
	return e
}

func TestElasticUpsert(t *testing.T) {
	fc, srv := newFakeCluster(t)
	e := newTestElastic(t, srv.URL)

	err := e.Upsert(context.Background(), "posts", 42, map[string]any{"body": "steel beams"})
	require.NoError(t, err)

	req := fc.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/bn_posts/_doc/42", req.Path)
	assert.Contains(t, req.Query, "refresh=true")
	assert.JSONEq(t, `{"body":"steel beams"}`, req.Body)
}

func TestElasticDelete(t *testing.T) {
	fc, srv := newFakeCluster(t)
	e := newTestElastic(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, e.Delete(ctx, "users", 5))
	assert.Equal(t, "/bn_users/_doc/5", fc.last().Path)

	assert.NoError(t, e.Delete(ctx, "users", 404), "missing documents are not an error")

	err := e.Delete(ctx, "users", 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shard failure")
}

func TestElasticQuery(t *testing.T) {
	fc, srv := newFakeCluster(t)
	e := newTestElastic(t, srv.URL)
	ctx := context.Background()

	ids, total, err := e.Query(ctx, "builds", "warehouse", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{9, 3}, ids)
	assert.Equal(t, int64(12), total)

	req := fc.last()
	assert.Equal(t, "/bn_builds/_search", req.Path)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &sent))
	assert.Equal(t, float64(10), sent["from"])
	assert.Equal(t, float64(5), sent["size"])
	match := sent["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "warehouse", match["query"])
}

func TestElasticQueryMissingIndex(t *testing.T) {
	_, srv := newFakeCluster(t)
	e := newTestElastic(t, srv.URL)

	ids, total, err := e.Query(context.Background(), "missing", "x", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, total)

	_, _, err = e.Query(context.Background(), "broken", "x", 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing_exception")
}

func TestElasticEnsureIndex(t *testing.T) {
	fc, srv := newFakeCluster(t)
	e := newTestElastic(t, srv.URL)
	ctx := context.Background()

	mapping := []byte(`{"mappings":{"properties":{"body":{"type":"text"}}}}`)
	require.NoError(t, e.EnsureIndex(ctx, "posts", mapping))

	req := fc.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/bn_posts", req.Path)
	assert.JSONEq(t, string(mapping), req.Body)

	fc.mu.Lock()
	before := len(fc.requests)
	fc.mu.Unlock()

	require.NoError(t, e.EnsureIndex(ctx, "posts", mapping))
	fc.mu.Lock()
	after := len(fc.requests)
	fc.mu.Unlock()
	assert.Equal(t, before+1, after, "existing index is only checked")
}

func TestElasticPing(t *testing.T) {
	_, srv := newFakeCluster(t)
	e := newTestElastic(t, srv.URL)
	require.NoError(t, e.Ping(context.Background()))

	srv.Close()
	assert.Error(t, e.Ping(context.Background()))
}

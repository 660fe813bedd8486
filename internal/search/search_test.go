package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mca-workers/internal/models"
)

type recorded struct {
	method string
	path   string
	body   map[string]interface{}
}

func newTestClient(t *testing.T, status int, response string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		calls = append(calls, rec)

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewClient(es, ""), &calls
}

// ==========================
// Query building
// ==========================

func TestBuildQuery(t *testing.T) {
	t.Run("empty query matches all newest first", func(t *testing.T) {
		body := BuildQuery(Query{})
		assert.Equal(t, 0, body["from"])
		assert.Equal(t, defaultPageSize, body["size"])
		assert.Contains(t, body, "sort")

		boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
		assert.NotContains(t, boolQuery, "filter")
	})

	t.Run("filters and text", func(t *testing.T) {
		body := BuildQuery(Query{Text: "bakery", Status: "submitted", Industry: "Restaurant", MinAmount: 10000, Size: 500})
		assert.Equal(t, maxPageSize, body["size"])
		assert.NotContains(t, body, "sort")

		boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
		assert.Len(t, boolQuery["must"], 1)
		filters := boolQuery["filter"].([]interface{})
		require.Len(t, filters, 3)

		rng := filters[2].(map[string]interface{})["range"].(map[string]interface{})["requestedAmount"].(map[string]interface{})
		assert.Equal(t, 10000.0, rng["gte"])
		assert.NotContains(t, rng, "lte")
	})
}

// ==========================
// Client
// ==========================

func TestIndexApplication(t *testing.T) {
	c, calls := newTestClient(t, http.StatusCreated, `{"result":"created"}`)

	app := models.Application{ID: "app-1", Status: models.ApplicationStatusSubmitted}
	app.BusinessName = "Acme Bakery"

	require.NoError(t, c.IndexApplication(context.Background(), app))
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodPut, (*calls)[0].method)
	assert.Equal(t, "/mca-applications/_doc/app-1", (*calls)[0].path)
	assert.Equal(t, "Acme Bakery", (*calls)[0].body["businessName"])
}

func TestIndexApplication_Error(t *testing.T) {
	c, _ := newTestClient(t, http.StatusInternalServerError, `{"error":"boom"}`)
	err := c.IndexApplication(context.Background(), models.Application{ID: "app-1"})
	assert.Error(t, err)
}

func TestDeleteApplication_MissingIsFine(t *testing.T) {
	c, _ := newTestClient(t, http.StatusNotFound, `{"result":"not_found"}`)
	assert.NoError(t, c.DeleteApplication(context.Background(), "gone"))
}

func TestSearch(t *testing.T) {
	response := `{
	  "took": 3,
	  "hits": {
	    "total": {"value": 2, "relation": "eq"},
	    "max_score": 1.5,
	    "hits": [
	      {"_id": "a", "_source": {"id": "a", "businessName": "Acme Bakery", "status": "submitted", "requestedAmount": 50000}},
	      {"_id": "b", "_source": {"id": "b", "businessName": "Acme Tools", "status": "submitted", "requestedAmount": 75000}}
	    ]
	  }
	}`
	c, calls := newTestClient(t, http.StatusOK, response)

	res, err := c.Search(context.Background(), Query{Text: "acme"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 3, res.Took)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "Acme Bakery", res.Hits[0].BusinessName)
	assert.Equal(t, 75000.0, res.Hits[1].RequestedAmount)

	require.Len(t, *calls, 1)
	assert.True(t, strings.HasSuffix((*calls)[0].path, "/_search"))
	assert.Contains(t, (*calls)[0].body, "query")
}

func TestSearch_ErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadRequest, `{"error":{"type":"parsing_exception"}}`)
	_, err := c.Search(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrSearchQueryFailed)
}

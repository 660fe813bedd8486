// Package search keeps the application index in Elasticsearch and queries it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"

	"mca-workers/internal/models"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout     = errors.New("SEARCH_TIMEOUT")
)

const (
	DefaultIndex    = "mca-applications"
	defaultPageSize = 20
	maxPageSize     = 100
)

// Mapping is the index definition passed to EnsureIndex at startup.
const Mapping = `{
  "mappings": {
    "properties": {
      "id":              {"type": "keyword"},
      "businessName":    {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "ownerName":       {"type": "text"},
      "email":           {"type": "keyword"},
      "industry":        {"type": "keyword"},
      "businessType":    {"type": "keyword"},
      "status":          {"type": "keyword"},
      "address":         {"type": "text"},
      "requestedAmount": {"type": "double"},
      "monthlyRevenue":  {"type": "double"},
      "creditScore":     {"type": "integer"},
      "yearsInBusiness": {"type": "double"},
      "createdAt":       {"type": "date"},
      "updatedAt":       {"type": "date"}
    }
  }
}`

// Query filters applications. Zero values leave a criterion out.
type Query struct {
	Text      string  `json:"text,omitempty"`
	Status    string  `json:"status,omitempty"`
	Industry  string  `json:"industry,omitempty"`
	MinAmount float64 `json:"minAmount,omitempty"`
	MaxAmount float64 `json:"maxAmount,omitempty"`
	From      int     `json:"from,omitempty"`
	Size      int     `json:"size,omitempty"`
}

type Result struct {
	Hits     []models.Application `json:"hits"`
	Total    int                  `json:"total"`
	MaxScore float64              `json:"maxScore"`
	Took     int                  `json:"took"`
}

type Client struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(es *elasticsearch.Client, index string) *Client {
	if index == "" {
		index = DefaultIndex
	}
	return &Client{es: es, index: index}
}

func (c *Client) Index() string { return c.index }

// IndexApplication upserts the application document keyed by its id.
func (c *Client) IndexApplication(ctx context.Context, app models.Application) error {
	body, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshal application: %w", err)
	}

	res, err := c.es.Index(c.index, bytes.NewReader(body),
		c.es.Index.WithDocumentID(app.ID),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index application %s: %w", app.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index application %s: %s", app.ID, res.Status())
	}
	return nil
}

// DeleteApplication removes the document; a missing document is not an error.
func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	res, err := c.es.Delete(c.index, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete application %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete application %s: %s", id, res.Status())
	}
	return nil
}

func (c *Client) Search(ctx context.Context, q Query) (*Result, error) {
	body, err := json.Marshal(BuildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("%w: %s: %s", ErrSearchQueryFailed, res.Status(), raw)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchQueryFailed, err)
	}

	out := &Result{
		Hits:     make([]models.Application, 0, len(sr.Hits.Hits)),
		Total:    sr.Hits.Total.Value,
		MaxScore: sr.Hits.MaxScore,
		Took:     sr.Took,
	}
	for _, h := range sr.Hits.Hits {
		out.Hits = append(out.Hits, h.Source)
	}
	return out, nil
}

// BuildQuery renders q as an Elasticsearch request body.
func BuildQuery(q Query) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Text,
				"fields": []string{"businessName^3", "ownerName^2", "address", "email"},
				"type":   "best_fields",
			},
		})
	}
	if q.Status != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"status": q.Status}})
	}
	if q.Industry != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"industry": q.Industry}})
	}
	if q.MinAmount > 0 || q.MaxAmount > 0 {
		rng := map[string]interface{}{}
		if q.MinAmount > 0 {
			rng["gte"] = q.MinAmount
		}
		if q.MaxAmount > 0 {
			rng["lte"] = q.MaxAmount
		}
		filter = append(filter, map[string]interface{}{"range": map[string]interface{}{"requestedAmount": rng}})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	from := q.From
	if from < 0 {
		from = 0
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  from,
		"size":  size,
	}
	if q.Text == "" {
		body["sort"] = []interface{}{map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}}}
	}
	return body
}

type searchResponse struct {
	Took int `json:"took"`
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		MaxScore float64 `json:"max_score"`
		Hits     []struct {
			Source models.Application `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

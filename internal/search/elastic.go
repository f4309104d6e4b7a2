package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// DefaultTimeout bounds a single index search.
const DefaultTimeout = 12 * time.Second

// ElasticProvider searches an internal document index instead of the web.
// Documents need title and snippet (or content) and link (or url) fields.
type ElasticProvider struct {
	client  *elasticsearch.Client
	index   string
	size    int
	timeout time.Duration
}

// NewElasticProvider bounds every search by timeout; zero selects DefaultTimeout.
func NewElasticProvider(client *elasticsearch.Client, index string, size int, timeout time.Duration) *ElasticProvider {
	if size <= 0 {
		size = 10
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ElasticProvider{client: client, index: index, size: size, timeout: timeout}
}

func (p *ElasticProvider) Name() string { return "elasticsearch" }

func (p *ElasticProvider) Search(ctx context.Context, query string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "snippet", "content"},
			},
		},
		"size": p.size,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{p.index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, p.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return &Result{Status: false}, nil
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	result := &Result{Status: true}
	for _, h := range r.Hits.Hits {
		hit := Hit{
			Title:   firstString(h.Source, "title"),
			Snippet: firstString(h.Source, "snippet", "content"),
			Link:    firstString(h.Source, "link", "url"),
		}
		if hit.Link == "" {
			continue
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

func firstString(src map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := src[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	httpclient "ai-mood-gateway/internal/common/http"
)

// NeoxrProvider queries the hosted Google search endpoint.
type NeoxrProvider struct {
	baseURL string
	apiKey  string
	client  *httpclient.Client
}

func NewNeoxrProvider(baseURL, apiKey string, client *httpclient.Client) *NeoxrProvider {
	return &NeoxrProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (p *NeoxrProvider) Name() string { return "neoxr" }

// RequestURL returns the upstream URL for query.
func (p *NeoxrProvider) RequestURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("apikey", p.apiKey)
	return p.baseURL + "/google?" + params.Encode()
}

func (p *NeoxrProvider) Search(ctx context.Context, query string) (*Result, error) {
	status, body, err := p.client.Get(ctx, p.RequestURL(query))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: search API returned %d", ErrSearchFailed, status)
	}
	return parseNeoxrSearch(body)
}

func parseNeoxrSearch(body []byte) (*Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}

	doc := gjson.ParseBytes(body)
	if !doc.Get("status").Bool() {
		return &Result{Status: false}, nil
	}

	result := &Result{Status: true}
	doc.Get("data").ForEach(func(_, item gjson.Result) bool {
		hit := Hit{
			Title:   item.Get("title").String(),
			Snippet: item.Get("snippet").String(),
			Link:    item.Get("link").String(),
		}
		if hit.Link != "" || hit.Title != "" {
			result.Hits = append(result.Hits, hit)
		}
		return true
	})
	return result, nil
}

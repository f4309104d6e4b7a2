package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "ai-mood-gateway/internal/common/http"
)

func TestNeoxrProvider_Search(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantStatus bool
		wantHits   int
	}{
		{
			name:       "success",
			status:     http.StatusOK,
			body:       `{"status":true,"data":[{"title":"A","snippet":"a","link":"https://a"},{"title":"B","snippet":"b","link":"https://b"}]}`,
			wantStatus: true,
			wantHits:   2,
		},
		{
			name:       "unsuccessful status",
			status:     http.StatusOK,
			body:       `{"status":false,"msg":"limit"}`,
			wantStatus: false,
		},
		{
			name:       "missing data",
			status:     http.StatusOK,
			body:       `{"status":true}`,
			wantStatus: true,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>bad gateway</html>`,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "http error",
			status:  http.StatusServiceUnavailable,
			body:    `{}`,
			wantErr: ErrSearchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/google", r.URL.Path)
				assert.Equal(t, "harga emas", r.URL.Query().Get("q"))
				assert.Equal(t, "k", r.URL.Query().Get("apikey"))
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			p := NewNeoxrProvider(server.URL+"/api/", "k", httpclient.NewClient(time.Second))
			res, err := p.Search(context.Background(), "harga emas")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Len(t, res.Hits, tt.wantHits)
		})
	}
}

func TestNeoxrProvider_RequestURLEscapes(t *testing.T) {
	p := NewNeoxrProvider("https://api.example/api", "key", nil)
	assert.Equal(t, "https://api.example/api/google?apikey=key&q=a+%26+b", p.RequestURL("a & b"))
}

func newElasticServer(t *testing.T, status int, body string) *elasticsearch.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)
	return client
}

func TestElasticProvider_Search(t *testing.T) {
	t.Run("maps sources", func(t *testing.T) {
		client := newElasticServer(t, http.StatusOK, `{"hits":{"total":{"value":3},"hits":[
			{"_source":{"title":"Pajak","snippet":"tarif baru","link":"https://pajak.go.id"}},
			{"_source":{"title":"Tanpa link","content":"x"}},
			{"_source":{"title":"Doc","content":"isi","url":"https://intranet/doc"}}
		]}}`)

		res, err := NewElasticProvider(client, "documents", 5, time.Second).Search(context.Background(), "pajak")
		require.NoError(t, err)
		assert.True(t, res.Status)
		require.Len(t, res.Hits, 2)
		assert.Equal(t, Hit{Title: "Doc", Snippet: "isi", Link: "https://intranet/doc"}, res.Hits[1])
	})

	t.Run("index error is unsuccessful status", func(t *testing.T) {
		client := newElasticServer(t, http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`)

		res, err := NewElasticProvider(client, "missing", 5, time.Second).Search(context.Background(), "pajak")
		require.NoError(t, err)
		assert.False(t, res.Status)
	})
}

func TestElasticProvider_SearchIsBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)

	start := time.Now()
	res, err := NewElasticProvider(client, "documents", 5, 100*time.Millisecond).Search(context.Background(), "pajak")

	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.Nil(t, res)
	assert.Less(t, time.Since(start), 2*time.Second)
}

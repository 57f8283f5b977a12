package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/reputation_watch/app/reputation_watch/pkg/search"
)

func TestClientSearch(t *testing.T) {
	var got SearchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer tv-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"query":"acme","results":[{"title":"t","url":"https://a","content":"nice","score":0.9}]}`))
	}))
	defer srv.Close()

	c := NewClient("tv-key", WithEndpoint(srv.URL), WithTimeout(time.Second))
	resp, err := c.Search(context.Background(), &search.Request{Query: "acme", MaxResults: 3})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "nice", resp.Results[0].Content)

	require.Equal(t, "acme", got.Query)
	require.Equal(t, 3, got.MaxResults)
	require.Equal(t, "basic", got.SearchDepth)
	require.Equal(t, "general", got.Topic)
}

func TestClientSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient("k", WithEndpoint(srv.URL)).Search(context.Background(), &search.Request{Query: "acme"})
	require.ErrorContains(t, err, "status 429")
}

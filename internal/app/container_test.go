package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/pixa/internal/adapter"
	"github.com/mmcdole/pixa/internal/domain"
)

const oneHit = `{"total":1,"totalHits":1,"hits":[{"id":42,"type":"photo","tags":"red, fox","largeImageURL":"https://cdn/42.jpg"}]}`

func testConfig(baseURL, key string) *adapter.Config {
	cfg := adapter.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.Key = key
	cfg.Cache.Path = "" // in-memory sqlite
	cfg.Logging.File = ""
	cfg.HTTP.RateLimit = 0
	return cfg
}

func TestContainer_EndToEndSearch(t *testing.T) {
	var mu sync.Mutex
	var seen []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.URL.Query())
		mu.Unlock()
		assert.Equal(t, "/api/", r.URL.Path)
		_, _ = w.Write([]byte(oneHit))
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL, "secret-key"), adapter.NullLogger())
	require.NoError(t, err)
	defer c.Close()

	page, err := c.Repo.Search(context.Background(), "fox", domain.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(42), page.Items[0].ID)
	assert.Equal(t, "fox", page.Items[0].SearchTerm)
	assert.False(t, page.HasMore)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, "secret-key", seen[0].Get("key"))
	assert.Equal(t, "photo", seen[0].Get("image_type"))
	assert.Equal(t, "fox", seen[0].Get("q"))

	n, err := c.Store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestContainer_Unconfigured(t *testing.T) {
	c, err := New(testConfig("https://pixabay.com/", ""), adapter.NullLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.Source)
	_, err = c.Repo.Search(context.Background(), "fox", domain.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig("https://pixabay.com/", "k")
	cfg.Cache.Driver = "redis"

	_, err := New(cfg, nil)
	assert.Error(t, err)

	_, err = New(nil, nil)
	assert.Error(t, err)
}

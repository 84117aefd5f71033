package pixabay

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/httpclient"
)

const testEndpoint = "https://pixabay.com/api/"

const searchBody = `{
  "total": 4692,
  "totalHits": 500,
  "hits": [
    {
      "id": 195893,
      "pageURL": "https://pixabay.com/en/blossom-bloom-flower-195893/",
      "type": "photo",
      "tags": "blossom, bloom, flower",
      "previewURL": "https://cdn.pixabay.com/photo/2013/10/15/09/12/flower-195893_150.jpg",
      "previewWidth": 150,
      "previewHeight": 84,
      "webformatURL": "https://pixabay.com/get/35bbf209e13e39d2_640.jpg",
      "webformatWidth": 640,
      "webformatHeight": 360,
      "largeImageURL": "https://pixabay.com/get/ed6a99fd0a76647_1280.jpg",
      "imageWidth": 4000,
      "imageHeight": 2250,
      "imageSize": 4731420,
      "views": 7671,
      "downloads": 6439,
      "collections": 1200,
      "likes": 5,
      "comments": 2,
      "user_id": 48777,
      "user": "Josch13",
      "userImageURL": "https://cdn.pixabay.com/user/2013/11/05/02-10-23-764_250x250.jpg"
    },
    {"id": 73424, "type": "vector/svg", "tags": "vector, art"},
    {"id": 0, "tags": "broken"}
  ]
}`

// newMockClient wires a PixaBay client to a mock transport behind the same
// interceptor chain production uses.
func newMockClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mock := httpmock.NewMockTransport()
	hc := httpclient.New(&httpclient.Config{Transport: mock},
		httpclient.QueryParams(AuthParams("test-key", domain.ImageTypePhoto)))
	t.Cleanup(hc.Close)

	c, err := NewClient(DefaultBaseURL, hc, nil)
	require.NoError(t, err)
	return c, mock
}

func TestSearch_Success(t *testing.T) {
	c, mock := newMockClient(t)

	var got url.Values
	mock.RegisterResponder(http.MethodGet, testEndpoint, func(req *http.Request) (*http.Response, error) {
		got = req.URL.Query()
		return httpmock.NewStringResponse(http.StatusOK, searchBody), nil
	})

	res, err := c.Search(t.Context(), domain.SearchParams{Query: " yellow flowers ", Page: 2, PerPage: 20, SafeSearch: true, Order: "latest"})
	require.NoError(t, err)

	assert.Equal(t, 4692, res.Total)
	assert.Equal(t, 500, res.TotalHits)
	require.Len(t, res.Images, 2, "hits without an id are dropped")

	first := res.Images[0]
	assert.Equal(t, int64(195893), first.ID)
	assert.Equal(t, domain.ImageTypePhoto, first.Type)
	assert.Equal(t, "blossom, bloom, flower", first.Tags)
	assert.Equal(t, 4000, first.ImageWidth)
	assert.Equal(t, int64(4731420), first.ImageSize)
	assert.Equal(t, int64(48777), first.UserID)
	assert.Equal(t, "Josch13", first.User)
	assert.Equal(t, 640, first.WebformatW)
	assert.Equal(t, domain.ImageTypeVector, res.Images[1].Type)

	assert.Equal(t, "test-key", got.Get("key"))
	assert.Equal(t, "photo", got.Get("image_type"))
	assert.Equal(t, "yellow flowers", got.Get("q"))
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, "20", got.Get("per_page"))
	assert.Equal(t, "true", got.Get("safesearch"))
	assert.Equal(t, "latest", got.Get("order"))
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestSearch_ClampsParams(t *testing.T) {
	c, mock := newMockClient(t)

	var got url.Values
	mock.RegisterResponder(http.MethodGet, testEndpoint, func(req *http.Request) (*http.Response, error) {
		got = req.URL.Query()
		return httpmock.NewStringResponse(http.StatusOK, `{"total":0,"totalHits":0,"hits":[]}`), nil
	})

	long := strings.Repeat("ä", MaxQueryLength+20)
	_, err := c.Search(t.Context(), domain.SearchParams{Query: long, Page: 0, PerPage: 1000})
	require.NoError(t, err)

	assert.Equal(t, MaxQueryLength, len([]rune(got.Get("q"))))
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, "200", got.Get("per_page"))
	assert.False(t, got.Has("order"))
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"missing key", http.StatusBadRequest, "[ERROR 400] Invalid or missing API key", domain.ErrAuthFailed},
		{"bad param", http.StatusBadRequest, "[ERROR 400] \"per_page\" is out of valid range.", domain.ErrInvalidRequest},
		{"page past the end", http.StatusBadRequest, "[ERROR 400] \"page\" is out of valid range.", domain.ErrPageOutOfRange},
		{"unauthorized", http.StatusUnauthorized, "", domain.ErrAuthFailed},
		{"forbidden", http.StatusForbidden, "", domain.ErrAuthFailed},
		{"not found", http.StatusNotFound, "", domain.ErrInvalidRequest},
		{"rate limited", http.StatusTooManyRequests, "", domain.ErrRateLimited},
		{"server error", http.StatusInternalServerError, "", domain.ErrServerOffline},
		{"unavailable", http.StatusServiceUnavailable, "", domain.ErrServerOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mock := newMockClient(t)
			mock.RegisterResponder(http.MethodGet, testEndpoint, httpmock.NewStringResponder(tt.status, tt.body))

			_, err := c.Search(t.Context(), domain.SearchParams{Query: "cat"})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSearch_TransportFailure(t *testing.T) {
	c, mock := newMockClient(t)
	mock.RegisterResponder(http.MethodGet, testEndpoint, httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := c.Search(t.Context(), domain.SearchParams{Query: "cat"})
	require.ErrorIs(t, err, domain.ErrServerOffline)
	assert.True(t, domain.IsTransient(err))
}

func TestSearch_MalformedJSON(t *testing.T) {
	c, mock := newMockClient(t)
	mock.RegisterResponder(http.MethodGet, testEndpoint, httpmock.NewStringResponder(http.StatusOK, "{not json"))

	_, err := c.Search(t.Context(), domain.SearchParams{Query: "cat"})
	require.Error(t, err)
	assert.False(t, domain.IsTransient(err))
}

func TestNewClient_BaseURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{"default", "", DefaultBaseURL, false},
		{"adds trailing slash", "http://localhost:8080/proxy", "http://localhost:8080/proxy/", false},
		{"no scheme", "pixabay.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.base, httpclient.New(nil), nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.baseURL.String())
		})
	}
}

func TestAuthParams(t *testing.T) {
	p := AuthParams("k", "")
	assert.Equal(t, "k", p.Get("key"))
	assert.Equal(t, "photo", p.Get("image_type"))

	assert.Equal(t, "vector", AuthParams("k", domain.ImageTypeVector).Get("image_type"))
}

func TestClampPerPage(t *testing.T) {
	assert.Equal(t, MinPerPage, ClampPerPage(0))
	assert.Equal(t, 50, ClampPerPage(50))
	assert.Equal(t, MaxPerPage, ClampPerPage(500))
}

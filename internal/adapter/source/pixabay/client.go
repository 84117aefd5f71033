package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/httpclient"
)

const (
	// DefaultBaseURL is the PixaBay API host
	DefaultBaseURL = "https://pixabay.com/"

	searchPath = "api/"

	// MaxQueryLength is the longest q value the API accepts
	MaxQueryLength = 100

	MinPerPage = 3
	MaxPerPage = 200
)

// AuthParams returns the query parameters every request must carry
func AuthParams(key string, imageType domain.ImageType) url.Values {
	if imageType == "" {
		imageType = domain.ImageTypePhoto
	}
	return url.Values{
		"key":        {key},
		"image_type": {string(imageType)},
	}
}

// Client implements domain.ImageSource for PixaBay.
// Authentication parameters are injected by the HTTP client's interceptors.
type Client struct {
	baseURL *url.URL
	http    *httpclient.Client
	logger  *slog.Logger
}

// NewClient creates a PixaBay client bound to baseURL
func NewClient(baseURL string, hc *httpclient.Client, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}
	if hc == nil {
		hc = httpclient.New(nil)
	}
	return &Client{baseURL: u, http: hc, logger: logger}, nil
}

// Search fetches one page of results
func (c *Client) Search(ctx context.Context, params domain.SearchParams) (domain.SearchResult, error) {
	var resp SearchResponse
	if err := c.get(ctx, searchPath, searchQuery(params), &resp); err != nil {
		return domain.SearchResult{}, err
	}

	return domain.SearchResult{
		Total:     resp.Total,
		TotalHits: resp.TotalHits,
		Images:    MapImages(resp.Hits),
	}, nil
}

// searchQuery builds the request parameters, clamping values to what the
// API accepts
func searchQuery(p domain.SearchParams) url.Values {
	q := url.Values{}
	q.Set("q", TruncateQuery(p.Query))

	page := p.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(ClampPerPage(p.PerPage)))
	q.Set("safesearch", strconv.FormatBool(p.SafeSearch))
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	return q
}

// ClampPerPage bounds n to the API's accepted page sizes
func ClampPerPage(n int) int {
	return min(max(n, MinPerPage), MaxPerPage)
}

// TruncateQuery trims q and cuts it to MaxQueryLength runes
func TruncateQuery(q string) string {
	q = strings.TrimSpace(q)
	r := []rune(q)
	if len(r) > MaxQueryLength {
		return string(r[:MaxQueryLength])
	}
	return q
}

// get performs a GET against path and decodes the JSON body into out
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Error("pixabay request failed", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", domain.ErrServerOffline, err)
	}

	if err := statusError(resp.StatusCode, body); err != nil {
		c.logger.Error("pixabay request error", "status", resp.StatusCode, "body", truncateBody(body))
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// statusError maps a non-200 status to a domain error
func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(truncateBody(body))
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.ErrAuthFailed
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "key"):
		return fmt.Errorf("%w: %s", domain.ErrAuthFailed, msg)
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), `"page" is out of valid range`):
		return fmt.Errorf("%w: %s", domain.ErrPageOutOfRange, msg)
	case status >= 500:
		return fmt.Errorf("%w: status %d", domain.ErrServerOffline, status)
	case status >= 400:
		return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, msg)
	default:
		return fmt.Errorf("unexpected status code: %d", status)
	}
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}


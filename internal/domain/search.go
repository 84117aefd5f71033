package domain

// MaxAccessibleHits is the number of hits the PixaBay API serves per query
const MaxAccessibleHits = 500

// SearchParams describes one remote search page
type SearchParams struct {
	Query      string
	Page       int // 1-based
	PerPage    int
	SafeSearch bool
	Order      string // "popular" or "latest"
}

// SearchResult is one page of remote results
type SearchResult struct {
	Total     int // Total matches on the server
	TotalHits int // Matches accessible through the API
	Images    []Image
}

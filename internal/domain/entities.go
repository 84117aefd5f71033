package domain

import (
	"fmt"
	"strings"
	"time"
)

// ImageType is the PixaBay media category of an image
type ImageType string

const (
	ImageTypeAll          ImageType = "all"
	ImageTypePhoto        ImageType = "photo"
	ImageTypeIllustration ImageType = "illustration"
	ImageTypeVector       ImageType = "vector"
)

// Image represents one cached search result
type Image struct {
	ID      int64     // PixaBay image id, stable across re-insertion
	PageURL string    // PixaBay page for the image
	Type    ImageType // photo, illustration, vector
	Tags    string    // Comma separated tag list

	// Image URLs
	PreviewURL    string // 150px preview
	PreviewWidth  int
	PreviewHeight int
	WebformatURL  string // 640px web image
	WebformatW    int
	WebformatH    int
	LargeImageURL string // 1280px image

	// Original dimensions
	ImageWidth  int
	ImageHeight int
	ImageSize   int64 // Bytes

	// Counters
	Views       int
	Downloads   int
	Collections int
	Likes       int
	Comments    int

	// Author
	UserID       int64
	User         string
	UserImageURL string

	// Cache bookkeeping
	SearchTerm string    // Term this record was fetched for
	Rank       int       // Position in the remote result order for SearchTerm
	CachedAt   time.Time // When the record was written
}

// TagList returns the tags as a trimmed slice
func (i Image) TagList() []string {
	if i.Tags == "" {
		return nil
	}
	parts := strings.Split(i.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Title returns a display title derived from the first tags
func (i Image) Title() string {
	tags := i.TagList()
	switch len(tags) {
	case 0:
		return fmt.Sprintf("#%d", i.ID)
	case 1:
		return tags[0]
	default:
		return tags[0] + ", " + tags[1]
	}
}

// Resolution returns the original dimensions (e.g., "6000x4000")
func (i Image) Resolution() string {
	if i.ImageWidth == 0 || i.ImageHeight == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", i.ImageWidth, i.ImageHeight)
}

// FormattedSize returns the original file size in a human-readable format
func (i Image) FormattedSize() string {
	if i.ImageSize <= 0 {
		return ""
	}
	const (
		mb = 1024 * 1024
		kb = 1024
	)
	switch {
	case i.ImageSize >= mb:
		return fmt.Sprintf("%.1f MB", float64(i.ImageSize)/float64(mb))
	default:
		return fmt.Sprintf("%d KB", i.ImageSize/kb)
	}
}

// BestURL returns the largest available image URL
func (i Image) BestURL() string {
	switch {
	case i.LargeImageURL != "":
		return i.LargeImageURL
	case i.WebformatURL != "":
		return i.WebformatURL
	default:
		return i.PreviewURL
	}
}

// SameContent reports whether two records would render identically.
// Cache bookkeeping (CachedAt) is ignored.
func (i Image) SameContent(o Image) bool {
	a, b := i, o
	a.CachedAt, b.CachedAt = time.Time{}, time.Time{}
	return a == b
}

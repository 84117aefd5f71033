package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestImageTagList(t *testing.T) {
	t.Parallel()

	img := Image{Tags: "cat, kitten ,, pet"}
	assert.Equal(t, []string{"cat", "kitten", "pet"}, img.TagList())
	assert.Equal(t, "cat, kitten", img.Title())

	assert.Nil(t, Image{}.TagList())
	assert.Equal(t, "#42", Image{ID: 42}.Title())
}

func TestImageFormatting(t *testing.T) {
	t.Parallel()

	img := Image{ImageWidth: 6000, ImageHeight: 4000, ImageSize: 3 * 1024 * 1024}
	assert.Equal(t, "6000x4000", img.Resolution())
	assert.Equal(t, "3.0 MB", img.FormattedSize())
	assert.Equal(t, "512 KB", Image{ImageSize: 512 * 1024}.FormattedSize())
	assert.Empty(t, Image{}.Resolution())
}

func TestImageBestURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "l", Image{PreviewURL: "p", WebformatURL: "w", LargeImageURL: "l"}.BestURL())
	assert.Equal(t, "w", Image{PreviewURL: "p", WebformatURL: "w"}.BestURL())
	assert.Equal(t, "p", Image{PreviewURL: "p"}.BestURL())
}

func TestImageSameContentIgnoresCachedAt(t *testing.T) {
	t.Parallel()

	a := Image{ID: 1, Tags: "cat", CachedAt: time.Now()}
	b := a
	b.CachedAt = a.CachedAt.Add(time.Hour)
	assert.True(t, a.SameContent(b))

	b.Likes = 3
	assert.False(t, a.SameContent(b))
}

package pixabay

import (
	"strings"

	"github.com/mmcdole/pixa/internal/domain"
)

// MapImages converts API hits to domain images, skipping hits without an id
func MapImages(hits []Hit) []domain.Image {
	images := make([]domain.Image, 0, len(hits))
	for _, h := range hits {
		if h.ID == 0 {
			continue
		}
		images = append(images, mapImage(h))
	}
	return images
}

func mapImage(h Hit) domain.Image {
	return domain.Image{
		ID:            h.ID,
		PageURL:       h.PageURL,
		Type:          mapImageType(h.Type),
		Tags:          h.Tags,
		PreviewURL:    h.PreviewURL,
		PreviewWidth:  h.PreviewWidth,
		PreviewHeight: h.PreviewHeight,
		WebformatURL:  h.WebformatURL,
		WebformatW:    h.WebformatWidth,
		WebformatH:    h.WebformatHeight,
		LargeImageURL: h.LargeImageURL,
		ImageWidth:    h.ImageWidth,
		ImageHeight:   h.ImageHeight,
		ImageSize:     h.ImageSize,
		Views:         h.Views,
		Downloads:     h.Downloads,
		Collections:   h.Collections,
		Likes:         h.Likes,
		Comments:      h.Comments,
		UserID:        h.UserID,
		User:          h.User,
		UserImageURL:  h.UserImageURL,
	}
}

// mapImageType normalizes the API type; "vector/svg" and friends collapse
// to their family
func mapImageType(t string) domain.ImageType {
	t = strings.ToLower(t)
	switch {
	case strings.HasPrefix(t, "vector"):
		return domain.ImageTypeVector
	case strings.HasPrefix(t, "illustration"):
		return domain.ImageTypeIllustration
	case t == "":
		return domain.ImageTypePhoto
	default:
		return domain.ImageType(t)
	}
}

package store

import (
	"time"

	"github.com/mmcdole/pixa/internal/domain"
)

// imageRow is the persisted shape of domain.Image.
// The sqlite backend maps it to image_table; bolt stores it as JSON.
type imageRow struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	PageURL         string    `gorm:"column:pageURL" json:"pageURL"`
	Type            string    `gorm:"column:type" json:"type"`
	Tags            string    `gorm:"column:tags" json:"tags"`
	PreviewURL      string    `gorm:"column:previewURL" json:"previewURL"`
	PreviewWidth    int       `gorm:"column:previewWidth" json:"previewWidth"`
	PreviewHeight   int       `gorm:"column:previewHeight" json:"previewHeight"`
	WebformatURL    string    `gorm:"column:webformatURL" json:"webformatURL"`
	WebformatWidth  int       `gorm:"column:webformatWidth" json:"webformatWidth"`
	WebformatHeight int       `gorm:"column:webformatHeight" json:"webformatHeight"`
	LargeImageURL   string    `gorm:"column:largeImageURL" json:"largeImageURL"`
	ImageWidth      int       `gorm:"column:imageWidth" json:"imageWidth"`
	ImageHeight     int       `gorm:"column:imageHeight" json:"imageHeight"`
	ImageSize       int64     `gorm:"column:imageSize" json:"imageSize"`
	Views           int       `gorm:"column:views" json:"views"`
	Downloads       int       `gorm:"column:downloads" json:"downloads"`
	Collections     int       `gorm:"column:collections" json:"collections"`
	Likes           int       `gorm:"column:likes" json:"likes"`
	Comments        int       `gorm:"column:comments" json:"comments"`
	UserID          int64     `gorm:"column:user_id" json:"user_id"`
	User            string    `gorm:"column:user" json:"user"`
	UserImageURL    string    `gorm:"column:userImageURL" json:"userImageURL"`
	SearchTerm      string    `gorm:"column:searchTerm;index:idx_image_term_rank,priority:1" json:"searchTerm"`
	Rank            int       `gorm:"column:rank;index:idx_image_term_rank,priority:2" json:"rank"`
	CachedAt        time.Time `gorm:"column:cachedAt" json:"cachedAt"`
}

// TableName keeps the table name fixed regardless of gorm naming rules
func (imageRow) TableName() string {
	return "image_table"
}

func toRow(img domain.Image) imageRow {
	return imageRow{
		ID:              img.ID,
		PageURL:         img.PageURL,
		Type:            string(img.Type),
		Tags:            img.Tags,
		PreviewURL:      img.PreviewURL,
		PreviewWidth:    img.PreviewWidth,
		PreviewHeight:   img.PreviewHeight,
		WebformatURL:    img.WebformatURL,
		WebformatWidth:  img.WebformatW,
		WebformatHeight: img.WebformatH,
		LargeImageURL:   img.LargeImageURL,
		ImageWidth:      img.ImageWidth,
		ImageHeight:     img.ImageHeight,
		ImageSize:       img.ImageSize,
		Views:           img.Views,
		Downloads:       img.Downloads,
		Collections:     img.Collections,
		Likes:           img.Likes,
		Comments:        img.Comments,
		UserID:          img.UserID,
		User:            img.User,
		UserImageURL:    img.UserImageURL,
		SearchTerm:      img.SearchTerm,
		Rank:            img.Rank,
		CachedAt:        img.CachedAt,
	}
}

func (r imageRow) toDomain() domain.Image {
	return domain.Image{
		ID:            r.ID,
		PageURL:       r.PageURL,
		Type:          domain.ImageType(r.Type),
		Tags:          r.Tags,
		PreviewURL:    r.PreviewURL,
		PreviewWidth:  r.PreviewWidth,
		PreviewHeight: r.PreviewHeight,
		WebformatURL:  r.WebformatURL,
		WebformatW:    r.WebformatWidth,
		WebformatH:    r.WebformatHeight,
		LargeImageURL: r.LargeImageURL,
		ImageWidth:    r.ImageWidth,
		ImageHeight:   r.ImageHeight,
		ImageSize:     r.ImageSize,
		Views:         r.Views,
		Downloads:     r.Downloads,
		Collections:   r.Collections,
		Likes:         r.Likes,
		Comments:      r.Comments,
		UserID:        r.UserID,
		User:          r.User,
		UserImageURL:  r.UserImageURL,
		SearchTerm:    r.SearchTerm,
		Rank:          r.Rank,
		CachedAt:      r.CachedAt,
	}
}

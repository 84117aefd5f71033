package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/tui/styles"
)

// imageJSON is the scripted output shape of one image
type imageJSON struct {
	ID         int64  `json:"id"`
	Tags       string `json:"tags"`
	Type       string `json:"type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Likes      int    `json:"likes"`
	Downloads  int    `json:"downloads"`
	Views      int    `json:"views"`
	User       string `json:"user"`
	PageURL    string `json:"page_url"`
	PreviewURL string `json:"preview_url"`
	LargeURL   string `json:"large_url"`
	SearchTerm string `json:"search_term"`
	Rank       int    `json:"rank"`
}

// pageJSON is the scripted output shape of one page
type pageJSON struct {
	Items      []imageJSON `json:"items"`
	Cursor     int         `json:"cursor"`
	NextCursor *int        `json:"next_cursor"`
	Stale      bool        `json:"stale"`
}

func toPageJSON(p domain.Page) pageJSON {
	out := pageJSON{Items: make([]imageJSON, len(p.Items)), Cursor: p.Cursor, Stale: p.Stale}
	for i, img := range p.Items {
		out.Items[i] = imageJSON{
			ID:         img.ID,
			Tags:       img.Tags,
			Type:       string(img.Type),
			Width:      img.ImageWidth,
			Height:     img.ImageHeight,
			Likes:      img.Likes,
			Downloads:  img.Downloads,
			Views:      img.Views,
			User:       img.User,
			PageURL:    img.PageURL,
			PreviewURL: img.PreviewURL,
			LargeURL:   img.LargeImageURL,
			SearchTerm: img.SearchTerm,
			Rank:       img.Rank,
		}
	}
	if p.HasMore {
		next := p.NextCursor
		out.NextCursor = &next
	}
	return out
}

func writeJSON(w io.Writer, p domain.Page) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toPageJSON(p))
}

// writeTable renders a page as a table followed by a paging footer
func writeTable(w io.Writer, p domain.Page) error {
	if len(p.Items) == 0 {
		_, err := fmt.Fprintln(w, styles.DimStyle.Render("No images."))
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.DimStyle).
		Headers("ID", "TAGS", "SIZE", "LIKES", "USER", "URL").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeaderStyle
			}
			return styles.TableCellStyle
		})

	for _, img := range p.Items {
		t.Row(
			strconv.FormatInt(img.ID, 10),
			styles.Truncate(img.Tags, 32),
			img.Resolution(),
			styles.FormatCount(img.Likes),
			styles.Truncate(img.User, 16),
			img.BestURL(),
		)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}

	footer := fmt.Sprintf("%d-%d", p.Cursor+1, p.Cursor+len(p.Items))
	if p.HasMore {
		footer += fmt.Sprintf("  next: --cursor %d", p.NextCursor)
	}
	if p.Stale {
		footer += "  " + styles.StaleBadgeStyle.Render("offline: cached results")
	}
	_, err := fmt.Fprintln(w, styles.DimStyle.Render(footer))
	return err
}

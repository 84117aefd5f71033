package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
)

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector displays detailed metadata for the selected image
type Inspector struct {
	image      *domain.Image
	width      int
	height     int
	offset     int // scroll offset
	maxVisible int // max visible lines
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetImage sets the image to display; nil clears the panel
func (i *Inspector) SetImage(img *domain.Image) {
	if img == nil || i.image == nil || img.ID != i.image.ID {
		i.offset = 0
	}
	i.image = img
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// Reserve space for border, scroll indicators, title and blank line
	i.maxVisible = max(height-InspectorBorderHeight-InspectorScrollIndicators-2, 1)
}

// HasImage returns true if there is an image to display
func (i Inspector) HasImage() bool {
	return i.image != nil
}

// ScrollDown scrolls the body one line
func (i *Inspector) ScrollDown() {
	i.offset++
}

// ScrollUp scrolls the body back one line
func (i *Inspector) ScrollUp() {
	if i.offset > 0 {
		i.offset--
	}
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder

	// Border takes 2 chars (1 each side), leave 1 char safety margin
	contentWidth := max(i.width-3, 10)
	content := i.render(contentWidth)

	titleLine := styles.AccentStyle.Render(styles.Truncate("Info", contentWidth))

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	availableForBody := max(i.maxVisible-len(headerLines)-len(footerLines), 1)

	// Clamp body scroll offset
	maxOffset := max(len(bodyLines)-availableForBody, 0)
	offset := min(i.offset, maxOffset)
	end := min(offset+availableForBody, len(bodyLines))
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < len(bodyLines) {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if content.header != "" {
		parts = append(parts, headerLines...)
	}
	parts = append(parts, up)
	parts = append(parts, visibleBody...)
	for range availableForBody - len(visibleBody) {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if content.footer != "" {
		parts = append(parts, footerLines...)
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(i.width-frameW, 0)).
		Height(max(i.height-frameH, 0)).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) render(width int) inspectorContent {
	if i.image == nil {
		return inspectorContent{body: styles.DimStyle.Render("No image selected")}
	}
	img := *i.image
	return inspectorContent{
		header: renderImageHeader(img, width),
		body:   renderImageBody(img, width),
		footer: renderImageFooter(img, width),
	}
}

func renderImageHeader(img domain.Image, width int) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(styles.Truncate(img.Title(), width)))
	b.WriteString("\n")

	if img.User != "" {
		b.WriteString(styles.SubtitleStyle.Render(styles.Truncate("by "+img.User, width)))
		b.WriteString("\n")
	}

	// Meta line: type · resolution · size
	var meta []string
	if img.Type != "" {
		meta = append(meta, string(img.Type))
	}
	if r := img.Resolution(); r != "" {
		meta = append(meta, r)
	}
	if s := img.FormattedSize(); s != "" {
		meta = append(meta, s)
	}
	if len(meta) > 0 {
		b.WriteString(styles.DimStyle.Render(strings.Join(meta, " · ")))
		b.WriteString("\n")
	}

	likes := lipgloss.NewStyle().Foreground(styles.PixaGreen).Render("♥ " + styles.FormatCount(img.Likes))
	stats := styles.DimStyle.Render(fmt.Sprintf("  ↓ %s  👁 %s",
		styles.FormatCount(img.Downloads), styles.FormatCount(img.Views)))
	b.WriteString(likes + stats)

	return strings.TrimRight(b.String(), "\n")
}

func renderImageBody(img domain.Image, width int) string {
	bodyWidth := min(width-2, 80)

	var b strings.Builder
	if tags := img.TagList(); len(tags) > 0 {
		b.WriteString(styles.SubtitleStyle.Render(wordWrap(strings.Join(tags, " · "), bodyWidth)))
		b.WriteString("\n\n")
	}

	rows := [][2]string{
		{"ID", fmt.Sprintf("%d", img.ID)},
		{"Comments", styles.FormatCount(img.Comments)},
		{"Collections", styles.FormatCount(img.Collections)},
	}
	if img.SearchTerm != "" {
		rows = append(rows, [2]string{"Term", img.SearchTerm})
	}
	if !img.CachedAt.IsZero() {
		rows = append(rows, [2]string{"Cached", img.CachedAt.Local().Format("2006-01-02 15:04")})
	}
	for _, r := range rows {
		b.WriteString(styles.DimStyle.Render(styles.Pad(r[0], 12)))
		b.WriteString(styles.Truncate(r[1], max(width-12, 1)))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderImageFooter(img domain.Image, width int) string {
	if img.PageURL == "" && img.BestURL() == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.DimStyle.Render(strings.Repeat("─", width)))
	if img.PageURL != "" {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(styles.Truncate(img.PageURL, width)))
	}
	if u := img.BestURL(); u != "" {
		b.WriteString("\n")
		b.WriteString(styles.DimStyle.Render(styles.Truncate(u, width)))
	}
	return b.String()
}

// splitLines splits a string into lines, returning nil for empty input
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := len([]rune(word))

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}

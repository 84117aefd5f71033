package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/tui/styles"
)

// Layout constants for the image list
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// TapFunc receives the image behind a tapped row
type TapFunc func(img domain.Image) tea.Cmd

type cachedRow struct {
	width    int
	selected bool
	query    string
	text     string
}

// ImageList is a scrollable list over one snapshot of images.
// Rows are rendered on demand and cached per image ID until the
// image is inserted or changed by a later snapshot.
type ImageList struct {
	images []domain.Image
	onTap  TapFunc

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title   string
	loading bool
	spinner string
	footer  string

	rows    map[int64]cachedRow
	renders int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	matches      fuzzy.Matches // nil when no query
}

// NewImageList creates an empty list; onTap may be nil
func NewImageList(title string, onTap TapFunc) *ImageList {
	ti := textinput.New()
	ti.Placeholder = "filter tags..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle

	return &ImageList{
		title:       title,
		onTap:       onTap,
		filterInput: ti,
		rows:        make(map[int64]cachedRow),
	}
}

// SetImages replaces the snapshot and returns the patch that was applied.
// The cursor stays on the previously selected image when it survives.
func (l *ImageList) SetImages(images []domain.Image) []ListOp {
	selected, hadSelection := l.Selected()

	ops := Diff(l.images, images)
	for _, op := range ops {
		switch op.Kind {
		case OpInsert, OpChange:
			delete(l.rows, op.ID)
		case OpRemove:
			if !containsID(images, op.ID) {
				delete(l.rows, op.ID)
			}
		}
	}

	l.images = images
	l.loading = false
	if l.filterActive && l.filterQuery != "" {
		l.runFilter()
	}

	l.cursor = 0
	if hadSelection {
		if i := l.visibleIndexOf(selected.ID); i >= 0 {
			l.cursor = i
		}
	}
	l.clampCursor()
	l.ensureVisible()
	return ops
}

// Images returns the current snapshot
func (l *ImageList) Images() []domain.Image {
	return l.images
}

// ItemCount returns the number of images in the snapshot
func (l *ImageList) ItemCount() int {
	return len(l.images)
}

// VisibleCount returns the number of rows shown after filtering
func (l *ImageList) VisibleCount() int {
	if l.matches != nil {
		return len(l.matches)
	}
	return len(l.images)
}

// Row renders snapshot item i for the given width
func (l *ImageList) Row(i, width int, selected bool) string {
	if i < 0 || i >= len(l.images) {
		return ""
	}
	img := l.images[i]
	if row, ok := l.rows[img.ID]; ok && row.width == width && row.selected == selected && row.query == l.filterQuery {
		return row.text
	}

	text := l.renderRow(img, l.matchedIndexes(i), selected, width)
	l.rows[img.ID] = cachedRow{width: width, selected: selected, query: l.filterQuery, text: text}
	l.renders++
	return text
}

// Tap invokes the tap callback once with snapshot item i
func (l *ImageList) Tap(i int) tea.Cmd {
	if i < 0 || i >= len(l.images) || l.onTap == nil {
		return nil
	}
	return l.onTap(l.images[i])
}

// Selected returns the image under the cursor
func (l *ImageList) Selected() (domain.Image, bool) {
	if l.VisibleCount() == 0 || l.cursor >= l.VisibleCount() {
		return domain.Image{}, false
	}
	return l.images[l.mapIndex(l.cursor)], true
}

// SelectedIndex returns the cursor position among visible rows
func (l *ImageList) SelectedIndex() int {
	return l.cursor
}

// SetSelectedIndex moves the cursor, clamped to the visible rows
func (l *ImageList) SetSelectedIndex(idx int) {
	l.cursor = idx
	l.clampCursor()
	l.ensureVisible()
}

// NearEnd reports whether the cursor is within n rows of the last row
func (l *ImageList) NearEnd(n int) bool {
	count := l.VisibleCount()
	return count == 0 || l.cursor >= count-1-n
}

func (l *ImageList) SetLoading(loading bool) {
	l.loading = loading
}

func (l *ImageList) IsLoading() bool {
	return l.loading
}

// SetSpinner sets the frame drawn while loading
func (l *ImageList) SetSpinner(frame string) {
	l.spinner = frame
}

// SetFooter sets a short status line drawn under the rows
func (l *ImageList) SetFooter(footer string) {
	l.footer = footer
}

func (l *ImageList) SetTitle(title string) {
	l.title = title
}

func (l *ImageList) Title() string {
	return l.title
}

func (l *ImageList) SetFocused(focused bool) {
	l.focused = focused
}

func (l *ImageList) IsFocused() bool {
	return l.focused
}

func (l *ImageList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

func (l *ImageList) Width() int {
	return l.width
}

func (l *ImageList) Height() int {
	return l.height
}

// Update handles navigation, filtering and taps while focused
func (l *ImageList) Update(msg tea.Msg) tea.Cmd {
	if !l.focused {
		return nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)

	// Typing mode
	if l.filterActive && l.filterInput.Focused() {
		if ok {
			switch {
			case key.Matches(keyMsg, ListKeys.Escape):
				l.clearFilter()
				return nil
			case key.Matches(keyMsg, ListKeys.Accept):
				l.filterInput.Blur()
				return nil
			case keyMsg.String() == "backspace" && l.filterInput.Value() == "":
				l.clearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	if !ok {
		return nil
	}

	if l.filterActive {
		switch {
		case key.Matches(keyMsg, ListKeys.Escape):
			l.clearFilter()
			return nil
		case key.Matches(keyMsg, ListKeys.Filter):
			l.filterInput.Focus()
			return nil
		}
	} else if key.Matches(keyMsg, ListKeys.Filter) {
		l.ToggleFilter()
		return textinput.Blink
	}

	count := l.VisibleCount()
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, ListKeys.Down):
		l.SetSelectedIndex(l.cursor + 1)
	case key.Matches(keyMsg, ListKeys.Up):
		l.SetSelectedIndex(l.cursor - 1)
	case key.Matches(keyMsg, ListKeys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(keyMsg, ListKeys.End):
		l.SetSelectedIndex(count - 1)
	case key.Matches(keyMsg, ListKeys.HalfDown):
		l.SetSelectedIndex(l.cursor + l.maxVisible/2)
	case key.Matches(keyMsg, ListKeys.HalfUp):
		l.SetSelectedIndex(l.cursor - l.maxVisible/2)
	case key.Matches(keyMsg, ListKeys.PageDown):
		l.SetSelectedIndex(l.cursor + l.maxVisible)
	case key.Matches(keyMsg, ListKeys.PageUp):
		l.SetSelectedIndex(l.cursor - l.maxVisible)
	case key.Matches(keyMsg, ListKeys.Open):
		return l.Tap(l.mapIndex(l.cursor))
	}
	return nil
}

// View renders the bordered list
func (l *ImageList) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(l.width-frameW, 0)).
		Height(max(l.height-frameH, 0)).
		Render(l.renderContent())
}

// ToggleFilter activates the filter input
func (l *ImageList) ToggleFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *ImageList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *ImageList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *ImageList) ClearFilter() {
	l.clearFilter()
}

// SetFilter applies query as if typed into the filter bar
func (l *ImageList) SetFilter(query string) {
	l.filterActive = true
	l.filterInput.Focus()
	l.filterInput.SetValue(query)
	l.applyFilter()
	l.recalcMaxVisible()
}

func (l *ImageList) recalcMaxVisible() {
	// Interior height minus title, scroll indicators and footer
	interiorHeight := l.height - BorderHeight
	l.maxVisible = interiorHeight - ScrollIndicatorLines - 2
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *ImageList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *ImageList) clampCursor() {
	count := l.VisibleCount()
	if l.cursor >= count {
		l.cursor = count - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.offset > l.cursor {
		l.offset = l.cursor
	}
}

func (l *ImageList) clearFilter() {
	selected, ok := l.Selected()

	l.filterActive = false
	l.filterQuery = ""
	l.matches = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()

	if ok {
		l.cursor = max(l.visibleIndexOf(selected.ID), 0)
	}
	l.clampCursor()
	l.ensureVisible()
}

func (l *ImageList) applyFilter() {
	query := l.filterInput.Value()
	if query == l.filterQuery && (query == "" || l.matches != nil) {
		return
	}
	l.filterQuery = query
	l.runFilter()
	l.cursor = 0
	l.offset = 0
}

func (l *ImageList) runFilter() {
	if l.filterQuery == "" {
		l.matches = nil
		return
	}
	l.matches = fuzzy.FindFrom(strings.ToLower(l.filterQuery), tagSource(l.images))
	if l.matches == nil {
		l.matches = fuzzy.Matches{}
	}
}

// visibleIndexOf maps an image ID to its visible row, or -1
func (l *ImageList) visibleIndexOf(id int64) int {
	if l.matches != nil {
		for i, m := range l.matches {
			if l.images[m.Index].ID == id {
				return i
			}
		}
		return -1
	}
	for i, img := range l.images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

func (l *ImageList) mapIndex(i int) int {
	if l.matches != nil && i < len(l.matches) {
		return l.matches[i].Index
	}
	return i
}

func (l *ImageList) matchedIndexes(snapshotIdx int) []int {
	for _, m := range l.matches {
		if m.Index == snapshotIdx {
			return m.MatchedIndexes
		}
	}
	return nil
}

// Rendering

func (l *ImageList) renderContent() string {
	itemWidth := max(l.width-BorderWidth, 10)
	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	if l.loading && len(l.images) == 0 {
		loadingLine := styles.DimStyle.Render(l.spinner + " Loading...")
		return titleLine + "\n" + " " + "\n" + loadingLine + "\n" + " "
	}

	count := l.VisibleCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render("No images")
		if l.filterActive && l.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n" + " " + "\n" + emptyMsg + "\n" + " "
		if l.filterActive {
			content += "\n" + l.renderFilterBar(itemWidth)
		}
		return content
	}

	end := min(l.offset+l.maxVisible, count)
	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.Row(l.mapIndex(i), itemWidth, i == l.cursor))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	switch {
	case end < count:
		footer = styles.DimStyle.Render("↓ more")
	case l.loading:
		footer = styles.DimStyle.Render(l.spinner + " loading more...")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	content += "\n" + styles.DimStyle.Render(styles.Truncate(l.footer, itemWidth))
	if l.filterActive {
		content += "\n" + l.renderFilterBar(itemWidth)
	}
	return content
}

func (l *ImageList) renderRow(img domain.Image, matched []int, selected bool, width int) string {
	likesFg := styles.PixaGreen
	likes := fmt.Sprintf("♥ %-5s", styles.FormatCount(img.Likes))

	// Available space: width - likes column - spaces - margins(2)
	available := max(width-lipgloss.Width(likes)-3, 5)
	tags := styles.Truncate(img.Tags, available)

	if len(matched) == 0 {
		parts := []styles.RowPart{
			{Text: likes, Foreground: &likesFg},
			{Text: " " + tags, Foreground: nil},
		}
		return styles.RenderListRow(parts, selected, width)
	}

	parts := []styles.RowPart{
		{Text: likes, Foreground: &likesFg},
		{Text: " ", Foreground: nil},
	}
	return styles.RenderListRow(append(parts, highlightParts(tags, matched, selected)...), selected, width)
}

// highlightParts splits text into runs of matched and unmatched bytes
func highlightParts(text string, matched []int, selected bool) []styles.RowPart {
	matchSet := make(map[int]bool, len(matched))
	for _, idx := range matched {
		matchSet[idx] = true
	}

	hl := styles.PixaGreen
	if selected {
		hl = styles.White
	}

	var parts []styles.RowPart
	var run strings.Builder
	runMatch := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		part := styles.RowPart{Text: run.String()}
		if runMatch {
			part.Foreground = &hl
		}
		parts = append(parts, part)
		run.Reset()
	}

	for i, r := range text {
		if m := matchSet[i]; m != runMatch {
			flush()
			runMatch = m
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}

func (l *ImageList) renderFilterBar(width int) string {
	l.filterInput.Width = max(width-4, 1)
	bar := l.filterInput.View()
	if !l.filterInput.Focused() && l.filterQuery != "" {
		bar = styles.FilterPromptStyle.Render("/ ") + styles.MatchHighlightStyle.Render(l.filterQuery)
	}
	if l.matches != nil {
		bar += styles.DimStyle.Render(fmt.Sprintf(" %d/%d", len(l.matches), len(l.images)))
	}
	return bar
}

// tagSource adapts a snapshot to fuzzy.Source over lower-cased tags
type tagSource []domain.Image

func (s tagSource) String(i int) string { return strings.ToLower(s[i].Tags) }
func (s tagSource) Len() int            { return len(s) }

func containsID(images []domain.Image, id int64) bool {
	for _, img := range images {
		if img.ID == id {
			return true
		}
	}
	return false
}

package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/tui/components"
	"github.com/mmcdole/pixa/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateSearching
	StateHelp
	StateConfirmClear
)

// Layout constants
const (
	ChromeHeight           = 1 // footer
	InspectorColumnPercent = 40
	MinColumnWidth         = 24

	// Rows left below the cursor before the next page is requested
	prefetchRows = 3
)

// Options configures the browser
type Options struct {
	PageSize      int
	ShowInspector bool
	Logger        *slog.Logger
}

// Model is the main application model
type Model struct {
	Repo     domain.ImageRepository
	Launcher domain.Launcher
	Logger   *slog.Logger

	State  ApplicationState
	Width  int
	Height int
	Ready  bool

	List      *components.ImageList
	Search    components.SearchBar
	Inspector components.Inspector
	Spinner   spinner.Model
	Help      help.Model

	ShowInspector bool
	PageSize      int

	// Current result sequence
	Term       string
	NextCursor int
	HasMore    bool
	Stale      bool
	Loading    bool
	seq        int

	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model that starts by browsing the cache
func NewModel(repo domain.ImageRepository, launcher domain.Launcher, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = domain.DefaultPageSize
	}

	s := spinner.New()
	s.Spinner = spinner.Spinner{Frames: styles.SpinnerFrames, FPS: time.Second / 10}
	s.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	list := components.NewImageList(listTitle(""), func(img domain.Image) tea.Cmd {
		if launcher == nil {
			return nil
		}
		return OpenImageCmd(launcher, img)
	})
	list.SetFocused(true)
	list.SetLoading(true)

	return Model{
		Repo:          repo,
		Launcher:      launcher,
		Logger:        logger,
		State:         StateBrowsing,
		List:          list,
		Search:        components.NewSearchBar(),
		Inspector:     components.NewInspector(),
		Spinner:       s,
		Help:          h,
		ShowInspector: opts.ShowInspector,
		PageSize:      opts.PageSize,
		Loading:       true,
		seq:           1,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		LoadPageCmd(m.Repo, m.seq, "", domain.PageRequest{Limit: m.PageSize}, false, false),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m.List.SetSpinner(m.Spinner.View())
		return m, cmd

	case PageLoadedMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		return m.applyPage(msg)

	case SuggestionsMsg:
		if msg.Prefix == m.Search.Query() {
			m.Search.SetSuggestions(msg.Terms)
			m.updateLayout()
		}
		return m, nil

	case ImageOpenedMsg:
		return m.setStatus("Opened: "+msg.Image.Title(), false)

	case CacheClearedMsg:
		m.Term = ""
		m.List.ClearFilter()
		m.StatusMsg = "Cache cleared"
		m.StatusIsErr = false
		return m, tea.Batch(m.startLoad("", false), ClearStatusCmd(3*time.Second))

	case ErrMsg:
		if msg.Seq != 0 && msg.Seq != m.seq {
			return m, nil
		}
		if msg.Seq != 0 {
			m.Loading = false
			m.List.SetLoading(false)
		}
		m.Logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Cursor blink and other input messages
	var cmds []tea.Cmd
	if m.Search.Focused() {
		var cmd tea.Cmd
		m.Search, cmd, _ = m.Search.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.List.IsFilterTyping() {
		cmds = append(cmds, m.List.Update(msg))
	}
	return m, tea.Batch(cmds...)
}

// handleKeyMsg routes key presses by application state
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil

	case StateConfirmClear:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			return m, ClearCacheCmd(m.Repo)
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
		}
		return m, nil

	case StateSearching:
		return m.handleSearchKey(msg)
	}

	// Typing into the list filter takes every key
	if m.List.IsFilterTyping() {
		cmd := m.List.Update(msg)
		m.updateInspector()
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Search):
		return m.focusSearch()

	case key.Matches(msg, Keys.ToggleInspector):
		m.ShowInspector = !m.ShowInspector
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.ScrollInfoDown):
		m.Inspector.ScrollDown()
		return m, nil

	case key.Matches(msg, Keys.ScrollInfoUp):
		m.Inspector.ScrollUp()
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		return m, m.startLoad(m.Term, true)

	case key.Matches(msg, Keys.More):
		return m, m.loadMore()

	case key.Matches(msg, Keys.ClearCache):
		m.State = StateConfirmClear
		return m, nil
	}

	cmd := m.List.Update(msg)
	m.updateInspector()
	if m.List.NearEnd(prefetchRows) && !m.List.IsFiltering() {
		cmd = tea.Batch(cmd, m.loadMore())
	}
	return m, cmd
}

// handleSearchKey feeds the search bar and acts on its events
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		cmd   tea.Cmd
		event components.SearchEvent
	)
	m.Search, cmd, event = m.Search.Update(msg)

	switch event {
	case components.SearchSubmit:
		m.blurSearch()
		m.List.ClearFilter()
		return m, tea.Batch(cmd, m.startLoad(m.Search.Query(), false))

	case components.SearchCancel:
		m.blurSearch()
		return m, cmd

	case components.SearchChanged:
		return m, tea.Batch(cmd, SuggestCmd(m.Repo, m.Search.Query(), components.MaxSuggestions))
	}
	return m, cmd
}

func (m Model) focusSearch() (tea.Model, tea.Cmd) {
	m.State = StateSearching
	m.List.SetFocused(false)
	cmd := m.Search.Focus()
	m.updateLayout()
	return m, tea.Batch(cmd, SuggestCmd(m.Repo, m.Search.Query(), components.MaxSuggestions))
}

func (m *Model) blurSearch() {
	m.State = StateBrowsing
	m.Search.Blur()
	m.List.SetFocused(true)
	m.updateLayout()
}

// startLoad begins a new result sequence for term. Responses for earlier
// sequences are dropped. A refresh reloads everything currently listed.
func (m *Model) startLoad(term string, refresh bool) tea.Cmd {
	m.seq++
	m.Loading = true
	m.List.SetLoading(true)

	req := domain.PageRequest{Limit: m.PageSize}
	if refresh && term == m.Term {
		req.Limit = max(m.List.ItemCount(), m.PageSize)
	}
	return LoadPageCmd(m.Repo, m.seq, term, req, false, refresh)
}

// loadMore requests the page after the last one listed
func (m *Model) loadMore() tea.Cmd {
	if !m.HasMore || m.Loading {
		return nil
	}
	m.seq++
	m.Loading = true
	m.List.SetLoading(true)
	req := domain.PageRequest{Cursor: m.NextCursor, Limit: m.PageSize}
	return LoadPageCmd(m.Repo, m.seq, m.Term, req, true, false)
}

// applyPage patches the list with a loaded page
func (m Model) applyPage(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	m.Loading = false
	m.Term = msg.Term
	m.NextCursor = msg.Page.NextCursor
	m.HasMore = msg.Page.HasMore
	m.Stale = msg.Page.Stale

	images := msg.Page.Items
	if msg.Append {
		images = appendUnique(m.List.Images(), msg.Page.Items)
	}
	ops := m.List.SetImages(images)
	m.Logger.Debug("list patched", "term", msg.Term, "cursor", msg.Page.Cursor, "items", len(images), "ops", len(ops))

	m.List.SetTitle(listTitle(msg.Term))
	m.List.SetFooter(m.listFooter())
	m.updateInspector()

	switch {
	case msg.Page.Stale:
		return m.setStatus("Offline: showing cached results", false)
	case msg.Term != "" && len(images) == 0:
		return m.setStatus("No results for "+msg.Term, false)
	}
	return m, nil
}

func (m Model) setStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(3 * time.Second)
}

// updateInspector shows the image under the cursor
func (m *Model) updateInspector() {
	if img, ok := m.List.Selected(); ok {
		m.Inspector.SetImage(&img)
		return
	}
	m.Inspector.SetImage(nil)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	m.Search.SetWidth(m.Width)
	contentHeight := max(m.Height-ChromeHeight-m.Search.Height(), 3)

	listWidth := m.Width
	if m.ShowInspector {
		inspectorWidth := max(m.Width*InspectorColumnPercent/100, MinColumnWidth)
		listWidth = max(m.Width-inspectorWidth, MinColumnWidth)
		m.Inspector.SetSize(m.Width-listWidth, contentHeight)
	}
	m.List.SetSize(listWidth, contentHeight)
}

// View renders the UI
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateHelp:
		return m.renderHelp()
	case StateConfirmClear:
		return m.renderClearConfirmation()
	}

	content := m.List.View()
	if m.ShowInspector {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.Inspector.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.Search.View(),
		content,
		m.renderFooter(),
	)
}

// renderFooter renders a single-line footer: status left, hints right
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Loading:
		text := "Loading..."
		if m.Term != "" {
			text = "Searching " + m.Term + "..."
		}
		left = m.Spinner.View() + " " + styles.DimStyle.Render(text)
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else if m.Stale {
			left = styles.WarnStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}
	if m.Stale {
		left = styles.StaleBadgeStyle.Render("OFFLINE") + " " + left
	}

	right := m.Help.ShortHelpView(Keys.ShortHelp())
	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = styles.HelpKeyStyle.Render("?") + styles.HelpDescStyle.Render(" help")
		gap = max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	}
	return left + strings.Repeat(" ", gap) + right
}

// listFooter summarizes the loaded span
func (m Model) listFooter() string {
	n := m.List.ItemCount()
	if n == 0 {
		return ""
	}
	if m.HasMore {
		return fmt.Sprintf("%d images · more available", n)
	}
	return fmt.Sprintf("%d images", n)
}

func (m Model) renderHelp() string {
	m.Help.ShowAll = true
	body := styles.TitleStyle.Render("Keys") + "\n\n" +
		m.Help.FullHelpView(Keys.FullHelp()) + "\n\n" +
		styles.DimStyle.Render("Press any key to return...")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(body))
}

func (m Model) renderClearConfirmation() string {
	modal := `
        Clear cache?

  Every cached image is deleted.

      [Y] Yes      [N] No
`
	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}

func listTitle(term string) string {
	if term == "" {
		return "Cache"
	}
	return "Results: " + term
}

// appendUnique appends the images of next whose IDs are not in list
func appendUnique(list, next []domain.Image) []domain.Image {
	seen := make(map[int64]bool, len(list))
	out := make([]domain.Image, 0, len(list)+len(next))
	for _, img := range list {
		seen[img.ID] = true
		out = append(out, img)
	}
	for _, img := range next {
		if !seen[img.ID] {
			seen[img.ID] = true
			out = append(out, img)
		}
	}
	return out
}

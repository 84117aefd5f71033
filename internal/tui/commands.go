package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/pixa/internal/domain"
)

// Timeouts for async operations
const (
	pageTimeout    = 30 * time.Second
	suggestTimeout = 2 * time.Second
	clearTimeout   = 10 * time.Second
)

// Command factories for async operations

// LoadPageCmd loads one page for term. refresh forgets memoized remote
// pages first.
func LoadPageCmd(repo domain.ImageRepository, seq int, term string, req domain.PageRequest, appendPage, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()

		var (
			page domain.Page
			err  error
		)
		if refresh {
			page, err = repo.Refresh(ctx, term, req)
		} else {
			page, err = repo.Search(ctx, term, req)
		}
		if err != nil {
			return ErrMsg{Err: err, Context: loadContext(term), Seq: seq}
		}
		return PageLoadedMsg{Seq: seq, Term: term, Page: page, Append: appendPage}
	}
}

func loadContext(term string) string {
	if term == "" {
		return "loading cache"
	}
	return "searching " + term
}

// SuggestCmd ranks previously searched terms against prefix
func SuggestCmd(repo domain.ImageRepository, prefix string, n int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), suggestTimeout)
		defer cancel()

		terms, err := repo.Suggest(ctx, prefix, n)
		if err != nil {
			// Suggestions are best effort
			return SuggestionsMsg{Prefix: prefix}
		}
		return SuggestionsMsg{Prefix: prefix, Terms: terms}
	}
}

// OpenImageCmd hands the image's best URL to the launcher
func OpenImageCmd(launcher domain.Launcher, img domain.Image) tea.Cmd {
	return func() tea.Msg {
		if err := launcher.Open(img.BestURL()); err != nil {
			return ErrMsg{Err: err, Context: "opening image"}
		}
		return ImageOpenedMsg{Image: img}
	}
}

// ClearCacheCmd wipes the local cache
func ClearCacheCmd(repo domain.ImageRepository) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), clearTimeout)
		defer cancel()

		if err := repo.ClearCache(ctx); err != nil {
			return ErrMsg{Err: err, Context: "clearing cache"}
		}
		return CacheClearedMsg{}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

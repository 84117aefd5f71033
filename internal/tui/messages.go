package tui

import (
	"github.com/mmcdole/pixa/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
	Seq     int // Request sequence; 0 for requests that are never superseded
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg carries one page for the current term
type PageLoadedMsg struct {
	Seq    int
	Term   string
	Page   domain.Page
	Append bool // Extends the current list instead of replacing it
}

// SuggestionsMsg carries ranked previous terms for a prefix
type SuggestionsMsg struct {
	Prefix string
	Terms  []string
}

// ImageOpenedMsg signals that the launcher accepted an image
type ImageOpenedMsg struct {
	Image domain.Image
}

// CacheClearedMsg signals that the local cache was wiped
type CacheClearedMsg struct{}

// StatusMsg shows a transient status line
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status message
type ClearStatusMsg struct{}

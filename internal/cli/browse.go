package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/pixa/internal/tui"
)

// runBrowser starts the interactive UI, running setup first when no key
// is configured
func (st *state) runBrowser(cmd *cobra.Command, version string) error {
	st.logger.Info("starting pixa", "version", version)

	if !st.cfg.IsConfigured() {
		if err := st.runSetup(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	c, err := st.container()
	if err != nil {
		return err
	}
	defer c.Close()

	model := tui.NewModel(c.Repo, c.Launcher, tui.Options{
		PageSize:      st.cfg.Search.PageSize,
		ShowInspector: st.cfg.UI.ShowInspector,
		Logger:        c.Logger,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)

	st.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		st.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	st.logger.Info("shutting down")
	return nil
}

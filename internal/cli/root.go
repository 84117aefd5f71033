// Package cli defines the pixa command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mmcdole/pixa/internal/adapter"
	"github.com/mmcdole/pixa/internal/app"
)

// state is shared by every subcommand
type state struct {
	configFile string
	cfg        *adapter.Config
	logger     *slog.Logger
	logCloser  io.Closer

	// newContainer is swapped in tests
	newContainer func(cfg *adapter.Config, logger *slog.Logger) (*app.Container, error)
}

// NewRootCmd builds the command tree
func NewRootCmd(version string) *cobra.Command {
	st := &state{newContainer: app.New}

	cmd := &cobra.Command{
		Use:   "pixa",
		Short: "Browse PixaBay images from the terminal",
		Long: `pixa searches the PixaBay image API, caches every result locally and
lets you page through them in a terminal UI or from scripts.

Run without arguments to start the interactive browser.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return st.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			st.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.runBrowser(cmd, version)
		},
	}

	cmd.PersistentFlags().StringVar(&st.configFile, "config", "", "config file (default ~/.config/pixa/config.yaml)")

	cmd.AddCommand(newSearchCmd(st))
	cmd.AddCommand(newCacheCmd(st))
	cmd.AddCommand(newSetupCmd(st))

	return cmd
}

// load reads configuration and sets up logging
func (st *state) load() error {
	cfg, err := adapter.LoadConfig(st.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st.cfg = cfg

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, closer = adapter.NullLogger(), nil
	}
	st.logger = logger
	st.logCloser = closer
	slog.SetDefault(logger)
	return nil
}

// reload re-reads configuration after setup changed it
func (st *state) reload() error {
	cfg, err := adapter.LoadConfig(st.cfg.File())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st.cfg = cfg
	return nil
}

func (st *state) container() (*app.Container, error) {
	return st.newContainer(st.cfg, st.logger)
}

func (st *state) close() {
	if st.logCloser != nil {
		_ = st.logCloser.Close()
		st.logCloser = nil
	}
}

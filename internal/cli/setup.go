package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/pixa/internal/adapter"
	"github.com/mmcdole/pixa/internal/adapter/source/pixabay"
	"github.com/mmcdole/pixa/internal/app"
	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/tui/styles"
)

const (
	maxKeyAttempts = 3
	verifyTimeout  = 15 * time.Second

	// clearSpinnerLine clears the spinner line from the terminal
	clearSpinnerLine = "\r                                    \r"
)

func newSetupCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Enter and verify a PixaBay API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.runSetup(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// runSetup prompts for an API key until one verifies, then saves it
func (st *state) runSetup(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Welcome to pixa!")
	fmt.Fprintln(out, "Get a free API key at https://pixabay.com/api/docs/")
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)
	for attempt := 1; ; attempt++ {
		fmt.Fprint(out, "Enter your PixaBay API key: ")
		key, err := readAPIKey(in, reader)
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if key == "" {
			fmt.Fprintln(out, "API key cannot be empty. Please try again.")
		} else if err := verifyKeyWithSpinner(ctx, out, st.cfg, key, st.logger); err != nil {
			fmt.Fprintf(out, "%s %v\n", styles.ErrorStyle.Render("✗"), err)
		} else {
			if err := adapter.SaveAPIKey(st.cfg.File(), key); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Configuration saved to %s\n", styles.SuccessStyle.Render("✓"), st.cfg.File())
			return st.reload()
		}

		if attempt >= maxKeyAttempts {
			return fmt.Errorf("no valid API key after %d attempts", maxKeyAttempts)
		}
	}
}

// readAPIKey reads one key without echo when in is a terminal
func readAPIKey(in io.Reader, reader *bufio.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// verifyKey issues the smallest possible search with key
func verifyKey(ctx context.Context, cfg *adapter.Config, key string, logger *slog.Logger) error {
	probe := *cfg
	probe.API.Key = key
	probe.HTTP.RateLimit = 0

	hc := app.NewHTTPClient(&probe, logger)
	defer hc.Close()

	client, err := pixabay.NewClient(probe.API.BaseURL, hc, logger)
	if err != nil {
		return err
	}

	_, err = client.Search(ctx, domain.SearchParams{PerPage: pixabay.MinPerPage, Page: 1})
	switch {
	case errors.Is(err, domain.ErrAuthFailed):
		return fmt.Errorf("PixaBay rejected this key")
	case err != nil:
		return fmt.Errorf("could not verify key: %w", err)
	}
	return nil
}

// verifyKeyWithSpinner runs verifyKey with a visual spinner
func verifyKeyWithSpinner(ctx context.Context, out io.Writer, cfg *adapter.Config, key string, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- verifyKey(ctx, cfg, key, logger)
	}()

	frame := 0
	fmt.Fprintf(out, "\r%s Verifying key...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Fprint(out, clearSpinnerLine)
			if err == nil {
				fmt.Fprintf(out, "%s Key verified\n", styles.SuccessStyle.Render("✓"))
			}
			return err

		case <-ticker.C:
			frame++
			fmt.Fprintf(out, "\r%s Verifying key...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
		}
	}
}

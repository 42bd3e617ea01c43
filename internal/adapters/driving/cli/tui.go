package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/animerec/internal/adapters/driving/tui"
	"github.com/custodia-labs/animerec/internal/logger"
)

// ErrNotTerminal is returned when the TUI is started without a terminal.
var ErrNotTerminal = errors.New("tui requires an interactive terminal")

// isTerminal reports whether stdin and stdout are terminals.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runProgram runs a bubbletea program. Tests replace it.
var runProgram = func(app *tui.App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(app.Context()))
	_, err := p.Run()
	return err
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Controls:
  Enter    - Ask
  n        - New query
  s        - Show or hide sources
  ↑/k, ↓/j - Scroll
  Esc      - Back
  ctrl+c   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	if !isTerminal() {
		return ErrNotTerminal
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in TUI: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	svc, err := getServices()
	if err != nil {
		return err
	}
	recommender, err := svc.Recommendation(cmd.Context())
	if err != nil {
		return err
	}
	// settings are optional in the TUI
	settings, serr := svc.Settings()
	if serr != nil {
		logger.Warn("settings unavailable in TUI: %v", serr)
	}

	app, err := tui.NewApp(tui.NewPorts(recommender, settings))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/sim"
	"github.com/MRamiBalles/PetGrooming/internal/style"
	"github.com/MRamiBalles/PetGrooming/internal/tui/matchview"
)

var (
	watchMode string
	watchSeed int64
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: GroupPlay,
	Short:   "Watch a bot match in the terminal",
	Long: `Watch the scripted Groomer play a match in a live terminal view.

Keys: p pause, n single frame while paused, +/- speed, r new match, q quit.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchMode, "mode", "m", "", "Game mode (default from config)")
	watchCmd.Flags().Int64Var(&watchSeed, "seed", 1, "Random seed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runner := sim.NewRunner(cfg, events.NewEventLog(nil), logger.Discard(), watchSeed)
	m, err := matchview.New(runner, watchMode)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return fmt.Errorf("match viewer: %w", err)
	}
	if fm, ok := final.(matchview.Model); ok && fm.Result() != nil {
		r := fm.Result()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s after %.1fs (%s)\n",
			style.ArrowPrefix, style.Result(string(r.Phase)), r.Elapsed, r.Reason)
	}
	return nil
}

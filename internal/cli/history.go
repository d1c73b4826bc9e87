package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/PetGrooming/internal/infra/storage"
	"github.com/MRamiBalles/PetGrooming/internal/style"
)

var (
	historyDB    string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:     "history",
	GroupID: GroupHistory,
	Short:   "Browse finished matches",
	RunE:    requireSubcommand,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent matches",
	Long: `List finished matches, newest first.

Examples:
  petgroom history list            # Last 20 matches
  petgroom history list -n 100     # Last 100`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show one match rebuilt from its events",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDB, "db", "", "Match database path (default from config)")
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of matches to show")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func requireSubcommand(cmd *cobra.Command, args []string) error {
	return fmt.Errorf("%s requires a subcommand", cmd.CommandPath())
}

func openHistory() (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return storage.Open(dbPathOr(cfg, historyDB), false)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	matches, err := store.Matches.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, style.Dim.Render("No matches recorded yet."))
		return nil
	}

	t := style.NewTable(
		style.Column{Name: "MATCH", Width: 36},
		style.Column{Name: "ENDED", Width: 16},
		style.Column{Name: "MODE", Width: 9},
		style.Column{Name: "RESULT", Width: 10},
		style.Column{Name: "REASON", Width: 17},
		style.Column{Name: "TIME", Width: 6, Align: style.AlignRight},
		style.Column{Name: "MISCHIEF", Width: 9, Align: style.AlignRight},
	)
	for _, m := range matches {
		t.AddRow(
			m.MatchID,
			m.EndedAt.Local().Format("2006-01-02 15:04"),
			m.Mode,
			style.Result(m.Result),
			m.Reason,
			fmt.Sprintf("%.1fs", m.Duration),
			fmt.Sprintf("%d/%d", m.Mischief, m.Threshold),
		)
	}
	fmt.Fprint(out, t.Render())
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	matchID := args[0]
	rec, err := store.Matches.Get(ctx, matchID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("match %s not found", matchID)
	}
	if err != nil {
		return err
	}

	recon := storage.NewReconstructor(store.Events)
	summary, err := recon.Summarize(ctx, matchID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	timeline, err := recon.Timeline(ctx, matchID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", style.Bold.Render("Match"), rec.MatchID)
	fmt.Fprintf(out, "  %s %s by %s after %.1fs\n", rec.Mode, style.Result(rec.Result), rec.Reason, rec.Duration)
	fmt.Fprintf(out, "  mischief %d/%d, groomed %d/%d\n", rec.Mischief, rec.Threshold, rec.PetsGroomed, rec.PetCount)

	if summary != nil {
		fmt.Fprintf(out, "\n%s\n", style.Bold.Render("Summary"))
		fmt.Fprintf(out, "  captures %d  escapes %d  caged %d  tools stolen %d  knockbacks %d\n",
			summary.Captures, summary.Escapes, summary.Caged, summary.ToolsStolen, summary.Knockbacks)
		if summary.AlertAt >= 0 {
			fmt.Fprintf(out, "  alert at %.1fs\n", summary.AlertAt)
		}
		skills := make([]string, 0, len(summary.SkillUses))
		for k := range summary.SkillUses {
			skills = append(skills, k)
		}
		sort.Strings(skills)
		for _, k := range skills {
			fmt.Fprintf(out, "  %-20s %d\n", k, summary.SkillUses[k])
		}
		for _, id := range summary.TopMischiefMakers() {
			fmt.Fprintf(out, "  %s %d mischief\n", id, summary.MischiefBy[id])
		}
	}

	fmt.Fprintf(out, "\n%s\n", style.Bold.Render("Timeline"))
	if len(timeline) == 0 {
		fmt.Fprintln(out, style.Dim.Render("  no events stored"))
	}
	for _, e := range timeline {
		line := fmt.Sprintf("  %6.1fs  %s", e.MatchTime, e.Summary)
		switch e.Impact {
		case "GROOMER":
			line = style.Success.Render(line)
		case "PETS":
			line = style.Warning.Render(line)
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

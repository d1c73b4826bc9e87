package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/PetGrooming/internal/engine"
	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/infra/storage"
	"github.com/MRamiBalles/PetGrooming/internal/sim"
	"github.com/MRamiBalles/PetGrooming/internal/style"
)

var (
	simMode string
	simSeed int64
	simRuns int
	simDB   string
	simJSON bool
)

var simulateCmd = &cobra.Command{
	Use:     "simulate",
	GroupID: GroupPlay,
	Short:   "Play bot matches headless",
	Long: `Play matches with the scripted Groomer against the pet AI, as fast as
the CPU allows, and print one line per match.

Run i uses seed --seed+i, so a run is reproducible from its seed.

Examples:
  petgroom simulate                          # One match of the default mode
  petgroom simulate --mode three_pet -n 20   # Twenty three-pet matches
  petgroom simulate --db data/grooming.db    # Keep the matches in history
  petgroom simulate --json                   # Machine-readable results`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&simMode, "mode", "m", "", "Game mode (default from config)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 1, "Seed of the first run")
	simulateCmd.Flags().IntVarP(&simRuns, "runs", "n", 1, "Number of matches")
	simulateCmd.Flags().StringVar(&simDB, "db", "", "Write matches and events to this database")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "Print results as JSON")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simRuns < 1 {
		return fmt.Errorf("--runs must be at least 1, got %d", simRuns)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := commandLogger(cmd)

	var writer *storage.EventWriter
	var archiver *storage.MatchArchiver
	if simDB != "" {
		store, err := storage.Open(simDB, true)
		if err != nil {
			return err
		}
		defer store.Close()
		writer = storage.NewEventWriter(store.Events, log, 0)
		defer writer.Close()
		archiver = storage.NewMatchArchiver(store.Matches, log)
	}

	results := make([]engine.MatchResult, 0, simRuns)
	for i := 0; i < simRuns; i++ {
		el := newSimLog(writer, archiver)
		seed := simSeed + int64(i)
		res, err := sim.NewRunner(cfg, el, log, seed).Run(cmd.Context(), simMode, nil)
		if err != nil {
			return fmt.Errorf("run %d (seed %d): %w", i+1, seed, err)
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if simJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	printResults(out, results, simSeed)
	return nil
}

// newSimLog gives every run its own log so engines never share subscribers.
func newSimLog(writer *storage.EventWriter, archiver *storage.MatchArchiver) *events.EventLog {
	if writer == nil {
		return events.NewEventLog(nil)
	}
	el := events.NewEventLog(writer)
	archiver.Attach(el)
	return el
}

func printResults(out io.Writer, results []engine.MatchResult, firstSeed int64) {
	t := style.NewTable(
		style.Column{Name: "SEED", Width: 6, Align: style.AlignRight},
		style.Column{Name: "MATCH", Width: 8},
		style.Column{Name: "MODE", Width: 9},
		style.Column{Name: "RESULT", Width: 10},
		style.Column{Name: "REASON", Width: 17},
		style.Column{Name: "TIME", Width: 6, Align: style.AlignRight},
		style.Column{Name: "MISCHIEF", Width: 9, Align: style.AlignRight},
		style.Column{Name: "GROOMED", Width: 7, Align: style.AlignRight},
	)
	wins := 0
	for i, r := range results {
		if r.GroomerWon() {
			wins++
		}
		t.AddRow(
			fmt.Sprint(firstSeed+int64(i)),
			shortID(r.MatchID),
			r.Mode,
			style.Result(string(r.Phase)),
			string(r.Reason),
			fmt.Sprintf("%.1fs", r.Elapsed),
			fmt.Sprintf("%d/%d", r.Mischief, r.Threshold),
			fmt.Sprintf("%d/%d", r.PetsGroomed, r.PetCount),
		)
	}
	fmt.Fprint(out, t.Render())
	fmt.Fprintf(out, "\n%s Groomer won %d/%d (%.0f%%)\n", style.ArrowPrefix, wins, len(results),
		100*float64(wins)/float64(len(results)))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/PetGrooming/internal/network"
	"github.com/MRamiBalles/PetGrooming/internal/style"
)

var (
	agitateURL      string
	agitateClients  int
	agitateInterval time.Duration
	agitateDuration time.Duration
	agitateSeed     int64
	agitateOut      string
)

var agitateCmd = &cobra.Command{
	Use:     "agitate",
	GroupID: GroupPlay,
	Short:   "Load-test a running server with random players",
	Long: `Connect many websocket players to a running server and spam random
commands at it, then report throughput, latency and rejected commands.

Examples:
  petgroom agitate                                  # 50 clients for 60s
  petgroom agitate --clients 200 --duration 10s
  petgroom agitate --out load.json                  # Also write JSON results`,
	RunE: runAgitate,
}

func init() {
	agitateCmd.Flags().StringVar(&agitateURL, "url", "ws://localhost:8080/ws", "Server websocket URL")
	agitateCmd.Flags().IntVar(&agitateClients, "clients", 50, "Concurrent clients")
	agitateCmd.Flags().DurationVar(&agitateInterval, "interval", 100*time.Millisecond, "Command interval per client")
	agitateCmd.Flags().DurationVar(&agitateDuration, "duration", time.Minute, "Test duration")
	agitateCmd.Flags().Int64Var(&agitateSeed, "seed", 1, "Random seed")
	agitateCmd.Flags().StringVar(&agitateOut, "out", "", "Write results as JSON to this file")
	rootCmd.AddCommand(agitateCmd)
}

func runAgitate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, agitateDuration)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d clients against %s for %v\n", style.ArrowPrefix, agitateClients, agitateURL, agitateDuration)

	start := time.Now()
	stats, err := network.Agitate(ctx, network.AgitatorConfig{
		URL:      agitateURL,
		Clients:  agitateClients,
		Interval: agitateInterval,
		Stagger:  10 * time.Millisecond,
		Seed:     agitateSeed,
	}, func(s *network.AgitatorStats) {
		fmt.Fprintln(out, style.Dim.Render(fmt.Sprintf("  sent=%d recv=%d rejected=%d errors=%d",
			atomic.LoadInt64(&s.Sent), atomic.LoadInt64(&s.Received),
			atomic.LoadInt64(&s.Rejected), atomic.LoadInt64(&s.Errors))))
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	lo, mean, hi := stats.Latency()
	throughput := float64(stats.Sent) / elapsed.Seconds()
	fmt.Fprintf(out, "\n%s\n", style.Bold.Render("Results"))
	fmt.Fprintf(out, "  connected   %d/%d\n", stats.Connected, agitateClients)
	fmt.Fprintf(out, "  sent        %d (%.1f/s)\n", stats.Sent, throughput)
	fmt.Fprintf(out, "  received    %d\n", stats.Received)
	fmt.Fprintf(out, "  rejected    %d\n", stats.Rejected)
	fmt.Fprintf(out, "  errors      %d\n", stats.Errors)
	fmt.Fprintf(out, "  latency     min %v  avg %v  max %v\n", lo, mean, hi)

	rate := stats.ErrorRate()
	switch {
	case stats.Errors == 0 && stats.Connected == int64(agitateClients):
		fmt.Fprintf(out, "%s server handled the load (%.1f%% rejected)\n", style.SuccessPrefix, rate*100)
	case rate < 0.05:
		fmt.Fprintf(out, "%s some errors (%.1f%%)\n", style.WarningPrefix, rate*100)
	default:
		fmt.Fprintf(out, "%s high error rate (%.1f%%)\n", style.ErrorPrefix, rate*100)
	}

	if agitateOut == "" {
		return nil
	}
	data, err := json.MarshalIndent(struct {
		*network.AgitatorStats
		Clients    int     `json:"clients"`
		Interval   string  `json:"interval"`
		Elapsed    float64 `json:"elapsed"`
		Throughput float64 `json:"throughput_per_sec"`
	}{stats, agitateClients, agitateInterval.String(), elapsed.Seconds(), throughput}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(agitateOut, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", agitateOut, err)
	}
	fmt.Fprintf(out, "%s results saved to %s\n", style.ArrowPrefix, agitateOut)
	return nil
}

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MRamiBalles/PetGrooming/internal/events"
	"github.com/MRamiBalles/PetGrooming/internal/infra/storage"
	"github.com/MRamiBalles/PetGrooming/internal/network"
	"github.com/MRamiBalles/PetGrooming/internal/platform/logger"
	"github.com/MRamiBalles/PetGrooming/internal/sim"
)

var (
	serveAddr      string
	serveDB        string
	serveNoDB      bool
	serveMode      string
	serveSeed      int64
	serveAutopilot bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: GroupPlay,
	Short:   "Run the live match server",
	Long: `Run the live match server.

Clients connect to /ws and drive the Groomer with JSON commands
(START, MOVE, INTERACT, RELEASE, SKILL, GROOM, ABORT, AUTOPILOT). Every
frame's events and periodic snapshots are broadcast to all clients;
connect with ?role=spectator to watch only.

Finished matches and their events are written to the match database
unless --no-db is set.

Examples:
  petgroom serve                       # Listen on the configured address
  petgroom serve --autopilot           # Let the bot play, restarting forever
  petgroom serve --addr :9000 --no-db  # No history`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Match database path (default from config)")
	serveCmd.Flags().BoolVar(&serveNoDB, "no-db", false, "Do not persist matches")
	serveCmd.Flags().StringVar(&serveMode, "mode", "", "Game mode for START without a mode and for autopilot")
	serveCmd.Flags().Int64Var(&serveSeed, "seed", 1, "Random seed")
	serveCmd.Flags().BoolVar(&serveAutopilot, "autopilot", false, "Bot plays the Groomer")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	el := events.NewEventLog(nil)
	var (
		er storage.EventRepository
		mr storage.MatchRepository
	)
	if !serveNoDB {
		store, err := storage.Open(dbPathOr(cfg, serveDB), true)
		if err != nil {
			return err
		}
		defer store.Close()
		writer := storage.NewEventWriter(store.Events, log, 0)
		defer writer.Close()
		el.SetPersister(writer)
		storage.NewMatchArchiver(store.Matches, log).Attach(el)
		er, mr = store.Events, store.Matches
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	mode := serveMode
	if mode == "" {
		mode = cfg.Match.DefaultMode
	}

	runner := sim.NewRunner(cfg, el, log, serveSeed)
	hub := network.NewHub(log)
	session := network.NewSession(runner, hub, log, mode, serveAutopilot)
	srv := network.NewServer(addr, hub, session, network.NewReplayHandler(er, mr, el, log), log)

	go hub.Run(ctx)
	go session.Run(ctx, cfg.Server.TickRate.Duration)

	log.Info("petgroom %s serving %s (mode %s, autopilot %v)", Version, addr, mode, serveAutopilot)
	if err := srv.ListenAndServe(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	if n := el.PersistFailures(); n > 0 {
		log.Warn("%d events failed to persist", n)
	}
	return nil
}

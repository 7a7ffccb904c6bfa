package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/fogofwar/internal/config"
	"github.com/mitchelldurbincs/fogofwar/internal/game"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events/subscribers"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	steps := flag.Int("steps", -1, "Number of steps to simulate (-1 to use config default)")
	player := flag.Int("player", 0, "Player whose shroud is printed (-1 for the observer view)")
	plain := flag.Bool("plain", false, "Print boards without ANSI colors")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *steps == -1 {
		*steps = cfg.Simulation.Steps
	}

	setupLogging(cfg.Development.VerboseLogging)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bus := events.NewEventBus()
	if cfg.Development.LogEvents {
		eventLogger := subscribers.NewLoggerSubscriber("fog_sim_events", log.Logger, zerolog.DebugLevel)
		eventLogger.SetEventFilter([]string{
			events.TypeMatchStarted,
			events.TypeMatchPhaseChanged,
			events.TypeStepEnded,
			events.TypeExplorationShared,
			events.TypeMatchEnded,
		})
		bus.Subscribe(eventLogger)
	}

	simCfg := game.SimulationConfigFromSettings(cfg)
	simCfg.Logger = log.Logger
	simCfg.EventBus = bus

	engine, err := game.NewEngineInitializer(simCfg).Initialize(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create simulation")
	}

	render := engine.Board
	if *plain {
		render = engine.PlainBoard
	}

	fmt.Printf("Initial shroud (player %d):\n%s\n", *player, render(*player))

	interval := time.Duration(cfg.Simulation.StepIntervalMS) * time.Millisecond
	for i := 0; i < *steps; i++ {
		if err := engine.Step(ctx); err != nil {
			log.Warn().Err(err).Msg("Simulation stopped")
			break
		}

		if cfg.Simulation.PrintEvery > 0 && engine.CurrentStep()%cfg.Simulation.PrintEvery == 0 {
			fmt.Printf("Step %d (sync hash %d):\n%s\n", engine.CurrentStep(), engine.SyncHash(), render(*player))
		}

		if interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
	}

	if err := engine.End("simulation finished"); err != nil {
		log.Error().Err(err).Msg("Failed to end match")
	}
	fmt.Printf("Final shroud after %d steps:\n%s", engine.CurrentStep(), render(*player))
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/fogofwar/internal/config"
	"github.com/mitchelldurbincs/fogofwar/internal/game"
	"github.com/mitchelldurbincs/fogofwar/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	watch := flag.Bool("watch", false, "Reload the config file when it changes")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if *watch {
		config.WatchConfig(func() {
			log.Info().Msg("Config reloaded, view settings apply to the next frame")
		})
	}
	cfg := config.Get()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !cfg.Development.VerboseLogging {
		logger = logger.Level(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	simCfg := game.SimulationConfigFromSettings(cfg)
	simCfg.Logger = logger
	engine, err := game.NewEngineInitializer(simCfg).Initialize(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create simulation")
	}

	viewer := ui.NewViewer(ctx, engine, cfg.UI.View.Player, logger)

	ebiten.SetWindowSize(ui.ScreenWidth(), ui.ScreenHeight())
	ebiten.SetWindowTitle(cfg.UI.Window.Title)

	if err := ebiten.RunGame(viewer); err != nil {
		logger.Fatal().Err(err).Msg("Viewer stopped")
	}
}

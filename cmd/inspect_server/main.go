package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/mitchelldurbincs/fogofwar/internal/config"
	"github.com/mitchelldurbincs/fogofwar/internal/game"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
	"github.com/mitchelldurbincs/fogofwar/internal/inspect"
	"github.com/mitchelldurbincs/fogofwar/internal/monitoring"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	port := flag.Int("port", -1, "The server port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	steps := flag.Int("steps", -1, "Steps to simulate before pausing (-1 to use config default, 0 to run until shutdown)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	cfg := config.Get()
	serverCfg := cfg.Server.Inspect

	// Use config defaults if not overridden by flags
	if *port == -1 {
		*port = serverCfg.Port
	}
	if *host == "" {
		*host = serverCfg.Host
	}
	if *logLevel == "" {
		*logLevel = serverCfg.LogLevel
	}
	if *steps == -1 {
		*steps = cfg.Simulation.Steps
	}
	if !*enableReflection {
		*enableReflection = serverCfg.EnableReflection
	}

	setupLogging(*logLevel)

	log.Info().
		Int("port", *port).
		Str("host", *host).
		Int("steps", *steps).
		Msg("Starting shroud inspection server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the match
	simCfg := game.SimulationConfigFromSettings(cfg)
	simCfg.Logger = log.Logger
	simCfg.EventBus = events.NewEventBus()
	engine, err := game.NewEngineInitializer(simCfg).Initialize(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create simulation")
	}

	store := inspect.NewSnapshotStore()
	inspect.Attach(engine, store, log.Logger)

	monitor := monitoring.NewMonitor(monitoring.Config{
		CheckInterval: time.Duration(serverCfg.MonitorInterval) * time.Second,
	}, log.Logger)
	engine.EventBus().Subscribe(monitor)
	monitor.Start()
	defer monitor.Stop()

	// Create listener
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	// Create gRPC server with interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			loggingInterceptor,
			recoveryInterceptor,
		),
	)

	inspect.RegisterShroudInspectorServer(grpcServer, inspect.NewServer(store, log.Logger))

	// Register health service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(inspect.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	// Register reflection service for debugging
	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		// Set health status to NOT_SERVING
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(inspect.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		time.Sleep(time.Duration(serverCfg.GracefulShutdownDelay) * time.Second)

		log.Info().Msg("Gracefully stopping gRPC server")
		grpcServer.GracefulStop()
		cancel()
	}()

	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		runSimulation(ctx, engine, *steps, time.Duration(cfg.Simulation.StepIntervalMS)*time.Millisecond)
	}()

	log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve")
		}
	}()

	// Wait for shutdown
	<-ctx.Done()
	<-simDone
	if err := engine.End("server shutdown"); err != nil {
		log.Warn().Err(err).Msg("Match was not ended cleanly")
	}
	m := monitor.Metrics()
	log.Info().
		Int("steps", m.Steps).
		Int("changed_cells", m.ChangedCells).
		Dur("slowest_step", m.SlowestStep).
		Int("goroutine_peak", m.GoroutinePeak).
		Msg("Server shutdown complete")
}

// runSimulation owns the engine: every step happens on this goroutine and
// the inspection service only sees the snapshots it publishes
func runSimulation(ctx context.Context, engine *game.Engine, steps int, interval time.Duration) {
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for steps == 0 || engine.CurrentStep() < steps {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if err := engine.Step(ctx); err != nil {
			log.Warn().Err(err).Msg("Simulation stopped")
			return
		}
	}

	if err := engine.Pause("step limit reached"); err != nil {
		log.Warn().Err(err).Msg("Failed to pause match")
	}
	log.Info().Int("step", engine.CurrentStep()).Msg("Simulation paused, still serving snapshots")
}

func setupLogging(level string) {
	// Parse log level
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	// Check if we're in production
	if os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Pretty console output for development
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
}

// loggingInterceptor logs all unary RPC calls
func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	// Call the handler
	resp, err := handler(ctx, req)

	// Log the call
	code := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			code = st.Code()
		}
	}

	log.Info().
		Str("method", info.FullMethod).
		Str("code", code.String()).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("gRPC call")

	return resp, err
}

// recoveryInterceptor catches panics and returns proper gRPC errors
func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("method", info.FullMethod).
				Interface("panic", r).
				Msg("Recovered from panic in gRPC handler")
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()

	return handler(ctx, req)
}

// Package monitoring watches a running simulation from the outside: step
// throughput and shroud churn from the event bus, goroutine growth from the
// runtime.
package monitoring

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
)

// Config tunes a Monitor. Zero fields take the defaults.
type Config struct {
	CheckInterval time.Duration
	// GoroutineLimit triggers a warning when exceeded
	GoroutineLimit int
	// SlowStep triggers a warning when a single step takes longer
	SlowStep      time.Duration
	AlertCooldown time.Duration
}

func (c Config) withDefaults() Config {
	if c.CheckInterval <= 0 {
		c.CheckInterval = 30 * time.Second
	}
	if c.GoroutineLimit <= 0 {
		c.GoroutineLimit = 1000
	}
	if c.SlowStep <= 0 {
		c.SlowStep = 50 * time.Millisecond
	}
	if c.AlertCooldown <= 0 {
		c.AlertCooldown = 5 * time.Minute
	}
	return c
}

// Metrics is a point-in-time view of what the monitor has seen
type Metrics struct {
	Goroutines         int           `json:"goroutines"`
	GoroutineBaseline  int           `json:"goroutine_baseline"`
	GoroutinePeak      int           `json:"goroutine_peak"`
	Steps              int           `json:"steps"`
	LastStep           int           `json:"last_step"`
	ChangedCells       int           `json:"changed_cells"`
	LastStepDuration   time.Duration `json:"last_step_duration"`
	SlowestStep        time.Duration `json:"slowest_step"`
	StepsSinceLastTick int           `json:"steps_since_last_tick"`
}

// Monitor is an event bus subscriber that also samples the runtime on a
// ticker. It is safe for concurrent use.
type Monitor struct {
	id     string
	cfg    Config
	logger zerolog.Logger

	mu        sync.RWMutex
	m         Metrics
	window    int
	lastAlert time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMonitor creates a monitor; call Start to begin sampling
func NewMonitor(cfg Config, logger zerolog.Logger) *Monitor {
	baseline := runtime.NumGoroutine()
	return &Monitor{
		id:     "simulation_monitor",
		cfg:    cfg.withDefaults(),
		logger: logger.With().Str("component", "SimulationMonitor").Logger(),
		m: Metrics{
			Goroutines:        baseline,
			GoroutineBaseline: baseline,
			GoroutinePeak:     baseline,
		},
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (mon *Monitor) ID() string { return mon.id }

func (mon *Monitor) InterestedIn(eventType string) bool {
	return eventType == events.TypeStepEnded
}

// HandleEvent folds a finished step into the running totals
func (mon *Monitor) HandleEvent(event events.Event) {
	ended, ok := event.(*events.StepEndedEvent)
	if !ok {
		return
	}

	mon.mu.Lock()
	mon.m.Steps++
	mon.m.LastStep = ended.Step
	mon.m.ChangedCells += ended.ChangedCells
	mon.m.LastStepDuration = ended.ProcessedTime
	if ended.ProcessedTime > mon.m.SlowestStep {
		mon.m.SlowestStep = ended.ProcessedTime
	}
	mon.window++
	slow := ended.ProcessedTime > mon.cfg.SlowStep
	mon.mu.Unlock()

	if slow {
		mon.logger.Warn().
			Int("step", ended.Step).
			Dur("duration", ended.ProcessedTime).
			Dur("threshold", mon.cfg.SlowStep).
			Msg("Slow simulation step")
	}
}

// Start samples on a background goroutine until Stop
func (mon *Monitor) Start() {
	go mon.run()
	mon.logger.Info().
		Int("goroutine_baseline", mon.m.GoroutineBaseline).
		Dur("interval", mon.cfg.CheckInterval).
		Msg("Started simulation monitoring")
}

// Stop ends sampling and waits for the loop to exit. Safe to call twice.
func (mon *Monitor) Stop() {
	mon.stopOnce.Do(func() {
		close(mon.stop)
		<-mon.done
	})
}

func (mon *Monitor) run() {
	defer close(mon.done)
	ticker := time.NewTicker(mon.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mon.Sample()
		case <-mon.stop:
			return
		}
	}
}

// Sample reads the goroutine count, logs the current window and resets it
func (mon *Monitor) Sample() Metrics {
	current := runtime.NumGoroutine()

	mon.mu.Lock()
	mon.m.Goroutines = current
	if current > mon.m.GoroutinePeak {
		mon.m.GoroutinePeak = current
	}
	mon.m.StepsSinceLastTick = mon.window
	mon.window = 0

	alert := current > mon.cfg.GoroutineLimit && time.Since(mon.lastAlert) > mon.cfg.AlertCooldown
	if alert {
		mon.lastAlert = time.Now()
	}
	snap := mon.m
	mon.mu.Unlock()

	mon.logger.Debug().
		Int("goroutines", snap.Goroutines).
		Int("goroutine_peak", snap.GoroutinePeak).
		Int("steps", snap.StepsSinceLastTick).
		Int("last_step", snap.LastStep).
		Int("changed_cells", snap.ChangedCells).
		Dur("slowest_step", snap.SlowestStep).
		Msg("Simulation metrics")

	if alert {
		mon.logger.Warn().
			Int("goroutines", current).
			Int("limit", mon.cfg.GoroutineLimit).
			Int("growth", current-snap.GoroutineBaseline).
			Msg("High goroutine count detected, possible leak")
	}
	return snap
}

// Metrics returns a copy of the current totals
func (mon *Monitor) Metrics() Metrics {
	mon.mu.RLock()
	defer mon.mu.RUnlock()
	return mon.m
}

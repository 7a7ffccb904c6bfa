package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/events"
	"github.com/mitchelldurbincs/fogofwar/internal/game/mapgen"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
)

// SimulationConfig describes a generated match populated with scouts
type SimulationConfig struct {
	Width       int
	Height      int
	MaxHeight   int
	BoundsInset int

	// PlateauRatio is map cells per plateau vein
	PlateauRatio          int
	PlateauMinLength      int
	PlateauMaxLengthRatio float64

	Players        int
	UnitsPerPlayer int
	// VisionRange is in cells
	VisionRange    int
	MaxHeightDelta int
	// ShareAllied puts players on two alternating teams that share vision
	ShareAllied bool
	// Disabled starts every shroud in observer mode
	Disabled bool
	Lobby    shroud.LobbyOptions

	Rng      *rand.Rand
	GameID   string
	Logger   zerolog.Logger
	EventBus *events.EventBus
}

// EngineInitializer handles the setup of a generated match
type EngineInitializer struct {
	config SimulationConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg SimulationConfig) *EngineInitializer {
	return &EngineInitializer{
		config: cfg,
		logger: cfg.Logger.With().Str("component", "EngineInitializer").Logger(),
	}
}

// Initialize generates the map, creates the players and places their units
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled before map generation")
		return nil, ctx.Err()
	default:
	}

	ei.setupDefaults()

	generated, err := ei.generateMap()
	if err != nil {
		return nil, fmt.Errorf("map generation failed: %w", err)
	}

	engine, err := NewEngine(GameConfig{
		Map:      generated.Map,
		Lobby:    ei.config.Lobby,
		Rng:      ei.config.Rng,
		Logger:   ei.config.Logger,
		GameID:   ei.config.GameID,
		EventBus: ei.config.EventBus,
	})
	if err != nil {
		return nil, err
	}

	if err := ei.addPlayers(engine); err != nil {
		return nil, fmt.Errorf("adding players failed: %w", err)
	}
	if err := engine.Start(); err != nil {
		return nil, err
	}
	if ei.config.Disabled {
		for _, p := range engine.Players() {
			p.Shroud.SetDisabled(true)
		}
	}

	if err := ei.placeUnits(engine, generated.Starts); err != nil {
		return nil, fmt.Errorf("placing units failed: %w", err)
	}
	if err := ei.shareAlliedExploration(engine); err != nil {
		return nil, err
	}

	ei.logger.Info().
		Int("width", ei.config.Width).
		Int("height", ei.config.Height).
		Int("players", ei.config.Players).
		Int("units", len(engine.Units())).
		Msg("Engine created successfully")

	return engine, nil
}

// setupDefaults sets up default values for missing configuration
func (ei *EngineInitializer) setupDefaults() {
	if ei.config.Rng == nil {
		seed := time.Now().UnixNano()
		ei.logger.Warn().Int64("seed", seed).Msg("No seed configured, match will not replay on other peers")
		ei.config.Rng = rand.New(rand.NewSource(seed))
	}
	if ei.config.PlateauRatio <= 0 {
		ei.config.PlateauRatio = 40
	}
	if ei.config.PlateauMinLength <= 0 {
		ei.config.PlateauMinLength = 3
	}
	if ei.config.PlateauMaxLengthRatio <= 0 {
		ei.config.PlateauMaxLengthRatio = 0.25
	}
}

func (ei *EngineInitializer) generateMap() (*mapgen.Result, error) {
	c := ei.config
	mapCfg := mapgen.DefaultMapConfig(c.Width, c.Height, c.Players)
	mapCfg.MaxHeight = c.MaxHeight
	mapCfg.BoundsInset = c.BoundsInset
	mapCfg.NumPlateauVeins = (c.Width * c.Height) / c.PlateauRatio
	mapCfg.MinVeinLength = c.PlateauMinLength
	mapCfg.MaxVeinLength = int(float64(c.Width) * c.PlateauMaxLengthRatio)
	if mapCfg.MaxVeinLength < mapCfg.MinVeinLength {
		mapCfg.MaxVeinLength = mapCfg.MinVeinLength
	}

	return mapgen.NewGenerator(mapCfg, c.Rng).GenerateMap()
}

func (ei *EngineInitializer) addPlayers(e *Engine) error {
	for i := 0; i < ei.config.Players; i++ {
		team := 0
		if ei.config.ShareAllied {
			team = i%2 + 1
		}
		if _, err := e.AddPlayer(PlayerConfig{Team: team}); err != nil {
			return err
		}
	}
	return nil
}

// placeUnits puts a scout on every start cell and scatters the rest of each
// player's units around it. The last unit of a player with three or more
// units carries a shroud generator instead of a wander order.
func (ei *EngineInitializer) placeUnits(e *Engine, starts []core.Coordinate) error {
	m := e.Map()
	vision := core.Cells(ei.config.VisionRange)

	for pid, start := range starts {
		for n := 0; n < ei.config.UnitsPerPlayer; n++ {
			cell := start
			if n > 0 {
				cell = ei.scatter(m, start)
			}

			var components []Component
			if n == ei.config.UnitsPerPlayer-1 && n >= 2 {
				components = append(components, NewCreatesShroud(CreatesShroudConfig{
					Range:          vision / 2,
					MaxHeightDelta: ei.config.MaxHeightDelta,
				}))
			} else {
				components = append(components, &Wander{Interval: 1 + n%3})
			}
			components = append(components, NewRevealsShroud(RevealsShroudConfig{
				Range:                 vision,
				MaxHeightDelta:        ei.config.MaxHeightDelta,
				RevealGeneratedShroud: n == 0,
			}))

			if _, err := e.AddUnit(pid, m.CenterOfCell(cell), components...); err != nil {
				return err
			}
		}
	}
	return nil
}

// scatter picks a playable cell near start, falling back to start itself
func (ei *EngineInitializer) scatter(m *core.Map, start core.Coordinate) core.Coordinate {
	for attempt := 0; attempt < 10; attempt++ {
		c := start.Add(core.NewCoordinate(ei.config.Rng.Intn(7)-3, ei.config.Rng.Intn(7)-3))
		if m.ContainsCell(c) {
			return c
		}
	}
	return start
}

func (ei *EngineInitializer) shareAlliedExploration(e *Engine) error {
	players := e.Players()
	for _, a := range players {
		for _, b := range players {
			if a.ID == b.ID || a.RelationshipWith(b) != RelationshipAlly {
				continue
			}
			if err := e.ShareExploration(a.ID, b.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

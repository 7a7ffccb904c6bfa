package game

import (
	"math/rand"

	"github.com/mitchelldurbincs/fogofwar/internal/config"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
)

// Vision defaults
func VisionRange() int {
	return config.Get().Game.Shroud.VisionRange
}

func MaxHeightDelta() int {
	return config.Get().Game.Shroud.MaxHeightDelta
}

// LobbyOptions returns the shroud lobby options from the loaded configuration
func LobbyOptions() shroud.LobbyOptions {
	s := config.Get().Game.Shroud
	return shroud.LobbyOptions{
		FogEnabled:  s.FogEnabled,
		ExploredMap: s.ExploreMap,
	}
}

// SimulationConfigFromSettings builds a match description from the loaded
// configuration. A zero seed keeps the initializer's time-based RNG.
func SimulationConfigFromSettings(c *config.Config) SimulationConfig {
	sc := SimulationConfig{
		Width:                 c.Game.Map.Width,
		Height:                c.Game.Map.Height,
		MaxHeight:             c.Game.Map.MaxHeight,
		BoundsInset:           c.Game.Map.BoundsInset,
		PlateauRatio:          c.Game.Map.Plateaus.Ratio,
		PlateauMinLength:      c.Game.Map.Plateaus.MinLength,
		PlateauMaxLengthRatio: c.Game.Map.Plateaus.MaxLengthRatio,
		Players:               c.Simulation.Players,
		UnitsPerPlayer:        c.Simulation.UnitsPerPlayer,
		VisionRange:           c.Game.Shroud.VisionRange,
		MaxHeightDelta:        c.Game.Shroud.MaxHeightDelta,
		ShareAllied:           c.Game.Shroud.ShareAllied,
		Disabled:              c.Game.Shroud.Disabled,
		Lobby: shroud.LobbyOptions{
			FogEnabled:  c.Game.Shroud.FogEnabled,
			ExploredMap: c.Game.Shroud.ExploreMap,
		},
	}
	if c.Simulation.Seed != 0 {
		sc.Rng = rand.New(rand.NewSource(c.Simulation.Seed))
	}
	return sc
}

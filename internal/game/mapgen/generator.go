package mapgen

import (
	"math/rand"

	"github.com/mitchelldurbincs/fogofwar/internal/common"
	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// MapConfig holds configuration for terrain generation
type MapConfig struct {
	Width       int
	Height      int
	MaxHeight   int
	BoundsInset int
	PlayerCount int

	NumPlateauVeins int
	MinVeinLength   int
	MaxVeinLength   int
	MinStartSpacing int
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(w, h, players int) MapConfig {
	return MapConfig{
		Width:           w,
		Height:          h,
		MaxHeight:       3,
		BoundsInset:     1,
		PlayerCount:     players,
		NumPlateauVeins: (w * h) / 40,
		MinVeinLength:   3,
		MaxVeinLength:   w / 4,
		MinStartSpacing: 5,
	}
}

// Generator builds terrain with a deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new map generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// Result is a generated map plus one start cell per player
type Result struct {
	Map    *core.Map
	Starts []core.Coordinate
}

// GenerateMap raises plateau veins, fixes the playable bounds and picks
// spaced start locations inside them
func (g *Generator) GenerateMap() (*Result, error) {
	heights := make([]int, g.config.Width*g.config.Height)
	g.placePlateaus(heights)

	inset := g.config.BoundsInset
	m, err := core.NewMap(g.config.Width, g.config.Height,
		core.WithHeights(heights, g.config.MaxHeight),
		core.WithBounds(core.Rect{
			X: inset,
			Y: inset,
			W: g.config.Width - 2*inset,
			H: g.config.Height - 2*inset,
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Result{Map: m, Starts: g.placeStarts(m)}, nil
}

// placePlateaus walks random veins, raising every cell on the path one level
func (g *Generator) placePlateaus(heights []int) {
	w, h := g.config.Width, g.config.Height
	if g.config.MaxHeight == 0 || g.config.MaxVeinLength < g.config.MinVeinLength {
		return
	}

	for vein := 0; vein < g.config.NumPlateauVeins; vein++ {
		x, y := g.rng.Intn(w), g.rng.Intn(h)
		length := g.config.MinVeinLength + g.rng.Intn(g.config.MaxVeinLength-g.config.MinVeinLength+1)

		for step := 0; step < length; step++ {
			idx := y*w + x
			if heights[idx] < g.config.MaxHeight {
				heights[idx]++
			}

			switch g.rng.Intn(4) {
			case 0:
				y--
			case 1:
				x++
			case 2:
				y++
			case 3:
				x--
			}
			if x < 0 || x >= w || y < 0 || y >= h {
				break
			}
		}
	}
}

// placeStarts picks one cell per player inside the bounds, keeping the
// configured Manhattan spacing when possible
func (g *Generator) placeStarts(m *core.Map) []core.Coordinate {
	starts := make([]core.Coordinate, 0, g.config.PlayerCount)
	b := m.Bounds

	for pid := 0; pid < g.config.PlayerCount; pid++ {
		var chosen core.Coordinate
		found := false

		for attempt := 0; attempt < b.W*b.H && !found; attempt++ {
			c := core.NewCoordinate(b.X+g.rng.Intn(b.W), b.Y+g.rng.Intn(b.H))
			if !m.ContainsCell(c) || !g.spacedFrom(c, starts) {
				continue
			}
			chosen, found = c, true
		}

		// Fallback: first playable cell not already used
		for y := b.Y; y < b.Y+b.H && !found; y++ {
			for x := b.X; x < b.X+b.W && !found; x++ {
				c := core.NewCoordinate(x, y)
				if m.ContainsCell(c) && !contains(starts, c) {
					chosen, found = c, true
				}
			}
		}

		if !found {
			panic("Unable to place start location - no valid cells")
		}
		starts = append(starts, chosen)
	}

	return starts
}

func (g *Generator) spacedFrom(c core.Coordinate, existing []core.Coordinate) bool {
	for _, other := range existing {
		if common.ManhattanDistance(c, other) < g.config.MinStartSpacing {
			return false
		}
	}
	return true
}

func contains(cells []core.Coordinate, c core.Coordinate) bool {
	for _, other := range cells {
		if other == c {
			return true
		}
	}
	return false
}

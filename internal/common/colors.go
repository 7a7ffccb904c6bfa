package common

import (
	"image/color"
)

// PlayerColors defines the color scheme for each player
var PlayerColors = map[int]color.Color{
	0: color.RGBA{200, 50, 50, 255},  // Red
	1: color.RGBA{50, 100, 200, 255}, // Blue
	2: color.RGBA{50, 200, 50, 255},  // Green
	3: color.RGBA{200, 200, 50, 255}, // Yellow
	4: color.RGBA{160, 60, 200, 255}, // Purple
	5: color.RGBA{60, 200, 200, 255}, // Cyan
}

// UI colors
var (
	BackgroundColor = color.RGBA{50, 50, 50, 255}
	GridLineColor   = color.RGBA{30, 30, 30, 255}
	NeutralColor    = color.RGBA{120, 120, 120, 255}
	HeightHueShift  = 25
)

// PlayerColor returns the color of a player, gray for unknown IDs
func PlayerColor(playerID int) color.Color {
	if c, ok := PlayerColors[playerID]; ok {
		return c
	}
	return NeutralColor
}

// RGBA converts a configured [r g b a] or [r g b] slice into a color.
// Channels are clamped to 0..255 and a missing alpha is opaque.
func RGBA(channels []int) color.RGBA {
	get := func(i, fallback int) uint8 {
		if i >= len(channels) {
			return uint8(fallback)
		}
		return uint8(clamp(channels[i], 0, 255))
	}
	return color.RGBA{R: get(0, 0), G: get(1, 0), B: get(2, 0), A: get(3, 255)}
}

// TerrainColor lightens base by HeightHueShift per terrain height level
func TerrainColor(base color.RGBA, height int) color.RGBA {
	shift := height * HeightHueShift
	return color.RGBA{
		R: uint8(clamp(int(base.R)+shift, 0, 255)),
		G: uint8(clamp(int(base.G)+shift, 0, 255)),
		B: uint8(clamp(int(base.B)+shift, 0, 255)),
		A: base.A,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

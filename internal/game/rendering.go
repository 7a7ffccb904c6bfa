package game

import (
	"strings"

	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
)

// This file contains the ASCII shroud rendering for the game engine.

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var playerColors = []string{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorCyan}

const (
	ShroudSymbol  = " "
	FogSymbol     = "~"
	FogHighSymbol = "^"
	GroundSymbol  = "·"
	PlayerSymbols = "ABCDEFGH"
)

// Board returns a colored rendering of the playable area as seen by
// playerID. A negative playerID renders the observer view.
func (e *Engine) Board(playerID int) string {
	return e.renderBoard(playerID, true)
}

// PlainBoard is Board without ANSI colors
func (e *Engine) PlainBoard(playerID int) string {
	return e.renderBoard(playerID, false)
}

func (e *Engine) renderBoard(playerID int, colored bool) string {
	var viewer *shroud.Shroud
	if playerID >= 0 && playerID < len(e.players) {
		viewer = e.players[playerID].Shroud
	}

	b := e.m.Bounds
	occupant := e.visibleOccupants(viewer)

	var sb strings.Builder
	sb.Grow((b.W*12 + 8) * (b.H + 3))

	sb.WriteString("   ")
	for u := b.X; u < b.X+b.W; u++ {
		sb.WriteString(core.IntToStringFixedWidth(u%100, 2))
	}
	sb.WriteString("\n")

	for v := b.Y; v < b.Y+b.H; v++ {
		sb.WriteString(core.IntToStringFixedWidth(v, 2))
		sb.WriteString(" ")
		for u := b.X; u < b.X+b.W; u++ {
			color, symbol := e.cellDisplay(viewer, core.NewPPos(u, v), occupant)
			sb.WriteString(" ")
			if colored {
				sb.WriteString(color)
				sb.WriteString(symbol)
				sb.WriteString(ColorReset)
			} else {
				sb.WriteString(symbol)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(GroundSymbol)
	sb.WriteString("=ground 1-9=height " + FogSymbol + "=fog " + FogHighSymbol + "=fogged high ground blank=shroud A-H=units\n")
	return sb.String()
}

// visibleOccupants maps each projected cell to the lowest-ID unit the viewer
// can see there
func (e *Engine) visibleOccupants(viewer *shroud.Shroud) map[core.PPos]*Unit {
	occupant := make(map[core.PPos]*Unit, len(e.units))
	for _, u := range e.units {
		p := e.m.ProjectedCellCovering(u.Pos)
		if _, taken := occupant[p]; taken {
			continue
		}
		if viewer != nil && u.Owner.ID != viewer.PlayerID() && !viewer.IsVisibleAt(u.Pos) {
			continue
		}
		occupant[p] = u
	}
	return occupant
}

func (e *Engine) cellDisplay(viewer *shroud.Shroud, p core.PPos, occupant map[core.PPos]*Unit) (string, string) {
	if viewer != nil && !viewer.IsExplored(p) {
		return ColorGray, ShroudSymbol
	}

	terrain := GroundSymbol
	if h := e.m.ProjectedHeight(p); h > 0 {
		terrain = core.IntToStringFixedWidth(h%10, 1)
	}

	if viewer != nil && !viewer.IsVisible(p) {
		if terrain == GroundSymbol {
			return ColorGray, FogSymbol
		}
		return ColorGray, FogHighSymbol
	}

	if u, ok := occupant[p]; ok {
		return getPlayerColor(u.Owner.ID), string(PlayerSymbols[u.Owner.ID%len(PlayerSymbols)])
	}
	return ColorWhite, terrain
}

// getPlayerColor returns the color for the given player ID
func getPlayerColor(playerID int) string {
	if playerID < 0 || playerID >= len(playerColors) {
		return ColorWhite
	}
	return playerColors[playerID]
}

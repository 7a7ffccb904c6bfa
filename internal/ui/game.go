package ui

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/fogofwar/internal/common"
	"github.com/mitchelldurbincs/fogofwar/internal/config"
	"github.com/mitchelldurbincs/fogofwar/internal/game"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
	"github.com/mitchelldurbincs/fogofwar/internal/game/states"
	"github.com/mitchelldurbincs/fogofwar/internal/ui/input"
	"github.com/mitchelldurbincs/fogofwar/internal/ui/renderer"
)

const hudHeight = 48

// UI configuration functions
func ScreenWidth() int {
	return config.Get().UI.Window.Width
}

func ScreenHeight() int {
	return config.Get().UI.Window.Height
}

func CellSize() int {
	return config.Get().UI.View.CellSize
}

func StepInterval() int {
	return config.Get().UI.View.StepInterval
}

// Viewer is the ebiten game that steps a match and draws one player's shroud
type Viewer struct {
	ctx      context.Context
	engine   *game.Engine
	renderer *renderer.ShroudRenderer
	input    *input.Handler
	logger   zerolog.Logger

	// playerID is the viewed player, -1 for the observer view
	playerID  int
	stepTimer int
}

// NewViewer creates a viewer over a started engine. Steps fail once ctx is
// done, which stops the ebiten loop.
func NewViewer(ctx context.Context, engine *game.Engine, playerID int, logger zerolog.Logger) *Viewer {
	colors := config.Get().UI.Colors
	palette := renderer.Palette{
		Terrain: common.RGBA(colors.Terrain[:]),
		Unit:    common.RGBA(colors.Unit[:]),
		Fog:     common.RGBA(colors.Fog[:]),
		Shroud:  common.RGBA(colors.Shroud[:]),
	}

	return &Viewer{
		ctx:      ctx,
		engine:   engine,
		renderer: renderer.NewShroudRenderer(CellSize(), 0, hudHeight, palette, basicfont.Face7x13),
		input:    input.NewHandler(),
		logger:   logger.With().Str("component", "Viewer").Logger(),
		playerID: playerID,
	}
}

// Update proceeds the simulation and applies keyboard commands.
func (v *Viewer) Update() error {
	v.input.Update()
	for _, cmd := range v.input.Commands() {
		v.apply(cmd)
	}

	if v.engine.Phase() != states.PhaseRunning {
		return nil
	}
	v.stepTimer++
	if v.stepTimer < StepInterval() {
		return nil
	}
	v.stepTimer = 0
	return v.step()
}

func (v *Viewer) step() error {
	if err := v.engine.Step(v.ctx); err != nil {
		v.logger.Error().Err(err).Msg("Step failed")
		return err
	}
	return nil
}

func (v *Viewer) apply(cmd input.Command) {
	switch cmd {
	case input.CommandNextView:
		v.playerID = input.NextView(v.playerID, len(v.engine.Players()))
		v.logger.Debug().Int("player_id", v.playerID).Msg("Switched view")

	case input.CommandTogglePause:
		var err error
		if v.engine.Phase() == states.PhasePaused {
			err = v.engine.Resume("viewer")
		} else {
			err = v.engine.Pause("viewer")
		}
		if err != nil {
			v.logger.Warn().Err(err).Msg("Pause toggle rejected")
		}

	case input.CommandSingleStep:
		if v.engine.Phase() != states.PhasePaused {
			return
		}
		// Run exactly one step, then go back to paused
		if err := v.engine.Resume("single step"); err != nil {
			v.logger.Warn().Err(err).Msg("Single step rejected")
			return
		}
		if err := v.step(); err != nil {
			return
		}
		if err := v.engine.Pause("single step"); err != nil {
			v.logger.Warn().Err(err).Msg("Failed to pause after single step")
		}

	case input.CommandToggleDisabled:
		if s := v.viewer(); s != nil {
			s.SetDisabled(!s.Disabled())
		}
	}
}

// viewer returns the shroud being drawn, nil for the observer view
func (v *Viewer) viewer() *shroud.Shroud {
	p, err := v.engine.Player(v.playerID)
	if err != nil {
		return nil
	}
	return p.Shroud
}

// Draw renders the viewed shroud and the HUD.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(common.BackgroundColor)

	viewer := v.viewer()
	v.renderer.Draw(screen, v.engine, viewer)

	view := "observer"
	if viewer != nil {
		view = fmt.Sprintf("player %d", v.playerID)
		if viewer.Disabled() {
			view += " (disabled)"
		}
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Step: %d  %s  View: %s", v.engine.CurrentStep(), v.engine.Phase(), view), 5, 5)

	hover := "Tab view  Space pause  . step  D disable"
	x, y := v.input.Cursor()
	if p, ok := v.renderer.CellAt(v.engine.Map(), x, y); ok {
		hover = fmt.Sprintf("Cell %s  height %d", p, v.engine.Map().ProjectedHeight(p))
		if viewer != nil {
			visible, passive, generated := viewer.Counters(p)
			hover += fmt.Sprintf("  %s  vis=%d passive=%d gen=%d", viewer.GetVisibility(p), visible, passive, generated)
		}
	}
	ebitenutil.DebugPrintAt(screen, hover, 5, 25)
}

// Layout defines the Ebitengine screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return ScreenWidth(), ScreenHeight()
}

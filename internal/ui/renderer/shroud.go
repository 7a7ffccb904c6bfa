package renderer

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/fogofwar/internal/common"
	"github.com/mitchelldurbincs/fogofwar/internal/game"
	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
	"github.com/mitchelldurbincs/fogofwar/internal/game/shroud"
)

// Overlay is what the viewer draws on top of a cell's terrain
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayFog
	OverlayShroud
)

// OverlayFor classifies a projected cell for drawing. A nil viewer is the
// observer and sees everything.
func OverlayFor(viewer *shroud.Shroud, p core.PPos) Overlay {
	switch {
	case viewer == nil:
		return OverlayNone
	case !viewer.IsExplored(p):
		return OverlayShroud
	case !viewer.IsVisible(p):
		return OverlayFog
	default:
		return OverlayNone
	}
}

// Palette holds the colors used to draw the shroud
type Palette struct {
	Terrain color.RGBA
	Unit    color.RGBA
	Fog     color.RGBA
	Shroud  color.RGBA
}

// ShroudRenderer draws the playable area of a map as one player sees it
type ShroudRenderer struct {
	cellSize    int
	offsetX     int
	offsetY     int
	palette     Palette
	defaultFont font.Face
}

// NewShroudRenderer returns a renderer ready to use. The board is drawn with
// its top-left playable cell at (offsetX, offsetY).
func NewShroudRenderer(cellSize, offsetX, offsetY int, palette Palette, f font.Face) *ShroudRenderer {
	return &ShroudRenderer{
		cellSize:    cellSize,
		offsetX:     offsetX,
		offsetY:     offsetY,
		palette:     palette,
		defaultFont: f,
	}
}

// CellAt converts screen pixels to the projected cell drawn there
func (sr *ShroudRenderer) CellAt(m *core.Map, x, y int) (core.PPos, bool) {
	if x < sr.offsetX || y < sr.offsetY {
		return core.PPos{}, false
	}
	p := core.NewPPos(m.Bounds.X+(x-sr.offsetX)/sr.cellSize, m.Bounds.Y+(y-sr.offsetY)/sr.cellSize)
	return p, m.Contains(p)
}

// Draw renders terrain, visible units and the fog/shroud overlay.
// viewer may be nil for the observer view.
func (sr *ShroudRenderer) Draw(screen *ebiten.Image, e *game.Engine, viewer *shroud.Shroud) {
	m := e.Map()
	size := float32(sr.cellSize)

	for p := range m.ProjectedCells() {
		x, y := sr.origin(m, p)

		terrain := common.TerrainColor(sr.palette.Terrain, m.ProjectedHeight(p))
		vector.DrawFilledRect(screen, x, y, size, size, terrain, false)
		vector.StrokeRect(screen, x, y, size, size, 1, common.GridLineColor, false)
	}

	for _, u := range e.Units() {
		p := m.ProjectedCellCovering(u.Pos)
		if !m.Contains(p) || OverlayFor(viewer, p) != OverlayNone {
			continue
		}
		x, y := sr.origin(m, p)
		inset := size / 4
		vector.DrawFilledRect(screen, x+inset, y+inset, size-2*inset, size-2*inset, common.PlayerColor(u.Owner.ID), false)
	}

	for p := range m.ProjectedCells() {
		var overlay color.RGBA
		switch OverlayFor(viewer, p) {
		case OverlayFog:
			overlay = sr.palette.Fog
		case OverlayShroud:
			overlay = sr.palette.Shroud
		default:
			continue
		}
		x, y := sr.origin(m, p)
		vector.DrawFilledRect(screen, x, y, size, size, overlay, false)
	}

	if viewer != nil && sr.defaultFont != nil {
		sr.drawHeights(screen, m, viewer)
	}
}

// drawHeights labels explored high ground so cliffs stay readable under fog
func (sr *ShroudRenderer) drawHeights(screen *ebiten.Image, m *core.Map, viewer *shroud.Shroud) {
	for p := range m.ProjectedCells() {
		h := m.ProjectedHeight(p)
		if h == 0 || OverlayFor(viewer, p) == OverlayShroud {
			continue
		}
		label := core.IntToStringFixedWidth(h, 1)
		b := text.BoundString(sr.defaultFont, label)
		x, y := sr.origin(m, p)
		tx := int(x) + (sr.cellSize-b.Dx())/2
		ty := int(y) + (sr.cellSize+b.Dy())/2
		text.Draw(screen, label, sr.defaultFont, tx, ty, sr.palette.Unit)
	}
}

func (sr *ShroudRenderer) origin(m *core.Map, p core.PPos) (float32, float32) {
	return float32(sr.offsetX + (p.U-m.Bounds.X)*sr.cellSize),
		float32(sr.offsetY + (p.V-m.Bounds.Y)*sr.cellSize)
}

package game

import (
	"github.com/mitchelldurbincs/fogofwar/internal/game/core"
)

// Wander moves its unit one cell in a random direction every few steps,
// staying on playable cells. It draws from the engine RNG so replays with
// the same seed move identically.
type Wander struct {
	Interval int

	wait int
}

var wanderDirections = []core.Coordinate{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

func (w *Wander) AddedToWorld(e *Engine, u *Unit)     { w.wait = w.Interval }
func (w *Wander) RemovedFromWorld(e *Engine, u *Unit) {}

func (w *Wander) Tick(e *Engine, u *Unit) {
	if w.wait > 0 {
		w.wait--
		return
	}
	w.wait = w.Interval

	from := e.m.CellContaining(u.Pos)
	to := from.Add(wanderDirections[e.rng.Intn(len(wanderDirections))])
	if !e.m.ContainsCell(to) {
		return
	}
	u.Pos = e.m.CenterOfCell(to)
}

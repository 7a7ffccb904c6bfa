package game

import "sort"

// Phase defines execution ordering within a single step.
type Phase int

const (
	PhaseUpdate     Phase = iota // 0: unit components
	PhasePostUpdate              // 1: shroud resolution
)

func (p Phase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	default:
		return "unknown"
	}
}

// System is implemented by everything the engine drives once per step.
type System interface {
	Phase() Phase
	Update(step int)
}

// Runner executes systems in phase order each step. Systems sharing a phase
// keep their registration order.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 4),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(step int) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(step)
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}

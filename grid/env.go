package grid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrWorldConfig marks an inconsistent or malformed world configuration
	ErrWorldConfig = errors.New("invalid world configuration")
	// ErrOutOfBounds marks a cell outside of the grid
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrOverfull is returned when the grid has fewer free cells than requested
	ErrOverfull = errors.New("not enough free cells")
)

// DefaultReward is the reward for reaching a target in unweighted worlds
const DefaultReward = 100.0

// Target is a stationary cell to be captured by the agents
type Target struct {
	Position
	// Value of the target, 1 unless the world is value weighted
	Value float64
}

// World holds the geometry of the grid. It is read-only once training starts
// and is shared by all learners and strategies.
type World struct {
	Width  int
	Height int
	// Reward for reaching a target in an unweighted world
	Reward float64
	// StepPenalty is charged for every non-target move and every uncaptured target
	StepPenalty float64
	// ValueWeighted switches the global reward to the captured value percentage
	ValueWeighted bool
	Targets       []Target
	// Walls are recorded but do not block moves
	Walls []Position
	// Agents are the initial cells of the agents, indexed by agent id
	Agents []Position
}

type Option func(*World)

func WithReward(reward float64) Option {
	return func(w *World) {
		w.Reward = reward
	}
}

func WithStepPenalty(penalty float64) Option {
	return func(w *World) {
		w.StepPenalty = penalty
	}
}

func WithValueWeighted(weighted bool) Option {
	return func(w *World) {
		w.ValueWeighted = weighted
	}
}

// NewWorld creates an empty world. Cells are addressed as x + Height*y, which
// is only a bijection onto [0, Width*Height) for square grids.
func NewWorld(width, height int, opts ...Option) (*World, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d must be positive", ErrWorldConfig, width, height)
	}
	if width != height {
		return nil, fmt.Errorf("%w: grid must be square, got %dx%d", ErrWorldConfig, width, height)
	}
	w := &World{
		Width:  width,
		Height: height,
		Reward: DefaultReward,
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

func (w *World) NumStates() int {
	return w.Width * w.Height
}

func (w *World) InBounds(p Position) bool {
	return p.X >= 0 && p.X < w.Width && p.Y >= 0 && p.Y < w.Height
}

// State encodes a cell as a discrete state. Panics when p is outside the grid.
func (w *World) State(p Position) int {
	if !w.InBounds(p) {
		panic(fmt.Sprintf("grid: state of %s outside %dx%d grid", p, w.Width, w.Height))
	}
	return p.X + w.Height*p.Y
}

// Decode is the inverse of State
func (w *World) Decode(state int) Position {
	if state < 0 || state >= w.NumStates() {
		panic(fmt.Sprintf("grid: state %d out of range [0, %d)", state, w.NumStates()))
	}
	return Position{X: state % w.Height, Y: state / w.Height}
}

// Step applies action a to an agent standing at p. A move leaving the grid
// keeps the agent in place. The caller writes the new location back.
func (w *World) Step(p Position, a Action) (float64, Position) {
	next := p.Move(a)
	if !w.InBounds(next) {
		next = p
	}
	if t, ok := w.TargetAt(next); ok {
		if w.ValueWeighted {
			return w.Targets[t].Value, next
		}
		return w.Reward, next
	}
	if w.StepPenalty == 0 {
		return 0, next
	}
	return -w.StepPenalty, next
}

// TargetAt returns the index of the target placed on p
func (w *World) TargetAt(p Position) (int, bool) {
	for i, t := range w.Targets {
		if t.Position == p {
			return i, true
		}
	}
	return -1, false
}

func (w *World) agentAt(p Position) bool {
	for _, a := range w.Agents {
		if a == p {
			return true
		}
	}
	return false
}

// Captures counts the agents standing on each target
func (w *World) Captures(locations []Position) []int {
	counts := make([]int, len(w.Targets))
	for _, loc := range locations {
		if t, ok := w.TargetAt(loc); ok {
			counts[t]++
		}
	}
	return counts
}

// GlobalReward is the team reward for the given agent locations
func (w *World) GlobalReward(locations []Position) float64 {
	return w.RewardFromCounts(w.Captures(locations))
}

// RewardFromCounts evaluates the global reward from per-target occupant
// counts. Every counterfactual reward goes through this function as well.
func (w *World) RewardFromCounts(counts []int) float64 {
	if len(counts) != len(w.Targets) {
		panic(fmt.Sprintf("grid: %d capture counts for %d targets", len(counts), len(w.Targets)))
	}
	if len(w.Targets) == 0 {
		return 0
	}
	if w.ValueWeighted {
		total := w.TotalValue()
		if total <= 0 {
			return 0
		}
		captured := make([]float64, 0, len(counts))
		for t, c := range counts {
			if c > 0 {
				captured = append(captured, w.Targets[t].Value)
			}
		}
		return 100 * floats.Sum(captured) / total
	}
	reward := 0.0
	for _, c := range counts {
		if c > 0 {
			reward += w.Reward
		} else {
			reward -= w.StepPenalty
		}
	}
	return reward
}

// TotalValue is the sum of all target values
func (w *World) TotalValue() float64 {
	return floats.Sum(w.Values())
}

// Values returns the target values in target order
func (w *World) Values() []float64 {
	values := make([]float64, len(w.Targets))
	for i, t := range w.Targets {
		values[i] = t.Value
	}
	return values
}

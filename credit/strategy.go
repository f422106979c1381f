// Package credit turns the team reward of a timestep into one training signal
// per agent.
package credit

import (
	"fmt"

	"github.com/zerbeln/GridWorld/grid"
)

// Snapshot is the post-move view of one timestep
type Snapshot struct {
	World     *grid.World
	Locations []grid.Position
	// Prev and Curr are the discrete states before and after the move
	Prev  []int
	Curr  []int
	Local []float64
}

// Strategy computes per-agent feedback from the global reward
type Strategy interface {
	Kind() Kind
	Feedback(global float64, snap *Snapshot) []float64
	// Reset restores per-run mutable state
	Reset()
}

// Params tune the strategies that need more than the world
type Params struct {
	// CFLDistance is the Manhattan radius of the distance counterfactual
	CFLDistance int
	// ShapingDiscount is the gamma of the potential shaping term
	ShapingDiscount float64
	// PotentialDrift is the rate of the potential update rule, 0 keeps fields fixed
	PotentialDrift float64
	// Seed of the random potential fields
	Seed uint64
}

func DefaultParams() Params {
	return Params{
		CFLDistance:     4,
		ShapingDiscount: 0.1,
	}
}

// New builds the strategy for kind over the initial geometry of world
func New(kind Kind, world *grid.World, params Params) (Strategy, error) {
	switch {
	case kind == Local:
		return &LocalFeedback{}, nil
	case kind == Global:
		return &GlobalFeedback{}, nil
	case kind == Difference:
		return &DifferenceFeedback{}, nil
	case kind.IsCFL():
		return NewCounterfactual(kind, world, params)
	case kind.IsPBRS():
		return NewPotentialShaping(kind, world, params)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, kind)
}

// LocalFeedback hands every agent its own transition reward
type LocalFeedback struct{}

var _ Strategy = &LocalFeedback{}

func (l *LocalFeedback) Kind() Kind { return Local }

func (l *LocalFeedback) Feedback(_ float64, snap *Snapshot) []float64 {
	out := make([]float64, len(snap.Local))
	copy(out, snap.Local)
	return out
}

func (l *LocalFeedback) Reset() {}

// GlobalFeedback hands every agent the team reward
type GlobalFeedback struct{}

var _ Strategy = &GlobalFeedback{}

func (g *GlobalFeedback) Kind() Kind { return Global }

func (g *GlobalFeedback) Feedback(global float64, snap *Snapshot) []float64 {
	out := make([]float64, len(snap.Locations))
	for i := range out {
		out[i] = global
	}
	return out
}

func (g *GlobalFeedback) Reset() {}

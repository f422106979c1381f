package grid

import (
	"fmt"

	"golang.org/x/exp/rand"
)

const maxTargetValue = 10

// AddTarget places a target with the given value on p
func (w *World) AddTarget(p Position, value float64) error {
	if !w.InBounds(p) {
		return fmt.Errorf("%w: target %s", ErrOutOfBounds, p)
	}
	if _, ok := w.TargetAt(p); ok {
		return fmt.Errorf("%w: duplicate target at %s", ErrWorldConfig, p)
	}
	if w.agentAt(p) {
		return fmt.Errorf("%w: target at %s overlaps an agent", ErrWorldConfig, p)
	}
	w.Targets = append(w.Targets, Target{Position: p, Value: value})
	return nil
}

// AddAgent registers the initial cell of the next agent
func (w *World) AddAgent(p Position) error {
	if !w.InBounds(p) {
		return fmt.Errorf("%w: agent %s", ErrOutOfBounds, p)
	}
	if _, ok := w.TargetAt(p); ok {
		return fmt.Errorf("%w: agent at %s starts on a target", ErrWorldConfig, p)
	}
	if w.agentAt(p) {
		return fmt.Errorf("%w: agent at %s starts on another agent", ErrWorldConfig, p)
	}
	w.Agents = append(w.Agents, p)
	return nil
}

// Populate places nTargets targets and then nAgents agents on random free
// cells, resampling until a cell is free.
func (w *World) Populate(nAgents, nTargets int, rng *rand.Rand) error {
	if nAgents < 0 || nTargets < 0 {
		return fmt.Errorf("%w: negative agent or target count", ErrWorldConfig)
	}
	used := len(w.Agents) + len(w.Targets)
	if used+nAgents+nTargets > w.NumStates() {
		return fmt.Errorf("%w: %d agents and %d targets on %d cells", ErrOverfull, nAgents, nTargets, w.NumStates()-used)
	}
	for i := 0; i < nTargets; i++ {
		if err := w.AddTarget(w.randomFreeCell(rng), 1); err != nil {
			return err
		}
	}
	for i := 0; i < nAgents; i++ {
		if err := w.AddAgent(w.randomFreeCell(rng)); err != nil {
			return err
		}
	}
	return nil
}

// PopulateValues draws an integer value in [1, 10] for every target
func (w *World) PopulateValues(rng *rand.Rand) {
	for i := range w.Targets {
		w.Targets[i].Value = float64(1 + rng.Intn(maxTargetValue))
	}
}

func (w *World) randomFreeCell(rng *rand.Rand) Position {
	for {
		p := Position{X: rng.Intn(w.Width), Y: rng.Intn(w.Height)}
		if _, ok := w.TargetAt(p); ok {
			continue
		}
		if w.agentAt(p) {
			continue
		}
		return p
	}
}

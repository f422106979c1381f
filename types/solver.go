package types

import (
	"context"
	"fmt"

	"github.com/zerbeln/GridWorld/grid"
	"github.com/zerbeln/GridWorld/policies"
)

// Solution is the move list of a single agent and the local reward of its last move
type Solution struct {
	Start   grid.Position
	Target  grid.Position
	Moves   []grid.Action
	Reward  float64
	Reached bool
}

func singleAgent(w *grid.World) error {
	if len(w.Agents) != 1 || len(w.Targets) == 0 {
		return fmt.Errorf("%w: need one agent and at least one target, got %d and %d",
			grid.ErrWorldConfig, len(w.Agents), len(w.Targets))
	}
	return nil
}

// SolveManually walks the only agent to the first target along x, then y
func SolveManually(w *grid.World) (*Solution, error) {
	if err := singleAgent(w); err != nil {
		return nil, err
	}
	target := w.Targets[0].Position
	sol := &Solution{Start: w.Agents[0], Target: target}
	p := sol.Start
	for p != target {
		var a grid.Action
		switch {
		case p.X < target.X:
			a = grid.Right
		case p.X > target.X:
			a = grid.Left
		case p.Y < target.Y:
			a = grid.Up
		default:
			a = grid.Down
		}
		sol.Reward, p = w.Step(p, a)
		sol.Moves = append(sol.Moves, a)
	}
	sol.Reached = true
	return sol, nil
}

// SingleResult is the outcome of TrainSingle
type SingleResult struct {
	Solution
	// EpochSteps is the number of steps taken in every training epoch
	EpochSteps []int
	Learner    *policies.QLearner
}

// TrainSingle trains the only agent on its local reward, ending an epoch as
// soon as a positive reward is collected, then rolls the greedy policy out.
func TrainSingle(ctx context.Context, w *grid.World, config policies.QLearnerConfig, epochs, steps int, seed uint64) (*SingleResult, error) {
	if err := singleAgent(w); err != nil {
		return nil, err
	}
	l := policies.NewQLearner(w.Agents[0], w.NumStates(), config, seed)
	res := &SingleResult{
		Solution:   Solution{Start: w.Agents[0], Target: w.Targets[0].Position},
		EpochSteps: make([]int, epochs),
		Learner:    l,
	}
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.ResetEpisode()
		for step := 0; step < steps; step++ {
			reward := l.Act(w, false)
			l.Update(reward)
			res.EpochSteps[epoch] = step + 1
			if reward > 0 {
				break
			}
		}
	}

	l.ResetEpisode()
	for step := 0; step < steps; step++ {
		state := w.State(l.Location)
		a := l.GreedyAction(state)
		res.Reward, l.Location = w.Step(l.Location, a)
		res.Moves = append(res.Moves, a)
		if res.Reward > 0 {
			res.Reached = true
			res.Target = l.Location
			break
		}
	}
	return res, nil
}

package credit

import (
	"fmt"
	"sort"

	"github.com/zerbeln/GridWorld/grid"
	"gonum.org/v1/gonum/stat"
)

// Counterfactual replaces "agent i does not exist" with a fixed per-agent
// assignment of targets. Captures by other agents only enter agent i's
// baseline on the targets of its own assignment row.
type Counterfactual struct {
	kind       Kind
	assignment [][]bool
}

var _ Strategy = &Counterfactual{}

func NewCounterfactual(kind Kind, world *grid.World, params Params) (*Counterfactual, error) {
	assignment, err := BuildAssignment(kind, world, params)
	if err != nil {
		return nil, err
	}
	return &Counterfactual{kind: kind, assignment: assignment}, nil
}

// BuildAssignment computes the agent x target matrix from the initial
// geometry. A row left without any target is filled with ones.
func BuildAssignment(kind Kind, world *grid.World, params Params) ([][]bool, error) {
	var rows [][]bool
	switch kind {
	case CFLDistance:
		rows = distanceAssignment(world, params.CFLDistance)
	case CFLSplit:
		rows = splitAssignment(world)
	case CFLAssign:
		rows = oneToOneAssignment(world)
	case CFLValue:
		rows = valueAssignment(world)
	default:
		return nil, fmt.Errorf("%w: %s is not a counterfactual strategy", ErrUnknownStrategy, kind)
	}
	for _, row := range rows {
		fillEmpty(row)
	}
	return rows, nil
}

func newRows(world *grid.World) [][]bool {
	rows := make([][]bool, len(world.Agents))
	for i := range rows {
		rows[i] = make([]bool, len(world.Targets))
	}
	return rows
}

func distanceAssignment(world *grid.World, radius int) [][]bool {
	rows := newRows(world)
	for i, agent := range world.Agents {
		for t, target := range world.Targets {
			rows[i][t] = agent.Distance(target.Position) < radius
		}
	}
	return rows
}

// splitAssignment gives each agent the nearer half of the targets, rounding up
func splitAssignment(world *grid.World) [][]bool {
	rows := newRows(world)
	half := (len(world.Targets) + 1) / 2
	for i, agent := range world.Agents {
		order := make([]int, len(world.Targets))
		for t := range order {
			order[t] = t
		}
		sort.SliceStable(order, func(a, b int) bool {
			return agent.Distance(world.Targets[order[a]].Position) < agent.Distance(world.Targets[order[b]].Position)
		})
		for _, t := range order[:half] {
			rows[i][t] = true
		}
	}
	return rows
}

func oneToOneAssignment(world *grid.World) [][]bool {
	rows := newRows(world)
	for i := range rows {
		if i < len(world.Targets) {
			rows[i][i] = true
		}
	}
	return rows
}

// valueAssignment marks the targets worth at least the mean target value
func valueAssignment(world *grid.World) [][]bool {
	rows := newRows(world)
	if len(world.Targets) == 0 {
		return rows
	}
	mean := stat.Mean(world.Values(), nil)
	for i := range rows {
		for t, target := range world.Targets {
			rows[i][t] = target.Value >= mean
		}
	}
	return rows
}

func fillEmpty(row []bool) {
	for _, v := range row {
		if v {
			return
		}
	}
	for t := range row {
		row[t] = true
	}
}

func (c *Counterfactual) Kind() Kind { return c.kind }

// Assignment returns a copy of the assignment matrix
func (c *Counterfactual) Assignment() [][]bool {
	out := make([][]bool, len(c.assignment))
	for i, row := range c.assignment {
		out[i] = append([]bool(nil), row...)
	}
	return out
}

func (c *Counterfactual) Feedback(global float64, snap *Snapshot) []float64 {
	world := snap.World
	if len(snap.Locations) != len(c.assignment) {
		panic(fmt.Sprintf("credit: %d locations for %d assignment rows", len(snap.Locations), len(c.assignment)))
	}
	targets := make([]int, len(snap.Locations))
	for j, loc := range snap.Locations {
		if t, ok := world.TargetAt(loc); ok {
			targets[j] = t
		} else {
			targets[j] = -1
		}
	}

	out := make([]float64, len(snap.Locations))
	counts := make([]int, len(world.Targets))
	for i, row := range c.assignment {
		for t := range counts {
			counts[t] = 0
		}
		for j, t := range targets {
			if j == i || t < 0 || !row[t] {
				continue
			}
			counts[t]++
		}
		out[i] = global - world.RewardFromCounts(counts)
	}
	return out
}

func (c *Counterfactual) Reset() {}

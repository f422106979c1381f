package credit

import (
	"fmt"
	"math"

	"github.com/zerbeln/GridWorld/grid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// PotentialField holds one potential per discrete state and the seed copy it
// was built from
type PotentialField struct {
	potentials []float64
	seed       []float64
}

func NewPotentialField(seed []float64) *PotentialField {
	p := &PotentialField{
		potentials: make([]float64, len(seed)),
		seed:       append([]float64(nil), seed...),
	}
	copy(p.potentials, seed)
	return p
}

func (p *PotentialField) At(state int) float64 {
	return p.potentials[state]
}

// Delta is the shaping term gamma*phi(cur) - phi(prev)
func (p *PotentialField) Delta(prev, cur int, gamma float64) float64 {
	return gamma*p.potentials[cur] - p.potentials[prev]
}

// Update accumulates rate*reward into the potential of state
func (p *PotentialField) Update(state int, reward, rate float64) {
	p.potentials[state] += rate * reward
}

// Reset restores the seed potentials
func (p *PotentialField) Reset() {
	copy(p.potentials, p.seed)
}

func (p *PotentialField) Potentials() []float64 {
	return append([]float64(nil), p.potentials...)
}

// ProximityPotentials is minus the distance to the nearest target
func ProximityPotentials(world *grid.World) []float64 {
	out := make([]float64, world.NumStates())
	if len(world.Targets) == 0 {
		return out
	}
	for s := range out {
		p := world.Decode(s)
		nearest := math.MaxInt
		for _, t := range world.Targets {
			if d := p.Distance(t.Position); d < nearest {
				nearest = d
			}
		}
		out[s] = -float64(nearest)
	}
	return out
}

// ValueWeightedPotentials is minus the value weighted mean distance to the targets
func ValueWeightedPotentials(world *grid.World) []float64 {
	values := world.Values()
	total := floats.Sum(values)
	if total <= 0 {
		return ProximityPotentials(world)
	}
	out := make([]float64, world.NumStates())
	distances := make([]float64, len(world.Targets))
	for s := range out {
		p := world.Decode(s)
		for t, target := range world.Targets {
			distances[t] = float64(p.Distance(target.Position))
		}
		out[s] = -floats.Dot(values, distances) / total
	}
	return out
}

// AssignedTarget is target k for agent k. Agents beyond the target count
// take the target nearest to their start.
func AssignedTarget(world *grid.World, agent int) int {
	if agent < len(world.Targets) {
		return agent
	}
	start := world.Agents[agent]
	best, bestDist := 0, math.MaxInt
	for t, target := range world.Targets {
		if d := start.Distance(target.Position); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// AssignedPotentials is minus the distance to the agent's assigned target
func AssignedPotentials(world *grid.World, agent int) []float64 {
	out := make([]float64, world.NumStates())
	if len(world.Targets) == 0 {
		return out
	}
	target := world.Targets[AssignedTarget(world, agent)].Position
	for s := range out {
		out[s] = -float64(world.Decode(s).Distance(target))
	}
	return out
}

// RandomPotentials draws every potential from a standard normal
func RandomPotentials(nStates int, seed uint64) []float64 {
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	out := make([]float64, nStates)
	for s := range out {
		out[s] = normal.Rand()
	}
	return out
}

// PotentialShaping adds gamma*phi(s') - phi(s) of each agent's own field to
// the global reward
type PotentialShaping struct {
	kind     Kind
	fields   []*PotentialField
	discount float64
	drift    float64
}

var _ Strategy = &PotentialShaping{}

func NewPotentialShaping(kind Kind, world *grid.World, params Params) (*PotentialShaping, error) {
	fields := make([]*PotentialField, len(world.Agents))
	for i := range fields {
		var seed []float64
		switch kind {
		case PBRSExploration:
			seed = RandomPotentials(world.NumStates(), params.Seed+uint64(i))
		case PBRSTargetProximity:
			seed = ProximityPotentials(world)
		case PBRSTargetAgent:
			seed = AssignedPotentials(world, i)
		case PBRSCustom:
			seed = ValueWeightedPotentials(world)
		default:
			return nil, fmt.Errorf("%w: %s is not a shaping strategy", ErrUnknownStrategy, kind)
		}
		fields[i] = NewPotentialField(seed)
	}
	return &PotentialShaping{
		kind:     kind,
		fields:   fields,
		discount: params.ShapingDiscount,
		drift:    params.PotentialDrift,
	}, nil
}

func (s *PotentialShaping) Kind() Kind { return s.kind }

func (s *PotentialShaping) Fields() []*PotentialField {
	return s.fields
}

func (s *PotentialShaping) Feedback(global float64, snap *Snapshot) []float64 {
	out := make([]float64, len(s.fields))
	for i, field := range s.fields {
		out[i] = global + field.Delta(snap.Prev[i], snap.Curr[i], s.discount)
		if s.drift > 0 {
			field.Update(snap.Curr[i], global, s.drift)
		}
	}
	return out
}

func (s *PotentialShaping) Reset() {
	for _, f := range s.fields {
		f.Reset()
	}
}

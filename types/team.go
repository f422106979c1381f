package types

import (
	"github.com/zerbeln/GridWorld/credit"
	"github.com/zerbeln/GridWorld/grid"
	"github.com/zerbeln/GridWorld/policies"
)

const (
	runSeedStride = 1000
	strategySalt  = 0x9e3779b97f4a7c15
)

// LearnerSeed is the seed of agent's random source in a run
func LearnerSeed(seed uint64, run, agent int) uint64 {
	return seed + uint64(run)*runSeedStride + uint64(agent)
}

// StrategySeed seeds the random state of a run's strategy. The salt keeps it
// away from the learner seeds of the run.
func StrategySeed(seed uint64, run int) uint64 {
	return LearnerSeed(seed, run, 0) ^ strategySalt
}

// Team is the set of learners of one run, in agent index order
type Team struct {
	World    *grid.World
	Learners []*policies.QLearner

	locations []grid.Position
	prev      []int
	curr      []int
	local     []float64
}

func NewTeam(world *grid.World, config policies.QLearnerConfig, seed uint64, run int) *Team {
	n := len(world.Agents)
	t := &Team{
		World:     world,
		Learners:  make([]*policies.QLearner, n),
		locations: make([]grid.Position, n),
		prev:      make([]int, n),
		curr:      make([]int, n),
		local:     make([]float64, n),
	}
	for i, start := range world.Agents {
		t.Learners[i] = policies.NewQLearner(start, world.NumStates(), config, LearnerSeed(seed, run, i))
	}
	return t
}

func (t *Team) ResetValueTables() {
	for _, l := range t.Learners {
		l.ResetValueTable()
	}
}

func (t *Team) ResetEpisode() {
	for _, l := range t.Learners {
		l.ResetEpisode()
	}
}

// Locations returns the current cells of the learners. The slice is reused.
func (t *Team) Locations() []grid.Position {
	for i, l := range t.Learners {
		t.locations[i] = l.Location
	}
	return t.locations
}

// TrainEpisode runs steps exploring timesteps. Local learners get their
// feedback from a one agent snapshot right after their move, every other
// strategy sees the whole team once everybody moved.
func (t *Team) TrainEpisode(strategy credit.Strategy, steps int) {
	deferred := strategy.Kind().Deferred()
	for step := 0; step < steps; step++ {
		for i, l := range t.Learners {
			t.prev[i] = t.World.State(l.Location)
			t.local[i] = l.Act(t.World, false)
			t.curr[i] = t.World.State(l.Location)
			if !deferred {
				t.locations[i] = l.Location
				feedback := strategy.Feedback(t.local[i], &credit.Snapshot{
					World:     t.World,
					Locations: t.locations[i : i+1],
					Prev:      t.prev[i : i+1],
					Curr:      t.curr[i : i+1],
					Local:     t.local[i : i+1],
				})
				l.Update(feedback[0])
			}
		}
		if !deferred {
			continue
		}
		locations := t.Locations()
		global := t.World.GlobalReward(locations)
		feedback := strategy.Feedback(global, &credit.Snapshot{
			World:     t.World,
			Locations: locations,
			Prev:      t.prev,
			Curr:      t.curr,
			Local:     t.local,
		})
		for i, l := range t.Learners {
			l.Update(feedback[i])
		}
	}
}

// Evaluate resets the team and runs steps greedy timesteps without updates.
// Returns the global reward and the local rewards of the final timestep.
func (t *Team) Evaluate(steps int) (float64, []float64) {
	t.ResetEpisode()
	local := make([]float64, len(t.Learners))
	for step := 0; step < steps; step++ {
		for i, l := range t.Learners {
			local[i] = l.Act(t.World, true)
		}
	}
	return t.World.GlobalReward(t.Locations()), local
}

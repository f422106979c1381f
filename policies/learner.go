package policies

import (
	"github.com/zerbeln/GridWorld/grid"
	"golang.org/x/exp/rand"
)

// QLearnerConfig holds the hyper parameters of a tabular Q-learner
type QLearnerConfig struct {
	// Discount factor of future value
	Discount float64
	// Alpha is the learning rate
	Alpha float64
	// Epsilon is the probability of taking the greedy action. With
	// ConventionalEpsilon set it is the probability of exploring instead.
	Epsilon float64
	// WithStay adds the Stay action
	WithStay            bool
	ConventionalEpsilon bool
}

func DefaultQLearnerConfig() QLearnerConfig {
	return QLearnerConfig{
		Discount: 0.9,
		Alpha:    0.1,
		Epsilon:  0.1,
	}
}

// QLearner is one agent of the team. It owns its location and value table;
// the world only computes transitions.
type QLearner struct {
	Location grid.Position

	initial  grid.Position
	actions  []grid.Action
	discount float64
	alpha    float64
	epsilon  float64
	// explore with probability epsilon when set
	conventional bool
	qTable       *QTable
	rand         *rand.Rand

	prevState  int
	curState   int
	lastAction grid.Action
	valid      bool
}

func NewQLearner(initial grid.Position, nStates int, config QLearnerConfig, seed uint64) *QLearner {
	actions := grid.Actions(config.WithStay)
	return &QLearner{
		Location:     initial,
		initial:      initial,
		actions:      actions,
		discount:     config.Discount,
		alpha:        config.Alpha,
		epsilon:      config.Epsilon,
		conventional: config.ConventionalEpsilon,
		qTable:       NewQTable(nStates, len(actions)),
		rand:         rand.New(rand.NewSource(seed)),
	}
}

func (l *QLearner) Initial() grid.Position {
	return l.initial
}

func (l *QLearner) Actions() []grid.Action {
	return l.actions
}

func (l *QLearner) Table() *QTable {
	return l.qTable
}

func (l *QLearner) StateValues() []float64 {
	return l.qTable.StateValues()
}

// EGreedyAction takes the greedy action when the draw falls below epsilon and
// a uniformly random action otherwise. ConventionalEpsilon swaps the branches.
func (l *QLearner) EGreedyAction(state int) grid.Action {
	greedy := l.rand.Float64() < l.epsilon
	if l.conventional {
		greedy = !greedy
	}
	if greedy {
		return l.GreedyAction(state)
	}
	return l.actions[l.rand.Intn(len(l.actions))]
}

func (l *QLearner) GreedyAction(state int) grid.Action {
	return l.actions[l.qTable.ArgMax(state)]
}

// Observe records the transition that the next Update learns from
func (l *QLearner) Observe(prev int, action grid.Action, cur int) {
	l.prevState = prev
	l.lastAction = action
	l.curState = cur
	l.valid = true
}

// Act picks an action from the current location, steps the world, moves the
// learner and records the transition. Returns the local reward.
func (l *QLearner) Act(w *grid.World, greedy bool) float64 {
	state := w.State(l.Location)
	var action grid.Action
	if greedy {
		action = l.GreedyAction(state)
	} else {
		action = l.EGreedyAction(state)
	}
	reward, next := w.Step(l.Location, action)
	l.Location = next
	l.Observe(state, action, w.State(next))
	return reward
}

// Update applies the temporal difference rule to the last observed transition
func (l *QLearner) Update(reward float64) {
	if !l.valid {
		panic("policies: update without an observed transition")
	}
	a := l.actionIndex(l.lastAction)
	cur := l.qTable.Get(l.prevState, a)
	_, next := l.qTable.Max(l.curState)
	l.qTable.Set(l.prevState, a, cur+l.alpha*(reward+l.discount*next-cur))
}

func (l *QLearner) actionIndex(a grid.Action) int {
	for i, action := range l.actions {
		if action == a {
			return i
		}
	}
	return int(a)
}

// ResetEpisode moves the learner back to its initial cell. The value table is kept.
func (l *QLearner) ResetEpisode() {
	l.Location = l.initial
	l.prevState = 0
	l.curState = 0
	l.lastAction = grid.Up
	l.valid = false
}

func (l *QLearner) ResetValueTable() {
	l.qTable.Reset()
}

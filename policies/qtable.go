package policies

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"
)

// QTable is a dense nStates x nActions value table
type QTable struct {
	states  int
	actions int
	values  []float64
}

func NewQTable(states, actions int) *QTable {
	if states <= 0 || actions <= 0 {
		panic(fmt.Sprintf("policies: invalid table shape %dx%d", states, actions))
	}
	return &QTable{
		states:  states,
		actions: actions,
		values:  make([]float64, states*actions),
	}
}

func (q *QTable) Dims() (int, int) {
	return q.states, q.actions
}

func (q *QTable) checkState(state int) {
	if state < 0 || state >= q.states {
		panic(fmt.Sprintf("policies: state %d out of range [0, %d)", state, q.states))
	}
}

func (q *QTable) index(state, action int) int {
	q.checkState(state)
	if action < 0 || action >= q.actions {
		panic(fmt.Sprintf("policies: action %d out of range [0, %d)", action, q.actions))
	}
	return state*q.actions + action
}

func (q *QTable) Get(state, action int) float64 {
	return q.values[q.index(state, action)]
}

func (q *QTable) Set(state, action int, val float64) {
	q.values[q.index(state, action)] = val
}

// Row is a view of the action values of state, not a copy
func (q *QTable) Row(state int) []float64 {
	q.checkState(state)
	return q.values[state*q.actions : (state+1)*q.actions]
}

// Max returns the best action of state and its value. Ties go to the lowest
// action index.
func (q *QTable) Max(state int) (int, float64) {
	row := q.Row(state)
	i := floats.MaxIdx(row)
	return i, row[i]
}

func (q *QTable) ArgMax(state int) int {
	i, _ := q.Max(state)
	return i
}

// Reset zeroes every entry
func (q *QTable) Reset() {
	for i := range q.values {
		q.values[i] = 0
	}
}

// StateValues returns max_a Q(s, a) for every state
func (q *QTable) StateValues() []float64 {
	out := make([]float64, q.states)
	for s := range out {
		_, out[s] = q.Max(s)
	}
	return out
}

// Record dumps the table as json rows, one per state
func (q *QTable) Record(path string) error {
	rows := make([][]float64, q.states)
	for s := range rows {
		rows[s] = q.Row(s)
	}
	bs, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

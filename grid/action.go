package grid

import "fmt"

// Action is a single agent move on the grid
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
	Stay
)

var (
	movements     = []Action{Up, Down, Left, Right}
	allMovements  = []Action{Up, Down, Left, Right, Stay}
	actionStrings = map[Action]string{
		Up:    "Up",
		Down:  "Down",
		Left:  "Left",
		Right: "Right",
		Stay:  "Stay",
	}
)

// Actions returns the action set of a learner. The index of an action in the
// returned slice is its column in the value table.
func Actions(withStay bool) []Action {
	var src []Action
	if withStay {
		src = allMovements
	} else {
		src = movements
	}
	out := make([]Action, len(src))
	copy(out, src)
	return out
}

func (a Action) String() string {
	if s, ok := actionStrings[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Position is a cell of the grid
type Position struct {
	X int
	Y int
}

func (p Position) Eq(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Distance is the Manhattan distance between the two cells
func (p Position) Distance(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

// Move returns the cell reached by applying a, ignoring the grid bounds.
// Panics on an unknown action.
func (p Position) Move(a Action) Position {
	switch a {
	case Up:
		return Position{X: p.X, Y: p.Y + 1}
	case Down:
		return Position{X: p.X, Y: p.Y - 1}
	case Left:
		return Position{X: p.X - 1, Y: p.Y}
	case Right:
		return Position{X: p.X + 1, Y: p.Y}
	case Stay:
		return p
	}
	panic(fmt.Sprintf("grid: unknown action %d", int(a)))
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

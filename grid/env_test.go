package grid

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/exp/rand"
)

func newTestWorld(t *testing.T, size int, opts ...Option) *World {
	w, err := NewWorld(size, size, opts...)
	if err != nil {
		t.Fatalf("creating world: %v", err)
	}
	return w
}

func TestStateEncoding(t *testing.T) {
	Convey("Given a 7x7 world", t, func() {
		w := newTestWorld(t, 7)

		Convey("every cell encodes to a unique state that decodes back", func() {
			seen := make(map[int]bool)
			for x := 0; x < w.Width; x++ {
				for y := 0; y < w.Height; y++ {
					p := Position{X: x, Y: y}
					s := w.State(p)
					So(s, ShouldBeBetweenOrEqual, 0, w.NumStates()-1)
					So(seen[s], ShouldBeFalse)
					seen[s] = true
					So(w.Decode(s), ShouldResemble, p)
				}
			}
			So(len(seen), ShouldEqual, w.NumStates())
		})

		Convey("the encoding is x + H*y", func() {
			So(w.State(Position{X: 3, Y: 2}), ShouldEqual, 3+7*2)
		})

		Convey("out of range cells and states panic", func() {
			So(func() { w.State(Position{X: 7, Y: 0}) }, ShouldPanic)
			So(func() { w.State(Position{X: 0, Y: -1}) }, ShouldPanic)
			So(func() { w.Decode(w.NumStates()) }, ShouldPanic)
		})
	})
}

func TestNewWorld(t *testing.T) {
	Convey("NewWorld rejects bad dimensions", t, func() {
		_, err := NewWorld(0, 5)
		So(errors.Is(err, ErrWorldConfig), ShouldBeTrue)
		_, err = NewWorld(4, 5)
		So(errors.Is(err, ErrWorldConfig), ShouldBeTrue)
	})

	Convey("NewWorld applies options", t, func() {
		w := newTestWorld(t, 3, WithReward(10), WithStepPenalty(1), WithValueWeighted(true))
		So(w.Reward, ShouldEqual, 10)
		So(w.StepPenalty, ShouldEqual, 1)
		So(w.ValueWeighted, ShouldBeTrue)
	})
}

func TestStep(t *testing.T) {
	Convey("Given a 5x5 world with a target at (4,4)", t, func() {
		w := newTestWorld(t, 5)
		So(w.AddTarget(Position{X: 4, Y: 4}, 1), ShouldBeNil)

		Convey("no move ever leaves the grid", func() {
			for x := 0; x < w.Width; x++ {
				for y := 0; y < w.Height; y++ {
					for _, a := range Actions(true) {
						_, next := w.Step(Position{X: x, Y: y}, a)
						So(w.InBounds(next), ShouldBeTrue)
					}
				}
			}
		})

		Convey("moves off the edge leave the agent in place", func() {
			reward, next := w.Step(Position{X: 0, Y: 0}, Left)
			So(next, ShouldResemble, Position{X: 0, Y: 0})
			So(reward, ShouldEqual, 0)
			_, next = w.Step(Position{X: 0, Y: 0}, Down)
			So(next, ShouldResemble, Position{X: 0, Y: 0})
		})

		Convey("directions follow the grid axes", func() {
			_, next := w.Step(Position{X: 2, Y: 2}, Up)
			So(next, ShouldResemble, Position{X: 2, Y: 3})
			_, next = w.Step(Position{X: 2, Y: 2}, Down)
			So(next, ShouldResemble, Position{X: 2, Y: 1})
			_, next = w.Step(Position{X: 2, Y: 2}, Left)
			So(next, ShouldResemble, Position{X: 1, Y: 2})
			_, next = w.Step(Position{X: 2, Y: 2}, Right)
			So(next, ShouldResemble, Position{X: 3, Y: 2})
			_, next = w.Step(Position{X: 2, Y: 2}, Stay)
			So(next, ShouldResemble, Position{X: 2, Y: 2})
		})

		Convey("walking right then up from the origin reaches the target in 8 moves", func() {
			p := Position{}
			var reward float64
			moves := 0
			for _, a := range []Action{Right, Right, Right, Right, Up, Up, Up, Up} {
				reward, p = w.Step(p, a)
				moves++
			}
			So(moves, ShouldEqual, 8)
			So(p, ShouldResemble, Position{X: 4, Y: 4})
			So(reward, ShouldEqual, DefaultReward)
		})

		Convey("a step penalty applies off target", func() {
			w.StepPenalty = 0.5
			reward, _ := w.Step(Position{X: 1, Y: 1}, Up)
			So(reward, ShouldEqual, -0.5)
		})

		Convey("value weighted targets pay their value", func() {
			w.ValueWeighted = true
			w.Targets[0].Value = 7
			reward, _ := w.Step(Position{X: 3, Y: 4}, Right)
			So(reward, ShouldEqual, 7)
		})

		Convey("an unknown action panics", func() {
			So(func() { w.Step(Position{}, Action(42)) }, ShouldPanic)
		})
	})
}

func TestGlobalReward(t *testing.T) {
	Convey("Given an unweighted world with two targets", t, func() {
		w := newTestWorld(t, 5)
		So(w.AddTarget(Position{X: 1, Y: 1}, 1), ShouldBeNil)
		So(w.AddTarget(Position{X: 3, Y: 3}, 1), ShouldBeNil)

		Convey("each captured target counts once", func() {
			So(w.GlobalReward([]Position{{X: 0, Y: 0}}), ShouldEqual, 0)
			So(w.GlobalReward([]Position{{X: 1, Y: 1}}), ShouldEqual, 100)
			So(w.GlobalReward([]Position{{X: 1, Y: 1}, {X: 1, Y: 1}}), ShouldEqual, 100)
			So(w.GlobalReward([]Position{{X: 1, Y: 1}, {X: 3, Y: 3}}), ShouldEqual, 200)
		})

		Convey("uncaptured targets cost the step penalty", func() {
			w.StepPenalty = 1
			So(w.GlobalReward([]Position{{X: 1, Y: 1}}), ShouldEqual, 99)
			So(w.GlobalReward(nil), ShouldEqual, -2)
		})

		Convey("moving an agent onto an uncaptured target never lowers the reward", func() {
			for _, penalty := range []float64{0, 1} {
				w.StepPenalty = penalty
				locations := []Position{{X: 1, Y: 1}, {X: 0, Y: 4}}
				before := w.GlobalReward(locations)
				locations[1] = Position{X: 3, Y: 3}
				So(w.GlobalReward(locations), ShouldBeGreaterThanOrEqualTo, before)
			}
		})

		Convey("removing the last occupant never raises the reward", func() {
			counts := w.Captures([]Position{{X: 1, Y: 1}, {X: 3, Y: 3}})
			before := w.RewardFromCounts(counts)
			counts[0]--
			So(w.RewardFromCounts(counts), ShouldBeLessThanOrEqualTo, before)
		})

		Convey("mismatched counts panic", func() {
			So(func() { w.RewardFromCounts([]int{1}) }, ShouldPanic)
		})
	})

	Convey("Given a value weighted world with values 1 and 9", t, func() {
		w := newTestWorld(t, 5, WithValueWeighted(true))
		So(w.AddTarget(Position{X: 0, Y: 4}, 1), ShouldBeNil)
		So(w.AddTarget(Position{X: 4, Y: 0}, 9), ShouldBeNil)

		Convey("capturing only the value 9 target gives 90 percent", func() {
			So(w.GlobalReward([]Position{{X: 4, Y: 0}, {X: 2, Y: 2}}), ShouldEqual, 90.0)
		})

		Convey("a zero total value gives zero", func() {
			w.Targets[0].Value = 0
			w.Targets[1].Value = 0
			So(w.GlobalReward([]Position{{X: 4, Y: 0}}), ShouldEqual, 0)
		})
	})

	Convey("A world without targets has zero reward", t, func() {
		w := newTestWorld(t, 3)
		So(w.GlobalReward([]Position{{X: 1, Y: 1}}), ShouldEqual, 0)
	})
}

func TestPopulate(t *testing.T) {
	Convey("Given an 8x8 world populated with 3 targets and 2 agents", t, func() {
		w := newTestWorld(t, 8)
		rng := rand.New(rand.NewSource(11))
		So(w.Populate(2, 3, rng), ShouldBeNil)

		Convey("targets never share a cell", func() {
			So(len(w.Targets), ShouldEqual, 3)
			seen := make(map[Position]bool)
			for _, target := range w.Targets {
				So(seen[target.Position], ShouldBeFalse)
				seen[target.Position] = true
				So(target.Value, ShouldEqual, 1)
			}
		})

		Convey("agents start off the targets and apart", func() {
			So(len(w.Agents), ShouldEqual, 2)
			So(w.Agents[0], ShouldNotResemble, w.Agents[1])
			for _, a := range w.Agents {
				_, onTarget := w.TargetAt(a)
				So(onTarget, ShouldBeFalse)
			}
		})

		Convey("target values are drawn from 1 to 10", func() {
			w.PopulateValues(rng)
			for _, target := range w.Targets {
				So(target.Value, ShouldBeBetweenOrEqual, 1.0, 10.0)
			}
		})
	})

	Convey("Populating more entities than cells fails", t, func() {
		w := newTestWorld(t, 2)
		err := w.Populate(3, 2, rand.New(rand.NewSource(1)))
		So(errors.Is(err, ErrOverfull), ShouldBeTrue)
	})

	Convey("A full grid can still be populated", t, func() {
		w := newTestWorld(t, 2)
		So(w.Populate(2, 2, rand.New(rand.NewSource(5))), ShouldBeNil)
		So(len(w.Targets)+len(w.Agents), ShouldEqual, 4)
	})

	Convey("Explicit placement checks the same invariants", t, func() {
		w := newTestWorld(t, 4)
		So(w.AddTarget(Position{X: 1, Y: 1}, 1), ShouldBeNil)
		So(errors.Is(w.AddTarget(Position{X: 1, Y: 1}, 1), ErrWorldConfig), ShouldBeTrue)
		So(errors.Is(w.AddTarget(Position{X: 4, Y: 1}, 1), ErrOutOfBounds), ShouldBeTrue)
		So(errors.Is(w.AddAgent(Position{X: 1, Y: 1}), ErrWorldConfig), ShouldBeTrue)
		So(w.AddAgent(Position{X: 0, Y: 0}), ShouldBeNil)
		So(errors.Is(w.AddAgent(Position{X: 0, Y: 0}), ErrWorldConfig), ShouldBeTrue)
	})
}

package credit

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zerbeln/GridWorld/grid"
	"golang.org/x/exp/rand"
)

func buildWorld(t *testing.T, size int, targets []grid.Target, agents []grid.Position, opts ...grid.Option) *grid.World {
	w, err := grid.NewWorld(size, size, opts...)
	if err != nil {
		t.Fatal(err)
	}
	for _, target := range targets {
		if err := w.AddTarget(target.Position, target.Value); err != nil {
			t.Fatal(err)
		}
	}
	for _, a := range agents {
		if err := w.AddAgent(a); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func snapshot(w *grid.World, locations ...grid.Position) *Snapshot {
	snap := &Snapshot{
		World:     w,
		Locations: locations,
		Prev:      make([]int, len(locations)),
		Curr:      make([]int, len(locations)),
		Local:     make([]float64, len(locations)),
	}
	for i, loc := range locations {
		snap.Curr[i] = w.State(loc)
		snap.Prev[i] = w.State(w.Agents[i])
	}
	return snap
}

func TestParseKind(t *testing.T) {
	Convey("Every tag round trips", t, func() {
		for _, k := range AllKinds() {
			parsed, err := ParseKind(k.String())
			So(err, ShouldBeNil)
			So(parsed, ShouldEqual, k)
		}
		So(len(AllKinds()), ShouldEqual, 11)
	})

	Convey("Unknown tags are rejected", t, func() {
		_, err := ParseKind("cfl-random")
		So(errors.Is(err, ErrUnknownStrategy), ShouldBeTrue)
		_, err = ParseKinds([]string{"global", "nope"})
		So(errors.Is(err, ErrUnknownStrategy), ShouldBeTrue)
	})

	Convey("Kinds know their family", t, func() {
		So(CFLSplit.IsCFL(), ShouldBeTrue)
		So(PBRSCustom.IsPBRS(), ShouldBeTrue)
		So(Difference.IsCFL(), ShouldBeFalse)
		So(Local.Deferred(), ShouldBeFalse)
		So(Global.Deferred(), ShouldBeTrue)
	})
}

func TestGlobalAndLocal(t *testing.T) {
	Convey("Given two agents one of which captures", t, func() {
		w := buildWorld(t, 5,
			[]grid.Target{{Position: grid.Position{X: 2, Y: 2}, Value: 1}},
			[]grid.Position{{X: 0, Y: 0}, {X: 4, Y: 4}})
		snap := snapshot(w, grid.Position{X: 2, Y: 2}, grid.Position{X: 4, Y: 3})
		snap.Local[0] = 100
		global := w.GlobalReward(snap.Locations)

		Convey("global hands out the team reward", func() {
			s, err := New(Global, w, DefaultParams())
			So(err, ShouldBeNil)
			So(s.Feedback(global, snap), ShouldResemble, []float64{100, 100})
		})

		Convey("local hands out the transition rewards", func() {
			s, err := New(Local, w, DefaultParams())
			So(err, ShouldBeNil)
			So(s.Feedback(global, snap), ShouldResemble, []float64{100, 0})
		})
	})
}

func TestDifference(t *testing.T) {
	Convey("With a single agent the difference reward is the global reward", t, func() {
		w := buildWorld(t, 5,
			[]grid.Target{{Position: grid.Position{X: 1, Y: 3}, Value: 1}, {Position: grid.Position{X: 3, Y: 1}, Value: 1}},
			[]grid.Position{{X: 0, Y: 0}})
		s := &DifferenceFeedback{}
		for _, loc := range []grid.Position{{X: 1, Y: 3}, {X: 2, Y: 2}} {
			snap := snapshot(w, loc)
			global := w.GlobalReward(snap.Locations)
			So(s.Feedback(global, snap), ShouldResemble, []float64{global})
		}

		Convey("a step penalty makes the empty team pay for every target", func() {
			w.StepPenalty = 2
			snap := snapshot(w, grid.Position{X: 1, Y: 3})
			global := w.GlobalReward(snap.Locations)
			So(s.Feedback(global, snap)[0], ShouldEqual, 100+2)
		})

		Convey("and in value weighted worlds", func() {
			w.ValueWeighted = true
			w.Targets[0].Value = 3
			snap := snapshot(w, grid.Position{X: 1, Y: 3})
			global := w.GlobalReward(snap.Locations)
			So(s.Feedback(global, snap)[0], ShouldAlmostEqual, global)
		})
	})

	Convey("Two agents sharing the only target both get zero", t, func() {
		w := buildWorld(t, 5,
			[]grid.Target{{Position: grid.Position{X: 2, Y: 2}, Value: 1}},
			[]grid.Position{{X: 0, Y: 0}, {X: 4, Y: 4}})
		snap := snapshot(w, grid.Position{X: 2, Y: 2}, grid.Position{X: 2, Y: 2})
		global := w.GlobalReward(snap.Locations)
		So(global, ShouldEqual, 100)
		So((&DifferenceFeedback{}).Feedback(global, snap), ShouldResemble, []float64{0, 0})
	})

	Convey("Only the capturing agent is credited", t, func() {
		w := buildWorld(t, 5,
			[]grid.Target{{Position: grid.Position{X: 2, Y: 2}, Value: 1}},
			[]grid.Position{{X: 0, Y: 0}, {X: 4, Y: 4}})
		snap := snapshot(w, grid.Position{X: 2, Y: 2}, grid.Position{X: 3, Y: 3})
		global := w.GlobalReward(snap.Locations)
		So((&DifferenceFeedback{}).Feedback(global, snap), ShouldResemble, []float64{100, 0})
	})
}

func TestCounterfactualAssignment(t *testing.T) {
	targets := []grid.Target{
		{Position: grid.Position{X: 1, Y: 1}, Value: 2},
		{Position: grid.Position{X: 6, Y: 6}, Value: 8},
		{Position: grid.Position{X: 0, Y: 6}, Value: 5},
	}
	agents := []grid.Position{{X: 0, Y: 0}, {X: 7, Y: 7}, {X: 3, Y: 4}, {X: 4, Y: 3}}

	Convey("Given a value weighted world with three targets and four agents", t, func() {
		w := buildWorld(t, 8, targets, agents, grid.WithValueWeighted(true))

		Convey("no row is ever all zero", func() {
			for _, k := range []Kind{CFLDistance, CFLSplit, CFLAssign, CFLValue} {
				rows, err := BuildAssignment(k, w, DefaultParams())
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, len(agents))
				for _, row := range rows {
					marked := false
					for _, v := range row {
						marked = marked || v
					}
					So(marked, ShouldBeTrue)
				}
			}
		})

		Convey("distance marks targets closer than the radius", func() {
			rows, _ := BuildAssignment(CFLDistance, w, DefaultParams())
			So(rows[0], ShouldResemble, []bool{true, false, false})
			So(rows[1], ShouldResemble, []bool{false, true, false})
			// nothing within 4 of (3,4) is a target: fallback to all
			So(rows[2], ShouldResemble, []bool{true, true, true})
		})

		Convey("split takes the nearer half rounded up", func() {
			rows, _ := BuildAssignment(CFLSplit, w, DefaultParams())
			So(rows[0], ShouldResemble, []bool{true, false, true})
			So(rows[1], ShouldResemble, []bool{false, true, true})
		})

		Convey("assign pairs agent k with target k", func() {
			rows, _ := BuildAssignment(CFLAssign, w, DefaultParams())
			So(rows[0], ShouldResemble, []bool{true, false, false})
			So(rows[2], ShouldResemble, []bool{false, false, true})
			So(rows[3], ShouldResemble, []bool{true, true, true})
		})

		Convey("value keeps the targets at or above the mean value", func() {
			rows, _ := BuildAssignment(CFLValue, w, DefaultParams())
			for _, row := range rows {
				So(row, ShouldResemble, []bool{false, true, true})
			}
		})

		Convey("non counterfactual kinds are rejected", func() {
			_, err := BuildAssignment(Global, w, DefaultParams())
			So(errors.Is(err, ErrUnknownStrategy), ShouldBeTrue)
		})
	})
}

func TestCounterfactualFeedback(t *testing.T) {
	Convey("Given two agents each near one target", t, func() {
		w := buildWorld(t, 8,
			[]grid.Target{{Position: grid.Position{X: 1, Y: 1}, Value: 1}, {Position: grid.Position{X: 6, Y: 6}, Value: 1}},
			[]grid.Position{{X: 0, Y: 0}, {X: 7, Y: 7}})
		s, err := New(CFLDistance, w, DefaultParams())
		So(err, ShouldBeNil)

		Convey("other agents only count on the targets of the agent's row", func() {
			// agent 1 captures target 1, outside agent 0's row
			snap := snapshot(w, grid.Position{X: 1, Y: 1}, grid.Position{X: 6, Y: 6})
			global := w.GlobalReward(snap.Locations)
			So(global, ShouldEqual, 200)
			So(s.Feedback(global, snap), ShouldResemble, []float64{200, 200})
		})

		Convey("a capture on the agent's own target by another agent is discounted", func() {
			snap := snapshot(w, grid.Position{X: 2, Y: 2}, grid.Position{X: 1, Y: 1})
			global := w.GlobalReward(snap.Locations)
			feedback := s.Feedback(global, snap)
			So(feedback[0], ShouldEqual, 0)
			So(feedback[1], ShouldEqual, 100)
		})
	})

	Convey("With all-one rows the counterfactual equals the difference reward", t, func() {
		w := buildWorld(t, 5,
			[]grid.Target{{Position: grid.Position{X: 2, Y: 2}, Value: 1}},
			[]grid.Position{{X: 0, Y: 0}, {X: 4, Y: 4}})
		s, err := New(CFLValue, w, DefaultParams())
		So(err, ShouldBeNil)
		for _, locs := range [][]grid.Position{
			{{X: 2, Y: 2}, {X: 2, Y: 2}},
			{{X: 2, Y: 2}, {X: 0, Y: 1}},
			{{X: 1, Y: 2}, {X: 0, Y: 1}},
		} {
			snap := snapshot(w, locs...)
			global := w.GlobalReward(snap.Locations)
			So(s.Feedback(global, snap), ShouldResemble, (&DifferenceFeedback{}).Feedback(global, snap))
		}
	})
}

func TestPotentialShaping(t *testing.T) {
	Convey("Given a fixed potential field", t, func() {
		w := buildWorld(t, 6,
			[]grid.Target{{Position: grid.Position{X: 5, Y: 5}, Value: 1}, {Position: grid.Position{X: 0, Y: 5}, Value: 4}},
			[]grid.Position{{X: 0, Y: 0}, {X: 5, Y: 0}})
		field := NewPotentialField(ValueWeightedPotentials(w))
		rng := rand.New(rand.NewSource(17))

		walk := func() []int {
			p := w.Agents[0]
			states := []int{w.State(p)}
			for i := 0; i < 30; i++ {
				_, p = w.Step(p, grid.Action(rng.Intn(4)))
				states = append(states, w.State(p))
			}
			return states
		}

		Convey("with gamma 1 the shaping terms telescope", func() {
			for trial := 0; trial < 5; trial++ {
				states := walk()
				sum := 0.0
				for i := 1; i < len(states); i++ {
					sum += field.Delta(states[i-1], states[i], 1)
				}
				last := states[len(states)-1]
				So(sum, ShouldAlmostEqual, field.At(last)-field.At(states[0]), 1e-9)
			}
		})

		Convey("discounted shaping terms telescope to gamma^T phi(s_T) - phi(s_0)", func() {
			gamma := 0.1
			states := walk()
			sum, weight := 0.0, 1.0
			for i := 1; i < len(states); i++ {
				sum += weight * field.Delta(states[i-1], states[i], gamma)
				weight *= gamma
			}
			last := states[len(states)-1]
			So(sum, ShouldAlmostEqual, weight*field.At(last)-field.At(states[0]), 1e-9)
		})

		Convey("updates drift the field and reset restores the seed", func() {
			before := field.Potentials()
			field.Update(3, 10, 0.1)
			So(field.At(3), ShouldAlmostEqual, before[3]+1)
			field.Reset()
			So(field.Potentials(), ShouldResemble, before)
		})
	})

	Convey("Heuristic potentials", t, func() {
		w := buildWorld(t, 5,
			[]grid.Target{{Position: grid.Position{X: 4, Y: 4}, Value: 1}, {Position: grid.Position{X: 0, Y: 4}, Value: 3}},
			[]grid.Position{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 1, Y: 0}})

		Convey("proximity is minus the distance to the nearest target", func() {
			phi := ProximityPotentials(w)
			So(phi[w.State(grid.Position{X: 4, Y: 4})], ShouldEqual, 0)
			So(phi[w.State(grid.Position{X: 2, Y: 4})], ShouldEqual, -2)
			So(phi[w.State(grid.Position{X: 0, Y: 0})], ShouldEqual, -4)
		})

		Convey("custom weighs distances by target value", func() {
			phi := ValueWeightedPotentials(w)
			// distances 8 and 4 with values 1 and 3
			So(phi[w.State(grid.Position{X: 0, Y: 0})], ShouldAlmostEqual, -(8.0+12.0)/4)
		})

		Convey("target agent follows the assigned target", func() {
			So(AssignedTarget(w, 0), ShouldEqual, 0)
			So(AssignedTarget(w, 1), ShouldEqual, 1)
			// agent 2 starts at (1,0): nearest is (0,4)
			So(AssignedTarget(w, 2), ShouldEqual, 1)
			phi := AssignedPotentials(w, 0)
			So(phi[w.State(grid.Position{X: 0, Y: 0})], ShouldEqual, -8)
		})

		Convey("exploration potentials are reproducible per seed", func() {
			So(RandomPotentials(25, 4), ShouldResemble, RandomPotentials(25, 4))
			So(RandomPotentials(25, 4), ShouldNotResemble, RandomPotentials(25, 5))
		})
	})

	Convey("Shaped feedback adds each agent's own delta to the global reward", t, func() {
		w := buildWorld(t, 5,
			[]grid.Target{{Position: grid.Position{X: 4, Y: 4}, Value: 1}},
			[]grid.Position{{X: 0, Y: 0}, {X: 4, Y: 0}})
		params := DefaultParams()
		s, err := NewPotentialShaping(PBRSTargetProximity, w, params)
		So(err, ShouldBeNil)

		snap := snapshot(w, grid.Position{X: 1, Y: 0}, grid.Position{X: 4, Y: 1})
		feedback := s.Feedback(0, snap)
		// agent 0: 0.1*(-7) - (-8), agent 1: 0.1*(-3) - (-4)
		So(feedback[0], ShouldAlmostEqual, 7.3)
		So(feedback[1], ShouldAlmostEqual, 3.7)

		Convey("drift moves the field and Reset undoes it", func() {
			params.PotentialDrift = 0.1
			drifting, err := NewPotentialShaping(PBRSTargetProximity, w, params)
			So(err, ShouldBeNil)
			seed := drifting.Fields()[0].Potentials()
			drifting.Feedback(50, snap)
			So(drifting.Fields()[0].At(snap.Curr[0]), ShouldAlmostEqual, seed[snap.Curr[0]]+5)
			drifting.Reset()
			So(drifting.Fields()[0].Potentials(), ShouldResemble, seed)
		})
	})
}

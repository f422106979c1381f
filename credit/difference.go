package credit

// DifferenceFeedback rewards each agent with its marginal contribution: the
// global reward minus the global reward of the team without that agent.
type DifferenceFeedback struct{}

var _ Strategy = &DifferenceFeedback{}

func (d *DifferenceFeedback) Kind() Kind { return Difference }

func (d *DifferenceFeedback) Feedback(global float64, snap *Snapshot) []float64 {
	world := snap.World
	counts := world.Captures(snap.Locations)
	out := make([]float64, len(snap.Locations))
	for i, loc := range snap.Locations {
		t, ok := world.TargetAt(loc)
		if !ok {
			// the team without i captures the same targets
			out[i] = global - world.RewardFromCounts(counts)
			continue
		}
		counts[t]--
		out[i] = global - world.RewardFromCounts(counts)
		counts[t]++
	}
	return out
}

func (d *DifferenceFeedback) Reset() {}

package types

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RunResult is the outcome of one statistical run
type RunResult struct {
	Run int
	// Rewards holds the evaluated global reward of every epoch
	Rewards []float64
	// AgentRewards holds per-agent evaluated local rewards, local strategy only
	AgentRewards [][]float64
}

// Curves collects the learning curves of one strategy over all runs
type Curves struct {
	Name string
	// Rewards is runs x epochs
	Rewards [][]float64
	// AgentRewards is agents x runs x epochs, empty unless per-agent curves were recorded
	AgentRewards [][][]float64
}

func NewCurves(name string, results []*RunResult) *Curves {
	c := &Curves{
		Name:    name,
		Rewards: make([][]float64, len(results)),
	}
	for r, res := range results {
		c.Rewards[r] = res.Rewards
		if len(res.AgentRewards) == 0 {
			continue
		}
		if c.AgentRewards == nil {
			c.AgentRewards = make([][][]float64, len(res.AgentRewards))
			for a := range c.AgentRewards {
				c.AgentRewards[a] = make([][]float64, len(results))
			}
		}
		for a, rewards := range res.AgentRewards {
			c.AgentRewards[a][r] = rewards
		}
	}
	return c
}

func (c *Curves) Runs() int {
	return len(c.Rewards)
}

func (c *Curves) Epochs() int {
	if len(c.Rewards) == 0 {
		return 0
	}
	return len(c.Rewards[0])
}

func (c *Curves) column(epoch int) []float64 {
	col := make([]float64, len(c.Rewards))
	for r, rewards := range c.Rewards {
		col[r] = rewards[epoch]
	}
	return col
}

// Mean is the per-epoch mean over runs
func (c *Curves) Mean() []float64 {
	out := make([]float64, c.Epochs())
	for e := range out {
		out[e] = stat.Mean(c.column(e), nil)
	}
	return out
}

// StdErr is the per-epoch standard error of the mean, zero for a single run
func (c *Curves) StdErr() []float64 {
	out := make([]float64, c.Epochs())
	if c.Runs() < 2 {
		return out
	}
	n := math.Sqrt(float64(c.Runs()))
	for e := range out {
		out[e] = stat.StdDev(c.column(e), nil) / n
	}
	return out
}

// Final is the mean reward of the last epoch
func (c *Curves) Final() float64 {
	if c.Epochs() == 0 {
		return 0
	}
	return stat.Mean(c.column(c.Epochs()-1), nil)
}

package types

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zerbeln/GridWorld/credit"
	"github.com/zerbeln/GridWorld/grid"
	"github.com/zerbeln/GridWorld/policies"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type experimentRunConfig struct {
	Runs        int
	Epochs      int
	Steps       int
	Seed        uint64
	Parallelism int
	Learner     policies.QLearnerConfig
	Credit      credit.Params
	Context     context.Context

	ShowProgress      bool
	PrintFrequency    time.Duration
	LongestExpNameLen int
}

// Experiment trains the team of a world with one credit assignment strategy
type Experiment struct {
	Name  string
	Kind  credit.Kind
	world *grid.World
}

func NewExperiment(name string, kind credit.Kind, world *grid.World) *Experiment {
	return &Experiment{
		Name:  name,
		Kind:  kind,
		world: world,
	}
}

// Run executes all statistical runs, at most Parallelism at a time. Every run
// owns its learners and strategy; the world is only read.
func (e *Experiment) Run(rConfig *experimentRunConfig) (*Curves, error) {
	ctx := rConfig.Context
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parallelism := rConfig.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]*RunResult, rConfig.Runs)
	progress := make([]chan Progress, rConfig.Runs)
	sources := make([]<-chan Progress, rConfig.Runs)
	for r := range progress {
		progress[r] = make(chan Progress, 1)
		sources[r] = progress[r]
	}
	printer := NewTerminalPrinter(parallelism, rConfig.PrintFrequency, rConfig.ShowProgress)
	printerDone := printer.Consume(ctx, sources...)

	logrus.WithFields(logrus.Fields{
		"experiment": e.Name,
		"runs":       rConfig.Runs,
		"epochs":     rConfig.Epochs,
	}).Info("starting experiment")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for r := 0; r < rConfig.Runs; r++ {
		run := r
		g.Go(func() error {
			defer close(progress[run])
			result, err := e.runStat(gctx, rConfig, run, progress[run])
			if err != nil {
				return err
			}
			results[run] = result
			return nil
		})
	}
	err := g.Wait()
	<-printerDone
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", e.Name, err)
	}

	curves := NewCurves(e.Name, results)
	logrus.WithFields(logrus.Fields{
		"experiment": e.Name,
		"final":      curves.Final(),
	}).Info("finished experiment")
	return curves, nil
}

// runStat is one statistical run: fresh value tables, then epochs of
// exploring training followed by a greedy evaluation rollout.
func (e *Experiment) runStat(ctx context.Context, rConfig *experimentRunConfig, run int, progress chan<- Progress) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	team := NewTeam(e.world, rConfig.Learner, rConfig.Seed, run)
	team.ResetValueTables()

	params := rConfig.Credit
	params.Seed = StrategySeed(rConfig.Seed, run)
	strategy, err := credit.New(e.Kind, e.world, params)
	if err != nil {
		return nil, err
	}
	strategy.Reset()

	result := &RunResult{
		Run:     run,
		Rewards: make([]float64, rConfig.Epochs),
	}
	if e.Kind == credit.Local {
		result.AgentRewards = make([][]float64, len(team.Learners))
		for a := range result.AgentRewards {
			result.AgentRewards[a] = make([]float64, rConfig.Epochs)
		}
	}

	for epoch := 0; epoch < rConfig.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		team.ResetEpisode()
		team.TrainEpisode(strategy, rConfig.Steps)

		global, local := team.Evaluate(rConfig.Steps)
		result.Rewards[epoch] = global
		for a := range result.AgentRewards {
			result.AgentRewards[a][epoch] = local[a]
		}

		select {
		case progress <- Progress{
			Experiment: e.Name,
			Padding:    rConfig.LongestExpNameLen,
			Run:        run,
			Epoch:      epoch + 1,
			Epochs:     rConfig.Epochs,
			Reward:     global,
			Done:       epoch+1 == rConfig.Epochs,
		}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	logrus.WithFields(logrus.Fields{
		"experiment": e.Name,
		"run":        run,
		"reward":     result.Rewards[len(result.Rewards)-1],
	}).Debug("run finished")
	return result, nil
}

// Generic Dataset produced by an analyzer
type DataSet interface{}

// Analyzer compresses the curves of an experiment to a DataSet
type Analyzer interface {
	// experiment name, curves
	Analyze(string, *Curves)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between different datasets with associated names
type Comparator func([]string, []DataSet) error

func NoopComparator() Comparator {
	return func(_ []string, _ []DataSet) error { return nil }
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs        int // number of statistical runs
	Epochs      int // number of epochs per run
	Steps       int // episode horizon
	Seed        uint64
	Parallelism int

	RecordPath string // path to store the results
	Learner    policies.QLearnerConfig
	Credit     credit.Params

	ShowProgress   bool
	PrintFrequency time.Duration

	// Experiment is recorded next to the results when set
	Experiment *ExperimentConfig
}

type recordedConfig struct {
	Runs        int               `yaml:"runs"`
	Epochs      int               `yaml:"epochs"`
	Steps       int               `yaml:"steps"`
	Seed        uint64            `yaml:"seed"`
	Parallelism int               `yaml:"parallelism"`
	Discount    float64           `yaml:"discount"`
	Alpha       float64           `yaml:"alpha"`
	Epsilon     float64           `yaml:"epsilon"`
	Experiments []string          `yaml:"experiments"`
	Analyzers   []string          `yaml:"analyzers"`
	Experiment  *ExperimentConfig `yaml:"experiment,omitempty"`
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig
	out := recordedConfig{
		Runs:        cfg.Runs,
		Epochs:      cfg.Epochs,
		Steps:       cfg.Steps,
		Seed:        cfg.Seed,
		Parallelism: cfg.Parallelism,
		Discount:    cfg.Learner.Discount,
		Alpha:       cfg.Learner.Alpha,
		Epsilon:     cfg.Learner.Epsilon,
		Experiment:  cfg.Experiment,
	}
	for _, e := range c.Experiments {
		out.Experiments = append(out.Experiments, e.Name)
	}
	out.Analyzers = append(out.Analyzers, c.analyzerNames...)

	bs, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(path.Join(cfg.RecordPath, "comparison_config.yaml"), bs, 0644)
}

// Comparison contains the different experiments to compare
// The curves obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments   []*Experiment
	analyzers     map[string]Analyzer
	comparators   map[string]Comparator
	analyzerNames []string
	cConfig       *ComparisonConfig
}

// NewComparison creates a comparison instance and clears the record path
func NewComparison(config *ComparisonConfig) (*Comparison, error) {
	if _, err := os.Stat(config.RecordPath); err == nil {
		if err := RemoveContents(config.RecordPath); err != nil {
			return nil, fmt.Errorf("clearing %s: %w", config.RecordPath, err)
		}
	}
	if err := os.MkdirAll(config.RecordPath, 0777); err != nil {
		return nil, fmt.Errorf("creating %s: %w", config.RecordPath, err)
	}

	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}, nil
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	if _, ok := c.analyzers[name]; !ok {
		c.analyzerNames = append(c.analyzerNames, name)
	}
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run every experiment, then hand the analyzed datasets to the comparators
func (c *Comparison) Run(ctx context.Context) error {
	if err := c.recordConfig(); err != nil {
		return fmt.Errorf("recording config: %w", err)
	}

	longestNameLen := 0
	for _, e := range c.Experiments {
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	datasets := make(map[string][]DataSet)
	for name := range c.analyzers {
		datasets[name] = make([]DataSet, len(c.Experiments))
	}
	names := make([]string, len(c.Experiments))
	for i, e := range c.Experiments {
		curves, err := e.Run(c.prepareRunConfig(ctx, longestNameLen))
		if err != nil {
			return err
		}
		for name, a := range c.analyzers {
			a.Analyze(e.Name, curves)
			datasets[name][i] = a.DataSet()
			a.Reset()
		}
		names[i] = e.Name
	}
	for _, name := range c.analyzerNames {
		if err := c.comparators[name](names, datasets[name]); err != nil {
			return fmt.Errorf("comparator %s: %w", name, err)
		}
	}
	return nil
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, longestExpNameLen int) *experimentRunConfig {
	return &experimentRunConfig{
		Runs:              c.cConfig.Runs,
		Epochs:            c.cConfig.Epochs,
		Steps:             c.cConfig.Steps,
		Seed:              c.cConfig.Seed,
		Parallelism:       c.cConfig.Parallelism,
		Learner:           c.cConfig.Learner,
		Credit:            c.cConfig.Credit,
		Context:           ctx,
		ShowProgress:      c.cConfig.ShowProgress,
		PrintFrequency:    c.cConfig.PrintFrequency,
		LongestExpNameLen: longestExpNameLen,
	}
}

// RemoveContents deletes everything in the directory
func RemoveContents(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	names, err := d.Readdirnames(-1)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.RemoveAll(path.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

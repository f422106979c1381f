package benchmarks

import (
	"context"
	"os"
	"os/signal"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zerbeln/GridWorld/grid"
	"github.com/zerbeln/GridWorld/types"
)

// comparisonFlags are the flags of the commands that run comparisons, by
// config key
var comparisonFlags = map[string]string{
	"strategies": "strategies",
	"world":      "world_dir",
	"redis":      "redis.addr",
	"progress":   "progress",
}

func addComparisonFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("strategies", nil, "Credit assignment strategies to compare (default all)")
	cmd.Flags().String("world", "", "Folder with targets.csv and agents.csv (default a random world)")
	cmd.Flags().String("redis", "", "Address of a redis server that also receives the curves")
	cmd.Flags().Bool("progress", true, "Show per run progress")
	// bound when the command runs, train and scale share the keys
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		bindFlags(cmd.Flags(), comparisonFlags)
	}
}

// interruptible cancels the returned context on an interrupt or once done is
// called
func interruptible(parent context.Context) (ctx context.Context, done func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	doneCh := make(chan struct{})
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-sigCh:
			logrus.Warn("interrupted, stopping runs")
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()
	return ctx, func() { close(doneCh) }
}

// newComparison builds the world of cfg and a comparison of the configured
// strategies on it, with plots, artifacts and a summary under the save path.
// The returned close releases the savers.
func newComparison(ctx context.Context, cfg *types.ExperimentConfig) (*types.Comparison, func(), error) {
	kinds, err := cfg.Kinds()
	if err != nil {
		return nil, nil, err
	}
	world, err := types.BuildWorld(cfg)
	if err != nil {
		return nil, nil, err
	}
	c, err := types.NewComparison(cfg.ComparisonConfig())
	if err != nil {
		return nil, nil, err
	}

	if err := grid.SaveWorld(path.Join(cfg.SavePath, "world"), world); err != nil {
		return nil, nil, err
	}
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		world.Print(os.Stdout, world.Agents)
	}

	closeFn := func() {}
	plotPath := path.Join(cfg.SavePath, types.PlotDir)
	artifacts := path.Join(cfg.SavePath, types.ArtifactDir)
	savers := []types.Saver{types.NewCSVSaver(artifacts), types.NewGobSaver(artifacts)}
	if cfg.Redis.Addr != "" {
		rs := types.NewRedisSaver(ctx, cfg.Redis.Addr, cfg.Redis.Prefix)
		closeFn = func() { rs.Close() }
		savers = append(savers, rs)
	}

	c.AddAnalysis("LearningCurves", types.NewCurveAnalyzer(), types.LearningCurvePlotter(plotPath))
	c.AddAnalysis("AgentCurves", types.NewCurveAnalyzer(), types.AgentCurvePlotter(plotPath))
	c.AddAnalysis("Report", types.NewCurveAnalyzer(), types.LearningCurveHTML(cfg.SavePath))
	c.AddAnalysis("Artifacts", types.NewCurveAnalyzer(), types.CurveSaver(savers...))
	c.AddAnalysis("Summary", types.NewFinalRewardAnalyzer(), types.SummaryComparator(cfg.SavePath))

	for _, k := range kinds {
		c.AddExperiment(types.NewExperiment(k.String(), k, world))
	}
	return c, closeFn, nil
}

// Train compares the configured credit assignment strategies on one world and
// writes plots, curves and a summary to the save path
func Train(ctx context.Context, cfg *types.ExperimentConfig) error {
	c, closeFn, err := newComparison(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	stop := startProfiling(cfg.SavePath)
	defer stop()
	return c.Run(ctx)
}

func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a team with every selected credit assignment strategy",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, done := interruptible(cmd.Context())
			defer done()
			return Train(ctx, cfg)
		},
	}
	addComparisonFlags(cmd)
	return cmd
}

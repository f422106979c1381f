package benchmarks

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zerbeln/GridWorld/types"
)

// Scale reruns the comparison with from..to agents and as many targets, each
// size under <save>/<N>Agents, then plots the final reward of every strategy
// against the team size
func Scale(ctx context.Context, cfg *types.ExperimentConfig, from, to int) error {
	if from < 1 || to < from {
		return fmt.Errorf("%w: scaling range %d..%d", types.ErrInvalidConfig, from, to)
	}
	if err := os.MkdirAll(cfg.SavePath, os.ModePerm); err != nil {
		return err
	}
	stop := startProfiling(cfg.SavePath)
	defer stop()

	scaling := types.NewScaling()
	for n := from; n <= to; n++ {
		sized := *cfg
		sized.Agents = n
		sized.Targets = n
		sized.SavePath = path.Join(cfg.SavePath, fmt.Sprintf("%dAgents", n))
		if err := sized.Validate(); err != nil {
			return err
		}
		logrus.WithField("agents", n).Info("scaling step")

		c, closeFn, err := newComparison(ctx, &sized)
		if err != nil {
			return err
		}
		c.AddAnalysis("Scaling", types.NewFinalRewardAnalyzer(), scaling.Record(n))
		err = c.Run(ctx)
		closeFn()
		if err != nil {
			return fmt.Errorf("%d agents: %w", n, err)
		}
	}

	if err := scaling.Save(cfg.SavePath); err != nil {
		return err
	}
	return scaling.Plot(path.Join(cfg.SavePath, types.PlotDir))
}

func ScaleCommand() *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Compare the strategies over a range of team sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, done := interruptible(cmd.Context())
			defer done()
			return Scale(ctx, cfg, from, to)
		},
	}
	cmd.Flags().IntVar(&from, "from", 4, "Smallest number of agents and targets")
	cmd.Flags().IntVar(&to, "to", 15, "Largest number of agents and targets")
	addComparisonFlags(cmd)
	return cmd
}

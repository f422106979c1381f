package benchmarks

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
	"github.com/zerbeln/GridWorld/grid"
	"github.com/zerbeln/GridWorld/types"
)

func SingleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "single",
		Short: "Train a single agent on its local reward and print its solution",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Agents = 1
			w, err := types.BuildWorld(cfg)
			if err != nil {
				return err
			}
			res, err := types.TrainSingle(cmd.Context(), w, cfg.LearnerConfig(), cfg.Epochs, cfg.Steps, cfg.Seed)
			if err != nil {
				return err
			}

			w.Print(os.Stdout, []grid.Position{res.Learner.Location})
			if res.Reached {
				fmt.Printf("reached %s in %d moves: %v\n", res.Target, len(res.Moves), res.Moves)
			} else {
				fmt.Printf("no target within %d steps\n", cfg.Steps)
			}

			if err := os.MkdirAll(cfg.SavePath, os.ModePerm); err != nil {
				return err
			}
			values := grid.NewValueMap(w, res.Learner.StateValues())
			if err := grid.PlotValueMap(values, "State values", path.Join(cfg.SavePath, "single_values.png")); err != nil {
				return err
			}
			return res.Learner.Table().Record(path.Join(cfg.SavePath, "single_qtable.json"))
		},
	}
}

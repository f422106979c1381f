package benchmarks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zerbeln/GridWorld/types"
)

func ManualCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "manual",
		Short: "Walk a single agent to its target without learning",
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
			sol, err := types.SolveManually(w)
			if err != nil {
				return err
			}
			w.Print(os.Stdout, w.Agents)
			fmt.Printf("from %s to %s in %d moves: %v\n", sol.Start, sol.Target, len(sol.Moves), sol.Moves)
			fmt.Printf("final reward %.2f\n", sol.Reward)
			return nil
		},
	}
}

package benchmarks

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zerbeln/GridWorld/grid"
	"github.com/zerbeln/GridWorld/types"
)

func CreateCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a random world and write its files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.WorldDir = ""
			w, err := types.BuildWorld(cfg)
			if err != nil {
				return err
			}
			if err := grid.SaveWorld(out, w); err != nil {
				return err
			}
			w.Print(os.Stdout, w.Agents)
			fmt.Printf("wrote %s and %s to %s\n", grid.TargetsFile, grid.AgentsFile, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "world", "Folder for the world files")
	return cmd
}

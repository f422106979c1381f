package benchmarks

import (
	"github.com/spf13/cobra"
	"github.com/zerbeln/GridWorld/server"
)

func ServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Browse the results in the save folder over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.New(vp.GetString("save_path")).Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Listen address")
	return cmd
}

package benchmarks

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zerbeln/GridWorld/types"
)

var (
	vp         *viper.Viper
	configFile string
	verbose    bool
	cpuprofile string
	memprofile string
)

func GetRootCommand() *cobra.Command {
	vp = viper.New()
	types.SetDefaults(vp)

	rootCommand := &cobra.Command{
		Use:           "gridworld",
		Short:         "Credit assignment experiments for teams of Q-learners on a grid",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if configFile != "" {
				return types.ReadConfigFile(vp, configFile)
			}
			return nil
		},
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Experiment file (yaml), flags override its values")
	flags.IntP("epochs", "e", 3000, "Number of training epochs per run")
	flags.Int("steps", 20, "Timesteps per episode")
	flags.Int("runs", 30, "Number of statistical runs")
	flags.StringP("save", "s", "results", "Save the result data in the specified folder")
	flags.Uint64("seed", 1, "Seed of the world and the learners")
	flags.Int("parallel", 1, "Number of runs executed concurrently")
	flags.Int("width", 10, "Width of the grid")
	flags.Int("height", 10, "Height of the grid")
	flags.Int("agents", 3, "Number of agents")
	flags.Int("targets", 3, "Number of targets")
	flags.Float64("penalty", 0, "Penalty for every uncaptured target")
	flags.Bool("value-weighted", false, "Give targets values and weight the rewards by them")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	flags.StringVar(&cpuprofile, "cpuprofile", "", "Write a cpu profile to this file in the save folder")
	flags.StringVar(&memprofile, "memprofile", "", "Write a memory profile to this file in the save folder")

	bindFlags(flags, map[string]string{
		"epochs":         "epochs",
		"steps":          "steps",
		"runs":           "runs",
		"save":           "save_path",
		"seed":           "seed",
		"parallel":       "parallelism",
		"width":          "width",
		"height":         "height",
		"agents":         "agents",
		"targets":        "targets",
		"penalty":        "step_penalty",
		"value-weighted": "value_weighted",
	})

	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(ScaleCommand())
	rootCommand.AddCommand(CreateCommand())
	rootCommand.AddCommand(ManualCommand())
	rootCommand.AddCommand(SingleCommand())
	rootCommand.AddCommand(ServeCommand())
	return rootCommand
}

// bindFlags binds flag names to config keys so a set flag overrides the file
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := vp.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func loadConfig() (*types.ExperimentConfig, error) {
	return types.ConfigFromViper(vp)
}

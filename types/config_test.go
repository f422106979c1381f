package types

import (
	"errors"
	"os"
	"path"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zerbeln/GridWorld/credit"
)

func TestExperimentConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := DefaultExperimentConfig()

		Convey("it validates and runs every strategy", func() {
			So(cfg.Validate(), ShouldBeNil)
			kinds, err := cfg.Kinds()
			So(err, ShouldBeNil)
			So(kinds, ShouldResemble, credit.AllKinds())
			So(cfg.Width, ShouldEqual, 10)
			So(cfg.Learner.Epsilon, ShouldEqual, 0.1)
			So(cfg.Credit.CFLDistance, ShouldEqual, 4)
		})

		Convey("bad values are rejected", func() {
			for _, mutate := range []func(*ExperimentConfig){
				func(c *ExperimentConfig) { c.Width = 0 },
				func(c *ExperimentConfig) { c.Height = 12 },
				func(c *ExperimentConfig) { c.Agents = 0 },
				func(c *ExperimentConfig) { c.Targets = 99 },
				func(c *ExperimentConfig) { c.Steps = 0 },
				func(c *ExperimentConfig) { c.Runs = -1 },
				func(c *ExperimentConfig) { c.Parallelism = 0 },
				func(c *ExperimentConfig) { c.StepPenalty = -1 },
				func(c *ExperimentConfig) { c.Learner.Alpha = 1.5 },
				func(c *ExperimentConfig) { c.Credit.CFLDistance = 0 },
				func(c *ExperimentConfig) { c.Strategies = []string{"global", "nope"} },
			} {
				c := DefaultExperimentConfig()
				mutate(c)
				So(errors.Is(c.Validate(), ErrInvalidConfig), ShouldBeTrue)
			}
		})

		Convey("the derived configurations carry the values", func() {
			cfg.StepPenalty = 2
			cfg.Seed = 5
			So(cfg.CreditParams().Seed, ShouldEqual, 5)
			So(cfg.LearnerConfig().Alpha, ShouldEqual, cfg.Learner.Alpha)
			cc := cfg.ComparisonConfig()
			So(cc.Runs, ShouldEqual, cfg.Runs)
			So(cc.RecordPath, ShouldEqual, "results")
			So(cc.Experiment, ShouldEqual, cfg)
		})
	})

	Convey("Given an experiment file", t, func() {
		file := path.Join(t.TempDir(), "experiment.yaml")
		content := `width: 6
height: 6
agents: 2
targets: 2
epochs: 50
strategies: [global, difference, cfl-split]
learner:
  epsilon: 0.2
credit:
  shaping_discount: 0.5
`
		So(os.WriteFile(file, []byte(content), 0644), ShouldBeNil)

		vp := viper.New()
		SetDefaults(vp)
		So(ReadConfigFile(vp, file), ShouldBeNil)
		cfg, err := ConfigFromViper(vp)
		So(err, ShouldBeNil)

		Convey("file values override the defaults", func() {
			So(cfg.Width, ShouldEqual, 6)
			So(cfg.Epochs, ShouldEqual, 50)
			So(cfg.Learner.Epsilon, ShouldEqual, 0.2)
			So(cfg.Learner.Alpha, ShouldEqual, 0.1)
			So(cfg.Credit.ShapingDiscount, ShouldEqual, 0.5)
			kinds, err := cfg.Kinds()
			So(err, ShouldBeNil)
			So(kinds, ShouldResemble, []credit.Kind{credit.Global, credit.Difference, credit.CFLSplit})
		})

		Convey("a random world follows the configuration", func() {
			w, err := BuildWorld(cfg)
			So(err, ShouldBeNil)
			So(w.Width, ShouldEqual, 6)
			So(len(w.Agents), ShouldEqual, 2)
			So(len(w.Targets), ShouldEqual, 2)
			again, err := BuildWorld(cfg)
			So(err, ShouldBeNil)
			So(again.Agents, ShouldResemble, w.Agents)
		})
	})

	Convey("A missing experiment file is an error", t, func() {
		vp := viper.New()
		So(ReadConfigFile(vp, path.Join(t.TempDir(), "missing.yaml")), ShouldNotBeNil)
	})
}

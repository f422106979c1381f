package types

import (
	"errors"
	"fmt"
	"path"

	"github.com/spf13/viper"
	"github.com/zerbeln/GridWorld/credit"
	"github.com/zerbeln/GridWorld/grid"
	"github.com/zerbeln/GridWorld/policies"
)

var ErrInvalidConfig = errors.New("invalid experiment configuration")

// LearnerConfig is the learner section of the experiment file
type LearnerConfig struct {
	Discount            float64 `mapstructure:"discount" yaml:"discount"`
	Alpha               float64 `mapstructure:"alpha" yaml:"alpha"`
	Epsilon             float64 `mapstructure:"epsilon" yaml:"epsilon"`
	Stay                bool    `mapstructure:"stay" yaml:"stay"`
	ConventionalEpsilon bool    `mapstructure:"conventional_epsilon" yaml:"conventional_epsilon"`
}

// CreditConfig is the credit assignment section of the experiment file
type CreditConfig struct {
	CFLDistance     int     `mapstructure:"cfl_distance" yaml:"cfl_distance"`
	ShapingDiscount float64 `mapstructure:"shaping_discount" yaml:"shaping_discount"`
	PotentialDrift  float64 `mapstructure:"potential_drift" yaml:"potential_drift"`
}

// RedisConfig enables the redis curve sink when Addr is set
type RedisConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// ExperimentConfig is the resolved configuration of a training session
type ExperimentConfig struct {
	Width   int `mapstructure:"width" yaml:"width"`
	Height  int `mapstructure:"height" yaml:"height"`
	Agents  int `mapstructure:"agents" yaml:"agents"`
	Targets int `mapstructure:"targets" yaml:"targets"`
	// Steps is the episode horizon
	Steps  int `mapstructure:"steps" yaml:"steps"`
	Epochs int `mapstructure:"epochs" yaml:"epochs"`
	// Runs is the number of statistical runs
	Runs        int    `mapstructure:"runs" yaml:"runs"`
	Seed        uint64 `mapstructure:"seed" yaml:"seed"`
	Parallelism int    `mapstructure:"parallelism" yaml:"parallelism"`

	Reward        float64 `mapstructure:"reward" yaml:"reward"`
	StepPenalty   float64 `mapstructure:"step_penalty" yaml:"step_penalty"`
	ValueWeighted bool    `mapstructure:"value_weighted" yaml:"value_weighted"`
	// WorldDir holds targets.csv and agents.csv; empty for a random world
	WorldDir string `mapstructure:"world_dir" yaml:"world_dir"`
	SavePath string `mapstructure:"save_path" yaml:"save_path"`

	Strategies []string      `mapstructure:"strategies" yaml:"strategies"`
	Learner    LearnerConfig `mapstructure:"learner" yaml:"learner"`
	Credit     CreditConfig  `mapstructure:"credit" yaml:"credit"`
	Redis      RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Progress   bool          `mapstructure:"progress" yaml:"progress"`
}

// SetDefaults registers the default of every key on vp
func SetDefaults(vp *viper.Viper) {
	learner := policies.DefaultQLearnerConfig()
	params := credit.DefaultParams()

	vp.SetDefault("width", 10)
	vp.SetDefault("height", 10)
	vp.SetDefault("agents", 3)
	vp.SetDefault("targets", 3)
	vp.SetDefault("steps", 20)
	vp.SetDefault("epochs", 3000)
	vp.SetDefault("runs", 30)
	vp.SetDefault("seed", 1)
	vp.SetDefault("parallelism", 1)
	vp.SetDefault("reward", grid.DefaultReward)
	vp.SetDefault("step_penalty", 0.0)
	vp.SetDefault("value_weighted", false)
	vp.SetDefault("world_dir", "")
	vp.SetDefault("save_path", "results")
	vp.SetDefault("strategies", credit.AllTags())
	vp.SetDefault("learner.discount", learner.Discount)
	vp.SetDefault("learner.alpha", learner.Alpha)
	vp.SetDefault("learner.epsilon", learner.Epsilon)
	vp.SetDefault("learner.stay", false)
	vp.SetDefault("learner.conventional_epsilon", false)
	vp.SetDefault("credit.cfl_distance", params.CFLDistance)
	vp.SetDefault("credit.shaping_discount", params.ShapingDiscount)
	vp.SetDefault("credit.potential_drift", params.PotentialDrift)
	vp.SetDefault("redis.addr", "")
	vp.SetDefault("redis.prefix", "gridworld")
	vp.SetDefault("progress", true)
}

// DefaultExperimentConfig is the configuration with every default applied
func DefaultExperimentConfig() *ExperimentConfig {
	vp := viper.New()
	SetDefaults(vp)
	cfg, err := ConfigFromViper(vp)
	if err != nil {
		panic(err)
	}
	return cfg
}

// ReadConfigFile loads a yaml experiment file into vp
func ReadConfigFile(vp *viper.Viper, file string) error {
	dir, name := path.Split(file)
	if dir == "" {
		dir = "."
	}
	vp.SetConfigFile(file)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(dir)
	if err := vp.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", name, err)
	}
	return nil
}

// ConfigFromViper decodes and validates the experiment configuration
func ConfigFromViper(vp *viper.Viper) (*ExperimentConfig, error) {
	cfg := &ExperimentConfig{}
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ExperimentConfig) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return invalid("grid dimensions %dx%d must be positive", c.Width, c.Height)
	case c.Width != c.Height:
		return invalid("grid must be square, got %dx%d", c.Width, c.Height)
	case c.Agents <= 0:
		return invalid("need at least one agent")
	case c.Targets <= 0:
		return invalid("need at least one target")
	case c.Agents+c.Targets > c.Width*c.Height:
		return invalid("%d agents and %d targets do not fit %d cells", c.Agents, c.Targets, c.Width*c.Height)
	case c.Steps <= 0:
		return invalid("steps must be positive")
	case c.Epochs <= 0:
		return invalid("epochs must be positive")
	case c.Runs <= 0:
		return invalid("runs must be positive")
	case c.Parallelism <= 0:
		return invalid("parallelism must be positive")
	case c.StepPenalty < 0:
		return invalid("step penalty must not be negative")
	case c.Credit.CFLDistance <= 0:
		return invalid("cfl distance must be positive")
	case c.Credit.PotentialDrift < 0:
		return invalid("potential drift must not be negative")
	}
	for name, rate := range map[string]float64{
		"learner.discount":        c.Learner.Discount,
		"learner.alpha":           c.Learner.Alpha,
		"learner.epsilon":         c.Learner.Epsilon,
		"credit.shaping_discount": c.Credit.ShapingDiscount,
	} {
		if rate < 0 || rate > 1 {
			return invalid("%s = %v outside [0, 1]", name, rate)
		}
	}
	if _, err := c.Kinds(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Kinds resolves the strategy tags
func (c *ExperimentConfig) Kinds() ([]credit.Kind, error) {
	if len(c.Strategies) == 0 {
		return credit.AllKinds(), nil
	}
	return credit.ParseKinds(c.Strategies)
}

func (c *ExperimentConfig) LearnerConfig() policies.QLearnerConfig {
	return policies.QLearnerConfig{
		Discount:            c.Learner.Discount,
		Alpha:               c.Learner.Alpha,
		Epsilon:             c.Learner.Epsilon,
		WithStay:            c.Learner.Stay,
		ConventionalEpsilon: c.Learner.ConventionalEpsilon,
	}
}

func (c *ExperimentConfig) CreditParams() credit.Params {
	return credit.Params{
		CFLDistance:     c.Credit.CFLDistance,
		ShapingDiscount: c.Credit.ShapingDiscount,
		PotentialDrift:  c.Credit.PotentialDrift,
		Seed:            c.Seed,
	}
}

func (c *ExperimentConfig) WorldOptions() []grid.Option {
	return []grid.Option{
		grid.WithReward(c.Reward),
		grid.WithStepPenalty(c.StepPenalty),
		grid.WithValueWeighted(c.ValueWeighted),
	}
}

// ComparisonConfig derives the harness configuration
func (c *ExperimentConfig) ComparisonConfig() *ComparisonConfig {
	return &ComparisonConfig{
		Runs:         c.Runs,
		Epochs:       c.Epochs,
		Steps:        c.Steps,
		Seed:         c.Seed,
		Parallelism:  c.Parallelism,
		RecordPath:   c.SavePath,
		Learner:      c.LearnerConfig(),
		Credit:       c.CreditParams(),
		ShowProgress: c.Progress,
		Experiment:   c,
	}
}

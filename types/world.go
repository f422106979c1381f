package types

import (
	"github.com/sirupsen/logrus"
	"github.com/zerbeln/GridWorld/grid"
	"golang.org/x/exp/rand"
)

// BuildWorld loads the world files of cfg, or creates a random world from the
// seed when no world directory is configured
func BuildWorld(cfg *ExperimentConfig) (*grid.World, error) {
	if cfg.WorldDir != "" {
		logrus.WithField("dir", cfg.WorldDir).Debug("loading world")
		return grid.LoadWorld(cfg.WorldDir, cfg.Width, cfg.Height, cfg.Agents, cfg.Targets, cfg.WorldOptions()...)
	}
	w, err := grid.NewWorld(cfg.Width, cfg.Height, cfg.WorldOptions()...)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	if err := w.Populate(cfg.Agents, cfg.Targets, rng); err != nil {
		return nil, err
	}
	if cfg.ValueWeighted {
		w.PopulateValues(rng)
	}
	return w, nil
}

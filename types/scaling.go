package types

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/zerbeln/GridWorld/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Scaling collects the final reward of every strategy over a sweep of team
// sizes. Sizes are recorded in the order the comparisons run.
type Scaling struct {
	Sizes  []int
	Names  []string
	finals map[string][]FinalReward
}

func NewScaling() *Scaling {
	return &Scaling{
		finals: make(map[string][]FinalReward),
	}
}

// Record returns the comparator that stores the FinalReward datasets of the
// comparison run with size agents and targets
func (s *Scaling) Record(size int) Comparator {
	return func(names []string, ds []DataSet) error {
		if len(s.Sizes) > 0 && !sameNames(s.Names, names) {
			return fmt.Errorf("size %d compares %v, earlier sizes compared %v", size, names, s.Names)
		}
		if len(s.Sizes) == 0 {
			s.Names = append([]string(nil), names...)
		}
		s.Sizes = append(s.Sizes, size)
		for i, name := range names {
			s.finals[name] = append(s.finals[name], ds[i].(FinalReward))
		}
		return nil
	}
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Finals of the named strategy, indexed like Sizes
func (s *Scaling) Finals(name string) []FinalReward {
	return s.finals[name]
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Plot draws the final reward against the team size, one line per strategy
// with standard error bars
func (s *Scaling) Plot(plotPath string) error {
	if err := ensureDir(plotPath); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Agent scaling"
	p.X.Label.Text = "Number of agents/targets"
	p.Y.Label.Text = "Final global reward"
	for i, name := range s.Names {
		finals := s.finals[name]
		points := errorPoints{
			XYs:     make(plotter.XYs, len(finals)),
			YErrors: make(plotter.YErrors, len(finals)),
		}
		for k, f := range finals {
			points.XYs[k] = plotter.XY{X: float64(s.Sizes[k]), Y: f.Mean}
			points.YErrors[k].Low = f.StdErr
			points.YErrors[k].High = f.StdErr
		}
		line, scatter, err := plotter.NewLinePoints(points)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		scatter.Color = plotutil.Color(i)
		scatter.Shape = plotutil.Shape(i)
		bars, err := plotter.NewYErrorBars(points)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", name, err)
		}
		bars.Color = plotutil.Color(i)
		p.Add(line, scatter, bars)
		p.Legend.Add(name, line, scatter)
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, "scaling.png"))
}

// Save writes scaling.csv to recordPath: a header of strategy names and one
// row of final mean rewards per size
func (s *Scaling) Save(recordPath string) error {
	if err := ensureDir(recordPath); err != nil {
		return err
	}
	lines := []string{"n," + strings.Join(s.Names, ",")}
	for k, size := range s.Sizes {
		cells := []string{strconv.Itoa(size)}
		for _, name := range s.Names {
			cells = append(cells, strconv.FormatFloat(s.finals[name][k].Mean, 'g', -1, 64))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return util.WriteToFile(path.Join(recordPath, "scaling.csv"), lines...)
}

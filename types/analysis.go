package types

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/sirupsen/logrus"
	"github.com/zerbeln/GridWorld/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// CurveAnalyzer keeps the curves of the last analyzed experiment
type CurveAnalyzer struct {
	curves *Curves
}

var _ Analyzer = &CurveAnalyzer{}

func NewCurveAnalyzer() *CurveAnalyzer {
	return &CurveAnalyzer{}
}

func (a *CurveAnalyzer) Analyze(_ string, curves *Curves) {
	a.curves = curves
}

func (a *CurveAnalyzer) DataSet() DataSet {
	return a.curves
}

func (a *CurveAnalyzer) Reset() {
	a.curves = nil
}

// FinalReward summarizes one experiment by its last epoch
type FinalReward struct {
	Mean   float64
	StdErr float64
	// Best is the highest mean reward over all epochs
	Best float64
}

type FinalRewardAnalyzer struct {
	result FinalReward
}

var _ Analyzer = &FinalRewardAnalyzer{}

func NewFinalRewardAnalyzer() *FinalRewardAnalyzer {
	return &FinalRewardAnalyzer{}
}

func (a *FinalRewardAnalyzer) Analyze(_ string, curves *Curves) {
	mean := curves.Mean()
	stdErr := curves.StdErr()
	a.result = FinalReward{}
	if len(mean) == 0 {
		return
	}
	a.result.Mean = mean[len(mean)-1]
	a.result.StdErr = stdErr[len(stdErr)-1]
	a.result.Best = mean[0]
	for _, m := range mean {
		if m > a.result.Best {
			a.result.Best = m
		}
	}
}

func (a *FinalRewardAnalyzer) DataSet() DataSet {
	return a.result
}

func (a *FinalRewardAnalyzer) Reset() {
	a.result = FinalReward{}
}

// SummaryComparator logs the final rewards and writes them to summary.txt in
// recordPath
func SummaryComparator(recordPath string) Comparator {
	return func(names []string, ds []DataSet) error {
		lines := make([]string, len(names))
		for i, name := range names {
			r := ds[i].(FinalReward)
			logrus.WithFields(logrus.Fields{
				"experiment": name,
				"final":      r.Mean,
				"stderr":     r.StdErr,
				"best":       r.Best,
			}).Info("summary")
			lines[i] = fmt.Sprintf("%s: final %.2f +- %.2f, best %.2f", name, r.Mean, r.StdErr, r.Best)
		}
		return util.WriteToFile(path.Join(recordPath, "summary.txt"), lines...)
	}
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return os.MkdirAll(dir, os.ModePerm)
	}
	return nil
}

func curvesOf(ds []DataSet) []*Curves {
	out := make([]*Curves, len(ds))
	for i, d := range ds {
		out[i] = d.(*Curves)
	}
	return out
}

// LearningCurvePlotter draws the mean reward per epoch of every experiment
// with a band of one standard error
func LearningCurvePlotter(plotPath string) Comparator {
	return func(names []string, ds []DataSet) error {
		if err := ensureDir(plotPath); err != nil {
			return err
		}
		p := plot.New()
		p.Title.Text = "Learning curves"
		p.X.Label.Text = "Epoch"
		p.Y.Label.Text = "Global reward"
		for i, curves := range curvesOf(ds) {
			mean := curves.Mean()
			stdErr := curves.StdErr()
			points := make(plotter.XYs, len(mean))
			band := make(plotter.XYs, 0, 2*len(mean))
			for e, m := range mean {
				points[e] = plotter.XY{X: float64(e), Y: m}
				band = append(band, plotter.XY{X: float64(e), Y: m + stdErr[e]})
			}
			for e := len(mean) - 1; e >= 0; e-- {
				band = append(band, plotter.XY{X: float64(e), Y: mean[e] - stdErr[e]})
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			if poly, err := plotter.NewPolygon(band); err == nil {
				poly.Color = translucent(plotutil.Color(i))
				poly.LineStyle.Width = 0
				p.Add(poly)
			}
			p.Add(line)
			p.Legend.Add(names[i], line)
		}
		return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, "learning_curves.png"))
	}
}

func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 60}
}

// AgentCurvePlotter draws the per-agent curves of experiments that record them
func AgentCurvePlotter(plotPath string) Comparator {
	return func(names []string, ds []DataSet) error {
		if err := ensureDir(plotPath); err != nil {
			return err
		}
		for i, curves := range curvesOf(ds) {
			if len(curves.AgentRewards) == 0 {
				continue
			}
			p := plot.New()
			p.Title.Text = names[i] + " per agent"
			p.X.Label.Text = "Epoch"
			p.Y.Label.Text = "Local reward"
			for a, runs := range curves.AgentRewards {
				agent := &Curves{Rewards: runs}
				mean := agent.Mean()
				points := make(plotter.XYs, len(mean))
				for e, m := range mean {
					points[e] = plotter.XY{X: float64(e), Y: m}
				}
				line, err := plotter.NewLine(points)
				if err != nil {
					continue
				}
				line.Color = plotutil.Color(a)
				p.Add(line)
				p.Legend.Add(fmt.Sprintf("agent %d", a), line)
			}
			if err := p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, names[i]+"_agents.png")); err != nil {
				return err
			}
		}
		return nil
	}
}

// LearningCurveHTML renders the mean curves as an interactive html page
func LearningCurveHTML(reportPath string) Comparator {
	return func(names []string, ds []DataSet) error {
		if err := ensureDir(reportPath); err != nil {
			return err
		}
		f, err := os.Create(path.Join(reportPath, "learning_curves.html"))
		if err != nil {
			return err
		}
		defer f.Close()
		return RenderLearningCurves(f, names, curvesOf(ds))
	}
}

// RenderLearningCurves writes one line chart with a series per experiment
func RenderLearningCurves(w io.Writer, names []string, curves []*Curves) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Learning curves",
			Subtitle: strings.Join(names, ", "),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	epochs := 0
	for _, c := range curves {
		if c.Epochs() > epochs {
			epochs = c.Epochs()
		}
	}
	steps := make([]string, epochs)
	for e := range steps {
		steps[e] = fmt.Sprintf("%d", e)
	}
	line.SetXAxis(steps)
	for i, c := range curves {
		items := make([]opts.LineData, 0, c.Epochs())
		for _, m := range c.Mean() {
			items = append(items, opts.LineData{Value: m})
		}
		line.AddSeries(names[i], items)
	}

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

// CurveSaver hands every experiment's curves to the savers
func CurveSaver(savers ...Saver) Comparator {
	return func(names []string, ds []DataSet) error {
		for _, curves := range curvesOf(ds) {
			for _, s := range savers {
				if err := s.Save(curves); err != nil {
					return fmt.Errorf("saving %s: %w", curves.Name, err)
				}
			}
		}
		return nil
	}
}

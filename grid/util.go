package grid

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ValueMap lays out one value per discrete state over the grid cells
type ValueMap struct {
	world  *World
	Values []float64
}

var _ plotter.GridXYZ = &ValueMap{}

func NewValueMap(w *World, values []float64) *ValueMap {
	if len(values) != w.NumStates() {
		panic(fmt.Sprintf("grid: %d values for %d states", len(values), w.NumStates()))
	}
	return &ValueMap{world: w, Values: values}
}

func (v *ValueMap) Dims() (int, int) {
	return v.world.Width, v.world.Height
}

func (v *ValueMap) Z(c, r int) float64 {
	return v.Values[v.world.State(Position{X: c, Y: r})]
}

func (v *ValueMap) X(c int) float64 {
	return float64(c)
}

func (v *ValueMap) Y(r int) float64 {
	return float64(r)
}

func (v *ValueMap) Min() float64 {
	min := v.Values[0]
	for _, val := range v.Values {
		if val < min {
			min = val
		}
	}
	return min
}

func (v *ValueMap) Max() float64 {
	max := v.Values[0]
	for _, val := range v.Values {
		if val > max {
			max = val
		}
	}
	return max
}

// PlotValueMap saves a heat map of the values with the targets marked
func PlotValueMap(v *ValueMap, title, file string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	heat := plotter.NewHeatMap(v, palette.Heat(20, 1))
	if heat.Max == heat.Min {
		heat.Max = heat.Min + 1
	}
	p.Add(heat)

	if len(v.world.Targets) > 0 {
		points := make(plotter.XYs, len(v.world.Targets))
		for i, t := range v.world.Targets {
			points[i].X = float64(t.X)
			points[i].Y = float64(t.Y)
		}
		scatter, err := plotter.NewScatter(points)
		if err != nil {
			return err
		}
		p.Add(scatter)
		p.Legend.Add("targets", scatter)
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, file)
}

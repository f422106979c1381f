package grid

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
)

// Print draws the grid with the top row first. Agents are shown by index,
// captured targets in green and free targets in red.
func (w *World) Print(out io.Writer, locations []Position) {
	for y := w.Height - 1; y >= 0; y-- {
		for x := 0; x < w.Width; x++ {
			p := Position{X: x, Y: y}
			agent := -1
			for i, loc := range locations {
				if loc == p {
					agent = i
					break
				}
			}
			_, target := w.TargetAt(p)
			switch {
			case agent >= 0 && target:
				fmt.Fprint(out, aurora.Green(fmt.Sprintf("%2d", agent)))
			case agent >= 0:
				fmt.Fprint(out, aurora.Blue(fmt.Sprintf("%2d", agent)))
			case target:
				fmt.Fprint(out, aurora.Red(" T"))
			default:
				fmt.Fprint(out, " .")
			}
		}
		fmt.Fprintln(out)
	}
}

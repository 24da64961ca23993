/*
Copyright © 2026 the cfdtools authors.
This file is part of cfdtools.

cfdtools is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

cfdtools is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with cfdtools.  If not, see <http://www.gnu.org/licenses/>.
*/

package export

import (
	"fmt"

	"github.com/YangYunjia/cfdtools/tecplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

// PlotLines returns an x-y plot of variable y against variable x with
// one line for each line zone of ds, labeled with the zone name.
// Surface, volume and finite-element zones are skipped.
func PlotLines(ds *tecplot.Dataset, x, y string) (*plot.Plot, error) {
	ix, iy := ds.VariableIndex(x), ds.VariableIndex(y)
	if ix < 0 {
		return nil, fmt.Errorf("export: plot: no variable %q in %v", x, ds.Variables)
	}
	if iy < 0 {
		return nil, fmt.Errorf("export: plot: no variable %q in %v", y, ds.Variables)
	}

	p := plot.New()
	if ds.Title != "" {
		p.Title.Text = ds.Title
	}
	p.X.Label.Text = x
	p.Y.Label.Text = y
	p.Add(plotter.NewGrid())

	var n int
	for _, z := range ds.Zones {
		if !z.IsLine() || z.Header.ZoneType.IsFE() {
			continue
		}
		xys := make(plotter.XYs, z.NumPoints())
		for i := range xys {
			xys[i].X = z.Data[ix].Elements[i]
			xys[i].Y = z.Data[iy].Elements[i]
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("export: plot: zone %q: %v", z.Name(), err)
		}
		l.Color = plotutil.Color(n)
		l.Dashes = plotutil.Dashes(n)
		p.Add(l)
		p.Legend.Add(z.Name(), l)
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("export: plot: dataset has no line zones")
	}
	return p, nil
}

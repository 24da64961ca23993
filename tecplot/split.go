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

package tecplot

import (
	"fmt"
)

// SplitByIndex cuts every line zone in zones at the given point
// indices and returns the pieces in order. Each source zone yields
// len(boundaries)+1 zones: the points before boundaries[0], the points
// between consecutive boundaries, and the points from the last boundary
// on. Boundaries must be non-decreasing and lie in [0, n] for a zone of
// n points; equal boundaries yield empty zones.
//
// Piece i is titled names[i]. If names does not hold exactly one name
// per piece, the pieces are titled "Zone 0", "Zone 1", and so on. The
// returned zones hold copies of the source data.
func SplitByIndex(zones []*Zone, boundaries []int, names []string) ([]*Zone, error) {
	if len(names) != len(boundaries)+1 {
		names = make([]string, len(boundaries)+1)
		for i := range names {
			names[i] = fmt.Sprintf("Zone %d", i)
		}
	}
	var o []*Zone
	for _, z := range zones {
		if !z.IsLine() {
			return nil, fmt.Errorf("tecplot: zone %q has shape %v; only line zones can be split", z.Name(), z.Shape())
		}
		if z.Header.ZoneType.IsFE() {
			return nil, fmt.Errorf("tecplot: zone %q is a %v zone; only ordered zones can be split", z.Name(), z.Header.ZoneType)
		}
		n := z.NumPoints()
		prev := 0
		for _, b := range boundaries {
			if b < prev || b > n {
				return nil, fmt.Errorf("%w: %v for zone %q with %d points", ErrSplitBoundary, boundaries, z.Name(), n)
			}
			prev = b
		}

		start := 0
		for i := 0; i <= len(boundaries); i++ {
			end := n
			if i < len(boundaries) {
				end = boundaries[i]
			}
			o = append(o, slice(z, start, end, names[i]))
			start = end
		}
	}
	return o, nil
}

// slice returns a new line zone holding points [start, end) of z.
func slice(z *Zone, start, end int, name string) *Zone {
	h := z.Header.copy()
	h.Title = name
	h.I, h.J, h.K = end-start, 1, 1
	o := &Zone{Header: h, Data: make([]*Array, len(z.Data))}
	for i, a := range z.Data {
		p := NewLine(a.Elements[start:end])
		p.Kind = a.Kind
		o.Data[i] = p
	}
	return o
}

// Merge returns a dataset holding copies of the zones of every dataset
// in ds, in order. All datasets must have the same variables in the
// same order. The title is taken from the first dataset.
func Merge(ds ...*Dataset) (*Dataset, error) {
	if len(ds) == 0 {
		return new(Dataset), nil
	}
	o := &Dataset{
		Title:     ds[0].Title,
		Variables: append([]string(nil), ds[0].Variables...),
	}
	for i, d := range ds {
		if !sameVariables(d.Variables, o.Variables) {
			return nil, fmt.Errorf("%w: dataset %d has %q but dataset 0 has %q",
				ErrVariableMismatch, i, d.Variables, o.Variables)
		}
		for _, z := range d.Zones {
			o.Zones = append(o.Zones, z.Copy())
		}
	}
	return o, nil
}

func sameVariables(a, b []string) bool {
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

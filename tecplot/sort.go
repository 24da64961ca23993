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

	"gonum.org/v1/gonum/floats"
)

// SortBy returns a copy of d in which the points of every zone are
// reordered by ascending values of the named variable. Structured zones
// keep their shape, with the points taken in storage order. The node
// indices of finite-element zones are renumbered to follow their nodes.
// d itself is not modified.
func (d *Dataset) SortBy(variable string) (*Dataset, error) {
	o := d.Copy()
	if err := o.sortZones(variable); err != nil {
		return nil, err
	}
	return o, nil
}

// sortZones sorts the zones of d in place.
func (d *Dataset) sortZones(variable string) error {
	idx := d.VariableIndex(variable)
	if idx < 0 {
		return fmt.Errorf("%w %q; variables are %q", ErrUnknownSortKey, variable, d.Variables)
	}
	for _, z := range d.Zones {
		if idx >= len(z.Data) || z.Data[idx] == nil {
			continue
		}
		sortZone(z, idx)
	}
	return nil
}

// sortZone applies the ascending permutation of z.Data[idx] to every
// array of z, which keeps the arrays parallel.
func sortZone(z *Zone, idx int) {
	key := append([]float64(nil), z.Data[idx].Elements...)
	perm := make([]int, len(key))
	floats.ArgsortStable(key, perm)
	tmp := make([]float64, len(key))
	for _, a := range z.Data {
		if a == nil || len(a.Elements) != len(perm) {
			continue
		}
		for i, j := range perm {
			tmp[i] = a.Elements[j]
		}
		copy(a.Elements, tmp)
	}
	if z.Connectivity == nil {
		return
	}
	// Node j moves to position newIndex[j]; indices are 1-based.
	newIndex := make([]int, len(perm))
	for i, j := range perm {
		newIndex[j] = i
	}
	for _, elem := range z.Connectivity {
		for k, n := range elem {
			if n >= 1 && n <= len(newIndex) {
				elem[k] = newIndex[n-1] + 1
			}
		}
	}
}

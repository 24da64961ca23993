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

// Package export converts Tecplot datasets to other file formats:
// netCDF, Excel workbooks and x-y line plots.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/YangYunjia/cfdtools/tecplot"
	"github.com/ctessum/cdf"
)

// NetCDF writes ds to w as a classic netCDF file. Every zone gets its
// own dimensions, named "zone<n>_i", "zone<n>_j" and "zone<n>_k" after
// the zone shape, and one float64 variable per dataset variable named
// "zone<n>_<variable>". Connectivity of finite-element zones is written
// as an int32 variable "zone<n>_connectivity". Zones without points are
// skipped, because netCDF reserves zero-length dimensions for records.
func NetCDF(w cdf.ReaderWriterAt, ds *tecplot.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	var (
		dims     []string
		lengths  []int
		zoneDims = make([][]string, len(ds.Zones))
	)
	axes := []string{"i", "j", "k"}
	varNames := netCDFNames(ds.Variables)
	for iz, z := range ds.Zones {
		if z.NumPoints() == 0 {
			continue
		}
		prefix := fmt.Sprintf("zone%d_", iz+1)
		var zdims []string
		for i, n := range z.Shape() {
			zdims = append(zdims, prefix+axes[i])
			lengths = append(lengths, n)
		}
		dims = append(dims, zdims...)
		if hasConnectivity(z) {
			dims = append(dims, prefix+"elements", prefix+"corners")
			lengths = append(lengths, len(z.Connectivity), len(z.Connectivity[0]))
		}
		zoneDims[iz] = zdims
	}

	h := cdf.NewHeader(dims, lengths)
	if ds.Title != "" {
		h.AddAttribute("", "title", ds.Title)
	}
	h.AddAttribute("", "source", "Tecplot ASCII dataset")
	for iz, z := range ds.Zones {
		zdims := zoneDims[iz]
		if zdims == nil {
			continue
		}
		prefix := fmt.Sprintf("zone%d_", iz+1)
		for iv, v := range ds.Variables {
			name := prefix + varNames[iv]
			h.AddVariable(name, zdims, []float64{0.})
			h.AddAttribute(name, "zone", z.Name())
			h.AddAttribute(name, "variable", v)
		}
		if hasConnectivity(z) {
			name := prefix + "connectivity"
			h.AddVariable(name, []string{prefix + "elements", prefix + "corners"}, []int32{0})
			h.AddAttribute(name, "description", "1-based node indices of each element")
		}
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("export: creating netcdf header: %v", err)
	}

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("export: creating netcdf file: %v", err)
	}
	for iz, z := range ds.Zones {
		if zoneDims[iz] == nil {
			continue
		}
		prefix := fmt.Sprintf("zone%d_", iz+1)
		for iv := range ds.Variables {
			name := prefix + varNames[iv]
			a := z.Data[iv]
			start := make([]int, len(a.Shape))
			wr := f.Writer(name, start, f.Header.Lengths(name))
			if _, err := wr.Write(a.Elements); err != nil {
				return fmt.Errorf("export: writing variable %s to netcdf file: %v", name, err)
			}
		}
		if hasConnectivity(z) {
			name := prefix + "connectivity"
			conn := make([]int32, 0, len(z.Connectivity)*len(z.Connectivity[0]))
			for _, e := range z.Connectivity {
				for _, n := range e {
					conn = append(conn, int32(n))
				}
			}
			wr := f.Writer(name, []int{0, 0}, f.Header.Lengths(name))
			if _, err := wr.Write(conn); err != nil {
				return fmt.Errorf("export: writing %s to netcdf file: %v", name, err)
			}
		}
	}
	return nil
}

// hasConnectivity reports whether z has rectangular, non-empty connectivity.
func hasConnectivity(z *tecplot.Zone) bool {
	if len(z.Connectivity) == 0 || len(z.Connectivity[0]) == 0 {
		return false
	}
	for _, e := range z.Connectivity {
		if len(e) != len(z.Connectivity[0]) {
			return false
		}
	}
	return true
}

// netCDFNames returns unique netCDF names for the given variables.
func netCDFNames(vars []string) []string {
	o := make([]string, len(vars))
	seen := map[string]bool{"connectivity": true, "i": true, "j": true, "k": true, "elements": true, "corners": true}
	for i, v := range vars {
		name := sanitize(v)
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", sanitize(v), n)
		}
		seen[name] = true
		o[i] = name
	}
	return o
}

// sanitize converts a Tecplot variable name to a netCDF name.
func sanitize(name string) string {
	s := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if s == "" {
		return "_"
	}
	return s
}

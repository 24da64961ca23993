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

// Package tecplot reads and writes the Tecplot ASCII data-interchange
// format. A file holds a title, a list of variable names and one or more
// zones; each zone holds one numeric array per variable, laid out as
// 1-D line data, 2-D structured surface data or 3-D volume data.
package tecplot

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ctessum/sparse"
)

// Kind specifies how the elements of an Array are printed.
type Kind int

// The element kinds. The format does not distinguish integers from
// floating point values on read, so arrays that are read are always Float.
const (
	Float Kind = iota
	Integer
)

// formatters append the text form of a single element of each Kind.
var formatters = [...]func([]byte, float64) []byte{
	Float: func(b []byte, v float64) []byte {
		return strconv.AppendFloat(b, v, 'e', 6, 64)
	},
	Integer: func(b []byte, v float64) []byte {
		return strconv.AppendInt(b, int64(math.Round(v)), 10)
	},
}

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Array is an n-dimensional array holding the values of one variable in
// one zone. Elements are stored in row-major order with the last index
// varying fastest, which is also the order they appear in a file.
type Array struct {
	*sparse.DenseArray

	// Kind selects the print format used by the writer.
	Kind Kind
}

// NewArray returns a zero-valued Float array with the given shape.
func NewArray(shape ...int) *Array {
	s := make([]int, len(shape))
	copy(s, shape)
	return &Array{DenseArray: sparse.ZerosDense(s...)}
}

// NewLine returns a 1-D Float array holding a copy of values.
func NewLine(values []float64) *Array {
	a := NewArray(len(values))
	copy(a.Elements, values)
	return a
}

// NewIntegerLine returns a 1-D Integer array holding values.
func NewIntegerLine(values []int) *Array {
	a := NewArray(len(values))
	a.Kind = Integer
	for i, v := range values {
		a.Elements[i] = float64(v)
	}
	return a
}

// NewSurface returns a 2-D Float array with the given number of rows
// and columns, filled row by row from values. It panics if
// len(values) != rows*cols.
func NewSurface(rows, cols int, values []float64) *Array {
	if len(values) != rows*cols {
		panic(fmt.Errorf("tecplot: NewSurface: %d values for a %dx%d surface", len(values), rows, cols))
	}
	a := NewArray(rows, cols)
	copy(a.Elements, values)
	return a
}

// Len returns the number of elements in a.
func (a *Array) Len() int { return len(a.Elements) }

// Copy returns a deep copy of a.
func (a *Array) Copy() *Array {
	o := NewArray(a.Shape...)
	copy(o.Elements, a.Elements)
	o.Kind = a.Kind
	return o
}

// sameShape reports whether a and b have identical shapes.
func sameShape(a, b []int) bool {
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

// Zone is a named block of data sharing one shape and one set of
// variable arrays.
type Zone struct {
	Header ZoneHeader

	// Data holds one array per dataset variable, in variable order.
	// All arrays have the same shape. Passive variables hold zero arrays.
	Data []*Array

	// Connectivity holds the 1-based node indices of each element
	// of a finite-element zone. It is nil for ordered zones.
	Connectivity [][]int
}

// Name returns the zone title.
func (z *Zone) Name() string { return z.Header.Title }

// Shape returns the shape shared by the arrays of z, or nil if z holds no data.
func (z *Zone) Shape() []int {
	for _, a := range z.Data {
		if a != nil {
			return a.Shape
		}
	}
	return nil
}

// NumPoints returns the number of points in z.
func (z *Zone) NumPoints() int {
	for _, a := range z.Data {
		if a != nil {
			return a.Len()
		}
	}
	return 0
}

// IsLine reports whether z holds 1-D line data.
func (z *Zone) IsLine() bool { return len(z.Shape()) == 1 }

// IsSurface reports whether z holds 2-D structured surface data.
func (z *Zone) IsSurface() bool { return len(z.Shape()) == 2 }

// Copy returns a deep copy of z.
func (z *Zone) Copy() *Zone {
	o := &Zone{
		Header: z.Header.copy(),
		Data:   make([]*Array, len(z.Data)),
	}
	for i, a := range z.Data {
		if a != nil {
			o.Data[i] = a.Copy()
		}
	}
	if z.Connectivity != nil {
		o.Connectivity = make([][]int, len(z.Connectivity))
		for i, e := range z.Connectivity {
			o.Connectivity[i] = append([]int(nil), e...)
		}
	}
	return o
}

// checkShape returns an error if the arrays of z disagree in shape or
// if there are not nvar of them.
func (z *Zone) checkShape(nvar int) error {
	if len(z.Data) != nvar {
		return fmt.Errorf("tecplot: zone %q has %d arrays but the dataset has %d variables: %w",
			z.Name(), len(z.Data), nvar, ErrShape)
	}
	shape := z.Shape()
	for i, a := range z.Data {
		if a == nil {
			return fmt.Errorf("tecplot: zone %q: array %d is nil: %w", z.Name(), i, ErrShape)
		}
		if !sameShape(a.Shape, shape) {
			return fmt.Errorf("tecplot: zone %q: array %d has shape %v but array 0 has shape %v: %w",
				z.Name(), i, a.Shape, shape, ErrShape)
		}
		if a.Kind != Float && a.Kind != Integer {
			return fmt.Errorf("tecplot: zone %q: array %d has invalid kind %v: %w", z.Name(), i, a.Kind, ErrShape)
		}
	}
	if len(shape) > 3 {
		return fmt.Errorf("tecplot: zone %q: %d-dimensional arrays are not supported: %w",
			z.Name(), len(shape), ErrShape)
	}
	if z.Header.ZoneType.IsFE() && len(shape) != 1 {
		return fmt.Errorf("tecplot: finite-element zone %q must hold 1-D nodal arrays, not shape %v: %w",
			z.Name(), shape, ErrShape)
	}
	if !z.Header.ZoneType.IsFE() && z.Connectivity != nil {
		return fmt.Errorf("tecplot: ordered zone %q has element connectivity: %w", z.Name(), ErrShape)
	}
	for _, v := range z.Header.PassiveVars {
		if v < 0 || v >= nvar {
			return fmt.Errorf("tecplot: zone %q: passive variable index %d out of range [0, %d): %w",
				z.Name(), v, nvar, ErrShape)
		}
	}
	return nil
}

// Dataset is the in-memory form of a Tecplot file. Once built, a Dataset
// is treated as an immutable value: operations that change data return
// new zones or datasets.
type Dataset struct {
	Title     string
	Variables []string
	Zones     []*Zone
}

// VariableIndex returns the index of the named variable, or -1 if
// there is no such variable.
func (d *Dataset) VariableIndex(name string) int {
	for i, v := range d.Variables {
		if v == name {
			return i
		}
	}
	return -1
}

// Variable returns the array of the named variable in every zone.
func (d *Dataset) Variable(name string) ([]*Array, error) {
	i := d.VariableIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("tecplot: no variable %q in %v", name, d.Variables)
	}
	o := make([]*Array, len(d.Zones))
	for j, z := range d.Zones {
		o[j] = z.Data[i]
	}
	return o, nil
}

// Validate checks that variable names are unique and that every zone
// holds one array per variable, all of the same shape.
func (d *Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Variables))
	for _, v := range d.Variables {
		if _, ok := seen[v]; ok {
			return fmt.Errorf("tecplot: duplicate variable name %q", v)
		}
		seen[v] = struct{}{}
	}
	for _, z := range d.Zones {
		if err := z.checkShape(len(d.Variables)); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a deep copy of d.
func (d *Dataset) Copy() *Dataset {
	o := &Dataset{
		Title:     d.Title,
		Variables: append([]string(nil), d.Variables...),
		Zones:     make([]*Zone, len(d.Zones)),
	}
	for i, z := range d.Zones {
		o.Zones[i] = z.Copy()
	}
	return o
}

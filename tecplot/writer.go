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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Write writes ds to the file at path, creating or truncating it.
func Write(path string, ds *Dataset) (err error) {
	if err := ds.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tecplot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("tecplot: closing %s: %w", path, cerr)
		}
	}()
	return Encode(f, ds)
}

// Encode writes ds to w in Tecplot ASCII format. Encoding the same
// Dataset twice produces identical output.
func Encode(w io.Writer, ds *Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	e := &encoder{w: bufio.NewWriterSize(w, 1<<16)}

	if ds.Title != "" {
		e.buf = append(e.buf, `TITLE = "`...)
		e.buf = append(e.buf, ds.Title...)
		e.buf = append(e.buf, '"')
		e.endLine()
	}
	e.buf = append(e.buf, "VARIABLES = "...)
	for i, v := range ds.Variables {
		if i > 0 {
			e.buf = append(e.buf, ',')
		}
		e.buf = append(e.buf, '"')
		e.buf = append(e.buf, v...)
		e.buf = append(e.buf, '"')
	}
	e.endLine()

	for i, z := range ds.Zones {
		if err := e.zone(z, i+1, len(ds.Variables)); err != nil {
			return err
		}
	}
	if e.err != nil {
		return fmt.Errorf("tecplot: writing: %w", e.err)
	}
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("tecplot: writing: %w", err)
	}
	return nil
}

// encoder writes one line at a time from a reused buffer. After the
// first write error it writes nothing more.
type encoder struct {
	w   *bufio.Writer
	buf []byte
	err error
}

func (e *encoder) endLine() {
	e.buf = append(e.buf, '\n')
	e.flushBuf()
}

func (e *encoder) flushBuf() {
	if e.err == nil {
		_, e.err = e.w.Write(e.buf)
	}
	e.buf = e.buf[:0]
}

// packing returns the data packing used to write z: the header value if
// set, otherwise POINT for line zones and BLOCK for the rest.
func packing(z *Zone) DataPacking {
	if z.Header.DataPacking != nil {
		return *z.Header.DataPacking
	}
	if z.IsLine() {
		return Point
	}
	return Block
}

// zone writes the header, the data block, the connectivity of a
// finite-element zone and a trailing blank line.
func (e *encoder) zone(z *Zone, izone, nvar int) error {
	h := z.Header.copy()
	p := packing(z)
	h.DataPacking = &p

	size := z.Shape()
	if h.ZoneType.IsFE() {
		elements := h.Elements
		if z.Connectivity != nil {
			elements = len(z.Connectivity)
		}
		size = []int{z.NumPoints(), elements}
		if h.Faces > 0 {
			size = append(size, h.Faces)
		}
	}
	var err error
	if e.buf, err = h.encode(e.buf[:0], size, izone); err != nil {
		return err
	}
	e.flushBuf()

	active := h.activeVars(nvar)
	switch p {
	case Point:
		for i, n := 0, z.NumPoints(); i < n; i++ {
			for k, v := range active {
				if k > 0 {
					e.buf = append(e.buf, ' ')
				}
				a := z.Data[v]
				e.buf = formatters[a.Kind](e.buf, a.Elements[i])
			}
			e.endLine()
		}
	case Block:
		for _, v := range active {
			e.block(z.Data[v])
		}
	default:
		return fmt.Errorf("tecplot: zone %q: invalid data packing %v", h.Title, p)
	}

	for _, elem := range z.Connectivity {
		for i, n := range elem {
			if i > 0 {
				e.buf = append(e.buf, ' ')
			}
			e.buf = strconv.AppendInt(e.buf, int64(n), 10)
		}
		e.endLine()
	}
	e.endLine()
	return nil
}

// block writes the elements of a, one line per run of the last
// (fastest-varying) dimension.
func (e *encoder) block(a *Array) {
	row := len(a.Elements)
	if len(a.Shape) > 1 {
		row = a.Shape[len(a.Shape)-1]
	}
	if row == 0 {
		e.endLine()
		return
	}
	f := formatters[a.Kind]
	for start := 0; start < len(a.Elements); start += row {
		for i, v := range a.Elements[start : start+row] {
			if i > 0 {
				e.buf = append(e.buf, ' ')
			}
			e.buf = f(e.buf, v)
		}
		e.endLine()
	}
}

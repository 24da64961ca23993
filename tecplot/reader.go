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
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"gonum.org/v1/gonum/mat"
)

// Read reads the Tecplot ASCII file at path. The file is closed before
// Read returns.
func Read(path string, opts ...ReadOption) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tecplot: %w", err)
	}
	defer f.Close()
	ds, err := Decode(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Decode reads a Tecplot ASCII dataset from r in a single forward pass,
// holding at most one line of lookahead.
func Decode(r io.Reader, opts ...ReadOption) (*Dataset, error) {
	d := &decoder{
		log: logrus.StandardLogger(),
		ds:  new(Dataset),
	}
	for _, o := range opts {
		o(d)
	}
	if d.enc != nil {
		r = d.enc.NewDecoder().Reader(r)
	}
	d.r = bufio.NewReaderSize(r, 1<<16)

	d.advance()
	for state := stateFn(seekSection); state != nil; {
		var err error
		if state, err = state(d); err != nil {
			return nil, err
		}
	}
	if d.err != nil {
		return nil, fmt.Errorf("tecplot: reading line %d: %w", d.lineNum+1, d.err)
	}

	if d.sortBy != "" {
		if err := d.ds.sortZones(d.sortBy); err != nil {
			d.warn(err, logrus.Fields{"variable": d.sortBy})
		}
	}
	return d.ds, nil
}

// decoder holds the scan state: the current line, which is the one
// line of lookahead, and the dataset built so far.
type decoder struct {
	r       *bufio.Reader
	line    string
	lineNum int
	eof     bool
	last    bool // the final line had no line terminator
	err     error

	ds    *Dataset
	nzone int

	sortBy string
	log    logrus.FieldLogger
	diag   func(error)
	enc    encoding.Encoding
}

// stateFn is one state of the scanner. It consumes lines starting at
// d.line and returns the next state, leaving d.line at the first line
// it did not consume. A nil state ends the scan.
type stateFn func(*decoder) (stateFn, error)

// advance moves to the next line. At the end of the input, or after a
// read error, d.eof is set.
func (d *decoder) advance() {
	if d.last {
		d.eof, d.line = true, ""
		return
	}
	s, err := d.r.ReadString('\n')
	if err == io.EOF {
		if s == "" {
			d.eof, d.line = true, ""
			return
		}
		d.last = true
	} else if err != nil {
		d.err = err
		d.eof, d.line = true, ""
		return
	}
	if d.lineNum == 0 {
		s = strings.TrimPrefix(s, "\ufeff")
	}
	d.lineNum++
	d.line = strings.TrimSpace(s)
}

func (d *decoder) formatError(err error) *FormatError {
	return &FormatError{Line: d.lineNum, Text: d.line, Err: err}
}

// warn logs a non-fatal problem and passes it to the Diagnostics function.
func (d *decoder) warn(err error, fields logrus.Fields) {
	d.log.WithFields(fields).Warn(err.Error())
	if d.diag != nil {
		d.diag(err)
	}
}

// keyword splits line into its leading run of letters, upper-cased,
// and the remainder.
func keyword(line string) (kw, rest string) {
	end := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(line)
	}
	return strings.ToUpper(line[:end]), line[end:]
}

// startsData reports whether line begins a numeric data block, that is
// whether its first field is a number. NaN and Inf count as numbers.
func startsData(line string) bool {
	end := strings.IndexFunc(line, isSeparator)
	if end < 0 {
		end = len(line)
	}
	if end == 0 {
		return false
	}
	_, err := parseFloat(line[:end])
	return err == nil
}

func seekSection(d *decoder) (stateFn, error) {
	if d.eof {
		return nil, nil
	}
	switch kw, rest := keyword(d.line); {
	case d.line == "", strings.HasPrefix(d.line, "#"):
		d.advance()
		return seekSection, nil
	case kw == "TITLE":
		if m := quotedRe.FindStringSubmatch(rest); m != nil {
			d.ds.Title = m[1]
		}
		d.advance()
		return seekSection, nil
	case kw == "VARIABLES":
		return inVariables, nil
	case kw == "ZONE":
		return inZone, nil
	default:
		return nil, d.formatError(ErrUnrecognizedSection)
	}
}

var quotedRe = regexp.MustCompile(`"(.*?)"`)

func quotedNames(line string) []string {
	var o []string
	for _, m := range quotedRe.FindAllStringSubmatch(line, -1) {
		o = append(o, m[1])
	}
	return o
}

// inVariables reads the VARIABLES line and any continuation lines that
// start with a quote.
func inVariables(d *decoder) (stateFn, error) {
	_, rest := keyword(d.line)
	rest = strings.TrimPrefix(strings.TrimSpace(rest), "=")
	names := quotedNames(rest)
	if len(names) == 0 {
		names = strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	}
	d.ds.Variables = append(d.ds.Variables, names...)
	d.advance()
	for !d.eof && strings.HasPrefix(d.line, `"`) {
		d.ds.Variables = append(d.ds.Variables, quotedNames(d.line)...)
		d.advance()
	}
	d.log.WithFields(logrus.Fields{
		"variables": d.ds.Variables,
	}).Debugf("tecplot: %d variables recognized", len(d.ds.Variables))
	return seekSection, nil
}

// inZone reads a zone header, which may span several lines, and the
// numeric block that follows it.
func inZone(d *decoder) (stateFn, error) {
	if len(d.ds.Variables) == 0 {
		return nil, d.formatError(ErrNoVariables)
	}
	d.nzone++
	headerLine, headerText := d.lineNum, d.line

	hd := newHeaderDecoder()
	hd.decodeLine(d.line)
	d.advance()
	for !d.eof && !startsData(d.line) {
		if kw, _ := keyword(d.line); kw == "ZONE" {
			break
		}
		hd.decodeLine(d.line)
		d.advance()
	}
	h := hd.header(d.nzone)
	for _, err := range hd.errs {
		d.warn(fmt.Errorf("tecplot: zone %q: ignoring header field: %v", h.Title, err),
			logrus.Fields{"zone": h.Title, "line": headerLine})
	}

	z, err := d.buildZone(h, d.readBlock())
	if err != nil {
		if fe, ok := err.(*FormatError); ok {
			fe.Line, fe.Text = headerLine, headerText
		}
		return nil, err
	}
	d.ds.Zones = append(d.ds.Zones, z)
	return seekSection, nil
}

func isSeparator(r rune) bool { return r == ',' || unicode.IsSpace(r) }

// readBlock accumulates numbers line by line until a line holds a token
// that is not a number. That line is left as the lookahead.
func (d *decoder) readBlock() []float64 {
	var values []float64
	for !d.eof {
		n := len(values)
		for _, f := range strings.FieldsFunc(d.line, isSeparator) {
			v, err := parseFloat(f)
			if err != nil {
				return values[:n]
			}
			values = append(values, v)
		}
		d.advance()
	}
	return values
}

var fortranExponent = strings.NewReplacer("d", "e", "D", "E")

// parseFloat parses a number, accepting Fortran D exponents.
// Values out of range parse as ±Inf.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && strings.ContainsAny(s, "dD") {
		v, err = strconv.ParseFloat(fortranExponent.Replace(s), 64)
	}
	if err != nil && errors.Is(err, strconv.ErrRange) {
		return v, nil
	}
	return v, err
}

// buildZone reshapes the values of one numeric block into the arrays
// of a zone. A point count that differs from the declared one is
// reported and the actual count is used.
func (d *decoder) buildZone(h ZoneHeader, values []float64) (*Zone, error) {
	nvar := len(d.ds.Variables)
	active := h.activeVars(nvar)
	nact := len(active)
	fields := logrus.Fields{"zone": h.Title}
	z := &Zone{Header: h, Data: make([]*Array, nvar)}

	if nact == 0 {
		if len(values) > 0 {
			return nil, &FormatError{Err: fmt.Errorf("%w: %d values but every variable is passive", ErrValueCount, len(values))}
		}
		for v := range z.Data {
			z.Data[v] = NewArray(0)
		}
		return z, nil
	}

	var (
		nodal []float64
		npts  int
		shape []int
	)
	if h.ZoneType.IsFE() && h.Nodes > 0 {
		npts = h.Nodes
		need := npts * nact
		if len(values) < need {
			if len(values)%nact != 0 {
				return nil, &FormatError{Err: fmt.Errorf("%w: %d values for %d variables", ErrValueCount, len(values), nact)}
			}
			actual := len(values) / nact
			d.warn(&ShapeMismatchError{Zone: h.Title, Declared: npts, Actual: actual}, fields)
			npts, need = actual, len(values)
		}
		nodal = values[:need]
		if rest := values[need:]; len(rest) > 0 {
			conn, err := connectivity(rest, h.Elements)
			if err != nil {
				return nil, &FormatError{Err: err}
			}
			z.Connectivity = conn
		}
		shape = []int{npts}
	} else {
		if len(values)%nact != 0 {
			return nil, &FormatError{Err: fmt.Errorf("%w: %d values for %d variables", ErrValueCount, len(values), nact)}
		}
		nodal = values
		npts = len(values) / nact
		shape = []int{npts}
		switch declared := h.I * h.J * h.K; {
		case declared == 0:
			d.log.WithFields(fields).Debugf("tecplot: %d points read, I,J not found", npts)
		case declared != npts:
			d.warn(&ShapeMismatchError{Zone: h.Title, Declared: declared, Actual: npts}, fields)
		case h.K > 1:
			shape = []int{h.I, h.J, h.K}
		case h.J > 1:
			shape = []int{h.I, h.J}
		}
	}

	packing := Point
	if h.DataPacking != nil {
		packing = *h.DataPacking
	}
	switch packing {
	case Point:
		if npts > 0 {
			m := mat.NewDense(npts, nact, nodal)
			for k, v := range active {
				a := NewArray(shape...)
				mat.Col(a.Elements, k, m)
				z.Data[v] = a
			}
		}
	case Block:
		for k, v := range active {
			a := NewArray(shape...)
			copy(a.Elements, nodal[k*npts:(k+1)*npts])
			z.Data[v] = a
		}
	}
	for v := range z.Data {
		if z.Data[v] == nil {
			z.Data[v] = NewArray(shape...)
		}
	}

	d.log.WithFields(fields).Debugf("tecplot: zone read with shape %v", shape)
	return z, nil
}

// connectivity splits the values following the nodal data of a
// finite-element zone into one row of node indices per element.
func connectivity(values []float64, nelem int) ([][]int, error) {
	if nelem <= 0 || len(values)%nelem != 0 {
		return nil, fmt.Errorf("%w: %d values for %d elements", ErrBadConnectivity, len(values), nelem)
	}
	per := len(values) / nelem
	o := make([][]int, nelem)
	for e := range o {
		row := make([]int, per)
		for i, v := range values[e*per : (e+1)*per] {
			if v != math.Trunc(v) || v < 1 {
				return nil, fmt.Errorf("%w: node index %g", ErrBadConnectivity, v)
			}
			row[i] = int(v)
		}
		o[e] = row
	}
	return o, nil
}

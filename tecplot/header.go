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
	"regexp"
	"strconv"
	"strings"
)

// ZoneType is the connectivity type of a zone.
type ZoneType int

// The zone types. Every type other than Ordered is a finite-element type.
const (
	Ordered ZoneType = iota
	FELineSeg
	FETriangle
	FEQuadrilateral
	FEPolygon
	FETetrahedron
	FEBrick
	FEPolyhedral
)

var zoneTypeNames = [...]string{
	Ordered:         "ORDERED",
	FELineSeg:       "FELINESEG",
	FETriangle:      "FETRIANGLE",
	FEQuadrilateral: "FEQUADRILATERAL",
	FEPolygon:       "FEPOLYGON",
	FETetrahedron:   "FETETRAHEDRON",
	FEBrick:         "FEBRICK",
	FEPolyhedral:    "FEPOLYHEDRAL",
}

func (t ZoneType) String() string {
	if t < 0 || int(t) >= len(zoneTypeNames) {
		return fmt.Sprintf("ZoneType(%d)", int(t))
	}
	return zoneTypeNames[t]
}

// IsFE reports whether t is a finite-element zone type.
func (t ZoneType) IsFE() bool { return t != Ordered }

// ParseZoneType returns the zone type with the given (case-insensitive) name.
func ParseZoneType(s string) (ZoneType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range zoneTypeNames {
		if n == s {
			return ZoneType(i), nil
		}
	}
	return Ordered, fmt.Errorf("tecplot: invalid zone type %q", s)
}

// DataPacking is the layout of a zone's numeric block.
type DataPacking int

const (
	// Block packing writes one contiguous run per variable.
	Block DataPacking = iota
	// Point packing writes one line per point with all variables interleaved.
	Point
)

func (p DataPacking) String() string {
	switch p {
	case Block:
		return "BLOCK"
	case Point:
		return "POINT"
	default:
		return fmt.Sprintf("DataPacking(%d)", int(p))
	}
}

// ParseDataPacking parses POINT or BLOCK. The legacy boolean forms
// 0 (POINT) and 1 (BLOCK) and the old FEPOINT/FEBLOCK names are
// also accepted.
func ParseDataPacking(s string) (DataPacking, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BLOCK", "FEBLOCK", "1":
		return Block, nil
	case "POINT", "FEPOINT", "0":
		return Point, nil
	default:
		return Block, fmt.Errorf("tecplot: invalid data packing %q", s)
	}
}

// ZoneHeader holds the metadata of a zone. Optional fields are nil
// (or empty) when absent.
type ZoneHeader struct {
	// Title is the zone name (the T field).
	Title    string
	ZoneType ZoneType

	// I, J and K are the extents declared in a file that was read.
	// The writer derives extents from the array shape instead.
	I, J, K int

	// Nodes, Elements and Faces are the sizes of a finite-element zone.
	Nodes, Elements, Faces int

	// PassiveVars holds the 0-based indices of variables that are
	// excluded from the zone's data block.
	PassiveVars []int

	DataPacking  *DataPacking
	SolutionTime *float64
	StrandID     *int

	// VarLocation is the text of the VARLOCATION field, for example
	// "([3-4]=CELLCENTERED)".
	VarLocation string
}

func (h ZoneHeader) copy() ZoneHeader {
	o := h
	if h.PassiveVars != nil {
		o.PassiveVars = append([]int(nil), h.PassiveVars...)
	}
	if h.DataPacking != nil {
		p := *h.DataPacking
		o.DataPacking = &p
	}
	if h.SolutionTime != nil {
		t := *h.SolutionTime
		o.SolutionTime = &t
	}
	if h.StrandID != nil {
		s := *h.StrandID
		o.StrandID = &s
	}
	return o
}

// isPassive reports whether variable v is passive.
func (h *ZoneHeader) isPassive(v int) bool {
	for _, p := range h.PassiveVars {
		if p == v {
			return true
		}
	}
	return false
}

// activeVars returns the indices of the variables that appear in the
// zone's data block.
func (h *ZoneHeader) activeVars(nvar int) []int {
	o := make([]int, 0, nvar)
	for v := 0; v < nvar; v++ {
		if !h.isPassive(v) {
			o = append(o, v)
		}
	}
	return o
}

// VarLocationCellCentered returns the VARLOCATION text that places all
// nvar variables at cell centers.
func VarLocationCellCentered(nvar int) string {
	return fmt.Sprintf("([%d-%d]=CELLCENTERED)", 1, nvar)
}

// VarLocationList returns the VARLOCATION text for per-variable
// locations, where loc[i] == 1 places variable i at cell centers and
// any other value places it at the nodes.
func VarLocationList(loc []int) string {
	var cen, nod []string
	for i, l := range loc {
		if l == 1 {
			cen = append(cen, strconv.Itoa(i+1))
		} else {
			nod = append(nod, strconv.Itoa(i+1))
		}
	}
	var parts []string
	if len(cen) > 0 {
		parts = append(parts, "["+strings.Join(cen, ",")+"]=CELLCENTERED")
	}
	if len(nod) > 0 {
		parts = append(parts, "["+strings.Join(nod, ",")+"]=NODAL")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// encode appends the header line(s) of a zone to b. size holds the
// array shape for ordered zones and [nodes, elements(, faces)] for
// finite-element zones. izone is the 1-based zone number used for
// the default title.
func (h *ZoneHeader) encode(b []byte, size []int, izone int) ([]byte, error) {
	title := h.Title
	if title == "" {
		title = fmt.Sprintf("ZONE %d", izone)
	}
	b = append(b, `ZONE T="`...)
	b = append(b, title...)
	b = append(b, `" ZONETYPE=`...)
	b = append(b, h.ZoneType.String()...)

	if !h.ZoneType.IsFE() {
		// The last dimension varies fastest and is labeled I.
		switch len(size) {
		case 3:
			b = fmt.Appendf(b, " I=%d J=%d K=%d", size[2], size[1], size[0])
		case 2:
			b = fmt.Appendf(b, " I=%d J=%d", size[1], size[0])
		case 1:
			b = fmt.Appendf(b, " I=%d", size[0])
		default:
			return b, fmt.Errorf("tecplot: zone %q: cannot encode extents %v: %w", title, size, ErrShape)
		}
	} else {
		if len(size) < 2 {
			return b, fmt.Errorf("tecplot: finite-element zone %q needs node and element counts, got %v: %w",
				title, size, ErrShape)
		}
		b = fmt.Appendf(b, " NODES=%d ELEMENTS=%d", size[0], size[1])
		if len(size) > 2 {
			b = fmt.Appendf(b, " FACES=%d", size[2])
		}
	}

	if len(h.PassiveVars) > 0 {
		idx := make([]string, len(h.PassiveVars))
		for i, v := range h.PassiveVars {
			idx[i] = strconv.Itoa(v + 1)
		}
		b = append(b, " PASSIVEVARLIST=["...)
		b = append(b, strings.Join(idx, ",")...)
		b = append(b, ']')
	}
	if h.DataPacking != nil {
		b = append(b, " DATAPACKING="...)
		b = append(b, h.DataPacking.String()...)
	}
	if h.SolutionTime != nil {
		b = append(b, " SOLUTIONTIME="...)
		b = strconv.AppendFloat(b, *h.SolutionTime, 'e', 6, 64)
	}
	if h.StrandID != nil {
		b = fmt.Appendf(b, " STRANDID=%d", *h.StrandID)
	}
	if h.VarLocation != "" {
		b = append(b, " VARLOCATION="...)
		b = append(b, h.VarLocation...)
	}
	return append(b, '\n'), nil
}

// Patterns for the zone header fields. Each is matched independently
// on every header line, so fields may appear in any order and be
// spread over several lines.
var (
	titleRe        = regexp.MustCompile(`\bT\s*=\s*"([^"]*)"`)
	bareTitleRe    = regexp.MustCompile(`\bT\s*=\s*([^\s,"]+)`)
	iRe            = regexp.MustCompile(`\bI\s*=\s*(\d+)`)
	jRe            = regexp.MustCompile(`\bJ\s*=\s*(\d+)`)
	kRe            = regexp.MustCompile(`\bK\s*=\s*(\d+)`)
	zoneTypeRe     = regexp.MustCompile(`(?i)\bZONETYPE\s*=\s*([A-Z]+)`)
	packingRe      = regexp.MustCompile(`(?i)\b(?:DATAPACKING|F)\s*=\s*([A-Z01]+)`)
	nodesRe        = regexp.MustCompile(`\b(?:NODES|N)\s*=\s*(\d+)`)
	elementsRe     = regexp.MustCompile(`\b(?:ELEMENTS|E)\s*=\s*(\d+)`)
	facesRe        = regexp.MustCompile(`\bFACES\s*=\s*(\d+)`)
	solutionTimeRe = regexp.MustCompile(`(?i)\bSOLUTIONTIME\s*=\s*([-+0-9.eEdD]+)`)
	strandIDRe     = regexp.MustCompile(`(?i)\bSTRANDID\s*=\s*(\d+)`)
	passiveRe      = regexp.MustCompile(`(?i)\bPASSIVEVARLIST\s*=\s*\[([^\]]*)\]`)
	varLocationRe  = regexp.MustCompile(`(?i)\bVARLOCATION\s*=\s*(\([^)]*\))`)
)

// headerDecoder accumulates zone header fields over one or more lines.
// The first match of each field wins.
type headerDecoder struct {
	h    ZoneHeader
	seen map[*regexp.Regexp]bool
	errs []error
}

func newHeaderDecoder() *headerDecoder {
	return &headerDecoder{seen: make(map[*regexp.Regexp]bool)}
}

// find returns the first submatch of re in line, if re has not
// matched on an earlier line.
func (hd *headerDecoder) find(re *regexp.Regexp, line string) (string, bool) {
	if hd.seen[re] {
		return "", false
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	hd.seen[re] = true
	return m[1], true
}

func (hd *headerDecoder) atoi(re *regexp.Regexp, line string, dst *int) {
	if s, ok := hd.find(re, line); ok {
		v, err := strconv.Atoi(s)
		if err != nil {
			hd.errs = append(hd.errs, err)
			return
		}
		*dst = v
	}
}

// decodeLine extracts every known field from one header line.
// Unknown keywords are ignored.
func (hd *headerDecoder) decodeLine(line string) {
	if s, ok := hd.find(titleRe, line); ok {
		hd.h.Title = s
		hd.seen[bareTitleRe] = true
	} else if s, ok := hd.find(bareTitleRe, line); ok {
		hd.h.Title = s
		hd.seen[titleRe] = true
	}
	// Keywords inside a quoted title are not fields.
	line = titleRe.ReplaceAllLiteralString(line, " ")
	hd.atoi(iRe, line, &hd.h.I)
	hd.atoi(jRe, line, &hd.h.J)
	hd.atoi(kRe, line, &hd.h.K)
	hd.atoi(nodesRe, line, &hd.h.Nodes)
	hd.atoi(elementsRe, line, &hd.h.Elements)
	hd.atoi(facesRe, line, &hd.h.Faces)
	if s, ok := hd.find(zoneTypeRe, line); ok {
		t, err := ParseZoneType(s)
		if err != nil {
			hd.errs = append(hd.errs, err)
		} else {
			hd.h.ZoneType = t
		}
	}
	if s, ok := hd.find(packingRe, line); ok {
		p, err := ParseDataPacking(s)
		if err != nil {
			hd.errs = append(hd.errs, err)
		} else {
			hd.h.DataPacking = &p
		}
	}
	if s, ok := hd.find(solutionTimeRe, line); ok {
		t, err := parseFloat(s)
		if err != nil {
			hd.errs = append(hd.errs, err)
		} else {
			hd.h.SolutionTime = &t
		}
	}
	if s, ok := hd.find(strandIDRe, line); ok {
		id, err := strconv.Atoi(s)
		if err != nil {
			hd.errs = append(hd.errs, err)
		} else {
			hd.h.StrandID = &id
		}
	}
	if s, ok := hd.find(passiveRe, line); ok {
		p, err := parseIndexList(s)
		if err != nil {
			hd.errs = append(hd.errs, err)
		} else {
			hd.h.PassiveVars = p
		}
	}
	if s, ok := hd.find(varLocationRe, line); ok {
		hd.h.VarLocation = s
	}
}

// header returns the decoded header. izone is the 1-based zone number
// used for the default title. A missing J or K is 1.
func (hd *headerDecoder) header(izone int) ZoneHeader {
	h := hd.h
	if h.Title == "" {
		h.Title = fmt.Sprintf("data %d", izone)
	}
	if !hd.seen[jRe] {
		h.J = 1
	}
	if !hd.seen[kRe] {
		h.K = 1
	}
	return h
}

// parseIndexList parses a list of 1-based indices such as "1,3,5-7"
// and returns the corresponding 0-based indices.
func parseIndexList(s string) ([]int, error) {
	var o []int
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		lo, hi := f, f
		if i := strings.Index(f, "-"); i > 0 {
			lo, hi = f[:i], f[i+1:]
		}
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("tecplot: invalid index list %q: %v", s, err)
		}
		b, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("tecplot: invalid index list %q: %v", s, err)
		}
		if a < 1 || b < a {
			return nil, fmt.Errorf("tecplot: invalid index range %q", f)
		}
		for v := a; v <= b; v++ {
			o = append(o, v-1)
		}
	}
	return o, nil
}

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
	"io"
	"strings"
	"unicode/utf8"

	"github.com/YangYunjia/cfdtools/tecplot"
	"github.com/tealeg/xlsx"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// Excel writes ds to w as an Excel workbook with one sheet per zone.
// The first row of each sheet holds the variable names and each
// following row holds one point. Surface and volume zones are
// flattened in file order.
func Excel(w io.Writer, ds *tecplot.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	f := xlsx.NewFile()
	used := make(map[string]bool)
	for i, z := range ds.Zones {
		sheet, err := f.AddSheet(sheetName(z.Name(), i, used))
		if err != nil {
			return fmt.Errorf("export: adding sheet for zone %q: %v", z.Name(), err)
		}
		row := sheet.AddRow()
		for _, v := range ds.Variables {
			row.AddCell().SetString(v)
		}
		for p, n := 0, z.NumPoints(); p < n; p++ {
			row := sheet.AddRow()
			for _, a := range z.Data {
				cell := row.AddCell()
				if a.Kind == tecplot.Integer {
					cell.SetInt(int(a.Elements[p]))
				} else {
					cell.SetFloat(a.Elements[p])
				}
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: writing workbook: %v", err)
	}
	return nil
}

var sheetReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")")

// sheetName returns a valid sheet name for the zone with index i that
// is not yet in used, and marks it as used.
func sheetName(zone string, i int, used map[string]bool) string {
	name := sheetReplacer.Replace(strings.TrimSpace(zone))
	if name == "" {
		name = fmt.Sprintf("zone %d", i+1)
	}
	base := name
	name = truncate(base, maxSheetName)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

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
	"errors"
	"fmt"
)

// Grammar errors, wrapped in a *FormatError by the reader.
var (
	ErrUnrecognizedSection = errors.New("unrecognized section keyword")
	ErrNoVariables         = errors.New("zone header before any VARIABLES section")
	ErrValueCount          = errors.New("number of values is not a multiple of the number of variables")
	ErrBadConnectivity     = errors.New("invalid element connectivity")
)

var (
	// ErrShape is returned when the arrays of a zone are inconsistent
	// with each other or with the dataset.
	ErrShape = errors.New("tecplot: inconsistent zone shape")

	// ErrUnknownSortKey is reported when the sort variable is not
	// one of the dataset variables. It is not fatal.
	ErrUnknownSortKey = errors.New("tecplot: unknown sort variable")

	// ErrSplitBoundary is returned when split boundaries are out of
	// range or decreasing.
	ErrSplitBoundary = errors.New("tecplot: invalid split boundary")

	// ErrVariableMismatch is returned when datasets with different
	// variable lists are merged.
	ErrVariableMismatch = errors.New("tecplot: variable lists differ")
)

// FormatError is returned when a file does not follow the Tecplot
// grammar. It aborts the read.
type FormatError struct {
	Line int    // 1-based line number
	Text string // the offending line
	Err  error
}

func (e *FormatError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("tecplot: format error on line %d (%q): %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ShapeMismatchError reports that the number of points declared in a
// zone header differs from the number of points actually read. The
// reader recovers by using the actual count.
type ShapeMismatchError struct {
	Zone     string
	Declared int
	Actual   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("tecplot: zone %q declares %d points but %d were read", e.Zone, e.Declared, e.Actual)
}

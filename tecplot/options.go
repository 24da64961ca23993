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
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
)

// ReadOption configures a read.
type ReadOption func(*decoder)

// SortBy sorts the points of every zone by ascending values of the
// named variable after the file has been read, as Dataset.SortBy does. An unknown name is reported
// as ErrUnknownSortKey and leaves the data unsorted.
func SortBy(variable string) ReadOption {
	return func(d *decoder) {
		d.sortBy = variable
	}
}

// WithLogger sets the logger that receives progress messages and
// diagnostics. The default is logrus.StandardLogger().
func WithLogger(l logrus.FieldLogger) ReadOption {
	return func(d *decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// Diagnostics sets a function that is called with every non-fatal
// problem found while reading, such as a *ShapeMismatchError or
// ErrUnknownSortKey.
func Diagnostics(f func(error)) ReadOption {
	return func(d *decoder) {
		d.diag = f
	}
}

// WithEncoding decodes the input from the given character encoding,
// for example charmap.Windows1252, instead of treating it as UTF-8.
func WithEncoding(e encoding.Encoding) ReadOption {
	return func(d *decoder) {
		d.enc = e
	}
}

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

// Package hash computes fingerprints of datasets and other values.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/YangYunjia/cfdtools/tecplot"
	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hash key for the specified object. Datasets are
// hashed by their Tecplot ASCII encoding, so two datasets that would be
// written identically have the same key.
func Hash(object interface{}) string {
	h := fnv.New128a()
	if ds, ok := object.(*tecplot.Dataset); ok {
		if err := tecplot.Encode(h, ds); err == nil {
			return sum(h)
		}
		h.Reset()
	}
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}

	e := gob.NewEncoder(h)
	if err := e.Encode(object); err == nil {
		return sum(h)
	}
	h.Reset()
	// If there is an error (e.g., unexported fields or an invalid
	// dataset) use spew instead of gob.
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	return sum(h)
}

func sum(h hash.Hash) string {
	bKey := h.Sum([]byte{})
	return fmt.Sprintf("%x", bKey[0:h.Size()])
}

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

// Package calc adds derived variables to Tecplot datasets. Each derived
// variable is defined by an arithmetic expression over the variables of
// the dataset, evaluated point by point in every zone.
package calc

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/YangYunjia/cfdtools/tecplot"
	"github.com/sirupsen/logrus"
)

// ErrCycle is returned when derived variables are defined in terms of
// each other.
var ErrCycle = errors.New("calc: circular variable definition")

// Calculator holds a set of derived variable definitions.
type Calculator struct {
	names       []string // evaluation order
	expressions map[string]*govaluate.EvaluableExpression
	vars        map[string][]string // variables used by each expression

	// Log receives progress messages. It defaults to logrus.StandardLogger().
	Log logrus.FieldLogger
}

// NewCalculator parses the expressions in exprs, which maps the names of
// derived variables to their definitions. Expressions may use the
// variables of the dataset they are applied to, other derived variables,
// and functions. Variable names that are not valid identifiers must be
// bracketed, as in "[p/p0] * 2". Default functions are:
//
// 'exp(x)', 'log(x)', 'sqrt(x)' and 'abs(x)' which apply the
// corresponding math function to x.
//
// 'pow(x, y)' which raises x to the power y.
//
// Functions in funcs are added to the defaults and replace defaults
// with the same name.
func NewCalculator(exprs map[string]string, funcs map[string]govaluate.ExpressionFunction) (*Calculator, error) {
	functions := map[string]govaluate.ExpressionFunction{
		"exp":  unary("exp", math.Exp),
		"log":  unary("log", math.Log),
		"sqrt": unary("sqrt", math.Sqrt),
		"abs":  unary("abs", math.Abs),
		"pow": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("calc: got %d arguments for function 'pow', but needs 2", len(args))
			}
			x, ok1 := args[0].(float64)
			y, ok2 := args[1].(float64)
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("calc: function 'pow' needs numeric arguments")
			}
			return math.Pow(x, y), nil
		},
	}
	for k, f := range funcs {
		functions[k] = f
	}

	c := &Calculator{
		expressions: make(map[string]*govaluate.EvaluableExpression, len(exprs)),
		vars:        make(map[string][]string, len(exprs)),
		Log:         logrus.StandardLogger(),
	}
	for name, expr := range exprs {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, functions)
		if err != nil {
			return nil, fmt.Errorf("calc: variable %q: %v", name, err)
		}
		c.expressions[name] = e
		c.vars[name] = removeDuplicates(e.Vars())
	}
	order, err := c.order()
	if err != nil {
		return nil, err
	}
	c.names = order
	return c, nil
}

func unary(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("calc: got %d arguments for function '%s', but needs 1", len(args), name)
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("calc: function '%s' needs a numeric argument, not %T", name, args[0])
		}
		return f(x), nil
	}
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

// order returns the derived variables sorted so that every variable
// comes after the derived variables it depends on. Ties are broken by
// name so that the order is deterministic.
func (c *Calculator) order() ([]string, error) {
	names := make([]string, 0, len(c.expressions))
	for name := range c.expressions {
		names = append(names, name)
	}
	sort.Strings(names)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(names))
	var o []string
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrCycle, append(path, name))
		}
		state[name] = visiting
		for _, v := range c.vars[name] {
			if _, ok := c.expressions[v]; ok {
				if err := visit(v, append(path, name)); err != nil {
					return err
				}
			}
		}
		state[name] = done
		o = append(o, name)
		return nil
	}
	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Variables returns the names of the derived variables in the order
// they are computed and appended to a dataset.
func (c *Calculator) Variables() []string {
	return append([]string(nil), c.names...)
}

// Apply returns a copy of ds with the derived variables appended to the
// variable list and to every zone. ds is not modified.
func (c *Calculator) Apply(ds *tecplot.Dataset) (*tecplot.Dataset, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	o := ds.Copy()
	for _, name := range c.names {
		if o.VariableIndex(name) >= 0 {
			return nil, fmt.Errorf("calc: derived variable %q is already a dataset variable", name)
		}
		idx := make(map[string]int, len(c.vars[name]))
		for _, v := range c.vars[name] {
			i := o.VariableIndex(v)
			if i < 0 {
				return nil, fmt.Errorf("calc: variable %q: undefined variable name '%s'", name, v)
			}
			idx[v] = i
		}
		for _, z := range o.Zones {
			a, err := c.evaluate(name, z, idx)
			if err != nil {
				return nil, err
			}
			z.Data = append(z.Data, a)
		}
		o.Variables = append(o.Variables, name)
		c.Log.WithFields(logrus.Fields{
			"variable":   name,
			"expression": c.expressions[name].String(),
		}).Debug("calc: derived variable computed")
	}
	return o, nil
}

// evaluate computes the named variable at every point of z. idx maps
// the variables used by the expression to their indices in z.Data.
func (c *Calculator) evaluate(name string, z *tecplot.Zone, idx map[string]int) (*tecplot.Array, error) {
	e := c.expressions[name]
	shape := z.Shape()
	if shape == nil {
		shape = []int{0}
	}
	a := tecplot.NewArray(shape...)
	params := make(map[string]interface{}, len(idx))
	for i := range a.Elements {
		for v, j := range idx {
			params[v] = z.Data[j].Elements[i]
		}
		r, err := e.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("calc: evaluating %q in zone %q at point %d: %v", name, z.Name(), i, err)
		}
		switch r := r.(type) {
		case float64:
			a.Elements[i] = r
		case bool:
			if r {
				a.Elements[i] = 1
			}
		default:
			return nil, fmt.Errorf("calc: variable %q evaluates to %T, not a number", name, r)
		}
	}
	return a, nil
}

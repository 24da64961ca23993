package cfdtoolsutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YangYunjia/cfdtools/tecplot"
	"gonum.org/v1/gonum/floats"
)

const lineFile = `TITLE = "airfoil"
VARIABLES = "x", "y", "p"
ZONE T="wall" I=5
1.0 0.0 1.0
0.0 0.0 2.0
0.5 0.1 3.0
0.25 0.05 4.0
0.75 0.05 5.0
`

// run executes the command given by args with the given configuration.
func run(t *testing.T, args []string, settings map[string]interface{}) (string, error) {
	t.Helper()
	defaults := map[string]interface{}{
		"config":       "",
		"loglevel":     "warn",
		"encoding":     "",
		"input":        "",
		"inputs":       []string{},
		"output":       "",
		"sortvariable": "",
		"boundaries":   []int{},
		"names":        []string{},
		"splitplan":    "",
		"expressions":  "{}",
	}
	for k, v := range defaults {
		Cfg.Set(k, v)
	}
	for k, v := range settings {
		Cfg.Set(k, v)
	}
	var buf bytes.Buffer
	Root.SetOut(&buf)
	Root.SetErr(&buf)
	Root.SetArgs(args)
	err := Root.Execute()
	return buf.String(), err
}

func writeInput(t *testing.T, dir, name, contents string) string {
	t.Helper()
	f := filepath.Join(dir, name)
	if err := os.WriteFile(f, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return f
}

func readOutput(t *testing.T, path string) *tecplot.Dataset {
	t.Helper()
	ds, err := tecplot.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestVersion(t *testing.T) {
	out, err := run(t, []string{"version"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := "cfdtools v" + Version; !strings.Contains(out, want) {
		t.Errorf("have %q, want %q", out, want)
	}
}

func TestInfo(t *testing.T) {
	in := writeInput(t, t.TempDir(), "flow.dat", lineFile)
	out, err := run(t, []string{"info"}, map[string]interface{}{"input": in})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"airfoil"`, "x, y, p", `"wall"`, "Fingerprint:", "shape [5]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestSort(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "flow.dat", lineFile)
	out := filepath.Join(dir, "sorted.dat")
	if _, err := run(t, []string{"sort"}, map[string]interface{}{
		"input": in, "output": out, "sortvariable": "x",
	}); err != nil {
		t.Fatal(err)
	}
	ds := readOutput(t, out)
	x, _ := ds.Variable("x")
	p, _ := ds.Variable("p")
	if want := []float64{0, 0.25, 0.5, 0.75, 1}; !floats.EqualApprox(x[0].Elements, want, 1e-12) {
		t.Errorf("x: have %v, want %v", x[0].Elements, want)
	}
	if want := []float64{2, 4, 3, 5, 1}; !floats.EqualApprox(p[0].Elements, want, 1e-12) {
		t.Errorf("p: have %v, want %v", p[0].Elements, want)
	}
}

func TestSortErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "flow.dat", lineFile)
	_, err := run(t, []string{"sort"}, map[string]interface{}{
		"input": in, "output": filepath.Join(dir, "sorted.dat"), "sortvariable": "z",
	})
	if !errors.Is(err, tecplot.ErrUnknownSortKey) {
		t.Errorf("have %v, want %v", err, tecplot.ErrUnknownSortKey)
	}
	if _, err := run(t, []string{"sort"}, map[string]interface{}{
		"input": in, "output": filepath.Join(dir, "sorted.dat"),
	}); err == nil {
		t.Error("missing sort variable: want an error")
	}
	if _, err := run(t, []string{"sort"}, map[string]interface{}{
		"input": in, "output": filepath.Join(dir, "missing", "sorted.dat"), "sortvariable": "x",
	}); err == nil {
		t.Error("missing output directory: want an error")
	}
}

func TestSplit(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "flow.dat", lineFile)
	out := filepath.Join(dir, "split.dat")
	if _, err := run(t, []string{"split"}, map[string]interface{}{
		"input": in, "output": out, "sortvariable": "x",
		"boundaries": []int{2}, "names": []string{"front", "back"},
	}); err != nil {
		t.Fatal(err)
	}
	ds := readOutput(t, out)
	if len(ds.Zones) != 2 {
		t.Fatalf("have %d zones, want 2", len(ds.Zones))
	}
	for i, want := range []struct {
		name string
		x    []float64
	}{
		{name: "front", x: []float64{0, 0.25}},
		{name: "back", x: []float64{0.5, 0.75, 1}},
	} {
		z := ds.Zones[i]
		if z.Name() != want.name {
			t.Errorf("zone %d: have name %q, want %q", i, z.Name(), want.name)
		}
		if !floats.EqualApprox(z.Data[0].Elements, want.x, 1e-12) {
			t.Errorf("zone %d: have x %v, want %v", i, z.Data[0].Elements, want.x)
		}
	}

	if _, err := run(t, []string{"split"}, map[string]interface{}{
		"input": in, "output": out, "boundaries": []int{9},
	}); !errors.Is(err, tecplot.ErrSplitBoundary) {
		t.Errorf("out of range boundary: have %v, want %v", err, tecplot.ErrSplitBoundary)
	}
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.dat", lineFile)
	b := writeInput(t, dir, "b.dat", strings.Replace(lineFile, `T="wall"`, `T="wake"`, 1))
	out := filepath.Join(dir, "merged.dat")
	if _, err := run(t, []string{"merge"}, map[string]interface{}{
		"inputs": []string{a, b}, "output": out,
	}); err != nil {
		t.Fatal(err)
	}
	ds := readOutput(t, out)
	if len(ds.Zones) != 2 || ds.Zones[0].Name() != "wall" || ds.Zones[1].Name() != "wake" {
		t.Errorf("unexpected zones %v", ds.Zones)
	}

	c := writeInput(t, dir, "c.dat", strings.Replace(lineFile, `"p"`, `"q"`, 1))
	if _, err := run(t, []string{"merge"}, map[string]interface{}{
		"inputs": []string{a, c}, "output": out,
	}); !errors.Is(err, tecplot.ErrVariableMismatch) {
		t.Errorf("have %v, want %v", err, tecplot.ErrVariableMismatch)
	}
}

func TestCalc(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "flow.dat", lineFile)
	out := filepath.Join(dir, "calc.dat")
	if _, err := run(t, []string{"calc"}, map[string]interface{}{
		"input": in, "output": out, "expressions": `{"p2": "p * 2", "r": "sqrt(x*x + y*y)"}`,
	}); err != nil {
		t.Fatal(err)
	}
	ds := readOutput(t, out)
	p2, err := ds.Variable("p2")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{2, 4, 6, 8, 10}; !floats.EqualApprox(p2[0].Elements, want, 1e-12) {
		t.Errorf("p2: have %v, want %v", p2[0].Elements, want)
	}
	if ds.VariableIndex("r") < 0 {
		t.Errorf("variable r is missing: %v", ds.Variables)
	}

	if _, err := run(t, []string{"calc"}, map[string]interface{}{
		"input": in, "output": out,
	}); err == nil {
		t.Error("no expressions: want an error")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "flow.dat", lineFile)
	for _, name := range []string{"flow.nc", "flow.xlsx", "cp.png", "cp.svg"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(dir, name)
			if _, err := run(t, []string{"export"}, map[string]interface{}{
				"input": in, "output": out, "plotx": "x", "ploty": "p",
			}); err != nil {
				t.Fatal(err)
			}
			fi, err := os.Stat(out)
			if err != nil {
				t.Fatal(err)
			}
			if fi.Size() == 0 {
				t.Error("empty output file")
			}
		})
	}
	if _, err := run(t, []string{"export"}, map[string]interface{}{
		"input": in, "output": filepath.Join(dir, "flow.csv"),
	}); err == nil {
		t.Error("unsupported format: want an error")
	}
}

func TestBlobInputOutput(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "flow.dat", lineFile)
	blob := func(name string) string { return "file://" + filepath.ToSlash(filepath.Join(dir, name)) }
	if _, err := run(t, []string{"sort"}, map[string]interface{}{
		"input": blob("flow.dat"), "output": blob("sorted.dat"), "sortvariable": "p",
	}); err != nil {
		t.Fatal(err)
	}
	ds := readOutput(t, filepath.Join(dir, "sorted.dat"))
	p, _ := ds.Variable("p")
	if want := []float64{1, 2, 3, 4, 5}; !floats.EqualApprox(p[0].Elements, want, 1e-12) {
		t.Errorf("p: have %v, want %v", p[0].Elements, want)
	}
}

package tecplot

import (
	"errors"
	"reflect"
	"testing"
)

func lineZone(name string, n int) *Zone {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(10 * i)
	}
	return &Zone{Header: ZoneHeader{Title: name}, Data: []*Array{NewLine(x), NewLine(y)}}
}

func TestSplitByIndex(t *testing.T) {
	z := lineZone("wall", 10)
	o, err := SplitByIndex([]*Zone{z}, []int{4}, []string{"upper", "lower"})
	if err != nil {
		t.Fatal(err)
	}
	if len(o) != 2 {
		t.Fatalf("have %d zones, want 2", len(o))
	}
	checkArray(t, "upper X", o[0].Data[0], []int{4}, []float64{0, 1, 2, 3})
	checkArray(t, "lower X", o[1].Data[0], []int{6}, []float64{4, 5, 6, 7, 8, 9})
	checkArray(t, "lower Y", o[1].Data[1], []int{6}, []float64{40, 50, 60, 70, 80, 90})
	if o[0].Name() != "upper" || o[1].Name() != "lower" {
		t.Errorf("names %q, %q", o[0].Name(), o[1].Name())
	}
	if o[1].Header.I != 6 {
		t.Errorf("I = %d", o[1].Header.I)
	}

	o[0].Data[0].Elements[0] = 100
	if z.Data[0].Elements[0] != 0 {
		t.Error("split zones share data with the source zone")
	}
}

func TestSplitByIndexDefaultNames(t *testing.T) {
	zones := []*Zone{lineZone("a", 5), lineZone("b", 5)}
	o, err := SplitByIndex(zones, []int{2, 2, 5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(o) != 8 {
		t.Fatalf("have %d zones, want 8", len(o))
	}
	var names []string
	var sizes []int
	for _, z := range o {
		names = append(names, z.Name())
		sizes = append(sizes, z.NumPoints())
	}
	wantNames := []string{"Zone 0", "Zone 1", "Zone 2", "Zone 3", "Zone 0", "Zone 1", "Zone 2", "Zone 3"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("names %v", names)
	}
	if want := []int{2, 0, 3, 0, 2, 0, 3, 0}; !reflect.DeepEqual(sizes, want) {
		t.Errorf("sizes %v, want %v", sizes, want)
	}
}

func TestSplitByIndexErrors(t *testing.T) {
	for _, b := range [][]int{{3, 1}, {11}, {-1}} {
		if _, err := SplitByIndex([]*Zone{lineZone("a", 10)}, b, nil); !errors.Is(err, ErrSplitBoundary) {
			t.Errorf("%v: have %v, want ErrSplitBoundary", b, err)
		}
	}
	surface := &Zone{Data: []*Array{NewArray(2, 2)}}
	if _, err := SplitByIndex([]*Zone{surface}, []int{1}, nil); err == nil {
		t.Error("splitting a surface should fail")
	}
}

func TestMerge(t *testing.T) {
	a := &Dataset{Title: "a", Variables: []string{"X", "Y"}, Zones: []*Zone{lineZone("z1", 2)}}
	b := &Dataset{Title: "b", Variables: []string{"X", "Y"}, Zones: []*Zone{lineZone("z2", 3), lineZone("z3", 1)}}
	o, err := Merge(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if o.Title != "a" || len(o.Zones) != 3 || o.Zones[2].Name() != "z3" {
		t.Errorf("merged dataset: %+v", o)
	}
	o.Zones[0].Data[0].Elements[1] = -1
	if a.Zones[0].Data[0].Elements[1] != 1 {
		t.Error("merged zones share data with the inputs")
	}

	c := &Dataset{Variables: []string{"X", "P"}}
	if _, err := Merge(a, c); !errors.Is(err, ErrVariableMismatch) {
		t.Errorf("have %v, want ErrVariableMismatch", err)
	}
}

func TestDatasetSortBy(t *testing.T) {
	ds := &Dataset{
		Variables: []string{"X", "Y"},
		Zones: []*Zone{
			{Data: []*Array{NewLine([]float64{2, 0, 1}), NewLine([]float64{20, 0, 10})}},
			{Data: []*Array{NewSurface(1, 2, []float64{1, 0}), NewSurface(1, 2, []float64{1, 0})}},
			{
				Header:       ZoneHeader{Title: "tri", ZoneType: FETriangle},
				Data:         []*Array{NewLine([]float64{3, 1, 2}), NewLine([]float64{30, 10, 20})},
				Connectivity: [][]int{{1, 2, 3}, {3, 2, 1}},
			},
		},
	}
	o, err := ds.SortBy("X")
	if err != nil {
		t.Fatal(err)
	}
	checkArray(t, "X", o.Zones[0].Data[0], []int{3}, []float64{0, 1, 2})
	checkArray(t, "Y", o.Zones[0].Data[1], []int{3}, []float64{0, 10, 20})
	checkArray(t, "surface", o.Zones[1].Data[0], []int{1, 2}, []float64{0, 1})
	checkArray(t, "tri.X", o.Zones[2].Data[0], []int{3}, []float64{1, 2, 3})
	checkArray(t, "tri.Y", o.Zones[2].Data[1], []int{3}, []float64{10, 20, 30})
	if want := [][]int{{3, 1, 2}, {2, 1, 3}}; !reflect.DeepEqual(o.Zones[2].Connectivity, want) {
		t.Errorf("connectivity %v, want %v", o.Zones[2].Connectivity, want)
	}
	if want := [][]int{{1, 2, 3}, {3, 2, 1}}; !reflect.DeepEqual(ds.Zones[2].Connectivity, want) {
		t.Errorf("source connectivity changed to %v", ds.Zones[2].Connectivity)
	}
	checkArray(t, "source", ds.Zones[0].Data[0], []int{3}, []float64{2, 0, 1})

	if _, err := ds.SortBy("Z"); !errors.Is(err, ErrUnknownSortKey) {
		t.Errorf("have %v, want ErrUnknownSortKey", err)
	}
}

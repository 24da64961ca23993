package cfdtoolsutil

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/viper"
	"golang.org/x/text/encoding/charmap"
)

func TestToIntSliceE(t *testing.T) {
	for _, c := range []struct {
		in   interface{}
		want []int
	}{
		{in: "", want: nil},
		{in: "3, 7,10", want: []int{3, 7, 10}},
		{in: "[3,7]", want: []int{3, 7}},
		{in: []int{4}, want: []int{4}},
		{in: []interface{}{int64(1), int64(2)}, want: []int{1, 2}},
	} {
		have, err := toIntSliceE(c.in)
		if err != nil {
			t.Errorf("%#v: %v", c.in, err)
			continue
		}
		if !reflect.DeepEqual(have, c.want) {
			t.Errorf("%#v: have %v, want %v", c.in, have, c.want)
		}
	}
	if _, err := toIntSliceE("1,a"); err == nil {
		t.Error("want an error for a non-integer")
	}
}

func TestGetStringMapString(t *testing.T) {
	cfg := viper.New()
	cfg.Set("json", `{"Cp":"(p - 1) / 0.7"}`)
	cfg.Set("map", map[string]interface{}{"speed": "sqrt(u*u)"})
	cfg.Set("empty", "")
	cfg.Set("bad", "{")
	for key, want := range map[string]map[string]string{
		"json":  {"Cp": "(p - 1) / 0.7"},
		"map":   {"speed": "sqrt(u*u)"},
		"empty": {},
		"unset": {},
	} {
		have, err := GetStringMapString(key, cfg)
		if err != nil {
			t.Errorf("%s: %v", key, err)
			continue
		}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("%s: have %v, want %v", key, have, want)
		}
	}
	if _, err := GetStringMapString("bad", cfg); err == nil {
		t.Error("bad: want an error")
	}
}

func TestTextEncoding(t *testing.T) {
	for name, want := range map[string]interface{}{
		"":             nil,
		"utf-8":        nil,
		"windows-1252": charmap.Windows1252,
	} {
		have, err := textEncoding(name)
		if err != nil {
			t.Errorf("%q: %v", name, err)
			continue
		}
		if want == nil && have != nil || want != nil && have != want {
			t.Errorf("%q: have %v, want %v", name, have, want)
		}
	}
	if _, err := textEncoding("no-such-encoding"); err == nil {
		t.Error("want an error for an unknown encoding")
	}
}

func TestSplitPlan(t *testing.T) {
	t.Run("flags", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("boundaries", []int{2, 4})
		cfg.Set("names", []string{"a", "b", "c"})
		have, err := splitPlan(cfg)
		if err != nil {
			t.Fatal(err)
		}
		want := &SplitPlan{Boundaries: []int{2, 4}, Names: []string{"a", "b", "c"}}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("have %+v, want %+v", have, want)
		}
	})
	t.Run("file", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "plan.toml")
		if err := os.WriteFile(f, []byte("Boundaries = [40, 80]\nNames = [\"lower\", \"nose\", \"upper\"]\n"), 0644); err != nil {
			t.Fatal(err)
		}
		cfg := viper.New()
		cfg.Set("splitplan", f)
		cfg.Set("boundaries", []int{1})
		have, err := splitPlan(cfg)
		if err != nil {
			t.Fatal(err)
		}
		want := &SplitPlan{Boundaries: []int{40, 80}, Names: []string{"lower", "nose", "upper"}}
		if !reflect.DeepEqual(have, want) {
			t.Errorf("have %+v, want %+v", have, want)
		}
	})
	t.Run("unknown key", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "plan.toml")
		if err := os.WriteFile(f, []byte("Boundary = [40]\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := readSplitPlan(f); err == nil {
			t.Error("want an error")
		}
	})
	t.Run("missing", func(t *testing.T) {
		if _, err := splitPlan(viper.New()); err == nil {
			t.Error("want an error")
		}
	})
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("CFDTOOLS_TEST_DIR", dir)
	defer os.Unsetenv("CFDTOOLS_TEST_DIR")
	have, err := checkOutputFile(context.Background(), "${CFDTOOLS_TEST_DIR}/out.dat")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "out.dat"); filepath.Clean(have) != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if _, err := checkOutputFile(context.Background(), filepath.Join(dir, "missing", "out.dat")); err == nil {
		t.Error("missing directory: want an error")
	}
	if _, err := checkOutputFile(context.Background(), ""); err == nil {
		t.Error("empty path: want an error")
	}
}

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

package cfdtoolsutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkInputFile makes sure that an input file is specified, and
// expands any environment variables.
func checkInputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an input file (for example: --input="flow.dat")`)
	}
	return os.ExpandEnv(f), nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(ctx context.Context, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file (for example: --output="flow_sorted.dat")`)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		bucket, _, err := OpenBucket(ctx, f)
		if err != nil {
			return f, fmt.Errorf("cfdtools: error when checking output location: %v", err)
		}
		bucket.Close()
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("cfdtools: the output directory doesn't exist: %v", err)
	}
	return f, nil
}

// textEncoding returns the character encoding with the given name, such
// as "windows-1252" or "latin1". An empty name or "utf-8" returns nil,
// which means the input is read as UTF-8.
func textEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("cfdtools: unknown text encoding %q: %v", name, err)
	}
	if n, _ := htmlindex.Name(e); n == "utf-8" {
		return nil, nil
	}
	return e, nil
}

// logLevel parses a logrus level name.
func logLevel(name string) (logrus.Level, error) {
	l, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("cfdtools: %v", err)
	}
	return l, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("cfdtools: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("cfdtools: invalid type for variable %s: %#v", varName, i)
	}
}

// toIntSliceE converts a configuration value to a slice of ints. The
// value may be a slice, as read from a configuration file, or a comma
// separated or JSON string, as set by a flag or environment variable.
func toIntSliceE(i interface{}) ([]int, error) {
	if s, ok := i.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		if strings.HasPrefix(s, "[") {
			var o []int
			if err := json.Unmarshal([]byte(s), &o); err != nil {
				return nil, err
			}
			return o, nil
		}
		fields := strings.Split(s, ",")
		for j, f := range fields {
			fields[j] = strings.TrimSpace(f)
		}
		return cast.ToIntSliceE(fields)
	}
	return cast.ToIntSliceE(i)
}

// SplitPlan holds the zone split boundaries and the names of the
// resulting zones. It can be read from a TOML file such as:
//
//	Boundaries = [40, 80]
//	Names = ["lower", "nose", "upper"]
type SplitPlan struct {
	Boundaries []int
	Names      []string
}

// readSplitPlan reads a split plan from the TOML file at path.
func readSplitPlan(path string) (*SplitPlan, error) {
	var p SplitPlan
	md, err := toml.DecodeFile(os.ExpandEnv(path), &p)
	if err != nil {
		return nil, fmt.Errorf("cfdtools: reading split plan: %v", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("cfdtools: split plan %s: unknown keys %v", path, undec)
	}
	return &p, nil
}

// splitPlan returns the split plan configured in cfg, either from the
// "splitplan" file or from the "boundaries" and "names" options.
func splitPlan(cfg *viper.Viper) (*SplitPlan, error) {
	if f := cfg.GetString("splitplan"); f != "" {
		return readSplitPlan(f)
	}
	b, err := toIntSliceE(cfg.Get("boundaries"))
	if err != nil {
		return nil, fmt.Errorf("cfdtools: parsing boundaries: %v", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("cfdtools: you need to specify split boundaries (--boundaries) or a split plan file (--splitplan)")
	}
	return &SplitPlan{
		Boundaries: b,
		Names:      cfg.GetStringSlice("names"),
	}, nil
}

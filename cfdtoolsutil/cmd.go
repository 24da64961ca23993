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

// Package cfdtoolsutil implements the cfdtools command-line interface.
package cfdtoolsutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/YangYunjia/cfdtools/tecplot"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gonum.org/v1/plot/vg"
)

// Version is the version of cfdtools.
const Version = "0.1.0"

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by the commands.
var Log = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to cfdtools.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loglevel",
			usage: `
              loglevel specifies the minimum level of log messages to print:
              one of panic, fatal, error, warn, info, debug or trace.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "encoding",
			usage: `
              encoding specifies the character encoding of the input files,
              for example windows-1252. The default is UTF-8.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "input",
			usage: `
              input specifies the path to the input Tecplot ASCII file. It can be
              a local path, an http(s) URL, or a blob storage location
              (file://, gs:// or s3://) and can contain environment variables.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{infoCmd.Flags(), sortCmd.Flags(), splitCmd.Flags(), calcCmd.Flags(), exportCmd.Flags()},
		},
		{
			name: "inputs",
			usage: `
              inputs specifies the paths to the Tecplot ASCII files to merge.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{mergeCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output specifies the path to the output file. It can be a local
              path or a blob storage location (file://, gs:// or s3://) and can
              contain environment variables.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sortCmd.Flags(), splitCmd.Flags(), mergeCmd.Flags(), calcCmd.Flags(), exportCmd.Flags()},
		},
		{
			name: "sortvariable",
			usage: `
              sortvariable specifies the variable that zones are sorted by
              after reading. If empty, zones are not sorted.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sortCmd.Flags(), splitCmd.Flags(), mergeCmd.Flags(), calcCmd.Flags(), exportCmd.Flags()},
		},
		{
			name: "boundaries",
			usage: `
              boundaries specifies the point indices at which line zones are
              split. N boundaries split each zone into N+1 zones.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{splitCmd.Flags()},
		},
		{
			name: "names",
			usage: `
              names specifies the names of the zones created by a split. There
              must be one more name than there are boundaries.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{splitCmd.Flags()},
		},
		{
			name: "splitplan",
			usage: `
              splitplan specifies a TOML file holding the split Boundaries and
              Names. If set, the boundaries and names options are ignored.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{splitCmd.Flags()},
		},
		{
			name: "expressions",
			usage: `
              expressions specifies the derived variables to compute, as a map
              of variable names to expressions over existing variables,
              for example {"Cp":"(p - 1) / 0.7", "speed":"sqrt(u*u + v*v)"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{calcCmd.Flags()},
		},
		{
			name: "plotx",
			usage: `
              plotx specifies the variable on the horizontal axis of plot exports.`,
			defaultVal: "x",
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "ploty",
			usage: `
              ploty specifies the variable on the vertical axis of plot exports.`,
			defaultVal: "y",
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "plotwidth",
			usage: `
              plotwidth specifies the width of plot exports in inches.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
		{
			name: "plotheight",
			usage: `
              plotheight specifies the height of plot exports in inches.`,
			defaultVal: 4.0,
			flagsets:   []*pflag.FlagSet{exportCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CFDTOOLS")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
			Cfg.BindEnv(option.name)
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(sortCmd)
	Root.AddCommand(splitCmd)
	Root.AddCommand(mergeCmd)
	Root.AddCommand(calcCmd)
	Root.AddCommand(exportCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("cfdtools: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// setLogger configures Log from the loglevel option.
func setLogger() error {
	level, err := logLevel(Cfg.GetString("loglevel"))
	if err != nil {
		return err
	}
	Log.SetLevel(level)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	return nil
}

// readConfig returns the read settings held in Cfg.
func readConfig() (*ReadConfig, error) {
	enc, err := textEncoding(Cfg.GetString("encoding"))
	if err != nil {
		return nil, err
	}
	return &ReadConfig{
		Encoding:     enc,
		SortVariable: Cfg.GetString("sortvariable"),
		Log:          Log,
	}, nil
}

// readInput reads the dataset at the "input" path.
func readInput(ctx context.Context) (*tecplot.Dataset, error) {
	input, err := checkInputFile(Cfg.GetString("input"))
	if err != nil {
		return nil, err
	}
	rc, err := readConfig()
	if err != nil {
		return nil, err
	}
	return ReadDataset(ctx, input, rc)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "cfdtools",
	Short: "Tools for Tecplot ASCII data files.",
	Long: `cfdtools reads, transforms and writes Tecplot ASCII data files such as
the surface and field output of CFD solvers. Use the subcommands specified
below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CFDTOOLS_VAR' where 'VAR' is the
name of the variable to be set. File paths are additionally allowed to contain
environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		return setLogger()
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of cfdtools.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("cfdtools v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize a data file",
	Long: `info prints the title, variables and a fingerprint of the input file,
and the shape and value ranges of every zone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := readInput(cmd.Context())
		if err != nil {
			return err
		}
		return Info(cmd.OutOrStdout(), ds)
	},
	DisableAutoGenTag: true,
}

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Sort zones by a variable",
	Long: `sort sorts the points of every zone of the input file by ascending values of the
variable given by --sortvariable and writes the result to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		key := Cfg.GetString("sortvariable")
		if key == "" {
			return fmt.Errorf("cfdtools: you need to specify the variable to sort by (--sortvariable)")
		}
		output, err := checkOutputFile(ctx, Cfg.GetString("output"))
		if err != nil {
			return err
		}
		ds, err := readInput(ctx)
		if err != nil {
			return err
		}
		// An unknown sort variable is only a warning when reading.
		if ds, err = ds.SortBy(key); err != nil {
			return err
		}
		return WriteDataset(ctx, output, ds, Log)
	},
	DisableAutoGenTag: true,
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split line zones at point indices",
	Long: `split splits every line zone of the input file at the given point
indices. N boundaries split each zone into N+1 zones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		plan, err := splitPlan(Cfg)
		if err != nil {
			return err
		}
		output, err := checkOutputFile(ctx, Cfg.GetString("output"))
		if err != nil {
			return err
		}
		ds, err := readInput(ctx)
		if err != nil {
			return err
		}
		o, err := Split(ds, plan, Log)
		if err != nil {
			return err
		}
		return WriteDataset(ctx, output, o, Log)
	},
	DisableAutoGenTag: true,
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge data files",
	Long: `merge reads the files given by --inputs, which must have the same
variables, and writes all of their zones to the output file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inputs := expandStringSlice(Cfg.GetStringSlice("inputs"))
		if len(inputs) == 0 {
			return fmt.Errorf("cfdtools: you need to specify the files to merge (--inputs)")
		}
		output, err := checkOutputFile(ctx, Cfg.GetString("output"))
		if err != nil {
			return err
		}
		rc, err := readConfig()
		if err != nil {
			return err
		}
		ds, err := Merge(ctx, inputs, rc)
		if err != nil {
			return err
		}
		return WriteDataset(ctx, output, ds, Log)
	},
	DisableAutoGenTag: true,
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute derived variables",
	Long: `calc computes the derived variables given by --expressions at every point
of every zone and writes the input data with the new variables appended.
Expressions can use the functions exp, log, sqrt, abs and pow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		exprs, err := GetStringMapString("expressions", Cfg)
		if err != nil {
			return err
		}
		output, err := checkOutputFile(ctx, Cfg.GetString("output"))
		if err != nil {
			return err
		}
		ds, err := readInput(ctx)
		if err != nil {
			return err
		}
		o, err := Calc(ds, exprs, Log)
		if err != nil {
			return err
		}
		return WriteDataset(ctx, output, o, Log)
	},
	DisableAutoGenTag: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a data file to another format",
	Long: `export converts the input file to the format given by the extension of
the output file: netCDF (.nc), Excel (.xlsx), or a line plot of the line
zones (.png, .svg, .pdf, .eps, .jpg or .tif) with --plotx on the horizontal
axis and --ploty on the vertical axis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		output, err := checkOutputFile(ctx, Cfg.GetString("output"))
		if err != nil {
			return err
		}
		ds, err := readInput(ctx)
		if err != nil {
			return err
		}
		pc := PlotConfig{
			X:      Cfg.GetString("plotx"),
			Y:      Cfg.GetString("ploty"),
			Width:  vg.Length(Cfg.GetFloat64("plotwidth")) * vg.Inch,
			Height: vg.Length(Cfg.GetFloat64("plotheight")) * vg.Inch,
		}
		return writeOutput(ctx, output, Log, func(local string) error {
			return Export(local, ds, pc)
		})
	},
	DisableAutoGenTag: true,
}

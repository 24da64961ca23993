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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/YangYunjia/cfdtools/calc"
	"github.com/YangYunjia/cfdtools/export"
	"github.com/YangYunjia/cfdtools/internal/hash"
	"github.com/YangYunjia/cfdtools/tecplot"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/vg"
)

// ReadConfig holds the settings shared by every command that reads
// Tecplot files.
type ReadConfig struct {
	// Encoding is the character encoding of the input files. A nil
	// value means UTF-8.
	Encoding encoding.Encoding

	// SortVariable, if not empty, is the variable that line zones are
	// sorted by after reading.
	SortVariable string

	Log logrus.FieldLogger
}

func (c *ReadConfig) logger() logrus.FieldLogger {
	if c == nil || c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// ReadDataset reads the Tecplot file at path, which may be a local
// file, an http(s) URL or a blob storage location.
func ReadDataset(ctx context.Context, path string, cfg *ReadConfig) (*tecplot.Dataset, error) {
	log := cfg.logger()
	local, cleanup, err := maybeDownload(ctx, path, log)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	var ndiag int
	opts := []tecplot.ReadOption{
		tecplot.WithLogger(log.WithField("file", path)),
		tecplot.Diagnostics(func(error) { ndiag++ }),
	}
	if cfg != nil && cfg.Encoding != nil {
		opts = append(opts, tecplot.WithEncoding(cfg.Encoding))
	}
	if cfg != nil && cfg.SortVariable != "" {
		opts = append(opts, tecplot.SortBy(cfg.SortVariable))
	}
	ds, err := tecplot.Read(local, opts...)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"file":        path,
		"zones":       len(ds.Zones),
		"variables":   len(ds.Variables),
		"diagnostics": ndiag,
	}).Info("cfdtools: read dataset")
	return ds, nil
}

// WriteDataset writes ds to path, which may be a local file or a blob
// storage location.
func WriteDataset(ctx context.Context, path string, ds *tecplot.Dataset, log logrus.FieldLogger) error {
	return writeOutput(ctx, path, log, func(local string) error {
		return tecplot.Write(local, ds)
	})
}

// writeOutput calls write with a local path for path, uploading the
// result if path is a blob storage location.
func writeOutput(ctx context.Context, path string, log logrus.FieldLogger, write func(local string) error) error {
	var upload uploader
	local := upload.maybeUpload(path)
	if upload.err != nil {
		return fmt.Errorf("cfdtools: preparing output %s: %v", path, upload.err)
	}
	if err := write(local); err != nil {
		return err
	}
	if err := upload.uploadOutput(ctx, log); err != nil {
		return err
	}
	log.WithField("file", path).Info("cfdtools: wrote output")
	return nil
}

// Info writes a summary of ds to w: the title, the variables, a
// fingerprint of the contents and, for each zone, its shape and the
// range, mean and standard deviation of every variable.
func Info(w io.Writer, ds *tecplot.Dataset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Title:\t%q\n", ds.Title)
	fmt.Fprintf(tw, "Variables:\t%s\n", strings.Join(ds.Variables, ", "))
	fmt.Fprintf(tw, "Zones:\t%d\n", len(ds.Zones))
	fmt.Fprintf(tw, "Fingerprint:\t%s\n", hash.Hash(ds))
	for i, z := range ds.Zones {
		fmt.Fprintf(tw, "\nZone %d:\t%q\t%v\tshape %v\t%d points\n",
			i+1, z.Name(), z.Header.ZoneType, z.Shape(), z.NumPoints())
		if len(z.Connectivity) > 0 {
			fmt.Fprintf(tw, "\t%d elements\n", len(z.Connectivity))
		}
		if z.NumPoints() == 0 {
			continue
		}
		fmt.Fprintln(tw, "\tvariable\tmin\tmax\tmean\tstd")
		for j, v := range ds.Variables {
			if j >= len(z.Data) || z.Data[j] == nil {
				continue
			}
			e := z.Data[j].Elements
			mean, std := stat.MeanStdDev(e, nil)
			fmt.Fprintf(tw, "\t%s\t%.6g\t%.6g\t%.6g\t%.6g\n", v, floats.Min(e), floats.Max(e), mean, std)
		}
	}
	return tw.Flush()
}

// Split splits every zone of ds at the boundaries in plan and returns
// a dataset holding the pieces. Zones that cannot be split (surface,
// volume and finite-element zones) are kept unchanged.
func Split(ds *tecplot.Dataset, plan *SplitPlan, log logrus.FieldLogger) (*tecplot.Dataset, error) {
	o := &tecplot.Dataset{
		Title:     ds.Title,
		Variables: append([]string(nil), ds.Variables...),
	}
	for _, z := range ds.Zones {
		if !z.IsLine() || z.Header.ZoneType.IsFE() {
			log.WithField("zone", z.Name()).Warn("cfdtools: only ordered line zones can be split; keeping zone unchanged")
			o.Zones = append(o.Zones, z.Copy())
			continue
		}
		names := plan.Names
		if len(ds.Zones) > 1 && len(names) == len(plan.Boundaries)+1 {
			names = make([]string, len(plan.Names))
			for i, n := range plan.Names {
				names[i] = z.Name() + " " + n
			}
		}
		pieces, err := tecplot.SplitByIndex([]*tecplot.Zone{z}, plan.Boundaries, names)
		if err != nil {
			return nil, err
		}
		o.Zones = append(o.Zones, pieces...)
	}
	return o, nil
}

// Merge reads the datasets at paths concurrently and merges them into
// one dataset, keeping the order of paths.
func Merge(ctx context.Context, paths []string, cfg *ReadConfig) (*tecplot.Dataset, error) {
	dss := make([]*tecplot.Dataset, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			ds, err := ReadDataset(ctx, p, cfg)
			if err != nil {
				return err
			}
			dss[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tecplot.Merge(dss...)
}

// Calc appends the derived variables defined by exprs to ds.
func Calc(ds *tecplot.Dataset, exprs map[string]string, log logrus.FieldLogger) (*tecplot.Dataset, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("cfdtools: there are no expressions specified. Please fill in " +
			"the expressions configuration and try again")
	}
	c, err := calc.NewCalculator(exprs, nil)
	if err != nil {
		return nil, err
	}
	c.Log = log
	return c.Apply(ds)
}

// PlotConfig holds the settings for plot exports.
type PlotConfig struct {
	X, Y          string
	Width, Height vg.Length
}

// Export writes ds to the local file path in the format given by the
// file extension: ".nc" for netCDF, ".xlsx" for Excel, or an image
// format supported by gonum plot (".png", ".svg", ".pdf", ".eps",
// ".jpg", ".tif") for a line plot.
func Export(path string, ds *tecplot.Dataset, pc PlotConfig) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".nc", ".xlsx":
	case ".png", ".svg", ".pdf", ".eps", ".jpg", ".jpeg", ".tif", ".tiff":
		p, err := export.PlotLines(ds, pc.X, pc.Y)
		if err != nil {
			return err
		}
		return p.Save(pc.Width, pc.Height, path)
	default:
		return fmt.Errorf("cfdtools: unsupported export format %q", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cfdtools: creating export file: %v", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	if ext == ".nc" {
		return export.NetCDF(f, ds)
	}
	return export.Excel(f, ds)
}

/*
Copyright © 2019 the nemo-tools authors.
This file is part of nemo-tools.

nemo-tools is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

nemo-tools is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with nemo-tools.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package nemoutil holds the command-line interface to the nemo-tools
// library.
package nemoutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/floats"

	"github.com/ctessum/sparse"
	nemo "github.com/dalepartridge/nemo-tools"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})

	// The command-line options and the flag sets they belong to.
	options := []struct {
		name, usage string
		defaultVal  interface{}
		flagset     *pflag.FlagSet
	}{
		{
			name:       "thickness",
			usage:      "also load the 3D cell thickness fields",
			defaultVal: false,
			flagset:    describeCmd.Flags(),
		},
		{
			name:       "depths",
			usage:      "also load the 3D cell depth fields",
			defaultVal: false,
			flagset:    describeCmd.Flags(),
		},
		{
			name:       "grid",
			usage:      "grid type to compute areas for: T, U, or V",
			defaultVal: "T",
			flagset:    areaCmd.Flags(),
		},
		{
			name:       "var",
			usage:      "name of the zone-indicator variable",
			defaultVal: "",
			flagset:    maskCmd.Flags(),
		},
		{
			name:       "flags",
			usage:      "comma-separated list of zone values",
			defaultVal: "0",
			flagset:    maskCmd.Flags(),
		},
		{
			name:       "keep",
			usage:      "treat the flag values as the zones to keep rather than mask",
			defaultVal: false,
			flagset:    maskCmd.Flags(),
		},
	}
	for _, option := range options {
		switch v := option.defaultVal.(type) {
		case string:
			option.flagset.String(option.name, v, option.usage)
		case bool:
			option.flagset.Bool(option.name, v, option.usage)
		}
	}
	maskCmd.MarkFlagRequired("var")

	Root.AddCommand(versionCmd)
	Root.AddCommand(describeCmd)
	Root.AddCommand(areaCmd)
	Root.AddCommand(maskCmd)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "nemotools",
	Short: "Utilities for NEMO ocean model grid files.",
	Long: `nemotools reads NEMO mesh description files and reports grid
dimensions, staggered-grid cell areas, and zone-indicator masks.
Refer to the subcommand documentation for options.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("nemotools v%s\n", nemo.Version)
	},
	DisableAutoGenTag: true,
}

var describeCmd = &cobra.Command{
	Use:   "describe meshfile",
	Short: "Summarize the grid in a mesh file.",
	Long: `describe loads the grid description in the given mesh file and
reports the grid dimensions and which fields are present.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []nemo.GridOption
		if cast.ToBool(cmd.Flag("thickness").Value.String()) {
			opts = append(opts, nemo.WithThickness())
		}
		if cast.ToBool(cmd.Flag("depths").Value.String()) {
			opts = append(opts, nemo.WithDepths())
		}
		logger.Infof("loading grid from %s", args[0])
		g, err := nemo.LoadGrid(args[0], opts...)
		if err != nil {
			return err
		}
		cmd.Printf("dimensions: nx=%d ny=%d nz=%d\n", g.Nx, g.Ny, g.Nz)
		for _, fld := range []struct {
			name string
			data *sparse.DenseArray
		}{
			{"lon_T", g.LonT}, {"lat_T", g.LatT},
			{"x_len_T", g.XLenT}, {"y_len_T", g.YLenT},
			{"lon_U", g.LonU}, {"lat_U", g.LatU},
			{"x_len_U", g.XLenU}, {"y_len_U", g.YLenU},
			{"lon_V", g.LonV}, {"lat_V", g.LatV},
			{"x_len_V", g.XLenV}, {"y_len_V", g.YLenV},
			{"tmask", g.MaskT3D}, {"umask", g.MaskU3D}, {"vmask", g.MaskV3D},
			{"bathymetry", g.Bathy}, {"bathy_index", g.BathyIndex},
			{"thick_T", g.ThickT}, {"thick_U", g.ThickU}, {"thick_V", g.ThickV},
			{"depth_T", g.DepthT}, {"depth_W", g.DepthW},
		} {
			if fld.data == nil {
				continue
			}
			cmd.Printf("%-12s shape %v\n", fld.name, fld.data.Shape)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var areaCmd = &cobra.Command{
	Use:   "area meshfile",
	Short: "Report cell-area statistics for a grid.",
	Long: `area computes the horizontal area of each cell of the requested
staggered grid and reports summary statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gridType := cmd.Flag("grid").Value.String()
		logger.Infof("loading grid from %s", args[0])
		g, err := nemo.LoadGrid(args[0])
		if err != nil {
			return err
		}
		area, err := g.Area(gridType)
		if err != nil {
			return err
		}
		total, err := g.TotalArea(gridType)
		if err != nil {
			return err
		}
		cmd.Printf("%s grid: %d cells\n", gridType, len(area.Elements))
		cmd.Printf("total area: %v\n", total)
		cmd.Printf("cell area min=%g max=%g mean=%g m2\n",
			floats.Min(area.Elements), floats.Max(area.Elements),
			floats.Sum(area.Elements)/float64(len(area.Elements)))
		return nil
	},
	DisableAutoGenTag: true,
}

var maskCmd = &cobra.Command{
	Use:   "mask meshfile",
	Short: "Build a mask from a zone-indicator variable.",
	Long: `mask reads an integer zone-indicator variable from the given file
and reports how many cells match the given flag values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		varname := cmd.Flag("var").Value.String()
		flags, err := parseFlagList(cmd.Flag("flags").Value.String())
		if err != nil {
			return err
		}
		keep := cast.ToBool(cmd.Flag("keep").Value.String())

		logger.Infof("reading %s from %s", varname, args[0])
		arr, err := nemo.ReadVar(args[0], varname)
		if err != nil {
			return err
		}
		m := nemo.MaskFromArray(arr, flags, keep)
		cmd.Printf("%s: shape %v, %d of %d cells masked\n",
			varname, m.Shape, m.Count(), len(m.Elements))
		return nil
	},
	DisableAutoGenTag: true,
}

// parseFlagList converts a comma-separated list of numbers to a flag set.
func parseFlagList(s string) ([]float64, error) {
	var flags []float64
	for _, piece := range strings.Split(s, ",") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		v, err := cast.ToFloat64E(piece)
		if err != nil {
			return nil, fmt.Errorf("nemoutil: invalid flag value %q: %v", piece, err)
		}
		flags = append(flags, v)
	}
	return flags, nil
}

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

package nemo

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// DefaultBathyVar is the variable name used when loading bathymetry from a
// separate file and no name is given.
const DefaultBathyVar = "Bathymetry"

// Grid holds the description of a NEMO model grid as read from a mesh file.
// Horizontal fields are 2D arrays with shape (y, x); the 3D mask, thickness,
// and depth fields have shape (z, y, x). Within each of the staggered grid
// types (T, U, and V in the Arakawa C-grid convention) all horizontal arrays
// share the same shape.
type Grid struct {
	filename string
	bathFile string
	bathVar  string

	loadThicks  bool
	loadDepths  bool
	maskApplied bool

	// Nx, Ny, and Nz are the global grid dimensions (jpiglo, jpjglo,
	// jpkglo). If the mesh file does not record them they are inferred
	// from the T mask.
	Nx, Ny, Nz int

	// Longitude, latitude, and horizontal scale factors (cell edge
	// lengths, m) at the T, U, and V points.
	LonT, LatT, XLenT, YLenT *sparse.DenseArray
	LonU, LatU, XLenU, YLenU *sparse.DenseArray
	LonV, LatV, XLenV, YLenV *sparse.DenseArray

	// 3D validity masks (1 = ocean, 0 = land) and their surface slices.
	MaskT3D, MaskU3D, MaskV3D *sparse.DenseArray
	MaskT, MaskU, MaskV       *sparse.DenseArray

	// Bathy is the bathymetry (m) and BathyIndex the index of the deepest
	// ocean level (mbathy). Land cells are NaN unless masking is disabled.
	Bathy      *sparse.DenseArray
	BathyIndex *sparse.DenseArray

	// Initial cell thicknesses (e3t_0, e3u_0, e3v_0), populated by
	// LoadThick.
	ThickT, ThickU, ThickV *sparse.DenseArray

	// Initial cell depths (gdept_0, gdepw_0), populated by LoadDepth.
	DepthT, DepthW *sparse.DenseArray
}

// A GridOption adjusts how LoadGrid reads a mesh file.
type GridOption func(*Grid)

// WithBathyFile loads bathymetry from a separate file after the mesh file
// has been read. If varname is empty, DefaultBathyVar is used.
func WithBathyFile(filename, varname string) GridOption {
	return func(g *Grid) {
		g.bathFile = filename
		if varname != "" {
			g.bathVar = varname
		}
	}
}

// WithThickness eagerly loads the 3D initial cell thickness fields.
func WithThickness() GridOption {
	return func(g *Grid) { g.loadThicks = true }
}

// WithDepths eagerly loads the 3D initial cell depth fields.
func WithDepths() GridOption {
	return func(g *Grid) { g.loadDepths = true }
}

// WithoutMask leaves bathymetry fields unmasked rather than setting land
// cells to NaN.
func WithoutMask() GridOption {
	return func(g *Grid) { g.maskApplied = false }
}

// LoadGrid reads the grid description in the given NEMO mesh file.
func LoadGrid(filename string, opts ...GridOption) (*Grid, error) {
	g := &Grid{
		filename:    filename,
		bathVar:     DefaultBathyVar,
		maskApplied: true,
	}
	for _, opt := range opts {
		opt(g)
	}

	f, ff, err := openNCF(filename)
	if err != nil {
		return nil, err
	}
	err = g.initFile(ff)
	f.Close()
	if err != nil {
		return nil, err
	}

	if g.loadDepths {
		if err := g.LoadDepth(); err != nil {
			return nil, err
		}
	}
	if g.loadThicks {
		if err := g.LoadThick(); err != nil {
			return nil, err
		}
	}
	if g.bathFile != "" {
		if err := g.LoadBathy(g.bathFile, g.bathVar); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// initFile loads the masks, coordinates, scale factors, and any bathymetry
// fields present in ff. Masks are read first so that they can be applied to
// the bathymetry.
func (g *Grid) initFile(ff *cdf.File) error {
	names := varNames(ff)

	for _, m := range []struct {
		name       string
		dst3, dst2 **sparse.DenseArray
	}{
		{"tmask", &g.MaskT3D, &g.MaskT},
		{"umask", &g.MaskU3D, &g.MaskU},
		{"vmask", &g.MaskV3D, &g.MaskV},
	} {
		v, ok := names[m.name]
		if !ok {
			continue
		}
		data, err := readVar(ff, v)
		if err != nil {
			return err
		}
		*m.dst3 = data
		*m.dst2 = surfaceSlice(data)
	}

	for _, gridType := range []struct {
		suffix               string
		lon, lat, xlen, ylen **sparse.DenseArray
	}{
		{"t", &g.LonT, &g.LatT, &g.XLenT, &g.YLenT},
		{"u", &g.LonU, &g.LatU, &g.XLenU, &g.YLenU},
		{"v", &g.LonV, &g.LatV, &g.XLenV, &g.YLenV},
	} {
		for _, fld := range []struct {
			name string
			dst  **sparse.DenseArray
		}{
			{"glam" + gridType.suffix, gridType.lon},
			{"gphi" + gridType.suffix, gridType.lat},
			{"e1" + gridType.suffix, gridType.xlen},
			{"e2" + gridType.suffix, gridType.ylen},
		} {
			v, ok := names[fld.name]
			if !ok {
				return fmt.Errorf("nemo: variable %s not in %s", fld.name, g.filename)
			}
			data, err := readVar(ff, v)
			if err != nil {
				return err
			}
			*fld.dst = data
		}
		if !shapesEqual((*gridType.lon).Shape, (*gridType.lat).Shape) ||
			!shapesEqual((*gridType.lon).Shape, (*gridType.xlen).Shape) ||
			!shapesEqual((*gridType.lon).Shape, (*gridType.ylen).Shape) {
			return fmt.Errorf("nemo: mismatched horizontal shapes on the %s grid in %s",
				strings.ToUpper(gridType.suffix), g.filename)
		}
	}

	for _, fld := range []struct {
		name string
		dst  **sparse.DenseArray
	}{
		{"hbatt", &g.Bathy},
		{"mbathy", &g.BathyIndex},
	} {
		v, ok := names[fld.name]
		if !ok {
			continue
		}
		data, err := readVar(ff, v)
		if err != nil {
			return err
		}
		if data, err = g.maskLand(data); err != nil {
			return err
		}
		*fld.dst = data
	}

	g.Nx = g.intVar(ff, names, "jpiglo")
	g.Ny = g.intVar(ff, names, "jpjglo")
	g.Nz = g.intVar(ff, names, "jpkglo")
	if g.MaskT3D != nil && len(g.MaskT3D.Shape) == 3 {
		if g.Nz == 0 {
			g.Nz = g.MaskT3D.Shape[0]
		}
		if g.Ny == 0 {
			g.Ny = g.MaskT3D.Shape[1]
		}
		if g.Nx == 0 {
			g.Nx = g.MaskT3D.Shape[2]
		}
	}
	return nil
}

// intVar reads the integer-valued scalar variable name, returning zero if it
// is not in the file.
func (g *Grid) intVar(ff *cdf.File, names map[string]string, name string) int {
	v, ok := names[name]
	if !ok {
		return 0
	}
	data, err := readVar(ff, v)
	if err != nil || len(data.Elements) == 0 {
		return 0
	}
	return int(data.Elements[0])
}

// maskLand sets the land cells of data to NaN, choosing the surface or 3D
// T mask to match the field's rank. It is a no-op if masking is disabled or
// the mesh file carries no T mask; a mask whose shape does not match the
// field is an error.
func (g *Grid) maskLand(data *sparse.DenseArray) (*sparse.DenseArray, error) {
	if !g.maskApplied {
		return data, nil
	}
	var mask *sparse.DenseArray
	switch len(data.Shape) {
	case 2:
		mask = g.MaskT
	case 3:
		mask = g.MaskT3D
	default:
		return nil, fmt.Errorf("nemo: unsupported number of dimensions (%d) for masked variable", len(data.Shape))
	}
	if mask == nil {
		return data, nil
	}
	if !shapesEqual(mask.Shape, data.Shape) {
		return nil, fmt.Errorf("nemo: T mask shape %v does not match masked variable shape %v",
			mask.Shape, data.Shape)
	}
	return MaskFromArray(mask, []float64{0}, false).Apply(data), nil
}

// surfaceSlice returns the top level of a 3D mask as a 2D array. 2D masks
// are passed through unchanged. In C element order the top level is the
// first ny*nx elements.
func surfaceSlice(mask *sparse.DenseArray) *sparse.DenseArray {
	if len(mask.Shape) != 3 {
		return mask
	}
	out := sparse.ZerosDense(mask.Shape[1], mask.Shape[2])
	copy(out.Elements, mask.Elements[:len(out.Elements)])
	return out
}

// LoadBathy loads bathymetry from a separate file, masking land cells with
// the T-grid surface mask. If varname is empty, DefaultBathyVar is used.
func (g *Grid) LoadBathy(filename, varname string) error {
	if varname == "" {
		varname = DefaultBathyVar
	}
	f, ff, err := openNCF(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	names := varNames(ff)
	v, ok := names[strings.ToLower(varname)]
	if !ok {
		return fmt.Errorf("nemo: variable %s not in %s", varname, filename)
	}
	data, err := readVar(ff, v)
	if err != nil {
		return err
	}
	if data, err = g.maskLand(data); err != nil {
		return err
	}
	g.Bathy = data
	return nil
}

// LoadThick loads the initial cell thickness fields (e3t_0, e3u_0, e3v_0)
// from the grid file. It may be called repeatedly; each call re-reads the
// file.
func (g *Grid) LoadThick() error {
	g.loadThicks = true
	return g.load3D([]field{
		{"e3t_0", &g.ThickT},
		{"e3u_0", &g.ThickU},
		{"e3v_0", &g.ThickV},
	})
}

// LoadDepth loads the initial cell depth fields (gdept_0, gdepw_0) from the
// grid file. It may be called repeatedly; each call re-reads the file.
func (g *Grid) LoadDepth() error {
	g.loadDepths = true
	return g.load3D([]field{
		{"gdept_0", &g.DepthT},
		{"gdepw_0", &g.DepthW},
	})
}

type field struct {
	name string
	dst  **sparse.DenseArray
}

func (g *Grid) load3D(fields []field) error {
	f, ff, err := openNCF(g.filename)
	if err != nil {
		return err
	}
	defer f.Close()

	names := varNames(ff)
	for _, fld := range fields {
		v, ok := names[fld.name]
		if !ok {
			continue
		}
		data, err := readVar(ff, v)
		if err != nil {
			return err
		}
		*fld.dst = data
	}
	return nil
}

// Area returns the horizontal area (m2) of each cell of the requested grid
// type ("T", "U", or "V") as the elementwise product of the two horizontal
// scale factors.
func (g *Grid) Area(grid string) (*sparse.DenseArray, error) {
	var xLen, yLen *sparse.DenseArray
	switch grid {
	case "T":
		xLen, yLen = g.XLenT, g.YLenT
	case "U":
		xLen, yLen = g.XLenU, g.YLenU
	case "V":
		xLen, yLen = g.XLenV, g.YLenV
	default:
		return nil, fmt.Errorf("nemo: invalid grid type %q; must be T, U, or V", grid)
	}
	if xLen == nil || yLen == nil {
		return nil, fmt.Errorf("nemo: scale factors for the %s grid have not been loaded", grid)
	}
	area := xLen.Copy()
	for i, v := range yLen.Elements {
		area.Elements[i] *= v
	}
	return area, nil
}

// TotalArea returns the summed horizontal area of the requested grid type
// as a dimensioned quantity (m2). NaN cells are excluded.
func (g *Grid) TotalArea(grid string) (*unit.Unit, error) {
	area, err := g.Area(grid)
	if err != nil {
		return nil, err
	}
	var sum float64
	for _, v := range area.Elements {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return unit.New(sum, unit.Meter2), nil
}

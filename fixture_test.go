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
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
)

// Fixture grid dimensions.
const (
	fixNx = 4
	fixNy = 3
	fixNz = 2
)

// Fixture cell values. Cell (j=0, i=0) is land in the T mask.
func fixXLen(i int) float64   { return float64(i+1) * 1000 }
func fixYLen(j int) float64   { return float64(j+1) * 2000 }
func fixThick(k int) float64  { return float64(k+1) * 10 }
func fixDepthT(k int) float64 { return float64(k)*10 + 5 }
func fixDepthW(k int) float64 { return float64(k) * 10 }

const fixBathyDepth = 50.0

// writeMeshFile writes a small NEMO mesh description file and returns its
// path.
func writeMeshFile(t *testing.T) string {
	t.Helper()

	h := cdf.NewHeader(
		[]string{"t", "z", "y", "x", "one"},
		[]int{1, fixNz, fixNy, fixNx, 1})
	h.AddAttribute("", "comment", "test mesh file")

	for _, name := range []string{"jpiglo", "jpjglo", "jpkglo"} {
		h.AddVariable(name, []string{"one"}, []int32{0})
	}
	for _, suffix := range []string{"t", "u", "v"} {
		h.AddVariable("glam"+suffix, []string{"t", "y", "x"}, []float32{0})
		h.AddVariable("gphi"+suffix, []string{"t", "y", "x"}, []float32{0})
		h.AddVariable("e1"+suffix, []string{"t", "y", "x"}, []float64{0})
		h.AddVariable("e2"+suffix, []string{"t", "y", "x"}, []float64{0})
		h.AddVariable(suffix+"mask", []string{"t", "z", "y", "x"}, []uint8{0})
		h.AddVariable("e3"+suffix+"_0", []string{"t", "z", "y", "x"}, []float32{0})
	}
	h.AddVariable("hbatt", []string{"t", "y", "x"}, []float32{0})
	h.AddVariable("mbathy", []string{"t", "y", "x"}, []int32{0})
	h.AddVariable("gdept_0", []string{"t", "z", "y", "x"}, []float64{0})
	h.AddVariable("gdepw_0", []string{"t", "z", "y", "x"}, []float64{0})
	h.Define()

	path := filepath.Join(t.TempDir(), "mesh_mask.nc")
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}

	writeFixtureVar(t, f, "jpiglo", []int32{fixNx})
	writeFixtureVar(t, f, "jpjglo", []int32{fixNy})
	writeFixtureVar(t, f, "jpkglo", []int32{fixNz})

	lon := make([]float32, fixNy*fixNx)
	lat := make([]float32, fixNy*fixNx)
	xlen := make([]float64, fixNy*fixNx)
	ylen := make([]float64, fixNy*fixNx)
	for j := 0; j < fixNy; j++ {
		for i := 0; i < fixNx; i++ {
			lon[j*fixNx+i] = float32(i)
			lat[j*fixNx+i] = float32(j)
			xlen[j*fixNx+i] = fixXLen(i)
			ylen[j*fixNx+i] = fixYLen(j)
		}
	}
	for _, suffix := range []string{"t", "u", "v"} {
		writeFixtureVar(t, f, "glam"+suffix, lon)
		writeFixtureVar(t, f, "gphi"+suffix, lat)
		writeFixtureVar(t, f, "e1"+suffix, xlen)
		writeFixtureVar(t, f, "e2"+suffix, ylen)

		mask := make([]uint8, fixNz*fixNy*fixNx)
		for i := range mask {
			mask[i] = 1
		}
		if suffix == "t" {
			mask[0] = 0 // land at (k=0, j=0, i=0)
		}
		writeFixtureVar(t, f, suffix+"mask", mask)

		thick := make([]float32, fixNz*fixNy*fixNx)
		for k := 0; k < fixNz; k++ {
			for ji := 0; ji < fixNy*fixNx; ji++ {
				thick[k*fixNy*fixNx+ji] = float32(fixThick(k))
			}
		}
		writeFixtureVar(t, f, "e3"+suffix+"_0", thick)
	}

	bathy := make([]float32, fixNy*fixNx)
	bathyIndex := make([]int32, fixNy*fixNx)
	for i := range bathy {
		bathy[i] = fixBathyDepth
		bathyIndex[i] = fixNz
	}
	writeFixtureVar(t, f, "hbatt", bathy)
	writeFixtureVar(t, f, "mbathy", bathyIndex)

	depthT := make([]float64, fixNz*fixNy*fixNx)
	depthW := make([]float64, fixNz*fixNy*fixNx)
	for k := 0; k < fixNz; k++ {
		for ji := 0; ji < fixNy*fixNx; ji++ {
			depthT[k*fixNy*fixNx+ji] = fixDepthT(k)
			depthW[k*fixNy*fixNx+ji] = fixDepthW(k)
		}
	}
	writeFixtureVar(t, f, "gdept_0", depthT)
	writeFixtureVar(t, f, "gdepw_0", depthW)

	return path
}

// writeBathyFile writes a bathymetry file holding the given variable and
// returns its path.
func writeBathyFile(t *testing.T, varname string, depth float32) string {
	t.Helper()

	h := cdf.NewHeader([]string{"y", "x"}, []int{fixNy, fixNx})
	h.AddVariable(varname, []string{"y", "x"}, []float32{0})
	h.Define()

	path := filepath.Join(t.TempDir(), "bathy_meter.nc")
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	bathy := make([]float32, fixNy*fixNx)
	for i := range bathy {
		bathy[i] = depth
	}
	writeFixtureVar(t, f, varname, bathy)
	return path
}

func writeFixtureVar(t *testing.T, f *cdf.File, name string, values interface{}) {
	t.Helper()
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(values); err != nil {
		t.Fatalf("writing fixture variable %s: %v", name, err)
	}
}

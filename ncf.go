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
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// openNCF opens a NetCDF file for reading. The caller is responsible for
// closing the returned os.File.
func openNCF(filename string) (*os.File, *cdf.File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("nemo: opening grid file: %v", err)
	}
	ff, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("nemo: reading header of %s: %v", filename, err)
	}
	return f, ff, nil
}

// varNames returns a map from the lower-cased names of the variables in ff
// to the names as they appear in the file. NEMO mesh files are inconsistent
// about variable-name capitalization, so all lookups go through this map.
func varNames(ff *cdf.File) map[string]string {
	names := make(map[string]string)
	for _, v := range ff.Header.Variables() {
		names[strings.ToLower(v)] = v
	}
	return names
}

// readVar reads the entirety of variable name from ff, widening the values
// to float64 and dropping length-1 dimensions from the shape.
func readVar(ff *cdf.File, name string) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(name)
	// A record dimension reports length zero; mesh files store their
	// time-independent fields with a single record.
	if len(dims) > 0 && dims[0] == 0 {
		dims = append([]int{1}, dims[1:]...)
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	start := make([]int, len(dims))
	end := make([]int, len(dims))
	copy(end, dims)
	r := ff.Reader(name, start, end)
	if r == nil {
		return nil, fmt.Errorf("nemo: variable %s not in file", name)
	}
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("nemo: reading variable %s: %v", name, err)
	}
	data := sparse.ZerosDense(squeeze(dims)...)
	switch b := buf.(type) {
	case []float64:
		copy(data.Elements, b)
	case []float32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	case []uint8:
		for i, v := range b {
			data.Elements[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("nemo: variable %s has unsupported type %T", name, buf)
	}
	return data, nil
}

// ReadVar reads a single named variable from a NetCDF file, matching the
// name case-insensitively. The values are widened to float64 and length-1
// dimensions are dropped from the shape.
func ReadVar(filename, varname string) (*sparse.DenseArray, error) {
	f, ff, err := openNCF(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, ok := varNames(ff)[strings.ToLower(varname)]
	if !ok {
		return nil, fmt.Errorf("nemo: variable %s not in %s", varname, filename)
	}
	return readVar(ff, v)
}

// squeeze drops length-1 dimensions, keeping at least one dimension so that
// scalar variables end up with shape [1].
func squeeze(dims []int) []int {
	out := make([]int, 0, len(dims))
	for _, d := range dims {
		if d != 1 {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		out = append(out, 1)
	}
	return out
}

func shapesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

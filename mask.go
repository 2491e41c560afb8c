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
	"math"

	"github.com/ctessum/sparse"
)

// Mask is a boolean array with the same element layout as a
// sparse.DenseArray. A true element marks a masked (invalid) cell.
type Mask struct {
	Shape    []int
	Elements []bool
}

// Index1d converts a multidimensional index to the corresponding
// one-dimensional index into Elements.
func (m *Mask) Index1d(index ...int) int {
	if len(index) != len(m.Shape) {
		panic("nemo: wrong number of mask index dimensions")
	}
	idx := 0
	stride := 1
	for i := len(index) - 1; i >= 0; i-- {
		if index[i] < 0 || index[i] >= m.Shape[i] {
			panic("nemo: mask index out of range")
		}
		idx += index[i] * stride
		stride *= m.Shape[i]
	}
	return idx
}

// Get returns the mask value at the given index.
func (m *Mask) Get(index ...int) bool {
	return m.Elements[m.Index1d(index...)]
}

// Set sets the mask value at the given index.
func (m *Mask) Set(v bool, index ...int) {
	m.Elements[m.Index1d(index...)] = v
}

// Count returns the number of masked elements.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Elements {
		if v {
			n++
		}
	}
	return n
}

// Apply returns a copy of A with the masked cells set to NaN. A must have
// the same shape as the mask.
func (m *Mask) Apply(A *sparse.DenseArray) *sparse.DenseArray {
	if !shapesEqual(m.Shape, A.Shape) {
		panic("nemo: mask and array shapes do not match")
	}
	out := A.Copy()
	for i, masked := range m.Elements {
		if masked {
			out.Elements[i] = math.NaN()
		}
	}
	return out
}

// MaskFromArray builds a mask from an array of integer-valued flags, as
// arise in zone-indicator fields. An element is masked iff its value is a
// member of flags; if keep is true the sense is inverted and flags lists
// the values to keep instead. A nil or empty flag set masks where the array
// is zero.
func MaskFromArray(arr *sparse.DenseArray, flags []float64, keep bool) *Mask {
	if len(flags) == 0 {
		flags = []float64{0}
	}
	m := &Mask{
		Shape:    append([]int{}, arr.Shape...),
		Elements: make([]bool, len(arr.Elements)),
	}
	for i, v := range arr.Elements {
		in := false
		for _, f := range flags {
			if v == f {
				in = true
				break
			}
		}
		m.Elements[i] = in != keep
	}
	return m
}

// ReverseMask swaps the zeros and ones of a 0/1 validity mask, converting
// between the ocean-is-one convention of NEMO mask variables and the
// land-is-one convention of a cell-invalidity mask.
func ReverseMask(arr *sparse.DenseArray) *sparse.DenseArray {
	out := arr.Copy()
	for i, v := range out.Elements {
		out.Elements[i] = math.Abs(v - 1)
	}
	return out
}

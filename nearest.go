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

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/sparse"
)

// gridPoint is a grid coordinate and the 2D index it came from.
type gridPoint struct {
	geom.Point
	row, col int
}

// Nearest returns, for each of the given longitude/latitude query points,
// the index of the grid point whose coordinates are closest. glon and glat
// are 2D arrays of the grid point coordinates, as held in a Grid's LonT and
// LatT fields. The returned slices hold the first (row) and second (column)
// index of the nearest grid point for each query.
func Nearest(lon, lat []float64, glon, glat *sparse.DenseArray) (rows, cols []int, err error) {
	if len(lon) != len(lat) {
		return nil, nil, fmt.Errorf("nemo: Nearest: %d longitudes given but %d latitudes", len(lon), len(lat))
	}
	if len(glon.Shape) != 2 {
		return nil, nil, fmt.Errorf("nemo: Nearest: grid coordinates must be 2D; got shape %v", glon.Shape)
	}
	if !shapesEqual(glon.Shape, glat.Shape) {
		return nil, nil, fmt.Errorf("nemo: Nearest: grid coordinate shapes %v and %v do not match",
			glon.Shape, glat.Shape)
	}

	tree := rtree.NewTree(25, 50)
	for i, x := range glon.Elements {
		index := glon.IndexNd(i)
		tree.Insert(gridPoint{
			Point: geom.Point{X: x, Y: glat.Elements[i]},
			row:   index[0],
			col:   index[1],
		})
	}

	rows = make([]int, len(lon))
	cols = make([]int, len(lon))
	for i := range lon {
		p := tree.NearestNeighbor(geom.Point{X: lon[i], Y: lat[i]}).(gridPoint)
		rows[i] = p.row
		cols[i] = p.col
	}
	return rows, cols, nil
}

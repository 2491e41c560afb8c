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

// Package nemo provides utilities for working with NEMO ocean model grid
// description files: loading coordinate, scale-factor, and mask variables
// from a mesh file, computing cell areas on the staggered T, U, and V grids,
// building boolean masks from zone-indicator fields, and locating the grid
// points nearest to given coordinates.
package nemo

// Version gives the version number of this package.
const Version = "0.1.0"

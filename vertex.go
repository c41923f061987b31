// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

import (
	"github.com/golang/geo/r2"
)

// Vertex is a point in the plane with an optional Z payload. The Z value is
// carried through the triangulation but never consulted by it.
//
// Vertex identity is the pointer, not the coordinates: two vertices at the
// same position remain distinct objects, and only the first of them to be
// inserted becomes part of a Mesh.
type Vertex struct {
	X, Y, Z float64
}

// NewVertex returns a vertex at (x, y) carrying z as its payload.
func NewVertex(x, y, z float64) *Vertex {
	return &Vertex{X: x, Y: y, Z: z}
}

// Point returns the planar position of the vertex.
func (v *Vertex) Point() r2.Point {
	return r2.Point{X: v.X, Y: v.Y}
}

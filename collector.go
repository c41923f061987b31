// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

// Triangle is a read-only view of one triangle of the mesh. Views are cheap
// value types; they stay valid only until the next mutation of the mesh.
type Triangle struct {
	m   *Mesh
	idx triIndex
}

// Vertices returns the triangle's vertices in counter-clockwise order.
func (t Triangle) Vertices() [3]*Vertex {
	e0 := t.m.tris[t.idx].edge
	e1 := t.m.edges[e0].next
	e2 := t.m.edges[e1].next
	return [3]*Vertex{
		t.m.verts[t.m.edges[e0].orig],
		t.m.verts[t.m.edges[e1].orig],
		t.m.verts[t.m.edges[e2].orig],
	}
}

// Vertex returns the i-th vertex, i in [0, 3).
func (t Triangle) Vertex(i int) *Vertex {
	return t.Vertices()[i]
}

// Region returns the id of the polygon constraint whose interior contains
// the triangle, or -1 if the triangle lies outside every constraint.
func (t Triangle) Region() int {
	return int(t.m.tris[t.idx].region)
}

// VisitTriangles calls visit once for every triangle of the triangulation.
// Ghost triangles outside the hull are skipped. The mesh must not be
// mutated during the visit.
func (m *Mesh) VisitTriangles(visit func(Triangle)) {
	if !m.bootstrapped {
		return
	}
	for i := range m.tris {
		if m.tris[i].ghost {
			continue
		}
		visit(Triangle{m: m, idx: triIndex(i)})
	}
}

// VisitTrianglesConstrained calls visit for every triangle lying inside a
// polygon constraint, passing its vertices in counter-clockwise order.
func VisitTrianglesConstrained(m *Mesh, visit func([3]*Vertex)) {
	m.VisitTriangles(func(t Triangle) {
		if t.Region() >= 0 {
			visit(t.Vertices())
		}
	})
}

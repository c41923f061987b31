// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

import (
	"testing"
)

func TestVisitTriangles_BeforeBootstrap(t *testing.T) {
	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Insert(NewVertex(0, 0, 0)); err != nil {
		t.Fatal(err)
	}
	calls := 0
	m.VisitTriangles(func(Triangle) { calls++ })
	if calls != 0 {
		t.Errorf("VisitTriangles visited %v triangles before bootstrap, want 0", calls)
	}
}

func TestVisitTriangles_EachExactlyOnce(t *testing.T) {
	m := mustNewMesh(t, 120)
	seen := make(map[triIndex]int)
	m.VisitTriangles(func(tr Triangle) {
		seen[tr.idx]++
	})
	if len(seen) != m.TriangleCount() {
		t.Errorf("VisitTriangles visited %v distinct triangles, want %v", len(seen), m.TriangleCount())
	}
	for idx, n := range seen {
		if n != 1 {
			t.Errorf("triangle %v visited %v times, want 1", idx, n)
		}
	}
}

func TestTriangle_Vertex(t *testing.T) {
	m := mustNewMesh(t, 30)
	m.VisitTriangles(func(tr Triangle) {
		vs := tr.Vertices()
		for i := range 3 {
			if got := tr.Vertex(i); got != vs[i] {
				t.Errorf("tr.Vertex(%d) = %v, want %v", i, got, vs[i])
			}
		}
	})
}

func TestVisitTrianglesConstrained_NoConstraints(t *testing.T) {
	m := mustNewMesh(t, 50)
	calls := 0
	VisitTrianglesConstrained(m, func([3]*Vertex) { calls++ })
	if calls != 0 {
		t.Errorf("VisitTrianglesConstrained visited %v triangles without constraints, want 0", calls)
	}
}

func TestVisitTrianglesConstrained(t *testing.T) {
	m, err := NewMesh(1)
	if err != nil {
		t.Fatal(err)
	}
	c := mustConstraint([2]float64{0, 0}, [2]float64{8, 0}, [2]float64{8, 8}, [2]float64{0, 8})
	if err := m.AddConstraints([]*PolygonConstraint{c}, false); err != nil {
		t.Fatal(err)
	}
	// A point outside the polygon adds triangles that must not be visited.
	if err := m.Insert(NewVertex(12, 4, 0)); err != nil {
		t.Fatal(err)
	}

	constrained := 0
	VisitTrianglesConstrained(m, func(vs [3]*Vertex) {
		constrained++
		if orientation(vs[0].Point(), vs[1].Point(), vs[2].Point()) != orientLeft {
			t.Errorf("constrained triangle (%v, %v, %v) is not counter-clockwise", vs[0], vs[1], vs[2])
		}
		for _, v := range vs {
			if v.X < 0 || v.X > 8 || v.Y < 0 || v.Y > 8 {
				t.Errorf("constrained triangle reaches outside the polygon at (%v, %v)", v.X, v.Y)
			}
		}
	})
	if constrained != 2 {
		t.Errorf("VisitTrianglesConstrained visited %v triangles, want 2", constrained)
	}
	if got := m.TriangleCount(); got != 3 {
		t.Errorf("m.TriangleCount() = %v, want 3", got)
	}
}

// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/2dChan/tin2d/utils"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/markus-wa/quickhull-go/v2"
)

func TestInsert_InvalidVertex(t *testing.T) {
	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		v    *Vertex
	}{
		{"nil", nil},
		{"NaN x", NewVertex(math.NaN(), 0, 0)},
		{"NaN y", NewVertex(0, math.NaN(), 0)},
		{"infinite x", NewVertex(math.Inf(1), 0, 0)},
		{"infinite y", NewVertex(0, math.Inf(-1), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Insert(tt.v); err == nil {
				t.Errorf("m.Insert(%v) error = nil, want non-nil", tt.v)
			}
		})
	}
	if got := m.VertexCount(); got != 0 {
		t.Errorf("m.VertexCount() = %v after rejected inserts, want 0", got)
	}
}

func TestInsert_Duplicate(t *testing.T) {
	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	pts := []*Vertex{
		NewVertex(0, 0, 0),
		NewVertex(10, 0, 0),
		NewVertex(0, 10, 0),
		NewVertex(4, 3, 0),
	}
	for _, v := range pts {
		if err := m.Insert(v); err != nil {
			t.Fatal(err)
		}
	}
	wantVerts := m.VertexCount()
	wantTris := m.TriangleCount()

	// Exact duplicates and points within tolerance are no-ops.
	for _, v := range []*Vertex{
		NewVertex(0, 0, 99),
		NewVertex(4, 3, 99),
		NewVertex(4+m.Tolerance()/2, 3, 99),
	} {
		if err := m.Insert(v); err != nil {
			t.Fatalf("m.Insert(duplicate %v) error = %v, want nil", v, err)
		}
	}
	if got := m.VertexCount(); got != wantVerts {
		t.Errorf("m.VertexCount() = %v after duplicate inserts, want %v", got, wantVerts)
	}
	if got := m.TriangleCount(); got != wantTris {
		t.Errorf("m.TriangleCount() = %v after duplicate inserts, want %v", got, wantTris)
	}
}

func TestInsert_OnBoundaryEdge(t *testing.T) {
	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []*Vertex{
		NewVertex(0, 0, 0),
		NewVertex(10, 0, 0),
		NewVertex(0, 10, 0),
	} {
		if err := m.Insert(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Insert(NewVertex(5, 0, 0)); err != nil {
		t.Fatalf("m.Insert(on edge) error = %v, want nil", err)
	}
	if got := m.TriangleCount(); got != 2 {
		t.Errorf("m.TriangleCount() = %v after edge split, want 2", got)
	}
	check := m.GetIntegrityCheck()
	if !check.Inspect() {
		t.Errorf("check.Inspect() = false, violations: %v", check.Violations())
	}
}

func TestInsert_HullExtension(t *testing.T) {
	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []*Vertex{
		NewVertex(0, 0, 0),
		NewVertex(10, 0, 0),
		NewVertex(0, 10, 0),
	} {
		if err := m.Insert(v); err != nil {
			t.Fatal(err)
		}
	}
	if got := m.TriangleCount(); got != 1 {
		t.Fatalf("m.TriangleCount() = %v, want 1", got)
	}

	// Outside the hull, visible from one edge.
	if err := m.Insert(NewVertex(10, 10, 0)); err != nil {
		t.Fatalf("m.Insert(outside) error = %v, want nil", err)
	}
	if got := m.TriangleCount(); got != 2 {
		t.Errorf("m.TriangleCount() = %v, want 2", got)
	}

	// Further out, visible from two hull edges.
	if err := m.Insert(NewVertex(20, 20, 0)); err != nil {
		t.Fatalf("m.Insert(far outside) error = %v, want nil", err)
	}
	if got := m.TriangleCount(); got != 4 {
		t.Errorf("m.TriangleCount() = %v, want 4", got)
	}
	if _, boundary := m.CountEdges(); boundary != 4 {
		t.Errorf("m.CountEdges() boundary = %v, want 4", boundary)
	}
	check := m.GetIntegrityCheck()
	if !check.Inspect() {
		t.Errorf("check.Inspect() = false, violations: %v", check.Violations())
	}
}

func TestInsertAll_RandomCloud(t *testing.T) {
	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	points := utils.GenerateRandomPoints(300, 7)
	vs := make([]*Vertex, len(points))
	for i, p := range points {
		vs[i] = NewVertex(p.X, p.Y, 0)
	}
	if err := m.InsertAll(vs); err != nil {
		t.Fatalf("m.InsertAll(...) error = %v, want nil", err)
	}
	if got := m.VertexCount(); got != len(points) {
		t.Errorf("m.VertexCount() = %v, want %v", got, len(points))
	}
	check := m.GetIntegrityCheck()
	if !check.Inspect() {
		t.Fatalf("check.Inspect() = false, violations: %v", check.Violations())
	}
}

// TestInsert_MatchesLiftedHull cross-validates the incremental triangulation
// against an independent construction: the Delaunay triangles of a planar
// point set are the lower hull faces of the points lifted onto the paraboloid
// z = x*x + y*y.
func TestInsert_MatchesLiftedHull(t *testing.T) {
	points := utils.GenerateRandomPoints(64, 0)

	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	index := make(map[*Vertex]int, len(points))
	for i, p := range points {
		v := NewVertex(p.X, p.Y, 0)
		index[v] = i
		if err := m.Insert(v); err != nil {
			t.Fatal(err)
		}
	}

	var got [][3]int
	m.VisitTriangles(func(tr Triangle) {
		vs := tr.Vertices()
		tri := [3]int{index[vs[0]], index[vs[1]], index[vs[2]]}
		sort.Ints(tri[:])
		got = append(got, tri)
	})

	lifted := make([]r3.Vector, len(points))
	for i, p := range points {
		lifted[i] = r3.Vector{X: p.X, Y: p.Y, Z: p.X*p.X + p.Y*p.Y}
	}
	qh := new(quickhull.QuickHull)
	ch := qh.ConvexHull(lifted, true, true, 0)

	var want [][3]int
	for i := 0; i+2 < len(ch.Indices); i += 3 {
		a := lifted[ch.Indices[i]]
		b := lifted[ch.Indices[i+1]]
		c := lifted[ch.Indices[i+2]]
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Z >= 0 {
			continue // upper hull face
		}
		tri := [3]int{ch.Indices[i], ch.Indices[i+1], ch.Indices[i+2]}
		sort.Ints(tri[:])
		want = append(want, tri)
	}

	less := func(a, b [3]int) bool {
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	}
	sort.Slice(got, func(i, j int) bool { return less(got[i], got[j]) })
	sort.Slice(want, func(i, j int) bool { return less(want[i], want[j]) })
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("triangles mismatch (-want +got):\n%v", diff)
	}
}

// Benchmarks

func BenchmarkInsert(b *testing.B) {
	sizes := []int{1e+2, 1e+3, 1e+4}
	for _, pointsCnt := range sizes {
		b.Run(fmt.Sprintf("N%d", pointsCnt), func(b *testing.B) {
			points := utils.GenerateRandomPoints(pointsCnt, 0)
			vs := make([]*Vertex, len(points))
			for i, p := range points {
				vs[i] = NewVertex(p.X, p.Y, 0)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				m, err := NewMesh(10)
				if err != nil {
					b.Fatal(err)
				}
				if err := m.InsertAll(vs); err != nil {
					b.Fatalf("m.InsertAll(...) error = %v, want nil", err)
				}
			}
		})
	}
}

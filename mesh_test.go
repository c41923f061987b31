// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

import (
	"math"
	"testing"

	"github.com/2dChan/tin2d/utils"
)

// mustNewMesh builds a mesh and inserts cnt reproducible random points.
func mustNewMesh(t *testing.T, cnt int) *Mesh {
	t.Helper()
	m, err := NewMesh(10)
	if err != nil {
		t.Fatalf("NewMesh(10) error = %v, want nil", err)
	}
	for i, p := range utils.GenerateRandomPoints(cnt, 0) {
		if err := m.Insert(NewVertex(p.X, p.Y, float64(i))); err != nil {
			t.Fatalf("m.Insert(point %d) error = %v, want nil", i, err)
		}
	}
	return m
}

func TestNewMesh_InvalidSpacing(t *testing.T) {
	tests := []struct {
		name    string
		spacing float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"NaN", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMesh(tt.spacing); err == nil {
				t.Errorf("NewMesh(%v) error = nil, want non-nil", tt.spacing)
			}
		})
	}
}

func TestWithTolerance(t *testing.T) {
	tests := []struct {
		name    string
		tol     float64
		wantErr bool
	}{
		{"positive", 0.5, false},
		{"zero", 0, true},
		{"negative", -0.1, true},
		{"NaN", math.NaN(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMesh(10, WithTolerance(tt.tol))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMesh(10, WithTolerance(%v)) error = %v, wantErr %v", tt.tol, err, tt.wantErr)
			}
			if err == nil && m.Tolerance() != tt.tol {
				t.Errorf("m.Tolerance() = %v, want %v", m.Tolerance(), tt.tol)
			}
		})
	}
}

func TestNewMesh_DefaultTolerance(t *testing.T) {
	m, err := NewMesh(1000)
	if err != nil {
		t.Fatalf("NewMesh(1000) error = %v, want nil", err)
	}
	if got, want := m.Tolerance(), 1000*defaultToleranceFactor; got != want {
		t.Errorf("m.Tolerance() = %v, want %v", got, want)
	}
	if got := m.NominalPointSpacing(); got != 1000 {
		t.Errorf("m.NominalPointSpacing() = %v, want 1000", got)
	}
}

func TestMesh_Bootstrap(t *testing.T) {
	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	if m.IsBootstrapped() {
		t.Errorf("m.IsBootstrapped() = true before any insert, want false")
	}

	// Collinear points accumulate without forming a triangulation.
	for i, v := range []*Vertex{
		NewVertex(0, 0, 0),
		NewVertex(10, 0, 0),
		NewVertex(20, 0, 0),
		NewVertex(30, 0, 0),
	} {
		if err := m.Insert(v); err != nil {
			t.Fatalf("m.Insert(collinear %d) error = %v, want nil", i, err)
		}
	}
	if m.IsBootstrapped() {
		t.Errorf("m.IsBootstrapped() = true with collinear points, want false")
	}
	if got := m.VertexCount(); got != 4 {
		t.Errorf("m.VertexCount() = %v, want 4", got)
	}
	if got := m.TriangleCount(); got != 0 {
		t.Errorf("m.TriangleCount() = %v, want 0", got)
	}

	// One off-line point triggers the bootstrap and replays the backlog.
	if err := m.Insert(NewVertex(15, 10, 0)); err != nil {
		t.Fatalf("m.Insert(off-line) error = %v, want nil", err)
	}
	if !m.IsBootstrapped() {
		t.Fatalf("m.IsBootstrapped() = false after non-collinear insert, want true")
	}
	// A fan from the apex over 4 collinear points has 3 triangles.
	if got := m.TriangleCount(); got != 3 {
		t.Errorf("m.TriangleCount() = %v, want 3", got)
	}
	check := m.GetIntegrityCheck()
	if !check.Inspect() {
		t.Errorf("check.Inspect() = false, violations: %v", check.Violations())
	}
}

func TestMesh_Bounds(t *testing.T) {
	m, err := NewMesh(10)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Bounds().IsEmpty() {
		t.Errorf("m.Bounds().IsEmpty() = false for empty mesh, want true")
	}
	for _, v := range []*Vertex{
		NewVertex(1, 2, 0),
		NewVertex(5, -3, 0),
		NewVertex(-2, 7, 0),
	} {
		if err := m.Insert(v); err != nil {
			t.Fatal(err)
		}
	}
	b := m.Bounds()
	if b.X.Lo != -2 || b.X.Hi != 5 || b.Y.Lo != -3 || b.Y.Hi != 7 {
		t.Errorf("m.Bounds() = %v, want [-2, 5] x [-3, 7]", b)
	}
}

func TestMesh_CountEdges(t *testing.T) {
	// Euler: for n vertices with h on the hull, a triangulation has
	// 3n - 3 - h edges, h of them on the boundary.
	m := mustNewMesh(t, 200)
	interior, boundary := m.CountEdges()
	n := m.VertexCount()
	if got, want := interior+boundary, 3*n-3-boundary; got != want {
		t.Errorf("m.CountEdges() total = %v, want %v (n=%v, hull=%v)", got, want, n, boundary)
	}
	if boundary < 3 {
		t.Errorf("m.CountEdges() boundary = %v, want >= 3", boundary)
	}
	// And the triangle count must agree: t = 2n - 2 - h.
	if got, want := m.TriangleCount(), 2*n-2-boundary; got != want {
		t.Errorf("m.TriangleCount() = %v, want %v", got, want)
	}
}

func TestMesh_TriangleVertexOrder(t *testing.T) {
	m := mustNewMesh(t, 50)
	m.VisitTriangles(func(tr Triangle) {
		vs := tr.Vertices()
		if orientation(vs[0].Point(), vs[1].Point(), vs[2].Point()) != orientLeft {
			t.Errorf("triangle (%v, %v, %v) is not counter-clockwise", vs[0], vs[1], vs[2])
		}
	})
}

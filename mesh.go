// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package tin2d implements a constrained incremental Delaunay triangulation
// (TIN) of points in the plane. Vertices are inserted one at a time and the
// mesh maintains the Delaunay empty-circumcircle property after every
// insertion. Polygon constraints force their boundary segments to exist as
// mesh edges, exempt from Delaunay flipping, and tag the triangles enclosed
// by each polygon so they can be collected separately.

package tin2d

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
)

type vertIndex int32
type edgeIndex int32
type triIndex int32

const (
	// ghostVert is the single vertex "at infinity" shared by the ghost
	// triangles that ring the convex hull. Every half-edge has a twin
	// because of it, so vertex orbits and hull surgery need no boundary
	// special cases.
	ghostVert vertIndex = -1

	noEdge edgeIndex = -1
	noTri  triIndex  = -1

	noConstraint int32 = -1
)

// halfEdge is a directed edge. Two half-edges twinned together form one
// undirected mesh edge; next links the half-edges of a triangle into a
// counter-clockwise loop.
type halfEdge struct {
	orig       vertIndex
	twin       edgeIndex
	next       edgeIndex
	tri        triIndex
	constraint int32
}

// triangle is one face of the subdivision. Ghost triangles contain the
// ghost vertex and represent the unbounded region outside the hull; region
// is the id of the polygon constraint whose interior contains the triangle,
// or noConstraint.
type triangle struct {
	edge   edgeIndex
	ghost  bool
	region int32
}

const defaultToleranceFactor = 1e-6

// Mesh is an incremental constrained Delaunay triangulation. All mutation
// must be serialized by the caller; a Mesh is not safe for concurrent use.
type Mesh struct {
	spacing float64
	tol     float64

	verts    []*Vertex
	vertEdge []edgeIndex
	edges    []halfEdge
	tris     []triangle

	bootstrapped bool
	realTris     int

	lastTri triIndex
	rng     *rand.Rand

	constraints []*PolygonConstraint
}

// MeshOptions holds the tunable parameters of a Mesh.
type MeshOptions struct {
	// Tolerance is the distance under which an inserted point is treated
	// as coincident with an existing vertex.
	Tolerance float64
}

// MeshOption configures a Mesh under construction.
type MeshOption func(*MeshOptions) error

// WithTolerance overrides the vertex-coincidence tolerance that is
// otherwise derived from the nominal point spacing.
func WithTolerance(tol float64) MeshOption {
	return func(o *MeshOptions) error {
		if math.IsNaN(tol) || tol <= 0 {
			return fmt.Errorf("WithTolerance: tolerance %v must be positive", tol)
		}
		o.Tolerance = tol
		return nil
	}
}

// NewMesh returns an empty mesh. The nominal point spacing describes the
// typical distance between the points that will be inserted; the
// vertex-coincidence tolerance is derived from it unless overridden.
func NewMesh(nominalPointSpacing float64, setters ...MeshOption) (*Mesh, error) {
	if math.IsNaN(nominalPointSpacing) || nominalPointSpacing <= 0 {
		return nil, fmt.Errorf("tin2d: nominal point spacing %v must be positive", nominalPointSpacing)
	}
	opts := MeshOptions{
		Tolerance: nominalPointSpacing * defaultToleranceFactor,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	return &Mesh{
		spacing: nominalPointSpacing,
		tol:     opts.Tolerance,
		lastTri: noTri,
		//nolint:gosec
		rng: rand.New(rand.NewSource(1)),
	}, nil
}

// IsBootstrapped reports whether the mesh holds a valid triangulation,
// which requires at least three non-collinear vertices.
func (m *Mesh) IsBootstrapped() bool {
	return m.bootstrapped
}

// VertexCount returns the number of distinct vertices accepted so far,
// including vertices still pending bootstrap.
func (m *Mesh) VertexCount() int {
	return len(m.verts)
}

// TriangleCount returns the number of triangles in the triangulation.
// Ghost triangles outside the hull are not counted.
func (m *Mesh) TriangleCount() int {
	return m.realTris
}

// Tolerance returns the vertex-coincidence tolerance in effect.
func (m *Mesh) Tolerance() float64 {
	return m.tol
}

// NominalPointSpacing returns the spacing the mesh was constructed with.
func (m *Mesh) NominalPointSpacing() float64 {
	return m.spacing
}

// Bounds returns the bounding rectangle of all accepted vertices.
func (m *Mesh) Bounds() r2.Rect {
	r := r2.EmptyRect()
	for _, v := range m.verts {
		r = r.AddPoint(v.Point())
	}
	return r
}

// CountEdges returns the number of undirected edges of the triangulation,
// split into interior edges (bounded by two triangles) and boundary edges
// (on the convex hull, bounded by one).
func (m *Mesh) CountEdges() (interior, boundary int) {
	for i := range m.edges {
		e := edgeIndex(i)
		if e > m.edges[e].twin {
			continue
		}
		g1 := m.tris[m.edges[e].tri].ghost
		g2 := m.tris[m.edges[m.edges[e].twin].tri].ghost
		switch {
		case !g1 && !g2:
			interior++
		case g1 != g2:
			boundary++
		}
	}
	return interior, boundary
}

// Constraints returns the polygon constraints registered so far, in
// registration order.
func (m *Mesh) Constraints() []*PolygonConstraint {
	return append([]*PolygonConstraint(nil), m.constraints...)
}

// arena helpers

func (m *Mesh) dest(e edgeIndex) vertIndex {
	return m.edges[m.edges[e].twin].orig
}

func (m *Mesh) prev(e edgeIndex) edgeIndex {
	return m.edges[m.edges[e].next].next
}

// apex returns the vertex of e's triangle that is not on e.
func (m *Mesh) apex(e edgeIndex) vertIndex {
	return m.edges[m.prev(e)].orig
}

func (m *Mesh) point(v vertIndex) r2.Point {
	return m.verts[v].Point()
}

func (m *Mesh) newEdge(orig vertIndex) edgeIndex {
	e := edgeIndex(len(m.edges))
	m.edges = append(m.edges, halfEdge{
		orig:       orig,
		twin:       noEdge,
		next:       noEdge,
		tri:        noTri,
		constraint: noConstraint,
	})
	return e
}

func (m *Mesh) setTwins(a, b edgeIndex) {
	m.edges[a].twin = b
	m.edges[b].twin = a
}

func (m *Mesh) newTriangle() triIndex {
	t := triIndex(len(m.tris))
	m.tris = append(m.tris, triangle{edge: noEdge, region: noConstraint})
	return t
}

// setLoop wires e0 -> e1 -> e2 -> e0 as the boundary of t and refreshes the
// triangle's ghost flag and region tag.
func (m *Mesh) setLoop(t triIndex, e0, e1, e2 edgeIndex, region int32) {
	m.edges[e0].next = e1
	m.edges[e1].next = e2
	m.edges[e2].next = e0
	m.edges[e0].tri = t
	m.edges[e1].tri = t
	m.edges[e2].tri = t
	tr := &m.tris[t]
	tr.edge = e0
	tr.ghost = m.edges[e0].orig == ghostVert ||
		m.edges[e1].orig == ghostVert ||
		m.edges[e2].orig == ghostVert
	if tr.ghost {
		tr.region = noConstraint
	} else {
		tr.region = region
	}
}

func (m *Mesh) addVertex(v *Vertex) vertIndex {
	vi := vertIndex(len(m.verts))
	m.verts = append(m.verts, v)
	m.vertEdge = append(m.vertEdge, noEdge)
	return vi
}

func (m *Mesh) anyRealTri() triIndex {
	for i := range m.tris {
		if !m.tris[i].ghost {
			return triIndex(i)
		}
	}
	return noTri
}

// findEdge returns the half-edge from u to v, or noEdge.
func (m *Mesh) findEdge(u, v vertIndex) edgeIndex {
	start := m.vertEdge[u]
	if start == noEdge {
		return noEdge
	}
	e := start
	for {
		if m.dest(e) == v {
			return e
		}
		e = m.edges[m.prev(e)].twin
		if e == start {
			return noEdge
		}
	}
}

// tryBootstrap builds the initial triangulation once three non-collinear
// vertices are available, then inserts the remaining accepted vertices.
func (m *Mesh) tryBootstrap() {
	if len(m.verts) < 3 {
		return
	}
	i2 := -1
	a, b := m.verts[0].Point(), m.verts[1].Point()
	for k := 2; k < len(m.verts); k++ {
		if orientation(a, b, m.verts[k].Point()) != orientCollinear {
			i2 = k
			break
		}
	}
	if i2 < 0 {
		return
	}

	va, vb, vc := vertIndex(0), vertIndex(1), vertIndex(i2)
	if orientation(a, b, m.point(vc)) == orientRight {
		va, vb = vb, va
	}
	m.buildFirstTriangle(va, vb, vc)
	m.bootstrapped = true

	for k := 0; k < len(m.verts); k++ {
		vi := vertIndex(k)
		if vi == va || vi == vb || vi == vc {
			continue
		}
		m.insertLocated(vi)
	}
}

// buildFirstTriangle creates the triangle abc (counter-clockwise) together
// with the three ghost triangles closing the fan around each hull vertex.
func (m *Mesh) buildFirstTriangle(a, b, c vertIndex) {
	eab := m.newEdge(a)
	ebc := m.newEdge(b)
	eca := m.newEdge(c)

	// Ghost of hull edge a->b is the loop (b, a, ghost), and so on around.
	g1 := m.newEdge(b)
	g2 := m.newEdge(a)
	g3 := m.newEdge(ghostVert)
	h1 := m.newEdge(c)
	h2 := m.newEdge(b)
	h3 := m.newEdge(ghostVert)
	k1 := m.newEdge(a)
	k2 := m.newEdge(c)
	k3 := m.newEdge(ghostVert)

	m.setTwins(eab, g1)
	m.setTwins(ebc, h1)
	m.setTwins(eca, k1)
	m.setTwins(g2, k3)
	m.setTwins(g3, h2)
	m.setTwins(h3, k2)

	t0 := m.newTriangle()
	m.setLoop(t0, eab, ebc, eca, noConstraint)
	tg1 := m.newTriangle()
	m.setLoop(tg1, g1, g2, g3, noConstraint)
	tg2 := m.newTriangle()
	m.setLoop(tg2, h1, h2, h3, noConstraint)
	tg3 := m.newTriangle()
	m.setLoop(tg3, k1, k2, k3, noConstraint)

	m.vertEdge[a] = eab
	m.vertEdge[b] = ebc
	m.vertEdge[c] = eca
	m.realTris = 1
	m.lastTri = t0
}

// splitTriangle replaces t with three triangles fanning from p and returns
// the edges of the old boundary, which are the flip suspects opposite p.
// Splitting a ghost triangle is how the hull is extended: the child that
// avoids the ghost vertex is the new real triangle.
func (m *Mesh) splitTriangle(t triIndex, p vertIndex) [3]edgeIndex {
	e0 := m.tris[t].edge
	e1 := m.edges[e0].next
	e2 := m.edges[e1].next
	a := m.edges[e0].orig
	b := m.edges[e1].orig
	c := m.edges[e2].orig
	region := m.tris[t].region
	wasGhost := m.tris[t].ghost

	n0 := m.newEdge(b) // b->p
	n1 := m.newEdge(p) // p->a
	n2 := m.newEdge(c) // c->p
	n3 := m.newEdge(p) // p->b
	n4 := m.newEdge(a) // a->p
	n5 := m.newEdge(p) // p->c
	m.setTwins(n0, n3)
	m.setTwins(n2, n5)
	m.setTwins(n4, n1)

	tB := m.newTriangle()
	tC := m.newTriangle()
	m.setLoop(t, e0, n0, n1, region)  // (a, b, p)
	m.setLoop(tB, e1, n2, n3, region) // (b, c, p)
	m.setLoop(tC, e2, n4, n5, region) // (c, a, p)

	if wasGhost {
		m.realTris++
	} else {
		m.realTris += 2
	}
	if a != ghostVert {
		m.vertEdge[p] = n1
	} else {
		m.vertEdge[p] = n3
	}
	for _, ti := range [3]triIndex{t, tB, tC} {
		if !m.tris[ti].ghost {
			m.lastTri = ti
			break
		}
	}
	return [3]edgeIndex{e0, e1, e2}
}

// splitEdge inserts p on the edge ei, replacing the two bounding triangles
// with four. A constrained edge propagates its constraint to both sub-edges
// and the owning constraint's realized chain is updated. Returns the four
// flip suspects opposite p.
func (m *Mesh) splitEdge(ei edgeIndex, p vertIndex) [4]edgeIndex {
	ti := m.edges[ei].twin
	e1 := m.edges[ei].next // v->a
	e2 := m.edges[e1].next // a->u
	t1 := m.edges[ti].next // u->b
	t2 := m.edges[t1].next // b->v
	u := m.edges[ei].orig
	v := m.edges[ti].orig
	a := m.edges[e2].orig
	b := m.edges[t2].orig
	cid := m.edges[ei].constraint
	regA := m.tris[m.edges[ei].tri].region
	regB := m.tris[m.edges[ti].tri].region
	trA := m.edges[ei].tri
	trC := m.edges[ti].tri

	n0 := m.newEdge(p) // p->a
	n1 := m.newEdge(p) // p->v
	n2 := m.newEdge(a) // a->p
	n3 := m.newEdge(p) // p->b
	n4 := m.newEdge(p) // p->u
	n5 := m.newEdge(b) // b->p

	// ei shortens to u->p and ti to v->p.
	m.setTwins(ei, n4)
	m.setTwins(n1, ti)
	m.setTwins(n0, n2)
	m.setTwins(n3, n5)
	if cid != noConstraint {
		m.edges[n4].constraint = cid
		m.edges[n1].constraint = cid
	}

	tB := m.newTriangle()
	tD := m.newTriangle()
	m.setLoop(trA, ei, n0, e2, regA) // (u, p, a)
	m.setLoop(tB, n1, e1, n2, regA)  // (p, v, a)
	m.setLoop(trC, ti, n3, t2, regB) // (v, p, b)
	m.setLoop(tD, n4, t1, n5, regB)  // (p, u, b)

	if a != ghostVert {
		m.realTris++
	}
	if b != ghostVert {
		m.realTris++
	}
	m.vertEdge[p] = n1
	for _, tx := range [4]triIndex{trA, tB, trC, tD} {
		if !m.tris[tx].ghost {
			m.lastTri = tx
			break
		}
	}
	if cid != noConstraint {
		m.noteConstraintSplit(cid, u, v, p)
	}
	return [4]edgeIndex{e2, e1, t2, t1}
}

// flip replaces the diagonal ei of the quadrilateral formed by its two
// bounding triangles with the opposite diagonal. The caller must ensure the
// edge is unconstrained and the flip geometrically valid.
func (m *Mesh) flip(ei edgeIndex) {
	ti := m.edges[ei].twin
	e1 := m.edges[ei].next // v->p
	e2 := m.edges[e1].next // p->u
	t1 := m.edges[ti].next // u->w
	t2 := m.edges[t1].next // w->v
	u := m.edges[ei].orig
	v := m.edges[ti].orig
	p := m.edges[e2].orig
	w := m.edges[t2].orig
	trA := m.edges[ei].tri
	trB := m.edges[ti].tri

	oldReal := 0
	if !m.tris[trA].ghost {
		oldReal++
	}
	if !m.tris[trB].ghost {
		oldReal++
	}
	// Flips never cross constrained edges, so both sides share one region.
	region := m.tris[trA].region

	m.edges[ei].orig = w
	m.edges[ti].orig = p
	m.setLoop(trA, t1, ei, e2, region) // (u, w, p)
	m.setLoop(trB, t2, e1, ti, region) // (w, v, p)

	newReal := 0
	if !m.tris[trA].ghost {
		newReal++
	}
	if !m.tris[trB].ghost {
		newReal++
	}
	m.realTris += newReal - oldReal

	if u != ghostVert {
		m.vertEdge[u] = t1
	}
	if v != ghostVert {
		m.vertEdge[v] = e1
	}
	if w != ghostVert {
		m.vertEdge[w] = ei
	}
	if p != ghostVert {
		m.vertEdge[p] = ti
	}
	if !m.tris[trA].ghost {
		m.lastTri = trA
	} else if !m.tris[trB].ghost {
		m.lastTri = trB
	}
}

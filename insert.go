// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

type locateKind int

const (
	locateVertex locateKind = iota
	locateEdge
	locateTriangle
)

// locateHit is the tagged result of point location: the point coincides
// with a vertex, lies on an edge, or falls inside a triangle. A ghost
// triangle hit means the point is outside the current hull.
type locateHit struct {
	kind locateKind
	vert vertIndex
	edge edgeIndex
	tri  triIndex
}

// Insert adds a vertex to the triangulation. Inserting a point coincident
// with an existing vertex is a no-op. A point on an existing edge splits
// that edge, preserving any constraint on it; a point outside the hull
// extends the hull. The Delaunay property is restored before returning.
func (m *Mesh) Insert(v *Vertex) error {
	_, err := m.insertVertex(v)
	return err
}

// InsertAll inserts the vertices in order, stopping at the first error.
func (m *Mesh) InsertAll(vs []*Vertex) error {
	for i, v := range vs {
		if err := m.Insert(v); err != nil {
			return fmt.Errorf("tin2d: insert %d: %w", i, err)
		}
	}
	return nil
}

// insertVertex is Insert plus the index of the mesh vertex realizing v,
// which is an existing vertex when v is a duplicate.
func (m *Mesh) insertVertex(v *Vertex) (vertIndex, error) {
	if v == nil {
		return 0, fmt.Errorf("tin2d: nil vertex")
	}
	if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
		return 0, fmt.Errorf("tin2d: vertex coordinates (%v, %v) are not finite", v.X, v.Y)
	}

	if !m.bootstrapped {
		tol2 := m.tol * m.tol
		for i, w := range m.verts {
			if distSq(w.Point(), v.Point()) <= tol2 {
				return vertIndex(i), nil
			}
		}
		vi := m.addVertex(v)
		m.tryBootstrap()
		return vi, nil
	}

	hit := m.locate(v.Point())
	if hit.kind == locateVertex {
		return hit.vert, nil
	}
	vi := m.addVertex(v)
	m.insertAt(hit, vi)
	return vi, nil
}

// insertLocated inserts an already-registered vertex into the
// triangulation; used when the bootstrap replays pending vertices.
func (m *Mesh) insertLocated(vi vertIndex) {
	hit := m.locate(m.point(vi))
	if hit.kind == locateVertex {
		return
	}
	m.insertAt(hit, vi)
}

func (m *Mesh) insertAt(hit locateHit, vi vertIndex) {
	switch hit.kind {
	case locateEdge:
		suspects := m.splitEdge(hit.edge, vi)
		m.restoreDelaunay(vi, suspects[:])
	case locateTriangle:
		suspects := m.splitTriangle(hit.tri, vi)
		m.restoreDelaunay(vi, suspects[:])
	}
}

// locate finds the mesh feature containing p by walking from the most
// recently touched triangle. When two edges of a triangle both separate
// the walk from p, the crossing is chosen at random; the stochastic walk
// cannot cycle the way a deterministic one can on constrained meshes.
func (m *Mesh) locate(p r2.Point) locateHit {
	t := m.lastTri
	if t == noTri || m.tris[t].ghost {
		t = m.anyRealTri()
	}
	tol2 := m.tol * m.tol
	limit := 4*len(m.tris) + 32
	for range limit {
		e0 := m.tris[t].edge
		e1 := m.edges[e0].next
		e2 := m.edges[e1].next
		loop := [3]edgeIndex{e0, e1, e2}

		for _, e := range loop {
			vi := m.edges[e].orig
			if distSq(m.point(vi), p) <= tol2 {
				return locateHit{kind: locateVertex, vert: vi}
			}
		}

		var rights [2]edgeIndex
		nRights := 0
		onEdge := noEdge
		for _, e := range loop {
			u := m.point(m.edges[e].orig)
			v := m.point(m.dest(e))
			switch orientation(u, v, p) {
			case orientRight:
				if nRights < 2 {
					rights[nRights] = e
				}
				nRights++
			case orientCollinear:
				onEdge = e
			}
		}
		if nRights == 0 {
			if onEdge != noEdge {
				u := m.point(m.edges[onEdge].orig)
				v := m.point(m.dest(onEdge))
				if segmentContains(u, v, p) {
					return locateHit{kind: locateEdge, edge: onEdge}
				}
			}
			return locateHit{kind: locateTriangle, tri: t}
		}
		cross := rights[0]
		if nRights > 1 && m.rng.Intn(nRights) == 1 {
			cross = rights[1]
		}
		nt := m.edges[m.edges[cross].twin].tri
		if m.tris[nt].ghost {
			return m.locateGhost(p, nt)
		}
		t = nt
	}
	return m.locateScan(p)
}

// locateGhost scans the ghost ring for the hull edge that sees p. The ring
// is closed, so a point outside the hull is strictly visible from at least
// one hull edge.
func (m *Mesh) locateGhost(p r2.Point, g triIndex) locateHit {
	tol2 := m.tol * m.tol
	start := g
	for {
		he := m.hullEdgeOf(g) // runs dest->orig along the real hull
		b := m.edges[he].orig
		a := m.dest(he)
		pa := m.point(a)
		pb := m.point(b)
		if distSq(pa, p) <= tol2 {
			return locateHit{kind: locateVertex, vert: a}
		}
		if distSq(pb, p) <= tol2 {
			return locateHit{kind: locateVertex, vert: b}
		}
		switch orientation(pa, pb, p) {
		case orientRight:
			return locateHit{kind: locateTriangle, tri: g}
		case orientCollinear:
			if segmentContains(pa, pb, p) {
				return locateHit{kind: locateEdge, edge: m.edges[he].twin}
			}
		}
		g = m.nextGhost(g)
		if g == start {
			break
		}
	}
	return m.locateScan(p)
}

// hullEdgeOf returns the half-edge of ghost triangle g whose endpoints are
// both real; its twin is the hull edge seen from inside.
func (m *Mesh) hullEdgeOf(g triIndex) edgeIndex {
	e := m.tris[g].edge
	for range 3 {
		if m.edges[e].orig != ghostVert && m.dest(e) != ghostVert {
			return e
		}
		e = m.edges[e].next
	}
	panic("hullEdgeOf: ghost triangle without hull edge")
}

// nextGhost steps to the adjacent ghost triangle, walking the ring in one
// consistent direction.
func (m *Mesh) nextGhost(g triIndex) triIndex {
	e := m.tris[g].edge
	for range 3 {
		if m.edges[e].orig == ghostVert {
			return m.edges[m.edges[e].twin].tri
		}
		e = m.edges[e].next
	}
	panic("nextGhost: ghost triangle without ghost edge")
}

// locateScan is the exhaustive fallback for when the walk exceeds its step
// budget; it should not be reached in normal operation.
func (m *Mesh) locateScan(p r2.Point) locateHit {
	tol2 := m.tol * m.tol
	for i := range m.tris {
		if m.tris[i].ghost {
			continue
		}
		e0 := m.tris[i].edge
		e1 := m.edges[e0].next
		e2 := m.edges[e1].next
		inside := true
		onEdge := noEdge
		for _, e := range [3]edgeIndex{e0, e1, e2} {
			vi := m.edges[e].orig
			if distSq(m.point(vi), p) <= tol2 {
				return locateHit{kind: locateVertex, vert: vi}
			}
			u := m.point(m.edges[e].orig)
			v := m.point(m.dest(e))
			switch orientation(u, v, p) {
			case orientRight:
				inside = false
			case orientCollinear:
				onEdge = e
			}
		}
		if !inside {
			continue
		}
		if onEdge != noEdge {
			return locateHit{kind: locateEdge, edge: onEdge}
		}
		return locateHit{kind: locateTriangle, tri: triIndex(i)}
	}
	// Outside the hull: find a visible hull edge among the ghosts.
	for i := range m.tris {
		if !m.tris[i].ghost {
			continue
		}
		he := m.hullEdgeOf(triIndex(i))
		pa := m.point(m.dest(he))
		pb := m.point(m.edges[he].orig)
		switch orientation(pa, pb, p) {
		case orientRight:
			return locateHit{kind: locateTriangle, tri: triIndex(i)}
		case orientCollinear:
			if segmentContains(pa, pb, p) {
				return locateHit{kind: locateEdge, edge: m.edges[he].twin}
			}
		}
	}
	panic("locateScan: point not locatable")
}

// restoreDelaunay runs the Lawson cascade after p has been inserted. Every
// suspect edge is opposite p in its triangle; flipping an illegal edge
// exposes two new suspects. Constrained edges are never flipped, and an
// edge whose far triangle is a ghost is a hull edge with nothing beyond
// it. Suspect edges with a ghost endpoint arise while the hull is being
// extended; for those the in-circle test degenerates to a visibility test
// against the neighboring hull edge.
func (m *Mesh) restoreDelaunay(p vertIndex, suspects []edgeIndex) {
	stack := append([]edgeIndex(nil), suspects...)
	pp := m.point(p)
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.edges[e].constraint != noConstraint {
			continue
		}
		t := m.edges[e].twin
		u := m.edges[e].orig
		v := m.edges[t].orig
		w := m.apex(t)

		doFlip := false
		switch {
		case w == ghostVert:
			// Hull edge seen from inside; final.
		case u == ghostVert:
			doFlip = orientation(m.point(v), m.point(w), pp) == orientRight
		case v == ghostVert:
			doFlip = orientation(m.point(w), m.point(u), pp) == orientRight
		default:
			doFlip = inCircle(m.point(u), m.point(v), pp, m.point(w)) == circleInside
		}
		if !doFlip {
			continue
		}
		m.flip(e)
		// The new triangles are (u, w, p) and (w, v, p); their edges
		// opposite p are the new suspects.
		stack = append(stack, m.edges[m.edges[e].next].next, m.edges[t].next)
	}
}

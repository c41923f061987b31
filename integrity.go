// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

import (
	"fmt"
	"math"
	"strings"
)

// IntegrityCheck audits the structural and geometric invariants of a mesh:
// half-edge wiring, triangle winding, constraint bookkeeping, and the
// Delaunay criterion on unconstrained edges. It reports violations instead
// of panicking, so a corrupted mesh can still be diagnosed.
type IntegrityCheck struct {
	m          *Mesh
	violations []string
}

// GetIntegrityCheck returns an auditor bound to the mesh.
func (m *Mesh) GetIntegrityCheck() *IntegrityCheck {
	return &IntegrityCheck{m: m}
}

// Inspect runs the full audit against the current state of the mesh and
// reports whether it passed. Repeated calls re-inspect from scratch, so the
// result always reflects the mesh as it is now.
func (c *IntegrityCheck) Inspect() bool {
	c.violations = nil
	if !c.m.bootstrapped {
		if len(c.m.edges) != 0 || len(c.m.tris) != 0 {
			c.reportf("mesh has %d edges and %d triangles before bootstrap", len(c.m.edges), len(c.m.tris))
		}
		return len(c.violations) == 0
	}
	structural := c.inspectEdges() && c.inspectTriangles()
	if structural {
		c.inspectConstraints()
		c.inspectDelaunay()
		c.inspectCoverage()
	}
	return len(c.violations) == 0
}

// Violations returns the messages recorded by the last Inspect.
func (c *IntegrityCheck) Violations() []string {
	return append([]string(nil), c.violations...)
}

// Summary returns a one-line description of the last Inspect.
func (c *IntegrityCheck) Summary() string {
	if len(c.violations) == 0 {
		return fmt.Sprintf("ok: %d vertices, %d triangles", c.m.VertexCount(), c.m.TriangleCount())
	}
	return fmt.Sprintf("%d violations: %s", len(c.violations), strings.Join(c.violations, "; "))
}

func (c *IntegrityCheck) reportf(format string, args ...any) {
	c.violations = append(c.violations, fmt.Sprintf(format, args...))
}

func (c *IntegrityCheck) validEdge(e edgeIndex) bool {
	return e >= 0 && int(e) < len(c.m.edges)
}

// inspectEdges verifies the half-edge wiring: twin reciprocity, next loops
// of length three staying within one triangle, origin consistency across
// twins, and the constraint flag being set on both halves or neither.
func (c *IntegrityCheck) inspectEdges() bool {
	m := c.m
	ok := true
	for i := range m.edges {
		e := edgeIndex(i)
		he := m.edges[e]
		if he.orig < ghostVert || int(he.orig) >= len(m.verts) {
			c.reportf("edge %d: origin %d out of range", e, he.orig)
			ok = false
			continue
		}
		if !c.validEdge(he.twin) || !c.validEdge(he.next) {
			c.reportf("edge %d: dangling twin or next", e)
			ok = false
			continue
		}
		if he.twin == e || m.edges[he.twin].twin != e {
			c.reportf("edge %d: twin %d is not reciprocal", e, he.twin)
			ok = false
		}
		if m.edges[he.twin].constraint != he.constraint {
			c.reportf("edge %d: constraint %d but twin has %d", e, he.constraint, m.edges[he.twin].constraint)
			ok = false
		}
		n1 := he.next
		n2 := m.edges[n1].next
		if !c.validEdge(n2) || m.edges[n2].next != e {
			c.reportf("edge %d: next cycle is not a triangle", e)
			ok = false
			continue
		}
		if m.edges[n1].tri != he.tri || m.edges[n2].tri != he.tri {
			c.reportf("edge %d: loop spans triangles %d, %d, %d", e, he.tri, m.edges[n1].tri, m.edges[n2].tri)
			ok = false
		}
	}
	return ok
}

// inspectTriangles verifies that every real triangle has three real,
// counter-clockwise vertices and that every ghost triangle contains the
// ghost vertex exactly once.
func (c *IntegrityCheck) inspectTriangles() bool {
	m := c.m
	ok := true
	realCount := 0
	for i := range m.tris {
		t := triIndex(i)
		e0 := m.tris[t].edge
		if !c.validEdge(e0) {
			c.reportf("triangle %d: dangling edge reference", t)
			ok = false
			continue
		}
		e1 := m.edges[e0].next
		e2 := m.edges[e1].next
		if m.edges[e0].tri != t {
			c.reportf("triangle %d: edge %d belongs to triangle %d", t, e0, m.edges[e0].tri)
			ok = false
			continue
		}
		ghosts := 0
		for _, e := range [3]edgeIndex{e0, e1, e2} {
			if m.edges[e].orig == ghostVert {
				ghosts++
			}
		}
		switch {
		case m.tris[t].ghost:
			if ghosts != 1 {
				c.reportf("ghost triangle %d: %d ghost vertices, want 1", t, ghosts)
				ok = false
			}
		default:
			realCount++
			if ghosts != 0 {
				c.reportf("triangle %d: marked real but contains the ghost vertex", t)
				ok = false
				continue
			}
			a := m.point(m.edges[e0].orig)
			b := m.point(m.edges[e1].orig)
			d := m.point(m.edges[e2].orig)
			if orientation(a, b, d) != orientLeft {
				c.reportf("triangle %d: not counter-clockwise", t)
				ok = false
			}
		}
	}
	if realCount != m.realTris {
		c.reportf("triangle count %d disagrees with %d real triangles found", m.realTris, realCount)
		ok = false
	}
	return ok
}

// inspectConstraints verifies that every registered constraint's realized
// chains are made of constrained mesh edges and that interior chain
// vertices lie exactly on their segment.
func (c *IntegrityCheck) inspectConstraints() {
	m := c.m
	for ci, pc := range m.constraints {
		for si, chain := range pc.chains {
			if len(chain) < 2 {
				c.reportf("constraint %d: segment %d has no realized edges", ci, si)
				continue
			}
			for j := 0; j+1 < len(chain); j++ {
				e := m.findEdge(chain[j], chain[j+1])
				if e == noEdge {
					c.reportf("constraint %d: segment %d: edge (%d, %d) missing from mesh", ci, si, chain[j], chain[j+1])
					continue
				}
				if m.edges[e].constraint == noConstraint {
					c.reportf("constraint %d: segment %d: edge (%d, %d) is not constrained", ci, si, chain[j], chain[j+1])
				}
			}
			first := m.point(chain[0])
			last := m.point(chain[len(chain)-1])
			for j := 1; j+1 < len(chain); j++ {
				p := m.point(chain[j])
				if orientation(first, last, p) != orientCollinear || !segmentStrictlyBetween(first, last, p) {
					c.reportf("constraint %d: segment %d: vertex %d is off the segment", ci, si, chain[j])
				}
			}
		}
	}
}

// inspectDelaunay audits the empty-circumcircle property: for every
// unconstrained interior edge, the far apex must not lie strictly inside
// the circumcircle of the near triangle.
func (c *IntegrityCheck) inspectDelaunay() {
	m := c.m
	for i := range m.edges {
		e := edgeIndex(i)
		tw := m.edges[e].twin
		if e > tw || m.edges[e].constraint != noConstraint {
			continue
		}
		if m.tris[m.edges[e].tri].ghost || m.tris[m.edges[tw].tri].ghost {
			continue
		}
		u := m.point(m.edges[e].orig)
		v := m.point(m.edges[tw].orig)
		p := m.point(m.apex(e))
		w := m.point(m.apex(tw))
		if inCircle(u, v, p, w) == circleInside {
			c.reportf("edge %d: apex (%v, %v) violates the Delaunay criterion", e, w.X, w.Y)
		}
	}
}

// inspectCoverage compares the total area of the real triangles against the
// area of the hull polygon traced by the ghost ring. A mismatch indicates
// overlapping or missing triangles that the local checks cannot see.
func (c *IntegrityCheck) inspectCoverage() {
	m := c.m
	var triArea, hullArea float64
	for i := range m.tris {
		t := triIndex(i)
		e0 := m.tris[t].edge
		e1 := m.edges[e0].next
		e2 := m.edges[e1].next
		if m.tris[t].ghost {
			// Each ghost contributes its hull edge to the ring; summing the
			// cross products over the ring is the shoelace of the hull.
			he := noEdge
			for _, e := range [3]edgeIndex{e0, e1, e2} {
				if m.edges[e].orig != ghostVert && m.dest(e) != ghostVert {
					he = e
					break
				}
			}
			if he == noEdge {
				c.reportf("ghost triangle %d: no hull edge", t)
				return
			}
			a := m.point(m.dest(he))
			b := m.point(m.edges[he].orig)
			hullArea += (a.X*b.Y - b.X*a.Y) / 2
			continue
		}
		a := m.point(m.edges[e0].orig)
		b := m.point(m.edges[e1].orig)
		d := m.point(m.edges[e2].orig)
		triArea += ((b.X-a.X)*(d.Y-a.Y) - (b.Y-a.Y)*(d.X-a.X)) / 2
	}
	scale := math.Max(math.Abs(triArea), math.Abs(hullArea))
	if math.Abs(triArea-hullArea) > 1e-9*math.Max(scale, 1) {
		c.reportf("triangle area %v disagrees with hull area %v", triArea, hullArea)
	}
}

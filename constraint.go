// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

import (
	"fmt"
)

// PolygonConstraint is an ordered, closed loop of vertices whose boundary
// segments are forced to exist as mesh edges. The logical boundary is fixed
// once the constraint is completed; the set of mesh edges realizing it may
// grow as vertices are inserted exactly on its segments.
type PolygonConstraint struct {
	id          int
	verts       []*Vertex
	complete    bool
	enforceOnly bool

	// chains holds, per original segment, the ordered mesh vertices of the
	// constrained edges realizing it. Managed by the mesh.
	chains [][]vertIndex
}

// NewPolygonConstraint returns a constraint over the given vertex loop.
// Call Complete before registering it with a mesh.
func NewPolygonConstraint(vs ...*Vertex) *PolygonConstraint {
	return &PolygonConstraint{
		id:    -1,
		verts: append([]*Vertex(nil), vs...),
	}
}

// Add appends a vertex to the loop. It panics if the constraint has
// already been completed.
func (c *PolygonConstraint) Add(v *Vertex) {
	if c.complete {
		panic("Add: polygon constraint already completed")
	}
	c.verts = append(c.verts, v)
}

// Complete closes the loop. A trailing vertex coincident with the first is
// dropped, so both open and explicitly closed vertex lists are accepted.
func (c *PolygonConstraint) Complete() {
	if c.complete {
		return
	}
	if n := len(c.verts); n > 1 {
		first, last := c.verts[0], c.verts[n-1]
		if first.X == last.X && first.Y == last.Y {
			c.verts = c.verts[:n-1]
		}
	}
	c.complete = true
}

// IsComplete reports whether Complete has been called.
func (c *PolygonConstraint) IsComplete() bool {
	return c.complete
}

// ID returns the id assigned at registration, or -1 before registration.
func (c *PolygonConstraint) ID() int {
	return c.id
}

// EnforcesEdgesOnly reports whether the constraint was registered for edge
// enforcement only.
func (c *PolygonConstraint) EnforcesEdgesOnly() bool {
	return c.enforceOnly
}

// Vertices returns the constraint's vertex loop. After registration the
// loop is normalized to counter-clockwise order.
func (c *PolygonConstraint) Vertices() []*Vertex {
	return append([]*Vertex(nil), c.verts...)
}

// Area returns the signed area of the loop; positive for counter-clockwise
// winding.
func (c *PolygonConstraint) Area() float64 {
	var sum float64
	n := len(c.verts)
	for i := range n {
		a := c.verts[i]
		b := c.verts[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// IsCCW reports whether the loop winds counter-clockwise.
func (c *PolygonConstraint) IsCCW() bool {
	return c.Area() > 0
}

func (c *PolygonConstraint) validate() error {
	if !c.complete {
		return fmt.Errorf("polygon constraint is not completed")
	}
	n := len(c.verts)
	if n < 3 {
		return fmt.Errorf("polygon constraint has %d vertices, need at least 3", n)
	}
	for i := range n {
		a := c.verts[i]
		b := c.verts[(i+1)%n]
		if a.X == b.X && a.Y == b.Y {
			return fmt.Errorf("polygon constraint repeats vertex (%v, %v)", a.X, a.Y)
		}
	}
	if c.Area() == 0 {
		return fmt.Errorf("polygon constraint has zero area")
	}
	for i := range n {
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			a := c.verts[i].Point()
			b := c.verts[(i+1)%n].Point()
			d := c.verts[j].Point()
			e := c.verts[(j+1)%n].Point()
			touches := segmentsCross(a, b, d, e) ||
				(orientation(a, b, d) == orientCollinear && segmentContains(a, b, d)) ||
				(orientation(a, b, e) == orientCollinear && segmentContains(a, b, e)) ||
				(orientation(d, e, a) == orientCollinear && segmentContains(d, e, a)) ||
				(orientation(d, e, b) == orientCollinear && segmentContains(d, e, b))
			if touches {
				return fmt.Errorf("polygon constraint is self-intersecting")
			}
		}
	}
	return nil
}

// AddConstraints registers polygon constraints with the mesh. Every
// constraint is validated before any is applied — including against the
// constraints already registered and against the rest of the batch — so an
// input error leaves the mesh unchanged. Vertices missing from the mesh are
// inserted, each boundary segment is realized by one or more constrained
// collinear edges, and the triangles enclosed by each polygon are tagged as
// its interior.
//
// Polygons may share vertices and whole boundary edges, but boundary
// segments crossing at an interior point cannot both be realized and are
// rejected.
//
// With enforceOnly set, constraint edges still block Delaunay flips but
// the registration is recorded as edge enforcement only.
func (m *Mesh) AddConstraints(constraints []*PolygonConstraint, enforceOnly bool) error {
	for i, c := range constraints {
		if c == nil {
			return fmt.Errorf("tin2d: constraint %d is nil", i)
		}
		if err := c.validate(); err != nil {
			return fmt.Errorf("tin2d: constraint %d: %w", i, err)
		}
		if m.crossesConstrainedEdge(c) {
			return fmt.Errorf("tin2d: constraint %d crosses a registered constraint", i)
		}
		for j := range i {
			if c.crossesLoop(constraints[j]) {
				return fmt.Errorf("tin2d: constraints %d and %d cross", j, i)
			}
		}
	}
	for i, c := range constraints {
		if err := m.addConstraint(c, enforceOnly); err != nil {
			return fmt.Errorf("tin2d: constraint %d: %w", i, err)
		}
	}
	return nil
}

// crossesLoop reports whether a boundary segment of c properly crosses a
// boundary segment of o. Shared endpoints and collinear touches do not
// count; those configurations are realizable by shared mesh vertices.
func (c *PolygonConstraint) crossesLoop(o *PolygonConstraint) bool {
	n, on := len(c.verts), len(o.verts)
	for i := range n {
		a := c.verts[i].Point()
		b := c.verts[(i+1)%n].Point()
		for j := range on {
			if segmentsCross(a, b, o.verts[j].Point(), o.verts[(j+1)%on].Point()) {
				return true
			}
		}
	}
	return false
}

// crossesConstrainedEdge reports whether a boundary segment of c properly
// crosses an edge realizing an already-registered constraint. The realized
// chains are checked rather than the original loops, so a crossing at a
// vertex inserted on a constrained edge is still allowed.
func (m *Mesh) crossesConstrainedEdge(c *PolygonConstraint) bool {
	n := len(c.verts)
	for i := range n {
		a := c.verts[i].Point()
		b := c.verts[(i+1)%n].Point()
		for _, rc := range m.constraints {
			for _, chain := range rc.chains {
				for j := 0; j+1 < len(chain); j++ {
					if segmentsCross(a, b, m.point(chain[j]), m.point(chain[j+1])) {
						return true
					}
				}
			}
		}
	}
	return false
}

func (m *Mesh) addConstraint(c *PolygonConstraint, enforceOnly bool) error {
	if c.id >= 0 {
		return fmt.Errorf("polygon constraint already registered")
	}
	loop := append([]*Vertex(nil), c.verts...)
	if !c.IsCCW() {
		for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
			loop[i], loop[j] = loop[j], loop[i]
		}
	}

	idxs := make([]vertIndex, len(loop))
	for i, v := range loop {
		vi, err := m.insertVertex(v)
		if err != nil {
			return err
		}
		idxs[i] = vi
	}
	if !m.bootstrapped {
		return fmt.Errorf("mesh failed to bootstrap from constraint vertices")
	}

	// Recover every segment before committing any bookkeeping, so a failed
	// registration never leaves a half-registered constraint behind.
	cid := int32(len(m.constraints))
	chains := make([][]vertIndex, len(loop))
	for i := range loop {
		u := idxs[i]
		v := idxs[(i+1)%len(loop)]
		chain, err := m.recoverSegment(u, v, cid)
		if err != nil {
			m.rollbackConstraint(cid)
			return err
		}
		chains[i] = chain
	}

	c.id = int(cid)
	c.enforceOnly = enforceOnly
	c.verts = loop
	c.chains = chains
	m.constraints = append(m.constraints, c)
	m.fillRegion(c)
	return nil
}

// rollbackConstraint clears the edge flags a failed registration has set.
// The id is not yet registered, so every edge carrying it belongs to the
// aborted constraint. Freed edges are re-legalized: they were forced into
// place, and nothing exempts them from the Delaunay criterion anymore.
func (m *Mesh) rollbackConstraint(cid int32) {
	var freed []edgeIndex
	for i := range m.edges {
		if m.edges[i].constraint == cid {
			m.edges[i].constraint = noConstraint
			freed = append(freed, edgeIndex(i))
		}
	}
	for changed := true; changed; {
		changed = false
		for _, e := range freed {
			if m.edges[e].constraint != noConstraint {
				continue
			}
			tw := m.edges[e].twin
			u := m.edges[e].orig
			v := m.edges[tw].orig
			p1 := m.apex(e)
			p2 := m.apex(tw)
			if u == ghostVert || v == ghostVert || p1 == ghostVert || p2 == ghostVert {
				continue
			}
			if inCircle(m.point(u), m.point(v), m.point(p1), m.point(p2)) == circleInside {
				m.flip(e)
				changed = true
			}
		}
	}
}

// recoverSegment forces the segment from u to v to be realized by
// constrained mesh edges and returns the chain of vertices along it. The
// chain is u and v alone unless existing vertices lie exactly on the
// segment, in which case the chain passes through each of them.
func (m *Mesh) recoverSegment(u, v vertIndex, cid int32) ([]vertIndex, error) {
	if u == v {
		return nil, fmt.Errorf("degenerate constraint segment")
	}
	chain := []vertIndex{u}
	cur := u
	for cur != v {
		next, err := m.recoverNext(cur, v, cid)
		if err != nil {
			return nil, err
		}
		chain = append(chain, next)
		cur = next
	}
	return chain, nil
}

// recoverNext realizes the leading portion of the segment cur -> target as
// a single constrained edge and returns its far endpoint: target itself,
// or the first existing vertex lying exactly on the segment. Intervening
// unconstrained edges that cross the segment are removed by flipping, after
// Sloan: unflippable edges are requeued until the cavity opens up, and
// flipped diagonals that still cross are requeued as well.
func (m *Mesh) recoverNext(cur, target vertIndex, cid int32) (vertIndex, error) {
	pc := m.point(cur)
	pt := m.point(target)

	// Scan the orbit of cur for a direct edge, an on-segment vertex, or
	// the wedge the segment leaves through.
	wedge := noEdge
	start := m.vertEdge[cur]
	e := start
	for {
		d := m.dest(e)
		if d == target {
			m.markConstrained(e, cid)
			return target, nil
		}
		if d != ghostVert {
			pd := m.point(d)
			if orientation(pc, pt, pd) == orientCollinear && segmentStrictlyBetween(pc, pt, pd) {
				m.markConstrained(e, cid)
				return d, nil
			}
		}
		if wedge == noEdge && !m.tris[m.edges[e].tri].ghost {
			b := m.apex(e)
			if d != ghostVert && b != ghostVert &&
				orientation(pc, m.point(d), pt) == orientLeft &&
				orientation(pc, m.point(b), pt) == orientRight {
				wedge = e
			}
		}
		e = m.edges[m.prev(e)].twin
		if e == start {
			break
		}
	}
	if wedge == noEdge {
		return 0, fmt.Errorf("cannot trace constraint segment (%v, %v)-(%v, %v)", pc.X, pc.Y, pt.X, pt.Y)
	}

	// Collect the edges crossing the segment. Each crossing edge is held
	// with its origin on the right of the directed segment; the walk stops
	// at the target or at the first vertex lying exactly on the segment.
	end := target
	pe := pt
	var crossEdges []edgeIndex
	ce := m.edges[wedge].next
collect:
	for {
		if m.edges[ce].constraint != noConstraint {
			return 0, fmt.Errorf("constraint segment (%v, %v)-(%v, %v) crosses a constrained edge", pc.X, pc.Y, pt.X, pt.Y)
		}
		crossEdges = append(crossEdges, ce)
		tw := m.edges[ce].twin
		w := m.apex(tw)
		if w == target {
			break
		}
		if w == ghostVert {
			return 0, fmt.Errorf("constraint segment (%v, %v)-(%v, %v) leaves the hull", pc.X, pc.Y, pt.X, pt.Y)
		}
		pw := m.point(w)
		switch orientation(pc, pt, pw) {
		case orientCollinear:
			if !segmentStrictlyBetween(pc, pt, pw) {
				return 0, fmt.Errorf("degenerate constraint geometry near (%v, %v)", pw.X, pw.Y)
			}
			end = w
			pe = pw
			break collect
		case orientLeft:
			ce = m.edges[tw].next
		case orientRight:
			ce = m.prev(tw)
		}
	}

	var newEdges []edgeIndex
	maxIter := 100 * (len(crossEdges) + 2) * (len(crossEdges) + 2)
	for guard := 0; len(crossEdges) > 0; guard++ {
		if guard > maxIter {
			return 0, fmt.Errorf("constraint recovery did not converge")
		}
		ce := crossEdges[0]
		crossEdges = crossEdges[1:]
		tw := m.edges[ce].twin
		u := m.edges[ce].orig
		v := m.edges[tw].orig
		p1 := m.apex(ce)
		p2 := m.apex(tw)
		if p1 == ghostVert || p2 == ghostVert {
			crossEdges = append(crossEdges, ce)
			continue
		}
		pu, pv := m.point(u), m.point(v)
		pp1, pp2 := m.point(p1), m.point(p2)
		// Only flip when the surrounding quadrilateral is strictly convex,
		// otherwise the flip would invert a triangle.
		if orientation(pu, pp2, pp1) != orientLeft || orientation(pp2, pv, pp1) != orientLeft {
			crossEdges = append(crossEdges, ce)
			continue
		}
		m.flip(ce)
		if segmentsCross(pc, pe, pp1, pp2) {
			crossEdges = append(crossEdges, ce)
		} else {
			newEdges = append(newEdges, ce)
		}
	}

	seg := m.findEdge(cur, end)
	if seg == noEdge {
		return 0, fmt.Errorf("constraint segment recovery failed near (%v, %v)", pc.X, pc.Y)
	}
	m.markConstrained(seg, cid)

	// Restore the Delaunay criterion among the replaced diagonals. The
	// recovered segment itself is constrained by now and exempt.
	for changed := true; changed; {
		changed = false
		for _, e := range newEdges {
			if m.edges[e].constraint != noConstraint {
				continue
			}
			tw := m.edges[e].twin
			u := m.edges[e].orig
			v := m.edges[tw].orig
			p1 := m.apex(e)
			p2 := m.apex(tw)
			if u == ghostVert || v == ghostVert || p1 == ghostVert || p2 == ghostVert {
				continue
			}
			if inCircle(m.point(u), m.point(v), m.point(p1), m.point(p2)) == circleInside {
				m.flip(e)
				changed = true
			}
		}
	}
	return end, nil
}

// markConstrained flags both half-edges of an undirected edge as realizing
// the given constraint. An edge shared between two polygons keeps the id
// of the first to claim it.
func (m *Mesh) markConstrained(e edgeIndex, cid int32) {
	if m.edges[e].constraint != noConstraint {
		return
	}
	m.edges[e].constraint = cid
	m.edges[m.edges[e].twin].constraint = cid
}

// noteConstraintSplit records that the constrained edge (u, v) has been
// subdivided at p, keeping the owning constraint's realized chain intact.
func (m *Mesh) noteConstraintSplit(cid int32, u, v, p vertIndex) {
	if cid < 0 || int(cid) >= len(m.constraints) {
		return
	}
	c := m.constraints[cid]
	for i, chain := range c.chains {
		for j := 0; j+1 < len(chain); j++ {
			a, b := chain[j], chain[j+1]
			if (a == u && b == v) || (a == v && b == u) {
				chain = append(chain[:j+1], append([]vertIndex{p}, chain[j+1:]...)...)
				c.chains[i] = chain
				return
			}
		}
	}
}

// fillRegion tags the triangles enclosed by the constraint. The loop is
// counter-clockwise, so the polygon interior lies to the left of the first
// realized edge; the fill spreads from there and stops at constrained
// edges and at the hull.
func (m *Mesh) fillRegion(c *PolygonConstraint) {
	if len(c.chains) == 0 || len(c.chains[0]) < 2 {
		return
	}
	e := m.findEdge(c.chains[0][0], c.chains[0][1])
	if e == noEdge {
		return
	}
	seed := m.edges[e].tri
	if m.tris[seed].ghost {
		return
	}
	cid := int32(c.id)
	m.tris[seed].region = cid
	stack := []triIndex{seed}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e0 := m.tris[t].edge
		for _, e := range [3]edgeIndex{e0, m.edges[e0].next, m.edges[m.edges[e0].next].next} {
			if m.edges[e].constraint != noConstraint {
				continue
			}
			nt := m.edges[m.edges[e].twin].tri
			if m.tris[nt].ghost || m.tris[nt].region == cid {
				continue
			}
			m.tris[nt].region = cid
			stack = append(stack, nt)
		}
	}
}

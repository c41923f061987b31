// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package tin2d

import (
	"math"
	"math/big"

	"github.com/golang/geo/r2"
)

// This file contains the orientation and in-circle predicates the engine is
// built on. Both are evaluated with a fast floating-point path guarded by a
// conservative error bound; when the result is uncertain the computation is
// repeated in exact arbitrary-precision arithmetic. This guarantees that
// repeated calls with the same arguments always agree, which is what keeps
// the incremental surgery from corrupting the topology near degeneracies.

type orientationKind int

const (
	orientRight     orientationKind = -1
	orientCollinear orientationKind = 0
	orientLeft      orientationKind = 1
)

type circleKind int

const (
	circleOutside circleKind = -1
	circleOn      circleKind = 0
	circleInside  circleKind = 1
)

const (
	// dblEpsilon is the C++ DBL_EPSILON equivalent.
	dblEpsilon = 2.220446049250313e-16

	// Static filter bounds for the two determinants, after Shewchuk.
	// If a determinant's magnitude exceeds the bound times the sum of the
	// magnitudes of its terms, its floating-point sign is trustworthy.
	orientErrBound   = (3.0 + 16.0*dblEpsilon) * dblEpsilon
	inCircleErrBound = (10.0 + 96.0*dblEpsilon) * dblEpsilon
)

// newBigFloat constructs a new big.Float with maximum precision.
func newBigFloat() *big.Float { return new(big.Float).SetPrec(big.MaxPrec) }

// orientation classifies the turn a -> b -> c. Collinear is a first-class
// result, not a tolerance band around zero: points that lie exactly on the
// line through a and b are always reported as collinear.
func orientation(a, b, c r2.Point) orientationKind {
	detLeft := (b.X - a.X) * (c.Y - a.Y)
	detRight := (b.Y - a.Y) * (c.X - a.X)
	det := detLeft - detRight

	detSum := math.Abs(detLeft) + math.Abs(detRight)
	if math.Abs(det) > orientErrBound*detSum {
		if det > 0 {
			return orientLeft
		}
		return orientRight
	}
	return orientationExact(a, b, c)
}

func orientationExact(a, b, c r2.Point) orientationKind {
	ax := newBigFloat().SetFloat64(a.X)
	ay := newBigFloat().SetFloat64(a.Y)
	bx := newBigFloat().SetFloat64(b.X)
	by := newBigFloat().SetFloat64(b.Y)
	cx := newBigFloat().SetFloat64(c.X)
	cy := newBigFloat().SetFloat64(c.Y)

	bax := newBigFloat().Sub(bx, ax)
	bay := newBigFloat().Sub(by, ay)
	cax := newBigFloat().Sub(cx, ax)
	cay := newBigFloat().Sub(cy, ay)

	det := newBigFloat().Sub(
		newBigFloat().Mul(bax, cay),
		newBigFloat().Mul(bay, cax),
	)
	switch det.Sign() {
	case 1:
		return orientLeft
	case -1:
		return orientRight
	}
	return orientCollinear
}

// inCircle reports where d lies relative to the circle through a, b and c,
// which must be in counter-clockwise order.
func inCircle(a, b, c, d r2.Point) circleKind {
	adx := a.X - d.X
	ady := a.Y - d.Y
	bdx := b.X - d.X
	bdy := b.Y - d.Y
	cdx := c.X - d.X
	cdy := c.Y - d.Y

	bdxcdy := bdx * cdy
	cdxbdy := cdx * bdy
	alift := adx*adx + ady*ady

	cdxady := cdx * ady
	adxcdy := adx * cdy
	blift := bdx*bdx + bdy*bdy

	adxbdy := adx * bdy
	bdxady := bdx * ady
	clift := cdx*cdx + cdy*cdy

	det := alift*(bdxcdy-cdxbdy) + blift*(cdxady-adxcdy) + clift*(adxbdy-bdxady)

	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*alift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*blift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*clift
	errBound := inCircleErrBound * permanent
	if det > errBound {
		return circleInside
	}
	if -det > errBound {
		return circleOutside
	}
	return inCircleExact(a, b, c, d)
}

func inCircleExact(a, b, c, d r2.Point) circleKind {
	dx := newBigFloat().SetFloat64(d.X)
	dy := newBigFloat().SetFloat64(d.Y)

	diff := func(p r2.Point) (x, y, lift *big.Float) {
		x = newBigFloat().Sub(newBigFloat().SetFloat64(p.X), dx)
		y = newBigFloat().Sub(newBigFloat().SetFloat64(p.Y), dy)
		lift = newBigFloat().Add(
			newBigFloat().Mul(x, x),
			newBigFloat().Mul(y, y),
		)
		return x, y, lift
	}
	adx, ady, alift := diff(a)
	bdx, bdy, blift := diff(b)
	cdx, cdy, clift := diff(c)

	minor := func(px, py, qx, qy *big.Float) *big.Float {
		return newBigFloat().Sub(
			newBigFloat().Mul(px, qy),
			newBigFloat().Mul(qx, py),
		)
	}
	det := newBigFloat().Add(
		newBigFloat().Mul(alift, minor(bdx, bdy, cdx, cdy)),
		newBigFloat().Add(
			newBigFloat().Neg(newBigFloat().Mul(blift, minor(adx, ady, cdx, cdy))),
			newBigFloat().Mul(clift, minor(adx, ady, bdx, bdy)),
		),
	)
	switch det.Sign() {
	case 1:
		return circleInside
	case -1:
		return circleOutside
	}
	return circleOn
}

func distSq(a, b r2.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// segmentContains reports whether p, already known to be collinear with the
// segment ab, lies within the closed segment.
func segmentContains(a, b, p r2.Point) bool {
	abx := b.X - a.X
	aby := b.Y - a.Y
	t := (p.X-a.X)*abx + (p.Y-a.Y)*aby
	return t >= 0 && t <= abx*abx+aby*aby
}

// segmentStrictlyBetween is segmentContains with both endpoints excluded.
func segmentStrictlyBetween(a, b, p r2.Point) bool {
	abx := b.X - a.X
	aby := b.Y - a.Y
	t := (p.X-a.X)*abx + (p.Y-a.Y)*aby
	return t > 0 && t < abx*abx+aby*aby
}

// segmentsCross reports whether the open segments ab and cd intersect in a
// single interior point of both.
func segmentsCross(a, b, c, d r2.Point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)
	return o1 != orientCollinear && o2 != orientCollinear &&
		o3 != orientCollinear && o4 != orientCollinear &&
		o1 != o2 && o3 != o4
}

package railway

import "math"

// Flatten converts one Path into a closed polygon of straight segments,
// using stack to resolve each step's point indices. The last emitted point
// need not equal the first; the rasterizer closes the polygon implicitly.
//
// Non-finite coordinates (NaN/Inf, the result of a divide-by-zero or
// sqrt-of-negative upstream in Compute) are dropped rather than handed to
// the rasterizer: a degenerate step simply contributes no vertex instead
// of aborting the whole render.
func (p *Program) Flatten(stack []Couple, path Path, tolerance float32) []Couple {
	if tolerance <= 0 {
		tolerance = 0.5
	}

	var poly []Couple
	emit := func(c Couple) {
		if c.finite() {
			poly = append(poly, c)
		}
	}

	for i := uint32(0); i < path.Count; i++ {
		step := p.steps[path.FirstStep+i]
		switch step.Type {
		case StepLine:
			l := p.lines[step.Index]
			emit(stack[l.P1])

		case StepQuad:
			q := p.quads[step.Index]
			flattenQuad(stack[q.P0], stack[q.P1], stack[q.P2], tolerance, emit)

		case StepCubic:
			c := p.cubics[step.Index]
			flattenCubic(stack[c.P0], stack[c.P1], stack[c.P2], stack[c.P3], tolerance, emit)

		case StepArc:
			a := p.arcs[step.Index]
			flattenArc(stack[a.Start], stack[a.Center], stack[a.Deltas], tolerance, emit)
		}
	}

	return poly
}

// flattenQuad subdivides a quadratic Bézier with de Casteljau until the
// control point's deviation from the chord is within tolerance, emitting
// the endpoint of each final subsegment (never the start point, which the
// previous step already emitted or the path implicitly closes to).
func flattenQuad(p0, p1, p2 Couple, tol float32, emit func(Couple)) {
	if !p0.finite() || !p1.finite() || !p2.finite() {
		return
	}
	if quadFlatEnough(p0, p1, p2, tol) {
		emit(p2)
		return
	}
	p01 := midpoint(p0, p1)
	p12 := midpoint(p1, p2)
	p012 := midpoint(p01, p12)
	flattenQuad(p0, p01, p012, tol, emit)
	flattenQuad(p012, p12, p2, tol, emit)
}

func quadFlatEnough(p0, p1, p2 Couple, tol float32) bool {
	return pointLineDeviation(p1, p0, p2) <= tol
}

// flattenCubic subdivides a cubic Bézier with de Casteljau until both
// control points are within tolerance of the chord.
func flattenCubic(p0, p1, p2, p3 Couple, tol float32, emit func(Couple)) {
	if !p0.finite() || !p1.finite() || !p2.finite() || !p3.finite() {
		return
	}
	if cubicFlatEnough(p0, p1, p2, p3, tol) {
		emit(p3)
		return
	}
	p01 := midpoint(p0, p1)
	p12 := midpoint(p1, p2)
	p23 := midpoint(p2, p3)
	p012 := midpoint(p01, p12)
	p123 := midpoint(p12, p23)
	p0123 := midpoint(p012, p123)
	flattenCubic(p0, p01, p012, p0123, tol, emit)
	flattenCubic(p0123, p123, p23, p3, tol, emit)
}

func cubicFlatEnough(p0, p1, p2, p3 Couple, tol float32) bool {
	d1 := pointLineDeviation(p1, p0, p3)
	d2 := pointLineDeviation(p2, p0, p3)
	return d1 <= tol && d2 <= tol
}

func midpoint(a, b Couple) Couple {
	return Couple{(a.X + b.X) * 0.5, (a.Y + b.Y) * 0.5}
}

// pointLineDeviation is the perpendicular distance from p to the line
// through a-b (the chord), degenerating gracefully to |p-a| when a==b.
func pointLineDeviation(p, a, b Couple) float32 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return float32(math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y)))
	}
	// |cross(p-a, b-a)| / |b-a|
	cross := (p.X-a.X)*dy - (p.Y-a.Y)*dx
	return float32(math.Abs(float64(cross))) / length
}

// flattenArc emits points along a circular arc at angular increments
// chosen so chord sagitta stays within tolerance. Deltas.X is the start
// angle, Deltas.Y is the end angle, and the radius is inferred from the
// start point: r = start - center. The sweep goes from the angle of
// (start - center) to Deltas.Y along the shorter direction, unless
// Deltas.X < Deltas.Y says otherwise, with ties broken counter-clockwise.
func flattenArc(start, center, deltas Couple, tol float32, emit func(Couple)) {
	rvec := start.sub(center)
	radius := float32(math.Hypot(float64(rvec.X), float64(rvec.Y)))
	if radius == 0 || !radius8Finite(radius) {
		return
	}

	startAngle := float32(math.Atan2(float64(rvec.Y), float64(rvec.X)))
	endAngle := deltas.Y

	sweep := normalizeSweep(startAngle, endAngle, deltas.X < deltas.Y)

	// Sagitta s = r*(1-cos(theta/2)) <= tol  =>  theta <= 2*acos(1 - tol/r)
	ratio := 1 - float64(tol)/float64(radius)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < -1 {
		ratio = -1
	}
	maxStep := 2 * math.Acos(ratio)
	if maxStep <= 0 || math.IsNaN(maxStep) {
		maxStep = math.Pi / 32
	}

	steps := int(math.Ceil(math.Abs(float64(sweep)) / maxStep))
	if steps < 1 {
		steps = 1
	}

	for i := 1; i <= steps; i++ {
		t := float32(i) / float32(steps)
		angle := startAngle + sweep*t
		pt := Couple{
			X: center.X + radius*float32(math.Cos(float64(angle))),
			Y: center.Y + radius*float32(math.Sin(float64(angle))),
		}
		emit(pt)
	}
}

func radius8Finite(r float32) bool {
	return !math.IsNaN(float64(r)) && !math.IsInf(float64(r), 0)
}

// normalizeSweep returns the signed angular distance from start to end,
// taking the shorter direction (in (-pi, pi]) unless preferLong requests
// the complementary long way around; ties (exactly +-pi) resolve
// counter-clockwise (positive). When start and end coincide, the short
// sweep is a full counter-clockwise turn (2pi) and the long one -2pi.
func normalizeSweep(start, end float32, preferLong bool) float32 {
	const twoPi = 2 * math.Pi
	d := math.Mod(float64(end-start), twoPi)
	if d < 0 {
		d += twoPi
	}
	// d is now in [0, 2pi): the counter-clockwise distance.
	short := d
	if d > math.Pi {
		short = d - twoPi // negative, clockwise short way
	}
	long := short - math.Copysign(twoPi, short)
	if short == 0 {
		short = twoPi
	}

	sweep := short
	if preferLong {
		sweep = long
	}
	return float32(sweep)
}

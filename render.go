package railway

import "math"

// bigRun stands in for "the rest of this dash/gap never ends" when a
// stroker's pattern has zero dash+gap length: the whole outline then
// paints solid.
const bigRun float32 = 1e30

// Render runs the flattener and rasterizer over every rendering step, in
// file order: later steps composite over earlier ones. A file with zero
// rendering steps leaves canvas unmodified.
func (p *Program) Render(stack []Couple, canvas Canvas, tolerance float32) {
	for _, rs := range p.renderingSteps {
		switch rs.Kind {
		case RenderClip:
			p.renderClip(stack, canvas, tolerance, rs)
		case RenderStroke:
			p.renderStroke(stack, canvas, tolerance, rs)
		}
	}
}

func (p *Program) renderClip(stack []Couple, canvas Canvas, tolerance float32, rs RenderingStep) {
	path := p.paths[rs.Path]
	poly := p.Flatten(stack, path, tolerance)
	if len(poly) < 3 {
		return
	}

	bg := p.backgrounds[rs.Background]
	tris := p.triangleIndex[bg.FirstTriangleIndex : bg.FirstTriangleIndex+bg.Count]

	shader := func(x, y float32) RGBA {
		point := Couple{X: x, Y: y}
		for _, ti := range tris {
			t := p.triangles[ti]
			a, b, c := stack[t.P0], stack[t.P1], stack[t.P2]
			u, v, w, ok := barycentric(a, b, c, point)
			if !ok {
				continue
			}
			colA := unpackColor(stack[t.RG0], stack[t.BA0])
			colB := unpackColor(stack[t.RG1], stack[t.BA1])
			colC := unpackColor(stack[t.RG2], stack[t.BA2])
			return blendBarycentric(colA, colB, colC, u, v, w)
		}
		// No triangle covers this pixel: leave it untouched. A fully
		// transparent shade composites as a no-op under draw.Over.
		return RGBA{}
	}

	canvas.FillPolygon(poly, shader, tolerance)
}

func (p *Program) renderStroke(stack []Couple, canvas Canvas, tolerance float32, rs RenderingStep) {
	path := p.paths[rs.Path]
	poly := p.Flatten(stack, path, tolerance)
	if len(poly) < 2 {
		return
	}

	st := p.strokers[rs.Stroker]
	pattern := stack[st.Pattern]
	widthCouple := stack[st.Width]
	width := widthCouple.X + widthCouple.Y
	if width <= 0 {
		return
	}
	color := unpackColor(stack[st.RG], stack[st.BA])
	solidShader := func(x, y float32) RGBA { return color }

	dash, gap := pattern.X, pattern.Y
	solid := dash+gap <= 0

	painting := true
	remaining := dash
	if solid {
		remaining = bigRun
	}

	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		edgeLen := distance(a, b)
		if edgeLen == 0 {
			continue
		}

		pos := float32(0)
		for pos < edgeLen {
			step := minf32(remaining, edgeLen-pos)
			if step <= 0 {
				break
			}
			if painting {
				segStart := lerpAlong(a, b, pos/edgeLen)
				segEnd := lerpAlong(a, b, (pos+step)/edgeLen)
				rect := thickSegment(segStart, segEnd, width)
				if rect != nil {
					canvas.FillPolygon(rect, solidShader, tolerance)
				}
			}
			pos += step
			remaining -= step
			if remaining <= 0 && !solid {
				painting = !painting
				if painting {
					remaining = dash
				} else {
					remaining = gap
				}
			}
		}
	}
}

// barycentric returns the weights (u, v, w) of point with respect to
// triangle (a, b, c) such that point == u*a + v*b + w*c, and whether point
// lies within the triangle's interior (small negative tolerance absorbs
// edge-adjacent rounding).
func barycentric(a, b, c, point Couple) (u, v, w float32, ok bool) {
	v0 := b.sub(a)
	v1 := c.sub(a)
	v2 := point.sub(a)

	d00 := dot(v0, v0)
	d01 := dot(v0, v1)
	d11 := dot(v1, v1)
	d20 := dot(v2, v0)
	d21 := dot(v2, v1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 0, 0, 0, false
	}

	vw := (d11*d20 - d01*d21) / denom
	ww := (d00*d21 - d01*d20) / denom
	uw := 1 - vw - ww

	const eps = -1e-4
	ok = uw >= eps && vw >= eps && ww >= eps
	return uw, vw, ww, ok
}

func dot(a, b Couple) float32 { return a.X*b.X + a.Y*b.Y }

func unpackColor(rg, ba Couple) RGBA {
	return RGBA{
		R: clampComponent(rg.X, 0, 1),
		G: clampComponent(rg.Y, 0, 1),
		B: clampComponent(ba.X, 0, 1),
		A: clampComponent(ba.Y, 0, 1),
	}
}

func blendBarycentric(a, b, c RGBA, u, v, w float32) RGBA {
	return RGBA{
		R: u*a.R + v*b.R + w*c.R,
		G: u*a.G + v*b.G + w*c.G,
		B: u*a.B + v*b.B + w*c.B,
		A: u*a.A + v*b.A + w*c.A,
	}
}

func distance(a, b Couple) float32 {
	return float32(math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y)))
}

func lerpAlong(a, b Couple, t float32) Couple {
	return Couple{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// thickSegment builds a rectangle of the given width around segment a-b,
// extended by half the width at each end so the cap reads as a square
// join rather than a butt cap.
func thickSegment(a, b Couple, width float32) []Couple {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return nil
	}
	ux, uy := dx/length, dy/length
	px, py := -uy, ux
	half := width / 2

	ax, ay := a.X-ux*half, a.Y-uy*half
	bx, by := b.X+ux*half, b.Y+uy*half

	return []Couple{
		{X: ax + px*half, Y: ay + py*half},
		{X: bx + px*half, Y: by + py*half},
		{X: bx - px*half, Y: by - py*half},
		{X: ax - px*half, Y: ay - py*half},
	}
}

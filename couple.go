package railway

import "math"

// Couple is the single value type the stack machine operates on: an ordered
// pair of IEEE-754 binary32 values. It stands in uniformly for points,
// vectors, size pairs, and packed color channels.
type Couple struct {
	X, Y float32
}

func (c Couple) add(o Couple) Couple { return Couple{c.X + o.X, c.Y + o.Y} }
func (c Couple) sub(o Couple) Couple { return Couple{c.X - o.X, c.Y - o.Y} }
func (c Couple) mul(o Couple) Couple { return Couple{c.X * o.X, c.Y * o.Y} }
func (c Couple) div(o Couple) Couple { return Couple{c.X / o.X, c.Y / o.Y} }

func (c Couple) neg() Couple { return Couple{-c.X, -c.Y} }
func (c Couple) abs() Couple { return Couple{float32(math.Abs(float64(c.X))), float32(math.Abs(float64(c.Y)))} }

func (c Couple) min(o Couple) Couple {
	return Couple{minf32(c.X, o.X), minf32(c.Y, o.Y)}
}

func (c Couple) max(o Couple) Couple {
	return Couple{maxf32(c.X, o.X), maxf32(c.Y, o.Y)}
}

func (c Couple) sqrt() Couple {
	return Couple{float32(math.Sqrt(float64(c.X))), float32(math.Sqrt(float64(c.Y)))}
}

func (c Couple) sin() Couple {
	return Couple{float32(math.Sin(float64(c.X))), float32(math.Sin(float64(c.Y)))}
}

func (c Couple) cos() Couple {
	return Couple{float32(math.Cos(float64(c.X))), float32(math.Cos(float64(c.Y)))}
}

func (c Couple) tan() Couple {
	return Couple{float32(math.Tan(float64(c.X))), float32(math.Tan(float64(c.Y)))}
}

func (c Couple) atan2() Couple {
	return Couple{float32(math.Atan2(float64(c.Y), float64(c.X))), 0}
}

func (c Couple) hypot() Couple {
	return Couple{float32(math.Hypot(float64(c.X), float64(c.Y))), 0}
}

func (c Couple) swap() Couple  { return Couple{c.Y, c.X} }
func (c Couple) splat() Couple { return Couple{c.X, c.X} }

func lerpCouple(a, b, t Couple) Couple {
	return Couple{
		a.X + (b.X-a.X)*t.X,
		a.Y + (b.Y-a.Y)*t.X,
	}
}

func clampCouple(v, lo, hi Couple) Couple {
	return Couple{
		clampComponent(v.X, lo.X, hi.X),
		clampComponent(v.Y, lo.Y, hi.Y),
	}
}

func selectCouple(cond, a, b Couple) Couple {
	result := Couple{}
	if cond.X > 0 {
		result.X = a.X
	} else {
		result.X = b.X
	}
	if cond.Y > 0 {
		result.Y = a.Y
	} else {
		result.Y = b.Y
	}
	return result
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// finite reports whether both components are usable coordinates; the
// flattener drops geometry built from NaN or Inf rather than rasterizing it.
func (c Couple) finite() bool {
	return !math.IsNaN(float64(c.X)) && !math.IsInf(float64(c.X), 0) &&
		!math.IsNaN(float64(c.Y)) && !math.IsInf(float64(c.Y), 0)
}

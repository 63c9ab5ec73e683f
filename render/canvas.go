// Package render provides the in-repo default Canvas adapter for Railway,
// backed by golang.org/x/image/vector's anti-aliased scanline rasterizer:
// a black-box polygon fill primitive that treats every polygon as an
// opaque, already-flattened shape to composite.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/math/f32"
	"golang.org/x/image/vector"

	"github.com/NathanRoyer/railway"
)

// RasterCanvas is the default railway.Canvas implementation. SIMD is a
// build-time property of x/image/vector itself and never changes
// RasterCanvas's output beyond last-ULP rounding.
type RasterCanvas struct {
	img *image.NRGBA
	ras *vector.Rasterizer
}

var _ railway.Canvas = (*RasterCanvas)(nil)

// NewRasterCanvas allocates a transparent w*h canvas.
func NewRasterCanvas(w, h int) *RasterCanvas {
	return &RasterCanvas{
		img: image.NewNRGBA(image.Rect(0, 0, w, h)),
		ras: vector.NewRasterizer(w, h),
	}
}

func (c *RasterCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image exposes the underlying pixel buffer, e.g. for PNG encoding by a
// caller; the core package never encodes an image format itself.
func (c *RasterCanvas) Image() *image.NRGBA { return c.img }

// FillPolygon rasterizes points (implicitly closed) with non-zero-winding
// coverage, compositing shader(x,y) scaled by per-pixel coverage over the
// destination using draw.Over. tolerance is accepted for interface
// symmetry but unused here: Railway's Flattener has already reduced every
// curve to straight segments before FillPolygon ever sees them, so there
// is nothing left for the rasterizer itself to subdivide.
func (c *RasterCanvas) FillPolygon(points []railway.Couple, shader railway.Shader, tolerance float32) {
	if len(points) < 3 {
		return
	}

	w, h := c.Size()
	c.ras.Reset(w, h)
	c.ras.MoveTo(toVec2(points[0]))
	for _, p := range points[1:] {
		c.ras.LineTo(toVec2(p))
	}
	c.ras.ClosePath()
	c.ras.DrawOp = draw.Over

	src := &shaderImage{shader: shader, bounds: c.img.Bounds()}
	c.ras.Draw(c.img, c.img.Bounds(), src, image.Point{})
}

func toVec2(c railway.Couple) f32.Vec2 {
	return f32.Vec2{c.X, c.Y}
}

// shaderImage adapts a per-pixel railway.Shader to image.Image, the same
// technique golang.org/x/image/vector's own Draw method expects of its src
// argument (any image.Image, not just *image.Uniform).
type shaderImage struct {
	shader railway.Shader
	bounds image.Rectangle
}

func (s *shaderImage) ColorModel() color.Model { return color.NRGBAModel }
func (s *shaderImage) Bounds() image.Rectangle { return s.bounds }

func (s *shaderImage) At(x, y int) color.Color {
	rgba := s.shader(float32(x)+0.5, float32(y)+0.5)
	return color.NRGBA{
		R: to8(rgba.R),
		G: to8(rgba.G),
		B: to8(rgba.B),
		A: to8(rgba.A),
	}
}

func to8(v float32) uint8 {
	v = clamp01(v)
	return uint8(v*255 + 0.5)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package railway

// RGBA is the adapter-boundary color convention: four channels in [0,1],
// alpha linear and non-premultiplied. Storage format in the destination
// buffer is adapter-defined; the core package never looks at pixels
// directly, only ever through a Canvas.
type RGBA struct {
	R, G, B, A float32
}

// Shader computes the color at one pixel center, in the same coordinate
// space as the polygon points passed to the same FillPolygon call.
type Shader func(x, y float32) RGBA

// Canvas is the narrow sink the rasterizer draws through: a black-box
// anti-aliased polygon fill primitive, plus a size query. Render does not
// call Size: it performs no culling against the canvas bounds and passes
// tolerance through unscaled. Package render provides the
// in-repo default implementation, backed by golang.org/x/image/vector;
// callers may supply their own.
type Canvas interface {
	// FillPolygon rasterizes the closed polygon described by points
	// (implicitly closed back to points[0]) with anti-aliased, non-zero
	// winding coverage, compositing shader(x,y) scaled by per-pixel
	// coverage over the destination. tolerance is the same pixel-space
	// flattening tolerance passed to Render, present for adapters that
	// do their own additional subdivision.
	FillPolygon(points []Couple, shader Shader, tolerance float32)
	Size() (width, height int)
}

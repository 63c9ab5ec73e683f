package railway

import (
	"bytes"
	"encoding/binary"
	"math"
)

// fileBuilder assembles a Railway binary buffer section by section, in the
// exact order Decode expects. It exists purely to give tests (and the
// round-trip property test) a reference encoder without checking binary
// fixtures into the repo.
type fileBuilder struct {
	strings      bytes.Buffer
	stringOffset map[string]uint32

	arguments      []Argument
	instructions   []Instruction
	outputs        []Output
	triangles      []Triangle
	arcs           []Arc
	cubics         []CubicBezier
	quads          []QuadBezier
	lines          []Line
	strokers       []Stroker
	steps          []Step
	paths          []Path
	triangleIndex  []uint32
	backgrounds    []Background
	renderingSteps []RenderingStep
}

func newFileBuilder() *fileBuilder {
	return &fileBuilder{stringOffset: make(map[string]uint32)}
}

// intern appends name (with its NUL terminator) to the strings blob the
// first time it's seen, and returns its offset on every call.
func (fb *fileBuilder) intern(name string) uint32 {
	if off, ok := fb.stringOffset[name]; ok {
		return off
	}
	off := uint32(fb.strings.Len())
	fb.strings.WriteString(name)
	fb.strings.WriteByte(0)
	fb.stringOffset[name] = off
	return off
}

func (fb *fileBuilder) addArgument(name string, def, rmin, rmax Couple) stackIndex {
	idx := stackIndex(len(fb.arguments))
	fb.arguments = append(fb.arguments, Argument{NameOffset: fb.intern(name), Default: def, RangeMin: rmin, RangeMax: rmax})
	return idx
}

// addConstant is sugar for a blank-named argument whose range pins it to
// its default, i.e. a file-embedded constant.
func (fb *fileBuilder) addConstant(value Couple) stackIndex {
	return fb.addArgument("", value, value, value)
}

func (fb *fileBuilder) addInstruction(op Opcode, a0, a1, a2 stackIndex) stackIndex {
	idx := stackIndex(len(fb.arguments) + len(fb.instructions))
	fb.instructions = append(fb.instructions, Instruction{Op: op, Arg0: a0, Arg1: a1, Arg2: a2})
	return idx
}

func (fb *fileBuilder) addOutput(name string, index stackIndex) {
	fb.outputs = append(fb.outputs, Output{NameOffset: fb.intern(name), Index: index})
}

func (fb *fileBuilder) addTriangle(t Triangle) uint32 {
	idx := uint32(len(fb.triangles))
	fb.triangles = append(fb.triangles, t)
	return idx
}

func (fb *fileBuilder) addLine(l Line) uint32 {
	idx := uint32(len(fb.lines))
	fb.lines = append(fb.lines, l)
	return idx
}

func (fb *fileBuilder) addArc(a Arc) uint32 {
	idx := uint32(len(fb.arcs))
	fb.arcs = append(fb.arcs, a)
	return idx
}

func (fb *fileBuilder) addStroker(s Stroker) uint32 {
	idx := uint32(len(fb.strokers))
	fb.strokers = append(fb.strokers, s)
	return idx
}

func (fb *fileBuilder) addStep(s Step) {
	fb.steps = append(fb.steps, s)
}

// addPath appends count steps starting at the current step-table length
// and returns the new path's index.
func (fb *fileBuilder) addPath(steps ...Step) uint32 {
	first := uint32(len(fb.steps))
	fb.steps = append(fb.steps, steps...)
	idx := uint32(len(fb.paths))
	fb.paths = append(fb.paths, Path{FirstStep: first, Count: uint32(len(steps))})
	return idx
}

func (fb *fileBuilder) addBackground(triangleIdx ...uint32) uint32 {
	first := uint32(len(fb.triangleIndex))
	fb.triangleIndex = append(fb.triangleIndex, triangleIdx...)
	idx := uint32(len(fb.backgrounds))
	fb.backgrounds = append(fb.backgrounds, Background{FirstTriangleIndex: first, Count: uint32(len(triangleIdx))})
	return idx
}

func (fb *fileBuilder) addClip(path, background uint32) {
	fb.renderingSteps = append(fb.renderingSteps, RenderingStep{Kind: RenderClip, Path: path, Background: background})
}

func (fb *fileBuilder) addStroke(path, stroker uint32) {
	fb.renderingSteps = append(fb.renderingSteps, RenderingStep{Kind: RenderStroke, Path: path, Stroker: stroker})
}

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putF32(buf *bytes.Buffer, v float32) {
	putU32(buf, math.Float32bits(v))
}

func putCouple(buf *bytes.Buffer, c Couple) {
	putF32(buf, c.X)
	putF32(buf, c.Y)
}

// bytes renders the whole file: magic, then every section in decode.go's
// expected order, then the strings blob.
func (fb *fileBuilder) bytes() []byte {
	var buf bytes.Buffer
	putU32(&buf, magic)

	putU32(&buf, uint32(len(fb.arguments)))
	for _, a := range fb.arguments {
		putU32(&buf, a.NameOffset)
		putCouple(&buf, a.Default)
		putCouple(&buf, a.RangeMin)
		putCouple(&buf, a.RangeMax)
	}

	putU32(&buf, uint32(len(fb.instructions)))
	for _, instr := range fb.instructions {
		buf.WriteByte(byte(instr.Op))
		putU32(&buf, uint32(instr.Arg0))
		putU32(&buf, uint32(instr.Arg1))
		putU32(&buf, uint32(instr.Arg2))
	}

	putU32(&buf, uint32(len(fb.outputs)))
	for _, o := range fb.outputs {
		putU32(&buf, o.NameOffset)
		putU32(&buf, uint32(o.Index))
	}

	putU32(&buf, uint32(len(fb.triangles)))
	for _, t := range fb.triangles {
		for _, idx := range []stackIndex{t.P0, t.P1, t.P2, t.RG0, t.BA0, t.RG1, t.BA1, t.RG2, t.BA2} {
			putU32(&buf, uint32(idx))
		}
	}

	putU32(&buf, uint32(len(fb.arcs)))
	for _, a := range fb.arcs {
		for _, idx := range []stackIndex{a.Start, a.Center, a.Deltas} {
			putU32(&buf, uint32(idx))
		}
	}

	putU32(&buf, uint32(len(fb.cubics)))
	for _, c := range fb.cubics {
		for _, idx := range []stackIndex{c.P0, c.P1, c.P2, c.P3} {
			putU32(&buf, uint32(idx))
		}
	}

	putU32(&buf, uint32(len(fb.quads)))
	for _, q := range fb.quads {
		for _, idx := range []stackIndex{q.P0, q.P1, q.P2} {
			putU32(&buf, uint32(idx))
		}
	}

	putU32(&buf, uint32(len(fb.lines)))
	for _, l := range fb.lines {
		for _, idx := range []stackIndex{l.P0, l.P1} {
			putU32(&buf, uint32(idx))
		}
	}

	putU32(&buf, uint32(len(fb.strokers)))
	for _, s := range fb.strokers {
		for _, idx := range []stackIndex{s.Pattern, s.Width, s.RG, s.BA} {
			putU32(&buf, uint32(idx))
		}
	}

	putU32(&buf, uint32(len(fb.steps)))
	for _, s := range fb.steps {
		buf.WriteByte(byte(s.Type))
		putU32(&buf, s.Index)
	}

	putU32(&buf, uint32(len(fb.paths)))
	for _, p := range fb.paths {
		putU32(&buf, p.FirstStep)
		putU32(&buf, p.Count)
	}

	putU32(&buf, uint32(len(fb.triangleIndex)))
	for _, idx := range fb.triangleIndex {
		putU32(&buf, idx)
	}

	putU32(&buf, uint32(len(fb.backgrounds)))
	for _, b := range fb.backgrounds {
		putU32(&buf, b.FirstTriangleIndex)
		putU32(&buf, b.Count)
	}

	putU32(&buf, uint32(len(fb.renderingSteps)))
	for _, rs := range fb.renderingSteps {
		buf.WriteByte(byte(rs.Kind))
		putU32(&buf, rs.Path)
		if rs.Kind == RenderClip {
			putU32(&buf, rs.Background)
		} else {
			putU32(&buf, rs.Stroker)
		}
	}

	strBytes := fb.strings.Bytes()
	putU32(&buf, uint32(len(strBytes)))
	buf.Write(strBytes)

	return buf.Bytes()
}

// minimalFile is the literal S1 scenario: magic + fourteen zero table-count
// words + a zero string-count (fifteen zero words in all).
func minimalFile() []byte {
	return newFileBuilder().bytes()
}

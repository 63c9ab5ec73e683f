package railway

import "encoding/binary"

// magic is the fixed 32-bit file identifier; every valid Railway file
// begins with it, big-endian.
const magic uint32 = 0x5241494C // "RAIL"

// Decode validates and loads a Railway file into an immutable Program.
// Sections are read in a fixed file order: magic, arguments,
// instructions, outputs, triangles, arcs, cubics,
// quadratics, lines, strokers, steps, paths, triangle-indexes,
// backgrounds, rendering-steps, strings. Any failure returns the first
// error encountered; no partial Program is ever returned.
func Decode(data []byte) (*Program, error) {
	r := &reader{buf: data}

	if err := r.readMagic(); err != nil {
		return nil, err
	}

	p := &Program{}
	var err error

	if p.arguments, err = readArguments(r); err != nil {
		return nil, err
	}
	if p.instructions, err = readInstructions(r, len(p.arguments)); err != nil {
		return nil, err
	}
	if p.outputs, err = readOutputs(r); err != nil {
		return nil, err
	}
	if p.triangles, err = readTriangles(r); err != nil {
		return nil, err
	}
	if p.arcs, err = readArcs(r); err != nil {
		return nil, err
	}
	if p.cubics, err = readCubics(r); err != nil {
		return nil, err
	}
	if p.quads, err = readQuads(r); err != nil {
		return nil, err
	}
	if p.lines, err = readLines(r); err != nil {
		return nil, err
	}
	if p.strokers, err = readStrokers(r); err != nil {
		return nil, err
	}
	if p.steps, err = readSteps(r); err != nil {
		return nil, err
	}
	if p.paths, err = readPaths(r); err != nil {
		return nil, err
	}
	if p.triangleIndex, err = readTriangleIndexes(r); err != nil {
		return nil, err
	}
	if p.backgrounds, err = readBackgrounds(r); err != nil {
		return nil, err
	}
	if p.renderingSteps, err = readRenderingSteps(r); err != nil {
		return nil, err
	}
	if p.strings, err = readStrings(r); err != nil {
		return nil, err
	}

	if err := validate(p); err != nil {
		return nil, err
	}

	p.buildIndexes()
	return p, nil
}

// reader walks data section by section. It never copies bytes it doesn't
// have to, and never reads past the end of the buffer: every multi-byte
// read is bounds-checked before it happens.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) readMagic() error {
	if r.remaining() < 4 {
		return truncated("magic")
	}
	got := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	if got != magic {
		return newDecodeError(ErrBadMagic, "magic", -1)
	}
	return nil
}

// readCount reads the u32 record count that begins every section.
func (r *reader) readCount(table string) (uint32, error) {
	if r.remaining() < 4 {
		return 0, truncated(table)
	}
	n := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return n, nil
}

func (r *reader) u32(table string) (uint32, error) {
	if r.remaining() < 4 {
		return 0, truncated(table)
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) f32(table string) (float32, error) {
	v, err := r.u32(table)
	if err != nil {
		return 0, err
	}
	return math32frombits(v), nil
}

func (r *reader) couple(table string) (Couple, error) {
	x, err := r.f32(table)
	if err != nil {
		return Couple{}, err
	}
	y, err := r.f32(table)
	if err != nil {
		return Couple{}, err
	}
	return Couple{X: x, Y: y}, nil
}

func (r *reader) byte(table string) (byte, error) {
	if r.remaining() < 1 {
		return 0, truncated(table)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// checkedCount validates that count*recordSize stays inside the buffer
// before the caller starts copying records out of it; the reader never
// trusts a section count past this point.
func (r *reader) checkedCount(table string, recordSize int) (uint32, error) {
	count, err := r.readCount(table)
	if err != nil {
		return 0, err
	}
	need := int(count) * recordSize
	if need < 0 || r.remaining() < need {
		return 0, truncated(table)
	}
	return count, nil
}

func readArguments(r *reader) ([]Argument, error) {
	const recordSize = 4 + 8 + 16 // name offset + default + range
	count, err := r.checkedCount("arguments", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Argument, count)
	for i := range out {
		nameOff, err := r.u32("arguments")
		if err != nil {
			return nil, err
		}
		def, err := r.couple("arguments")
		if err != nil {
			return nil, err
		}
		rmin, err := r.couple("arguments")
		if err != nil {
			return nil, err
		}
		rmax, err := r.couple("arguments")
		if err != nil {
			return nil, err
		}
		out[i] = Argument{NameOffset: nameOff, Default: def, RangeMin: rmin, RangeMax: rmax}
	}
	return out, nil
}

func readInstructions(r *reader, numArgs int) ([]Instruction, error) {
	const recordSize = 1 + 4*3
	count, err := r.checkedCount("instructions", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Instruction, count)
	for i := range out {
		opByte, err := r.byte("instructions")
		if err != nil {
			return nil, err
		}
		a0, err := r.u32("instructions")
		if err != nil {
			return nil, err
		}
		a1, err := r.u32("instructions")
		if err != nil {
			return nil, err
		}
		a2, err := r.u32("instructions")
		if err != nil {
			return nil, err
		}

		op := Opcode(opByte)
		if !op.known() {
			return nil, newDecodeError(ErrBadOpcode, "instructions", i)
		}

		// Forward references (including self-reference) are rejected here,
		// not at evaluation time: this is what lets the evaluator be a
		// single unconditional forward pass.
		limit := stackIndex(numArgs + i)
		for _, a := range []uint32{a0, a1, a2} {
			if stackIndex(a) >= limit {
				return nil, newDecodeError(ErrForwardReference, "instructions", i)
			}
		}

		out[i] = Instruction{Op: op, Arg0: stackIndex(a0), Arg1: stackIndex(a1), Arg2: stackIndex(a2)}
	}
	return out, nil
}

func readOutputs(r *reader) ([]Output, error) {
	const recordSize = 4 + 4
	count, err := r.checkedCount("outputs", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Output, count)
	for i := range out {
		nameOff, err := r.u32("outputs")
		if err != nil {
			return nil, err
		}
		idx, err := r.u32("outputs")
		if err != nil {
			return nil, err
		}
		out[i] = Output{NameOffset: nameOff, Index: stackIndex(idx)}
	}
	return out, nil
}

func readTriangles(r *reader) ([]Triangle, error) {
	const recordSize = 4 * 9
	count, err := r.checkedCount("triangles", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Triangle, count)
	for i := range out {
		vals, err := r.u32s("triangles", 9)
		if err != nil {
			return nil, err
		}
		out[i] = Triangle{
			P0: stackIndex(vals[0]), P1: stackIndex(vals[1]), P2: stackIndex(vals[2]),
			RG0: stackIndex(vals[3]), BA0: stackIndex(vals[4]),
			RG1: stackIndex(vals[5]), BA1: stackIndex(vals[6]),
			RG2: stackIndex(vals[7]), BA2: stackIndex(vals[8]),
		}
	}
	return out, nil
}

func readArcs(r *reader) ([]Arc, error) {
	const recordSize = 4 * 3
	count, err := r.checkedCount("arcs", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Arc, count)
	for i := range out {
		vals, err := r.u32s("arcs", 3)
		if err != nil {
			return nil, err
		}
		out[i] = Arc{Start: stackIndex(vals[0]), Center: stackIndex(vals[1]), Deltas: stackIndex(vals[2])}
	}
	return out, nil
}

func readCubics(r *reader) ([]CubicBezier, error) {
	const recordSize = 4 * 4
	count, err := r.checkedCount("cubics", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]CubicBezier, count)
	for i := range out {
		vals, err := r.u32s("cubics", 4)
		if err != nil {
			return nil, err
		}
		out[i] = CubicBezier{P0: stackIndex(vals[0]), P1: stackIndex(vals[1]), P2: stackIndex(vals[2]), P3: stackIndex(vals[3])}
	}
	return out, nil
}

func readQuads(r *reader) ([]QuadBezier, error) {
	const recordSize = 4 * 3
	count, err := r.checkedCount("quads", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]QuadBezier, count)
	for i := range out {
		vals, err := r.u32s("quads", 3)
		if err != nil {
			return nil, err
		}
		out[i] = QuadBezier{P0: stackIndex(vals[0]), P1: stackIndex(vals[1]), P2: stackIndex(vals[2])}
	}
	return out, nil
}

func readLines(r *reader) ([]Line, error) {
	const recordSize = 4 * 2
	count, err := r.checkedCount("lines", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Line, count)
	for i := range out {
		vals, err := r.u32s("lines", 2)
		if err != nil {
			return nil, err
		}
		out[i] = Line{P0: stackIndex(vals[0]), P1: stackIndex(vals[1])}
	}
	return out, nil
}

func readStrokers(r *reader) ([]Stroker, error) {
	const recordSize = 4 * 4
	count, err := r.checkedCount("strokers", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Stroker, count)
	for i := range out {
		vals, err := r.u32s("strokers", 4)
		if err != nil {
			return nil, err
		}
		out[i] = Stroker{Pattern: stackIndex(vals[0]), Width: stackIndex(vals[1]), RG: stackIndex(vals[2]), BA: stackIndex(vals[3])}
	}
	return out, nil
}

func readSteps(r *reader) ([]Step, error) {
	const recordSize = 1 + 4
	count, err := r.checkedCount("steps", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Step, count)
	for i := range out {
		typ, err := r.byte("steps")
		if err != nil {
			return nil, err
		}
		idx, err := r.u32("steps")
		if err != nil {
			return nil, err
		}
		st := StepType(typ)
		if !st.valid() {
			return nil, newDecodeError(ErrBadStepType, "steps", i)
		}
		out[i] = Step{Type: st, Index: idx}
	}
	return out, nil
}

func readPaths(r *reader) ([]Path, error) {
	const recordSize = 4 * 2
	count, err := r.checkedCount("paths", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Path, count)
	for i := range out {
		vals, err := r.u32s("paths", 2)
		if err != nil {
			return nil, err
		}
		out[i] = Path{FirstStep: vals[0], Count: vals[1]}
	}
	return out, nil
}

func readTriangleIndexes(r *reader) ([]uint32, error) {
	const recordSize = 4
	count, err := r.checkedCount("triangle-indexes", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		v, err := r.u32("triangle-indexes")
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func readBackgrounds(r *reader) ([]Background, error) {
	const recordSize = 4 * 2
	count, err := r.checkedCount("backgrounds", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]Background, count)
	for i := range out {
		vals, err := r.u32s("backgrounds", 2)
		if err != nil {
			return nil, err
		}
		out[i] = Background{FirstTriangleIndex: vals[0], Count: vals[1]}
	}
	return out, nil
}

func readRenderingSteps(r *reader) ([]RenderingStep, error) {
	const recordSize = 1 + 4 + 4
	count, err := r.checkedCount("rendering-steps", recordSize)
	if err != nil {
		return nil, err
	}
	out := make([]RenderingStep, count)
	for i := range out {
		kindByte, err := r.byte("rendering-steps")
		if err != nil {
			return nil, err
		}
		path, err := r.u32("rendering-steps")
		if err != nil {
			return nil, err
		}
		aux, err := r.u32("rendering-steps")
		if err != nil {
			return nil, err
		}
		kind := RenderKind(kindByte)
		if !kind.valid() {
			return nil, newDecodeError(ErrBadRenderStepKind, "rendering-steps", i)
		}
		step := RenderingStep{Kind: kind, Path: path}
		if kind == RenderClip {
			step.Background = aux
		} else {
			step.Stroker = aux
		}
		out[i] = step
	}
	return out, nil
}

func readStrings(r *reader) ([]byte, error) {
	count, err := r.readCount("strings")
	if err != nil {
		return nil, err
	}
	if r.remaining() < int(count) {
		return nil, truncated("strings")
	}
	blob := r.buf[r.pos : r.pos+int(count)]
	r.pos += int(count)
	return blob, nil
}

// u32s reads n consecutive u32 values, bounds-checked as a block.
func (r *reader) u32s(table string, n int) ([]uint32, error) {
	if r.remaining() < n*4 {
		return nil, truncated(table)
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.BigEndian.Uint32(r.buf[r.pos:])
		r.pos += 4
	}
	return out, nil
}

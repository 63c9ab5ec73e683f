package railway

import "math"

func math32frombits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// validate runs the range-check pass required after every table is
// decoded: every cross-reference (stack index, name offset, step
// index, path/background/triangle-index range) must land inside the table
// it addresses, or decode fails naming the offending table.
func validate(p *Program) error {
	n := stackIndex(p.stackLen())

	checkIdx := func(table string, i int, idx stackIndex) error {
		if idx >= n {
			return indexOutOfRange(table, i)
		}
		return nil
	}

	for i, o := range p.outputs {
		if err := checkIdx("outputs", i, o.Index); err != nil {
			return err
		}
		if err := checkName(p, "outputs", i, o.NameOffset); err != nil {
			return err
		}
	}
	for i, a := range p.arguments {
		if err := checkName(p, "arguments", i, a.NameOffset); err != nil {
			return err
		}
	}

	for i, t := range p.triangles {
		for _, idx := range []stackIndex{t.P0, t.P1, t.P2, t.RG0, t.BA0, t.RG1, t.BA1, t.RG2, t.BA2} {
			if err := checkIdx("triangles", i, idx); err != nil {
				return err
			}
		}
	}
	for i, a := range p.arcs {
		for _, idx := range []stackIndex{a.Start, a.Center, a.Deltas} {
			if err := checkIdx("arcs", i, idx); err != nil {
				return err
			}
		}
	}
	for i, c := range p.cubics {
		for _, idx := range []stackIndex{c.P0, c.P1, c.P2, c.P3} {
			if err := checkIdx("cubics", i, idx); err != nil {
				return err
			}
		}
	}
	for i, q := range p.quads {
		for _, idx := range []stackIndex{q.P0, q.P1, q.P2} {
			if err := checkIdx("quads", i, idx); err != nil {
				return err
			}
		}
	}
	for i, l := range p.lines {
		for _, idx := range []stackIndex{l.P0, l.P1} {
			if err := checkIdx("lines", i, idx); err != nil {
				return err
			}
		}
	}
	for i, s := range p.strokers {
		for _, idx := range []stackIndex{s.Pattern, s.Width, s.RG, s.BA} {
			if err := checkIdx("strokers", i, idx); err != nil {
				return err
			}
		}
	}

	for i, s := range p.steps {
		var tableLen int
		switch s.Type {
		case StepArc:
			tableLen = len(p.arcs)
		case StepCubic:
			tableLen = len(p.cubics)
		case StepQuad:
			tableLen = len(p.quads)
		case StepLine:
			tableLen = len(p.lines)
		}
		if int(s.Index) >= tableLen {
			return indexOutOfRange("steps", i)
		}
	}

	for i, path := range p.paths {
		if err := checkRange("paths", i, path.FirstStep, path.Count, len(p.steps)); err != nil {
			return err
		}
	}

	for i, idx := range p.triangleIndex {
		if int(idx) >= len(p.triangles) {
			return indexOutOfRange("triangle-indexes", i)
		}
	}

	for i, bg := range p.backgrounds {
		if err := checkRange("backgrounds", i, bg.FirstTriangleIndex, bg.Count, len(p.triangleIndex)); err != nil {
			return err
		}
	}

	for i, rs := range p.renderingSteps {
		if int(rs.Path) >= len(p.paths) {
			return indexOutOfRange("rendering-steps", i)
		}
		if rs.Kind == RenderClip {
			if int(rs.Background) >= len(p.backgrounds) {
				return indexOutOfRange("rendering-steps", i)
			}
		} else {
			if int(rs.Stroker) >= len(p.strokers) {
				return indexOutOfRange("rendering-steps", i)
			}
		}
	}

	return nil
}

// checkRange validates that [first, first+count) is contained in a table
// of length tableLen, without overflowing on a corrupted (first, count).
func checkRange(table string, i int, first, count uint32, tableLen int) error {
	if uint64(first)+uint64(count) > uint64(tableLen) {
		return indexOutOfRange(table, i)
	}
	return nil
}

// checkName validates that offset lies within the strings blob and that a
// NUL terminator exists at or after it before the blob ends.
func checkName(p *Program, table string, i int, offset uint32) error {
	if offset > uint32(len(p.strings)) {
		return indexOutOfRange(table, i)
	}
	for j := offset; j < uint32(len(p.strings)); j++ {
		if p.strings[j] == 0 {
			return nil
		}
	}
	return newDecodeError(ErrStringUnterminated, table, i)
}

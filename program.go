package railway

import "github.com/dolthub/swiss"

// Program is an immutable value holding argument metadata, the instruction
// list, output metadata, the drawing tables, and the string blob. It is
// produced exactly once by Decode, never mutated afterwards, and is safe to
// share read-only across goroutines: each rendering goroutine owns its own
// stack and canvas.
type Program struct {
	strings []byte

	arguments    []Argument
	instructions []Instruction
	outputs      []Output

	triangles []Triangle
	arcs      []Arc
	cubics    []CubicBezier
	quads     []QuadBezier
	lines     []Line
	strokers  []Stroker

	steps          []Step
	paths          []Path
	triangleIndex  []uint32
	backgrounds    []Background
	renderingSteps []RenderingStep

	// argumentIndex maps a decoded name to the first argument with that
	// name, built front-to-back at decode time so "first name-match wins"
	// holds no matter how many later arguments share a name. Built on top
	// of github.com/dolthub/swiss instead of a linear scan per
	// SetArgument call.
	argumentIndex *swiss.Map[string, int]
	outputIndex   *swiss.Map[string, int]
}

// stackLen is the number of Couples a fresh evaluation stack needs:
// one per argument, one per instruction.
func (p *Program) stackLen() int {
	return len(p.arguments) + len(p.instructions)
}

func (p *Program) name(offset uint32) string {
	if offset == 0 && len(p.strings) == 0 {
		return ""
	}
	end := offset
	for end < uint32(len(p.strings)) && p.strings[end] != 0 {
		end++
	}
	return string(p.strings[offset:end])
}

// Parameter describes one caller-settable (or constant, if Name == "")
// argument, as exposed by Program.Parameters.
type Parameter struct {
	Name       string
	Default    Couple
	RangeMin   Couple
	RangeMax   Couple
}

// Parameters returns every argument's name, default and clamping range, in
// file order. Anonymous (blank-name) arguments are constants rather than
// real animation inputs, but are still listed; callers filter on Name=="".
func (p *Program) Parameters() []Parameter {
	out := make([]Parameter, len(p.arguments))
	for i, a := range p.arguments {
		out[i] = Parameter{
			Name:     p.name(a.NameOffset),
			Default:  a.Default,
			RangeMin: a.RangeMin,
			RangeMax: a.RangeMax,
		}
	}
	return out
}

// NamedOutput describes one named, readable stack position.
type NamedOutput struct {
	Name  string
	Index int
}

// Outputs returns every output's name and stack index, in file order.
func (p *Program) Outputs() []NamedOutput {
	out := make([]NamedOutput, len(p.outputs))
	for i, o := range p.outputs {
		out[i] = NamedOutput{Name: p.name(o.NameOffset), Index: int(o.Index)}
	}
	return out
}

// NewStack allocates a fresh evaluation stack sized to args+instructions
// and initializes argument positions with their defaults. Compute does not
// allocate; Flatten and Render allocate polygon buffers on every call.
func (p *Program) NewStack() []Couple {
	stack := make([]Couple, p.stackLen())
	for i, a := range p.arguments {
		stack[i] = a.Default
	}
	return stack
}

// SetArgument locates the argument named name (first match wins), clamps
// value to its declared range component-wise, and writes it into stack.
// It fails with ErrUnknownArgument if no argument has that name, leaving
// stack untouched.
func (p *Program) SetArgument(stack []Couple, name string, value Couple) error {
	idx, ok := p.argumentIndex.Get(name)
	if !ok {
		return ErrUnknownArgument
	}
	a := p.arguments[idx]
	stack[idx] = clampCouple(value, a.RangeMin, a.RangeMax)
	return nil
}

// ReadOutput returns the current value at the named output's stack
// position. It fails with ErrUnknownOutput if no output has that name.
func (p *Program) ReadOutput(stack []Couple, name string) (Couple, error) {
	idx, ok := p.outputIndex.Get(name)
	if !ok {
		return Couple{}, ErrUnknownOutput
	}
	return stack[p.outputs[idx].Index], nil
}

// buildIndexes constructs the name lookup maps described on argumentIndex /
// outputIndex above. Called once, at the end of Decode.
func (p *Program) buildIndexes() {
	p.argumentIndex = swiss.NewMap[string, int](uint32(len(p.arguments)))
	for i, a := range p.arguments {
		name := p.name(a.NameOffset)
		if name == "" {
			continue
		}
		if _, exists := p.argumentIndex.Get(name); !exists {
			p.argumentIndex.Put(name, i)
		}
	}

	p.outputIndex = swiss.NewMap[string, int](uint32(len(p.outputs)))
	for i, o := range p.outputs {
		name := p.name(o.NameOffset)
		if name == "" {
			continue
		}
		if _, exists := p.outputIndex.Get(name); !exists {
			p.outputIndex.Put(name, i)
		}
	}
}

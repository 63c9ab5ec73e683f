package railway

import (
	"errors"
	"fmt"
)

// Decode errors. All of them are fatal to the Program being built: the
// reader never returns a partially-decoded Program alongside an error.
var (
	ErrTruncated           = errors.New("railway: truncated file")
	ErrBadMagic            = errors.New("railway: bad magic")
	ErrBadStepType         = errors.New("railway: bad step type")
	ErrBadRenderStepKind   = errors.New("railway: bad rendering step kind")
	ErrIndexOutOfRange     = errors.New("railway: index out of range")
	ErrStringUnterminated  = errors.New("railway: unterminated string")
	ErrBadOpcode           = errors.New("railway: bad opcode")
	ErrForwardReference    = errors.New("railway: instruction operand refers to itself or a later instruction")
)

// Runtime errors. These never invalidate a Program or a caller's stack;
// SetArgument leaves the prior stack state intact on failure.
var (
	ErrUnknownArgument = errors.New("railway: unknown argument")
	ErrUnknownOutput   = errors.New("railway: unknown output")
)

// DecodeError names the table in which a decode-time violation was found,
// and (where applicable) the offending index, while still satisfying
// errors.Is against the sentinel it wraps.
type DecodeError struct {
	Table string
	Index int
	err   error
}

func (e *DecodeError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s (table %q, index %d)", e.err, e.Table, e.Index)
	}
	return fmt.Sprintf("%s (table %q)", e.err, e.Table)
}

func (e *DecodeError) Unwrap() error { return e.err }

func newDecodeError(sentinel error, table string, index int) *DecodeError {
	return &DecodeError{Table: table, Index: index, err: sentinel}
}

func truncated(table string) error {
	return newDecodeError(ErrTruncated, table, -1)
}

func indexOutOfRange(table string, index int) error {
	return newDecodeError(ErrIndexOutOfRange, table, index)
}

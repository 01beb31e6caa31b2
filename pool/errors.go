package pool

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is reported when the arena cannot obtain memory, either
// because a size computation overflowed or because MaxBytes was reached.
var ErrOutOfMemory = errors.New("pool: out of memory")

// ContractError describes a misuse of the allocator API. It is raised with
// panic: it indicates a bug in the compiler, not bad input.
type ContractError struct {
	Op      string
	Message string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("pool: %s: %s", e.Op, e.Message)
}

func contractViolation(op, format string, args ...any) {
	panic(&ContractError{Op: op, Message: fmt.Sprintf(format, args...)})
}

// CorruptionError is returned by Check when a block header or guard region
// was overwritten.
type CorruptionError struct {
	// Page is the index of the page in the in-use list.
	Page int

	// Offset is the byte offset of the damaged block header in its page.
	Offset int

	// Reason says what was damaged.
	Reason string
}

// Error implements the error interface.
func (e *CorruptionError) Error() string {
	return fmt.Sprintf("pool: corrupted block at page %d offset %d: %s", e.Page, e.Offset, e.Reason)
}

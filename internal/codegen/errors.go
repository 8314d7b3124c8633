package codegen

import "errors"

var (
	// ErrUnhandledInstruction is returned for an instruction kind or shape
	// the generator has no rule for.
	ErrUnhandledInstruction = errors.New("unhandled instruction kind")
	// ErrNoExpression is returned when an expression is requested from a
	// value that has none, such as a store.
	ErrNoExpression = errors.New("no expression available")
	// ErrDuplicateExpression is returned when a memoized expression would be
	// overwritten with different text.
	ErrDuplicateExpression = errors.New("duplicate expression assignment")
)

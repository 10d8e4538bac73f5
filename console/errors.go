package console

import "errors"

var (
	// ErrTimeout indicates the UART stayed busy past the configured timeout.
	ErrTimeout = errors.New("uart busy timeout")

	// ErrMissingArg indicates a directive with no argument left to consume.
	ErrMissingArg = errors.New("missing argument for directive")

	// ErrArgKind indicates an argument whose kind does not fit its directive.
	ErrArgKind = errors.New("argument kind does not match directive")
)

package demo

import "errors"

// ErrBadOptions is returned when a program's options cannot drive its loop.
var ErrBadOptions = errors.New("invalid demo options")

package physics

import "errors"

var (
	ErrDivisionByZero = errors.New("physics: division by zero")
	ErrInvalidRange   = errors.New("physics: value out of range")
	ErrInvalidAxis    = errors.New("physics: invalid axis")
	ErrUnknownBody    = errors.New("physics: unknown body")
)

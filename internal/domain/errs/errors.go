// Package errs defines the failure kinds shared by the domain packages.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindInvalidData
	KindMissingData
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidData:
		return "invalid_data"
	case KindMissingData:
		return "missing_data"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidData  = errors.New("invalid data")
	ErrMissingData  = errors.New("missing critical data")
)

// Error is a classified domain failure. It matches its kind's sentinel via errors.Is.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.sentinel().Error()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s := e.sentinel()
	return s != nil && target == s
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindInvalidData:
		return ErrInvalidData
	case KindMissingData:
		return ErrMissingData
	default:
		return nil
	}
}

// InvalidInput reports malformed or out-of-range caller input.
func InvalidInput(op, format string, a ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Msg: fmt.Sprintf(format, a...)}
}

// InvalidData reports a well-shaped but semantically impossible value.
func InvalidData(op, format string, a ...interface{}) *Error {
	return &Error{Kind: KindInvalidData, Op: op, Msg: fmt.Sprintf(format, a...)}
}

// MissingData reports an absent upstream input.
func MissingData(op, format string, a ...interface{}) *Error {
	return &Error{Kind: KindMissingData, Op: op, Msg: fmt.Sprintf(format, a...)}
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

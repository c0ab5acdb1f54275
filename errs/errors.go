// Package errs holds the error taxonomy shared by the tournament engine packages.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindState      Kind = "state"
	KindNotFound   Kind = "not_found"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrState      = errors.New("invalid state")
	ErrNotFound   = errors.New("not found")
)

// Error is returned by every engine operation that rejects its input.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is lets errors.Is match an *Error against the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrState:
		return e.Kind == KindState
	case ErrNotFound:
		return e.Kind == KindNotFound
	}
	return false
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Reason: fmt.Sprintf(format, args...)}
}

func State(format string, args ...any) error {
	return &Error{Kind: KindState, Reason: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

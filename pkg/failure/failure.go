package failure

import (
	"errors"
	"fmt"
)

// Kind classifies an error by who is expected to act on it.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfig covers missing or invalid flags and settings.
	KindConfig
	// KindCapacity is reported when the input does not fit the line store.
	KindCapacity
	// KindResource covers unreadable input, unwritable output and similar.
	KindResource
	// KindInternal marks a synchronization defect, never bad input.
	KindInternal
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCapacity:
		return "capacity"
	case KindResource:
		return "resource"
	case KindInternal:
		return "internal consistency"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Config(op string, err error) error {
	return newError(KindConfig, op, err)
}

func Capacity(op string, err error) error {
	return newError(KindCapacity, op, err)
}

func Resource(op string, err error) error {
	return newError(KindResource, op, err)
}

func Internal(op string, err error) error {
	return newError(KindInternal, op, err)
}

// KindOf returns the kind of the outermost *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsInternal(err error) bool {
	return KindOf(err) == KindInternal
}

const (
	ExitOK        = 0
	ExitResource  = 1
	ExitConfig    = 2
	ExitInternal  = 3
	ExitCancelled = 130
)

// ExitCode maps an error to the process exit status. Capacity errors share
// the configuration status. Unclassified errors are treated as resource
// failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case KindConfig, KindCapacity:
		return ExitConfig
	case KindInternal:
		return ExitInternal
	default:
		return ExitResource
	}
}

package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories the services surface.
// Callers branch on Kind, never on message text.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation covers malformed input: bad dates, restricted-field updates.
	KindValidation
	// KindNotFound covers missing subscriptions or users.
	KindNotFound
	// KindAuthorization covers ownership mismatches.
	KindAuthorization
	// KindConflict covers state refusals such as an expired reactivation
	// window or a wrong deletion confirmation phrase.
	KindConflict
	// KindTransient covers infrastructure failures that are safe to retry.
	KindTransient
	// KindFatalScheduling covers durable-timer faults the workflow cannot
	// recover from on its own; these must reach operational monitoring.
	KindFatalScheduling
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	case KindFatalScheduling:
		return "fatal_scheduling"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two apperr values by Kind, so sentinel values
// like ErrReactivationWindowExpired survive wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed.
// Errors outside the taxonomy report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

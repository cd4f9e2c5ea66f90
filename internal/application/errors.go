package application

import "errors"

// Kind classifies an application error. Every operation either returns a value
// or fails with exactly one kind; the HTTP layer maps kinds to status codes.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindAuthentication
	KindInternal
)

// Error is a kind-tagged application error.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewValidation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func NewConflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }
func NewNotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func NewAuthentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func NewInternal(msg string) *Error       { return &Error{Kind: KindInternal, Message: msg} }

// KindOf extracts the kind from err; unclassified errors count as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

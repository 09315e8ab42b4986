package schema

import "fmt"

// ErrorKind classifies failures returned by the list service.
type ErrorKind string

// All error kinds. The string value doubles as the stable client-facing code.
const (
	KindContentNotFound       ErrorKind = "CONTENT_NOT_FOUND"
	KindAlreadyExists         ErrorKind = "ALREADY_EXISTS"
	KindNotFound              ErrorKind = "NOT_FOUND"
	KindInvalidInput          ErrorKind = "INVALID_INPUT"
	KindDependencyUnavailable ErrorKind = "DEPENDENCY_UNAVAILABLE"
)

// Stable messages returned to clients.
const (
	MsgMovieNotFound         = "Movie not found"
	MsgTVShowNotFound        = "TV Show not found"
	MsgAlreadyExists         = "Item already in your list"
	MsgNotFound              = "Item not found in your list"
	MsgRemoved               = "Item removed from list"
	MsgPaginationNotPositive = "Pagination params must be greater than zero"
	MsgPaginationInvalid     = "Invalid pagination params"
	MsgPaginationMaxSize     = "Invalid pagination params: Max size is 100"
	MsgPaginationTogether    = "Pagination params must be provided together"
	MsgUserIDRequired        = "User ID header is required"
	MsgUserIDInvalid         = "Invalid User ID header"
	MsgContentTypeInvalid    = "contentType must be one of: movie, tvshow"
	MsgContentIDRequired     = "contentId is required"
	MsgContentIDInvalid      = "contentId is not a valid path segment"
	MsgStoreUnavailable      = "List store is unavailable"
	MsgCatalogUnavailable    = "Content catalog is unavailable"
)

// Error is a typed failure carrying a kind and a stable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrContentNotFound       = &Error{Kind: KindContentNotFound}
	ErrAlreadyExists         = &Error{Kind: KindAlreadyExists}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrInvalidInput          = &Error{Kind: KindInvalidInput}
	ErrDependencyUnavailable = &Error{Kind: KindDependencyUnavailable}
)

// NewError builds a typed error.
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// InvalidInput is shorthand for a KindInvalidInput error.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// ContentNotFound returns the not-found error for the given content kind.
func ContentNotFound(kind ContentType) *Error {
	msg := MsgMovieNotFound
	if kind == TVShowContent {
		msg = MsgTVShowNotFound
	}
	return &Error{Kind: KindContentNotFound, Message: msg}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

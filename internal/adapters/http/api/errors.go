package api

import (
	"errors"
	"strings"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrMethodNotAllow = errors.New("method not allowed")
	ErrInternal       = errors.New("internal error")

	errTrailingData = errors.New("unexpected data after JSON body")
)

// Error tags a failure with the operation that produced it and a sentinel kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.message())
	return b.String()
}

// message omits the op so it can be returned to clients.
func (e *Error) message() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Kind.Error()
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap tags err with op. Nil errors stay nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind builds an error carrying only a kind.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// publicMessage renders err for a response body without the op prefix.
func publicMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.message()
	}
	return err.Error()
}

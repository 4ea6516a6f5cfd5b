package fetcher

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is against the error stored in
// SyncState.Err.
var (
	ErrTransport         = errors.New("transport error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNoValidItems      = errors.New("no valid items found in response")
	ErrEmptyCollection   = errors.New("response contained no items")
	ErrWorkflowTimeout   = errors.New("workflow did not complete")
)

// Error is a fetch failure. Message is what ends up in SyncState.LastError.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func transportError(err error) *Error {
	return &Error{Kind: ErrTransport, Message: err.Error(), Err: err}
}

func statusError(code int, text string) *Error {
	return &Error{Kind: ErrTransport, Message: fmt.Sprintf("HTTP %d: %s", code, text)}
}

func malformedError(msg string, err error) *Error {
	return &Error{Kind: ErrMalformedResponse, Message: msg, Err: err}
}

func timeoutError(attempts int) *Error {
	return &Error{
		Kind:    ErrWorkflowTimeout,
		Message: fmt.Sprintf("workflow did not complete after %d attempts", attempts),
	}
}

// retryable reports whether a poll attempt that failed with err should be
// followed by another poll.
func retryable(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrMalformedResponse)
}

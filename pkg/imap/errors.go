package imap

import "fmt"

// ErrorKind classifies client failures so callers can treat the whole class
// uniformly regardless of which underlying operation produced it.
type ErrorKind string

const (
	KindConnection ErrorKind = "connection"
	KindAuth       ErrorKind = "auth"
	KindTimeout    ErrorKind = "timeout"
	KindProtocol   ErrorKind = "protocol"
)

// ClientError wraps any IMAP failure with its kind and originating operation.
type ClientError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("imap %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op string, err error) *ClientError {
	return &ClientError{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err is a ClientError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ce, ok := err.(*ClientError)
	return ok && ce.Kind == kind
}

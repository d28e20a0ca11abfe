package httpproto

import "errors"

// Error pairs a stable message with the status code it maps to, mirroring
// the reference framework's status.HTTPError: handlers and the connection
// state machine can type-assert an error to Error to recover its code, and
// otherwise fall back to StatusInternalServerError.
type Error struct {
	Code    Code
	Message string
}

func (e Error) Error() string {
	return e.Message
}

func newErr(code Code, message string) error {
	return Error{Code: code, Message: message}
}

// Sentinel errors for every failure mode the parser, connection and static
// handler can raise. Each carries its response status code via Error.
var (
	ErrMalformedRequest   = newErr(StatusBadRequest, "malformed request")
	ErrMissingHost        = newErr(StatusBadRequest, "missing Host header")
	ErrBadContentLength   = newErr(StatusBadRequest, "invalid Content-Length")
	ErrRequestTooLarge    = newErr(StatusRequestEntityTooLarge, "request header block too large")
	ErrForbidden          = newErr(StatusForbidden, "forbidden")
	ErrNotFound           = newErr(StatusNotFound, "not found")
	ErrMethodNotAllowed   = newErr(StatusMethodNotAllowed, "method not allowed")
	ErrInternal           = newErr(StatusInternalServerError, "internal server error")
	ErrServiceUnavailable = newErr(StatusServiceUnavailable, "service unavailable")

	// ErrPeerReset signals a connection reset while reading; it carries no
	// status code because the socket is already unusable.
	ErrPeerReset = errors.New("connection reset by peer")
	// ErrTimeout signals a read/write deadline expiry.
	ErrTimeout = errors.New("i/o timeout")
	// ErrCloseConnection is an internal-only signal telling the connection
	// state machine to close without writing a response (e.g. the peer
	// disconnected mid-request).
	ErrCloseConnection = errors.New("close connection")
)

// AsCode extracts the status code carried by err, if it is (or wraps) an
// Error, and StatusInternalServerError otherwise.
func AsCode(err error) Code {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}

	return StatusInternalServerError
}

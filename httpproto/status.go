package httpproto

import "strconv"

// Code is an HTTP response status code. This is a copy of the subset of
// net/http's status table this engine actually emits, kept local so that
// httpproto has no dependency on net/http's own constants (the reference
// framework does the same in http/status/codes.go, to keep its own status
// package free of a net/http import).
type Code int

const (
	StatusContinue              Code = 100
	StatusOK                    Code = 200
	StatusCreated               Code = 201
	StatusNoContent             Code = 204
	StatusMovedPermanently      Code = 301
	StatusBadRequest            Code = 400
	StatusForbidden             Code = 403
	StatusNotFound              Code = 404
	StatusMethodNotAllowed      Code = 405
	StatusRequestEntityTooLarge Code = 413
	StatusInternalServerError   Code = 500
	StatusServiceUnavailable    Code = 503
)

var reasonPhrases = map[Code]string{
	StatusContinue:              "Continue",
	StatusOK:                    "OK",
	StatusCreated:               "Created",
	StatusNoContent:             "No Content",
	StatusMovedPermanently:      "Moved Permanently",
	StatusBadRequest:            "Bad Request",
	StatusForbidden:             "Forbidden",
	// The origin server uses its own nonstandard reason phrase here
	// ("File Not Found" rather than "Not Found"), matching its document root.
	StatusNotFound:              "File Not Found",
	StatusMethodNotAllowed:      "Method Not Allowed",
	StatusRequestEntityTooLarge: "Request Entity Too Large",
	StatusInternalServerError:   "Internal Server Error",
	StatusServiceUnavailable:    "Service Unavailable",
}

// Reason returns the reason phrase this engine uses for code (the standard
// one, except "File Not Found" for 404), or "Unknown Status Code" if it isn't
// one of the codes this engine emits.
func Reason(code Code) string {
	if reason, ok := reasonPhrases[code]; ok {
		return reason
	}

	return "Unknown Status Code"
}

// StatusLine returns the "<code> <reason>" token used both as a status line
// suffix and as Response.Status.
func StatusLine(code Code) string {
	return strconv.Itoa(int(code)) + " " + Reason(code)
}

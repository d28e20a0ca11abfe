package httputil

import (
	"strconv"

	"github.com/karlpauls/ksah/httpproto"
)

// ErrorBody is a canned error document, ready to hand straight to a
// ResponseWriter: a minimal UTF-8 HTML page plus its exact byte length.
type ErrorBody struct {
	HTML          []byte
	ContentLength string
	Close         bool
}

// CannedError builds the minimal HTML document section 6 requires for code,
// with Content-Length precomputed and Close set for 400 and 413 per the
// spec's error-propagation table.
func CannedError(code httpproto.Code) ErrorBody {
	reason := httpproto.Reason(code)
	body := "<!DOCTYPE html><html><head><title>" +
		strconv.Itoa(int(code)) + " " + reason +
		"</title></head><body><h1>" +
		strconv.Itoa(int(code)) + " " + reason +
		"</h1></body></html>"

	return ErrorBody{
		HTML:          []byte(body),
		ContentLength: strconv.Itoa(len(body)),
		Close:         code == httpproto.StatusBadRequest || code == httpproto.StatusRequestEntityTooLarge,
	}
}

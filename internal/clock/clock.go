// Package clock provides a cheap, cached wall-clock reading for the Date and
// Last-Modified response headers. Reading the system clock on every response
// is wasteful when hundreds of responses are emitted per second, so the
// current time is refreshed on a background tick instead of on every call,
// mirroring the reference framework's own cached-clock design. HTTPDate and
// NowHTTPDate still format the timestamp on each call.
package clock

import (
	"sync/atomic"
	"time"
)

// Resolution is how often the cached timestamp is refreshed. HTTP dates have
// one-second granularity, so anything finer would be wasted work.
const Resolution = 500 * time.Millisecond

var millis atomic.Int64

func init() {
	millis.Store(time.Now().UnixMilli())

	go func() {
		for {
			time.Sleep(Resolution)
			millis.Store(time.Now().UnixMilli())
		}
	}()
}

// Now returns the cached current time.
func Now() time.Time {
	m := millis.Load()
	return time.UnixMilli(m)
}

// HTTPDate formats t as an RFC 1123 date in GMT, e.g.
// "Mon, 02 Jan 2006 15:04:05 GMT".
func HTTPDate(t time.Time) string {
	return t.UTC().Format(http1123)
}

// NowHTTPDate formats the cached current time as an RFC 1123 GMT date.
func NowHTTPDate() string {
	return HTTPDate(Now())
}

const http1123 = "Mon, 02 Jan 2006 15:04:05 GMT"

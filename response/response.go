// Package response implements the ResponseWriter described in section 4.3:
// a status/header builder that commits a prelude exactly once, ahead of the
// first body bytes, and decides keep-alive vs close at commit time.
//
// Grounded on the reference framework's http/response.go (method-chaining
// builder, Reveal/Clear discipline) and internal/render/renderer.go
// (prelude-then-body write ordering).
package response

import (
	"net"
	"time"

	"github.com/karlpauls/ksah/httpproto"
	"github.com/karlpauls/ksah/internal/clock"
)

// ServerToken is emitted as the value of the Server response header.
const ServerToken = "ksah/1.0"

// Conn is the minimal transport surface Response needs: a deadline-bearing
// writer. *net.TCPConn (and any net.Conn) satisfies it.
type Conn interface {
	Write(b []byte) (int, error)
	SetWriteDeadline(t time.Time) error
}

// header is a single response header pair. Unlike request headers, response
// headers are matched case-sensitively: a handler setting "Content-Type"
// twice overwrites, but "content-type" and "Content-Type" are distinct
// entries, matching section 3's "case-sensitive header map".
type header struct {
	Key, Value string
}

// RequestInfo is the subset of request state the writer needs to apply the
// keep-alive decision in section 4.3, without response depending on the
// request package.
type RequestInfo struct {
	Proto              httpproto.Proto
	KeepAliveRequested bool
}

// Response assembles the status line, headers and body for one HTTP
// response. It is reused across a connection's kept-alive requests via
// Reset.
type Response struct {
	conn    Conn
	timeout time.Duration

	connStart         time.Time
	maxConnectionTime time.Duration

	req RequestInfo

	code      httpproto.Code
	headers   []header
	committed bool
	ended     bool

	keepAlive bool
}

// New builds a Response bound to conn. connStart and maxConnectionTime
// implement the keep-alive budget rule from section 4.3.
func New(conn Conn, timeout time.Duration, connStart time.Time, maxConnectionTime time.Duration) *Response {
	r := &Response{
		conn:              conn,
		timeout:           timeout,
		connStart:         connStart,
		maxConnectionTime: maxConnectionTime,
	}
	r.Reset(RequestInfo{})

	return r
}

// Reset prepares the Response for the next request on a kept-alive
// connection.
func (r *Response) Reset(req RequestInfo) {
	r.req = req
	r.code = httpproto.StatusOK
	r.headers = r.headers[:0]
	r.committed = false
	r.ended = false
	r.keepAlive = false
}

// SetCode sets the status code to be emitted.
func (r *Response) SetCode(code httpproto.Code) *Response {
	r.code = code
	return r
}

// SetHeader sets a header, replacing any earlier value set under the exact
// same key.
func (r *Response) SetHeader(key, value string) *Response {
	for i := range r.headers {
		if r.headers[i].Key == key {
			r.headers[i].Value = value
			return r
		}
	}

	return r.AddHeader(key, value)
}

// AddHeader appends a header without deduplicating against existing keys,
// for headers that may legitimately repeat (none currently do in this
// engine's own responses, but handlers built on top of it may want it).
func (r *Response) AddHeader(key, value string) *Response {
	r.headers = append(r.headers, header{Key: key, Value: value})
	return r
}

// HasHeader reports whether key was explicitly set (exact match), so a
// handler-set no-cache override can be detected before injecting defaults.
func (r *Response) HasHeader(key string) bool {
	for _, h := range r.headers {
		if h.Key == key {
			return true
		}
	}

	return false
}

// Committed reports whether the prelude has already been handed to the
// transport.
func (r *Response) Committed() bool {
	return r.committed
}

// KeepAlive reports the Connection decision made at commit time. It is only
// meaningful after the response has been committed.
func (r *Response) KeepAlive() bool {
	return r.keepAlive
}

// Write commits the response on the first call, then streams body bytes.
// The prelude and the first body chunk are gathered into one transport
// write via net.Buffers, which uses a vectored write when the underlying
// conn supports it and falls back to two sequential writes otherwise.
func (r *Response) Write(body []byte) error {
	if !r.committed {
		return r.commitAndWrite(body)
	}

	return r.writeAll(net.Buffers{body})
}

// End finalizes the response. If nothing was written yet, it commits an
// empty-body response (prelude only).
func (r *Response) End() error {
	if r.ended {
		return nil
	}

	r.ended = true

	if !r.committed {
		return r.commitAndWrite(nil)
	}

	return nil
}

func (r *Response) commitAndWrite(body []byte) error {
	r.keepAlive = r.decideKeepAlive()
	prelude := r.buildPrelude()
	r.committed = true

	bufs := net.Buffers{prelude}
	if len(body) > 0 {
		bufs = append(bufs, body)
	}

	return r.writeAll(bufs)
}

func (r *Response) writeAll(bufs net.Buffers) error {
	if err := r.conn.SetWriteDeadline(time.Now().Add(r.timeout)); err != nil {
		return err
	}

	_, err := bufs.WriteTo(r.conn)

	return err
}

// decideKeepAlive implements the section 4.3 commit rule.
func (r *Response) decideKeepAlive() bool {
	switch r.code {
	case httpproto.StatusBadRequest, httpproto.StatusRequestEntityTooLarge, httpproto.StatusServiceUnavailable:
		return false
	}

	if r.maxConnectionTime > 0 && clock.Now().Sub(r.connStart) > r.maxConnectionTime {
		return false
	}

	if r.maxConnectionTime == 0 {
		// a zero budget disables keep-alive outright, per the CLI surface's
		// maxconnectiontime=0 semantics.
		return false
	}

	return r.req.KeepAliveRequested
}

func (r *Response) buildPrelude() []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, "HTTP/1.1 "...)
	buf = append(buf, httpproto.StatusLine(r.code)...)
	buf = append(buf, "\r\n"...)

	buf = appendHeaderLine(buf, "Server", ServerToken)
	buf = appendHeaderLine(buf, "Connection", connectionValue(r.keepAlive))
	buf = appendHeaderLine(buf, "Date", clock.NowHTTPDate())

	if !r.HasHeader("Cache-Control") {
		buf = appendHeaderLine(buf, "Cache-Control", "no-cache, no-store, must-revalidate")
	}
	if !r.HasHeader("Pragma") {
		buf = appendHeaderLine(buf, "Pragma", "no-cache")
	}
	if !r.HasHeader("Expires") {
		buf = appendHeaderLine(buf, "Expires", "0")
	}

	for _, h := range r.headers {
		buf = appendHeaderLine(buf, h.Key, h.Value)
	}

	buf = append(buf, "\r\n"...)

	return buf
}

func connectionValue(keepAlive bool) string {
	if keepAlive {
		return "keep-alive"
	}

	return "close"
}

func appendHeaderLine(buf []byte, key, value string) []byte {
	buf = append(buf, key...)
	buf = append(buf, ": "...)
	buf = append(buf, value...)
	buf = append(buf, "\r\n"...)

	return buf
}

// Send100Continue writes the interim "100 Continue" response described in
// section 4.2, ahead of the real response.
func Send100Continue(conn Conn, timeout time.Duration) error {
	const line = "HTTP/1.1 100 Continue\r\nContent-Length: 0\r\n\r\n"

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}

	_, err := conn.Write([]byte(line))

	return err
}

package request

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/karlpauls/ksah/httpproto"
)

// Verdict is the five-valued outcome of feeding a chunk of network bytes to
// a Parser.
type Verdict uint8

const (
	// NeedMore means the header block isn't complete yet; the caller should
	// perform another read and feed the result in.
	NeedMore Verdict = iota
	// OK means a complete, valid request line and header block were parsed.
	// Any bytes returned alongside are body bytes that arrived in the same
	// network read.
	OK
	// Continue is returned if Feed is invoked again after OK without the
	// parser having been Reset; header parsing is already done and any
	// further bytes belong to the body stream, not the parser.
	Continue
	// BadRequest means the header block violated the grammar or the
	// validation rules in section 4.2.
	BadRequest
	// EntityTooLarge means the header block exceeded the configured bound,
	// either before a CRLFCRLF terminator appeared or with the terminator
	// found past the bound.
	EntityTooLarge
)

const crlfcrlf = "\r\n\r\n"

// Limits bounds the sizes the Parser enforces while scanning headers.
type Limits struct {
	// MaxHeaderSize bounds the header block, in bytes. This mirrors rcvBuf:
	// the header buffer can never grow past the size of one network read
	// buffer.
	MaxHeaderSize int
}

// Parser incrementally scans network buffers for a complete HTTP/1.1 header
// block. One Parser is reused across a connection's lifetime via Reset.
type Parser struct {
	limits Limits

	headerBuf []byte
	done      bool

	req *Request
}

// NewParser returns a Parser bound to limits.
func NewParser(limits Limits) *Parser {
	return &Parser{limits: limits}
}

// Reset prepares the parser to fill req with the next request's header
// fields.
func (p *Parser) Reset(req *Request) {
	req.reset()
	p.headerBuf = p.headerBuf[:0]
	p.done = false
	p.req = req
}

// Feed appends chunk to the internal header buffer and looks for the
// CRLFCRLF terminator. bufferFull tells the parser that chunk filled the
// caller's entire read buffer, which is how a header block that never
// terminates is distinguished from one that simply needs another read.
//
// On OK, the returned slice holds whatever bytes followed the terminator in
// chunk: the body pre-buffer described in section 4.2.
func (p *Parser) Feed(chunk []byte, bufferFull bool) (Verdict, []byte, error) {
	if p.done {
		return Continue, chunk, nil
	}

	p.headerBuf = append(p.headerBuf, chunk...)

	idx := bytes.Index(p.headerBuf, []byte(crlfcrlf))
	if idx == -1 {
		// No terminator yet: every buffered byte is still a header-block
		// candidate, so the whole buffer is what MaxHeaderSize bounds. Once
		// the terminator is found below, only the block up to it counts,
		// not whatever body bytes trail it in the same read.
		if bufferFull || len(p.headerBuf) >= p.limits.MaxHeaderSize {
			return EntityTooLarge, nil, httpproto.ErrRequestTooLarge
		}

		return NeedMore, nil, nil
	}

	if idx > p.limits.MaxHeaderSize {
		return EntityTooLarge, nil, httpproto.ErrRequestTooLarge
	}

	block := p.headerBuf[:idx]
	extra := append([]byte(nil), p.headerBuf[idx+len(crlfcrlf):]...)

	if err := p.parseHeaderBlock(block); err != nil {
		return BadRequest, nil, err
	}

	p.done = true

	return OK, extra, nil
}

// AwaitsContinue reports whether the just-parsed request set up a pending
// 100-continue: HTTP/1.1, Content-Length > 0 and Expect: 100-continue. The
// remaining condition, that no body bytes have arrived yet, is checked by
// NewBody against the pre-buffer.
func (p *Parser) AwaitsContinue() bool {
	return p.req.Proto == httpproto.HTTP11 &&
		p.req.ContentLength > 0 &&
		strcomp.EqualFold(p.req.Headers.Value("expect"), "100-continue")
}

func (p *Parser) parseHeaderBlock(block []byte) error {
	lines := bytes.Split(block, []byte("\r\n"))

	firstLine := -1
	for i, line := range lines {
		if len(line) > 0 {
			firstLine = i
			break
		}
	}

	if firstLine == -1 {
		return httpproto.ErrMalformedRequest
	}

	if err := p.parseRequestLine(string(lines[firstLine])); err != nil {
		return err
	}

	for _, line := range lines[firstLine+1:] {
		if len(line) == 0 {
			continue
		}

		if err := p.parseHeaderLine(string(line)); err != nil {
			return err
		}
	}

	if p.req.Proto == httpproto.HTTP11 && !p.req.Headers.Has("host") {
		return httpproto.ErrMissingHost
	}

	if cl, ok := p.req.Headers.Get("content-length"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err != nil || n < 0 {
			return httpproto.ErrBadContentLength
		}

		p.req.ContentLength = n
	}

	return nil
}

func (p *Parser) parseRequestLine(line string) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return httpproto.ErrMalformedRequest
	}

	method := httpproto.ParseMethod(parts[0])
	if method == httpproto.MethodUnknown || parts[0] == "" {
		return httpproto.ErrMalformedRequest
	}

	proto := httpproto.ParseProto(parts[2])
	if proto == httpproto.ProtoUnknown {
		return httpproto.ErrMalformedRequest
	}

	path, err := normalizeTarget(parts[1])
	if err != nil || path == "" {
		return httpproto.ErrMalformedRequest
	}

	p.req.Method = method
	p.req.Proto = proto
	p.req.RawURI = parts[1]
	p.req.Path = path

	return nil
}

func (p *Parser) parseHeaderLine(line string) error {
	name, value, found := strings.Cut(line, ":")
	if !found || name == "" {
		return httpproto.ErrMalformedRequest
	}

	p.req.Headers.Add(name, strings.TrimSpace(value))

	return nil
}

// normalizeTarget implements section 4.2's request-target normalization: an
// absolute-form target (scheme://authority/path) is reduced to its path
// component; an origin-form target is left as-is except a missing leading
// slash is added. Any query string is dropped and the result is
// percent-decoded.
func normalizeTarget(target string) (string, error) {
	raw := target

	if scheme, rest, ok := strings.Cut(raw, "://"); ok && isScheme(scheme) {
		if slash := strings.IndexByte(rest, '/'); slash != -1 {
			raw = rest[slash:]
		} else {
			raw = "/"
		}
	} else if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}

	if q := strings.IndexByte(raw, '?'); q != -1 {
		raw = raw[:q]
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}

	return decoded, nil
}

// isScheme reports whether s looks like a URI scheme token: a non-empty
// run of letters, digits, '+', '-' or '.', starting with a letter.
func isScheme(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}

	return true
}

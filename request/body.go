package request

import (
	"io"
)

// Body streams the bytes following the header block, up to ContentLength.
// It is an ordinary io.Reader: the spec's callback-driven pre-buffer/recv
// contract collapses naturally onto io.Reader once each connection owns its
// own goroutine, since there is never more than one Read in flight and
// io.EOF is the idiomatic stand-in for the spec's sentinel -1 return.
type Body struct {
	source    io.Reader
	pre       []byte
	remaining int
	total     int

	pending100 bool
	send100    func() error
}

// NewBody constructs a Body. pre holds whatever body bytes already arrived
// in the same network read as the header terminator; source is read for
// anything beyond that, up to contentLength bytes total. If awaitContinue is
// true, send100 is invoked exactly once, lazily, the first time pre is
// exhausted and more bytes must be pulled from source.
func NewBody(source io.Reader, pre []byte, contentLength int, awaitContinue bool, send100 func() error) *Body {
	remaining := contentLength
	if len(pre) > remaining {
		pre = pre[:remaining]
	}

	return &Body{
		source:     source,
		pre:        pre,
		remaining:  remaining,
		total:      contentLength,
		pending100: awaitContinue && len(pre) == 0,
		send100:    send100,
	}
}

// ContentLength returns the declared body size.
func (b *Body) ContentLength() int {
	return b.total
}

// Read implements io.Reader. It returns io.EOF once ContentLength bytes have
// been delivered, and io.ErrUnexpectedEOF if source ends before that.
func (b *Body) Read(dst []byte) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if b.remaining == 0 {
		return 0, io.EOF
	}

	if len(b.pre) > 0 {
		n := copy(dst, b.pre)
		b.pre = b.pre[n:]
		b.remaining -= n

		return n, nil
	}

	if b.pending100 {
		b.pending100 = false

		if err := b.send100(); err != nil {
			return 0, err
		}
	}

	want := len(dst)
	if want > b.remaining {
		want = b.remaining
	}

	n, err := b.source.Read(dst[:want])
	b.remaining -= n

	if err == io.EOF && b.remaining > 0 {
		err = io.ErrUnexpectedEOF
	}

	return n, err
}

// Discard reads and drops any unread body bytes, so a handler that ignores
// the body doesn't leave it on the wire to corrupt the next request.
func (b *Body) Discard() error {
	_, err := io.Copy(io.Discard, b)
	return err
}

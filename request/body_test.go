package request_test

import (
	"io"
	"strings"
	"testing"

	"github.com/karlpauls/ksah/request"
	"github.com/stretchr/testify/require"
)

func TestBody_ReadsPreBufferThenSource(t *testing.T) {
	source := strings.NewReader("world")
	b := request.NewBody(source, []byte("hello "), 11, false, nil)

	got, err := io.ReadAll(b)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(got))
}

func TestBody_EOFAtContentLength(t *testing.T) {
	source := strings.NewReader("garbage-next-request")
	b := request.NewBody(source, nil, 4, false, nil)

	buf := make([]byte, 4)
	n, err := b.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	n, err = b.Read(buf)
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestBody_ZeroLength(t *testing.T) {
	b := request.NewBody(strings.NewReader(""), nil, 0, false, nil)

	n, err := b.Read(make([]byte, 4))
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestBody_Send100FiresOnceWhenPreBufferExhausted(t *testing.T) {
	fired := 0
	source := strings.NewReader("payload")
	b := request.NewBody(source, nil, 7, true, func() error {
		fired++
		return nil
	})

	got, err := io.ReadAll(b)
	require.NoError(t, err)
	require.Equal(t, "payload", string(got))
	require.Equal(t, 1, fired)
}

func TestBody_Send100SkippedWhenBodyAlreadyPresent(t *testing.T) {
	fired := 0
	b := request.NewBody(strings.NewReader(""), []byte("abc"), 3, true, func() error {
		fired++
		return nil
	})

	got, err := io.ReadAll(b)
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
	require.Equal(t, 0, fired)
}

func TestBody_Discard(t *testing.T) {
	b := request.NewBody(strings.NewReader("unread body bytes"), nil, 17, false, nil)
	require.NoError(t, b.Discard())

	n, err := b.Read(make([]byte, 1))
	require.Equal(t, 0, n)
	require.ErrorIs(t, err, io.EOF)
}

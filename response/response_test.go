package response_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/karlpauls/ksah/httpproto"
	"github.com/karlpauls/ksah/response"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	bytes.Buffer
	deadlines int
}

func (f *fakeConn) SetWriteDeadline(t time.Time) error {
	f.deadlines++
	return nil
}

func TestResponse_CommitsPreludeOnce(t *testing.T) {
	conn := &fakeConn{}
	r := response.New(conn, time.Second, time.Now(), time.Minute)
	r.Reset(response.RequestInfo{Proto: httpproto.HTTP11, KeepAliveRequested: true})

	require.NoError(t, r.Write([]byte("hello")))
	require.NoError(t, r.Write([]byte(" world")))
	require.NoError(t, r.End())

	out := conn.String()
	require.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
	require.Contains(t, out, "Server: ksah/1.0\r\n")
	require.Contains(t, out, "Connection: keep-alive\r\n")
	require.True(t, strings.HasSuffix(out, "hello world"))
	require.Equal(t, 1, strings.Count(out, "HTTP/1.1"))
}

func TestResponse_ClosesOnBadRequest(t *testing.T) {
	conn := &fakeConn{}
	r := response.New(conn, time.Second, time.Now(), time.Minute)
	r.Reset(response.RequestInfo{Proto: httpproto.HTTP11, KeepAliveRequested: true})
	r.SetCode(httpproto.StatusBadRequest)

	require.NoError(t, r.End())
	require.False(t, r.KeepAlive())
	require.Contains(t, conn.String(), "Connection: close\r\n")
}

func TestResponse_ClosesWhenConnectionBudgetExceeded(t *testing.T) {
	conn := &fakeConn{}
	start := time.Now().Add(-time.Hour)
	r := response.New(conn, time.Second, start, time.Minute)
	r.Reset(response.RequestInfo{Proto: httpproto.HTTP11, KeepAliveRequested: true})

	require.NoError(t, r.End())
	require.False(t, r.KeepAlive())
}

func TestResponse_HeaderOverridesDefault(t *testing.T) {
	conn := &fakeConn{}
	r := response.New(conn, time.Second, time.Now(), time.Minute)
	r.Reset(response.RequestInfo{Proto: httpproto.HTTP11, KeepAliveRequested: true})
	r.SetHeader("Cache-Control", "max-age=3600")

	require.NoError(t, r.End())
	out := conn.String()
	require.Contains(t, out, "Cache-Control: max-age=3600\r\n")
	require.NotContains(t, out, "no-cache, no-store")
}

func TestResponse_EndIsIdempotent(t *testing.T) {
	conn := &fakeConn{}
	r := response.New(conn, time.Second, time.Now(), time.Minute)
	r.Reset(response.RequestInfo{Proto: httpproto.HTTP11, KeepAliveRequested: true})

	require.NoError(t, r.End())
	first := conn.String()
	require.NoError(t, r.End())
	require.Equal(t, first, conn.String())
}

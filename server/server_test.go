package server_test

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/karlpauls/ksah/internal/logutil"
	"github.com/karlpauls/ksah/request"
	"github.com/karlpauls/ksah/response"
	"github.com/karlpauls/ksah/server"
	"github.com/stretchr/testify/require"
)

func echoHandler(req *request.Request, resp *response.Response) {
	resp.SetHeader("Content-Length", "2")
	_ = resp.Write([]byte("ok"))
	_ = resp.End()
}

func newTestServer(t *testing.T, opts server.Options) *server.Server {
	t.Helper()

	s, err := server.New("127.0.0.1:0", opts, echoHandler, logutil.New(logutil.LevelError))
	require.NoError(t, err)

	go func() { _ = s.Serve() }()

	return s
}

func defaultOptions() server.Options {
	return server.Options{
		Socket: server.SocketOptions{
			KeepAlive:    true,
			NoDelay:      true,
			ReuseAddress: true,
			RecvBuffer:   4096,
			SendBuffer:   4096,
		},
		Backlog:           128,
		BufferCacheBytes:  1 << 20,
		MaxConnections:    2,
		Timeout:           time.Second,
		MaxConnectionTime: time.Minute,
	}
}

func TestServer_AcceptsAndServes(t *testing.T) {
	s := newTestServer(t, defaultOptions())
	defer s.Close()

	c, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n"))
	require.NoError(t, err)

	status, err := bufio.NewReader(c).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 200 OK\r\n", status)
}

func TestServer_RejectsOverMaxConnections(t *testing.T) {
	opts := defaultOptions()
	opts.MaxConnections = 1
	s := newTestServer(t, opts)
	defer s.Close()

	first, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer first.Close()

	time.Sleep(20 * time.Millisecond)

	second, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer second.Close()

	status, err := bufio.NewReader(second).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 503 Service Unavailable\r\n", status)
}

func TestServer_CloseStopsAcceptLoop(t *testing.T) {
	s := newTestServer(t, defaultOptions())

	require.NoError(t, s.Close())
	require.True(t, s.AwaitClose(time.Second))

	_, err := net.Dial("tcp", s.Addr().String())
	require.Error(t, err)
}


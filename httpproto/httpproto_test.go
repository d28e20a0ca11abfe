package httpproto_test

import (
	"testing"

	"github.com/karlpauls/ksah/httpproto"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	require.Equal(t, httpproto.GET, httpproto.ParseMethod("GET"))
	require.Equal(t, httpproto.PUT, httpproto.ParseMethod("PUT"))
	require.Equal(t, httpproto.MethodUnknown, httpproto.ParseMethod("LINK"))
	require.Equal(t, httpproto.MethodUnknown, httpproto.ParseMethod(""))
}

func TestParseProto(t *testing.T) {
	require.Equal(t, httpproto.HTTP11, httpproto.ParseProto("HTTP/1.1"))
	require.Equal(t, httpproto.HTTP10, httpproto.ParseProto("HTTP/1.0"))
	require.Equal(t, httpproto.ProtoUnknown, httpproto.ParseProto("HTTP/2"))
}

func TestReason(t *testing.T) {
	require.Equal(t, "File Not Found", httpproto.Reason(httpproto.StatusNotFound))
	require.Equal(t, "Unknown Status Code", httpproto.Reason(httpproto.Code(999)))
}

func TestAsCode(t *testing.T) {
	require.Equal(t, httpproto.StatusNotFound, httpproto.AsCode(httpproto.ErrNotFound))
	require.Equal(t, httpproto.StatusInternalServerError, httpproto.AsCode(httpproto.ErrPeerReset))
}

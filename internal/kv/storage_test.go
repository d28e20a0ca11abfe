package kv_test

import (
	"testing"

	"github.com/karlpauls/ksah/internal/kv"
	"github.com/stretchr/testify/require"
)

func TestStorage_CaseInsensitiveLookup(t *testing.T) {
	s := kv.New()
	s.Add("Content-Type", "text/plain")

	value, found := s.Get("content-type")
	require.True(t, found)
	require.Equal(t, "text/plain", value)

	value, found = s.Get("CONTENT-TYPE")
	require.True(t, found)
	require.Equal(t, "text/plain", value)
}

func TestStorage_PreservesInsertionOrder(t *testing.T) {
	s := kv.New()
	s.Add("Host", "example.com")
	s.Add("Accept", "*/*")
	s.Add("User-Agent", "curl")

	require.Equal(t, []string{"Host", "Accept", "User-Agent"}, s.Keys())
}

func TestStorage_Values(t *testing.T) {
	s := kv.New()
	s.Add("Set-Cookie", "a=1")
	s.Add("Set-Cookie", "b=2")

	require.Equal(t, []string{"a=1", "b=2"}, s.Values("set-cookie"))
	require.Nil(t, s.Values("missing"))
}

func TestStorage_Set_ReplacesFirstMatch(t *testing.T) {
	s := kv.New()
	s.Add("Connection", "keep-alive")
	s.Set("connection", "close")

	require.Equal(t, "close", s.Value("Connection"))
	require.Equal(t, 1, s.Len())
}

func TestStorage_Has(t *testing.T) {
	s := kv.New()
	s.Add("Host", "example.com")

	require.True(t, s.Has("host"))
	require.False(t, s.Has("origin"))
}

func TestStorage_UnwrapPreservesInsertionOrder(t *testing.T) {
	s := kv.New()
	s.Add("a", "1")
	s.Add("b", "2")

	require.Equal(t, []kv.Pair{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}, s.Unwrap())
}

func TestStorage_Clear(t *testing.T) {
	s := kv.New()
	s.Add("a", "1")
	s.Clear()

	require.Equal(t, 0, s.Len())
	require.False(t, s.Has("a"))
}

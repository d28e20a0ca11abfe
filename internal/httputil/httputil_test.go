package httputil_test

import (
	"strings"
	"testing"

	"github.com/karlpauls/ksah/httpproto"
	"github.com/karlpauls/ksah/internal/httputil"
	"github.com/stretchr/testify/require"
)

func TestByExtension(t *testing.T) {
	require.Equal(t, httputil.HTML, httputil.ByExtension(".html"))
	require.Equal(t, httputil.JPEG, httputil.ByExtension(".jpg"))
	require.Equal(t, httputil.OctetStream, httputil.ByExtension(".unknown"))
	require.Equal(t, "application/javascript", httputil.ByExtension(".js"))
	require.Equal(t, httputil.XHTML, httputil.ByExtension(".xml"))
	require.Equal(t, httputil.Plain, httputil.ByExtension(".properties"))
}

func TestContentType_AppendsCharsetForTextLike(t *testing.T) {
	require.Equal(t, "text/html; charset=utf-8", httputil.ContentType(httputil.HTML, "utf-8"))
	require.Equal(t, "image/png", httputil.ContentType(httputil.PNG, "utf-8"))
	require.Equal(t, "application/javascript", httputil.ContentType(httputil.JS, "utf-8"))
}

func TestCannedError_ClosesOn400And413(t *testing.T) {
	e := httputil.CannedError(httpproto.StatusBadRequest)
	require.True(t, e.Close)
	require.Contains(t, string(e.HTML), "400")

	e = httputil.CannedError(httpproto.StatusRequestEntityTooLarge)
	require.True(t, e.Close)

	e = httputil.CannedError(httpproto.StatusNotFound)
	require.False(t, e.Close)
	require.Contains(t, string(e.HTML), "404")
}

func TestCannedError_ContentLengthMatchesBody(t *testing.T) {
	e := httputil.CannedError(httpproto.StatusForbidden)
	require.Equal(t, len(e.HTML), mustAtoi(t, e.ContentLength))
}

func TestEscapeHTML(t *testing.T) {
	require.Equal(t, "&#60;a&#62; &#38; &#34;b&#34;", httputil.EscapeHTML(`<a> & "b"`))
	require.Equal(t, "caf&#233;", httputil.EscapeHTML("café"))
}

func TestRenderListing_SortsAndSuffixesDirs(t *testing.T) {
	html := string(httputil.RenderListing("/", "..", []httputil.Entry{
		{Name: "zeta.txt"},
		{Name: "assets", IsDir: true},
	}))

	require.True(t, strings.Index(html, "assets/") < strings.Index(html, "zeta.txt"))
	require.Contains(t, html, `href="assets/"`)
}

func TestEncodeLinkTarget_EscapesSpaces(t *testing.T) {
	require.Equal(t, "my%20file.txt", httputil.EncodeLinkTarget("my file.txt"))
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, c := range s {
		require.True(t, c >= '0' && c <= '9')
		n = n*10 + int(c-'0')
	}
	return n
}

// Package httputil holds the small pieces of HTTP surface shared by the
// conn, server and statichandler packages: content-type lookup, canned error
// bodies, and the directory-listing renderer described in section 4.6.
//
// Grounded on the reference framework's http/mime/exts.go (extension table)
// and http/mime/charset.go (charset constants).
package httputil

// MIME identifies a content type by its canonical value, mirroring the
// reference framework's http/mime.MIME alias over string.
type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	CSS         MIME = "text/css"
	// JS is application/javascript, not text/javascript, matching the
	// origin server's own mapping.
	JS         MIME = "application/javascript"
	JSON       MIME = "application/json"
	XHTML      MIME = "application/xhtml+xml"
	PDF        MIME = "application/pdf"
	PostScript MIME = "application/postscript"
	GIF        MIME = "image/gif"
	JPEG       MIME = "image/jpeg"
	PNG        MIME = "image/png"
	SWF        MIME = "application/x-shockwave-flash"
)

// extensions maps a lowercase, dot-prefixed file extension to its MIME type,
// covering the set section 4.6 requires the static handler to recognize.
// .xml resolves to XHTML and .properties to Plain, matching the origin
// server's own extension table rather than a dedicated MIME per extension.
var extensions = map[string]MIME{
	".html":       HTML,
	".htm":        HTML,
	".xhtml":      XHTML,
	".css":        CSS,
	".js":         JS,
	".mjs":        JS,
	".json":       JSON,
	".xml":        XHTML,
	".txt":        Plain,
	".properties": Plain,
	".jpg":        JPEG,
	".jpeg":       JPEG,
	".png":        PNG,
	".gif":        GIF,
	".pdf":        PDF,
	".ps":         PostScript,
	".swf":        SWF,
}

// textLike is the set of MIMEs that get a charset parameter appended:
// text/*, application/json and application/xhtml+xml, per the origin
// server's own rule. application/javascript and application/octet-stream
// (and the other binary types) never get one.
var textLike = map[MIME]bool{
	Plain: true,
	HTML:  true,
	CSS:   true,
	JSON:  true,
	XHTML: true,
}

// ByExtension returns the MIME type registered for ext (a dot-prefixed,
// case-sensitive lookup key such as ".html"), or OctetStream if ext is
// unrecognized.
func ByExtension(ext string) MIME {
	if m, ok := extensions[ext]; ok {
		return m
	}

	return OctetStream
}

// ContentType builds the Content-Type header value for mime, appending
// "; charset=<charset>" when mime is text-like, exactly as section 4.6
// specifies.
func ContentType(mime MIME, charset string) string {
	if textLike[mime] && charset != "" {
		return mime + "; charset=" + charset
	}

	return mime
}

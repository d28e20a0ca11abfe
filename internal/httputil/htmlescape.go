package httputil

import (
	"strconv"
	"strings"
)

// EscapeHTML escapes s for safe inclusion in HTML text, following section
// 4.6's rule: the four HTML metacharacters and any code point above 127 are
// all emitted as numeric character references, matching
// original_source/.../util/HttpUtils.java's encodeHTML exactly, so the
// directory listing never depends on the response's declared charset.
func EscapeHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '"', '<', '>', '&':
			b.WriteString("&#")
			b.WriteString(strconv.Itoa(int(r)))
			b.WriteByte(';')
		default:
			if r > 127 {
				b.WriteString("&#")
				b.WriteString(strconv.Itoa(int(r)))
				b.WriteByte(';')
			} else {
				b.WriteRune(r)
			}
		}
	}

	return b.String()
}

package httputil

import (
	"net/url"
	"sort"
	"strings"
)

// Entry is one file-or-directory row of a directory listing.
type Entry struct {
	Name  string
	IsDir bool
}

// EncodeLinkTarget percent-encodes name for use as an href, by round-tripping
// it through net/url.URL the way section 4.6 describes ("URI to URL"
// reconstruction), so reserved and non-ASCII bytes come out correctly
// escaped regardless of how they got into name.
func EncodeLinkTarget(name string) string {
	u := url.URL{Path: name}
	return u.EscapedPath()
}

// RenderListing builds the directory-listing HTML document for dirName
// (the directory's display name, or "/" at the root) containing entries,
// with parentHref pointing at the ".." (or "/" at the root) link target.
func RenderListing(dirName string, parentHref string, entries []Entry) []byte {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>")
	b.WriteString(EscapeHTML(dirName))
	b.WriteString("</title></head><body><h1>")
	b.WriteString(EscapeHTML(dirName))
	b.WriteString("</h1><ul>")

	parentLabel := ".."
	if dirName == "/" {
		parentLabel = "/"
	}
	writeEntry(&b, parentHref, parentLabel)

	for _, e := range sorted {
		name := e.Name
		if e.IsDir {
			name += "/"
		}

		writeEntry(&b, EncodeLinkTarget(name), name)
	}

	b.WriteString("</ul></body></html>")

	return []byte(b.String())
}

func writeEntry(b *strings.Builder, href, label string) {
	b.WriteString(`<li><a href="`)
	b.WriteString(href)
	b.WriteString(`">`)
	b.WriteString(EscapeHTML(label))
	b.WriteString("</a></li>")
}

package httpproto

// Proto is the HTTP version token off the request line. Only 1.0 and 1.1 are
// understood; anything else (including HTTP/2's connection preface) is
// Unknown and rejected as a bad request, per the engine's scope.
type Proto uint8

const (
	ProtoUnknown Proto = iota
	HTTP10
	HTTP11
)

// String returns the wire token for p, e.g. "HTTP/1.1".
func (p Proto) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	default:
		return ""
	}
}

// ParseProto maps a request-line version token to a Proto.
func ParseProto(tok string) Proto {
	switch tok {
	case "HTTP/1.0":
		return HTTP10
	case "HTTP/1.1":
		return HTTP11
	default:
		return ProtoUnknown
	}
}

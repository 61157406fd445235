package webhook

import "strings"

/* Params is the ordered query parameter list for a bridge call
 * The bridge is order- and case-sensitive, so a plain map (which Go
 * iterates in random order) or url.Values (which sorts and encodes
 * space as '+') cannot be used here
 */
type Params []Param

// Param is a single key/value pair sent to the bridge.
type Param struct {
	Key   string
	Value string
}

// Encode renders the parameters as a percent-encoded query string,
// preserving insertion order. It returns "" for an empty list.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(kv.Key))
		b.WriteByte('=')
		b.WriteString(escape(kv.Value))
	}
	return b.String()
}

// escape percent-encodes everything except RFC 3986 unreserved
// characters and '/'. Notably a space becomes "%20", never "+".
func escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0f])
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-' || c == '.' || c == '_' || c == '~' || c == '/':
		return true
	}
	return false
}

package browser

import "mime"

// mimeDisposition builds an inline Content-Disposition for name, encoding
// non-ASCII names as RFC 2231 parameters.
func mimeDisposition(name string) string {
	if name == "" {
		return "inline"
	}
	return mime.FormatMediaType("inline", map[string]string{"filename": name})
}

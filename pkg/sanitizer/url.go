package sanitizer

import (
	"net/url"
	"strings"
)

// NormalizeImageURL accepts absolute http(s) URLs and server-relative paths such as /uploads/x.jpg.
// Anything else, including javascript: and data: URLs, becomes "".
func NormalizeImageURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}

	if u.Scheme == "" && u.Host == "" {
		if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(s, "//") || strings.Contains(u.Path, "..") {
			return ""
		}
		return u.String()
	}

	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return ""
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	return u.String()
}

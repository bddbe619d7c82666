package entity

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// maxURLLength caps feed and article URLs accepted from the registry.
const maxURLLength = 2048

func urlError(format string, args ...any) error {
	return &ValidationError{Field: "url", Message: fmt.Sprintf(format, args...)}
}

// ValidateURL checks a registry feed URL: absolute http(s), with a host that
// is not localhost or a literal loopback, private, link-local or unspecified
// address. Host names are not resolved here; the article image resolver
// repeats the check after DNS.
func ValidateURL(rawURL string) error {
	switch {
	case rawURL == "":
		return urlError("url is required")
	case len(rawURL) > maxURLLength:
		return urlError("url must not exceed %d characters", maxURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return urlError("malformed url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return urlError("url scheme must be http or https, got %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return urlError("url has no host")
	}
	if strings.EqualFold(host, "localhost") {
		return urlError("url cannot point to private network")
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return urlError("url cannot point to private network")
	}
	return nil
}

// IsAbsoluteHTTPURL reports whether raw is an absolute http(s) URL with a
// host. Feed entry links failing it are dropped by the parser.
func IsAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate() || ip.IsUnspecified()
}

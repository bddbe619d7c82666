// Package pathutil normalizes request paths into bounded metric label values.
package pathutil

import (
	"regexp"
	"strings"
)

// OtherPath is the label used for every path outside the route table.
const OtherPath = "other"

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// staticPaths are the routes registered by cmd/api.
var staticPaths = map[string]struct{}{
	"/":        {},
	"/news":    {},
	"/health":  {},
	"/ready":   {},
	"/live":    {},
	"/metrics": {},
}

// pathPatterns covers routes with a variable suffix.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/swagger(/.*)?$`), Template: "/swagger/*"},
}

// NormalizePath maps a request path onto a fixed set of label values.
//
//	NormalizePath("/news")                 // "/news"
//	NormalizePath("/news/?q=x")            // "/news"
//	NormalizePath("/swagger/index.html")   // "/swagger/*"
//	NormalizePath("/wp-login.php")         // "other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	if _, ok := staticPaths[path]; ok {
		return path
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}

	// スキャナーなど未知のパスはラベルを増やさない
	return OtherPath
}

// GetExpectedCardinality returns the number of distinct labels NormalizePath can produce.
func GetExpectedCardinality() int {
	return len(staticPaths) + len(pathPatterns) + 1
}

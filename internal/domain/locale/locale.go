// Package locale resolves country and language identifiers used by queries
// and source descriptors. Country aliases are resolved through a single
// lookup table.
package locale

import (
	"regexp"
	"sort"
	"strings"
)

// AllCountries is the country label used when a query names no country.
const AllCountries = "all"

// aliases maps lower-cased user input to canonical lang-CC codes.
var aliases = map[string]string{
	// Spain
	"es": "es-ES", "es-es": "es-ES", "es-esp": "es-ES", "esp": "es-ES", "spain": "es-ES", "españa": "es-ES", "espana": "es-ES",
	// Argentina
	"ar": "es-AR", "arg": "es-AR", "argentina": "es-AR", "es-ar": "es-AR",
	// Colombia
	"co": "es-CO", "col": "es-CO", "colombia": "es-CO", "es-co": "es-CO",
	// Mexico
	"mx": "es-MX", "mex": "es-MX", "mexico": "es-MX", "méxico": "es-MX", "es-mx": "es-MX",
	// Peru
	"pe": "es-PE", "per": "es-PE", "peru": "es-PE", "perú": "es-PE", "es-pe": "es-PE",
	// Chile
	"cl": "es-CL", "chl": "es-CL", "chile": "es-CL", "es-cl": "es-CL",
	// Ecuador
	"ec": "es-EC", "ecu": "es-EC", "ecuador": "es-EC", "es-ec": "es-EC",
	// Venezuela
	"ve": "es-VE", "ven": "es-VE", "venezuela": "es-VE", "es-ve": "es-VE",
	// United States
	"us": "en-US", "usa": "en-US", "eeuu": "en-US", "ee.uu.": "en-US", "en-us": "en-US", "us-en": "en-US",
	"united states": "en-US", "estados unidos": "en-US",
}

var supported = []string{"es-ES", "es-AR", "es-CO", "es-MX", "es-PE", "es-CL", "es-EC", "es-VE", "en-US"}

var langCountryPattern = regexp.MustCompile(`^([a-z]{2})[-_]([a-z]{2})$`)

// NormalizeCountry resolves user input to a canonical lang-CC code.
// Known aliases win; otherwise any "xx-yy" shaped code is canonicalized to
// "xx-YY". The boolean is false for empty or unrecognized input.
func NormalizeCountry(input string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(input))
	if key == "" {
		return "", false
	}
	if code, ok := aliases[key]; ok {
		return code, true
	}
	if m := langCountryPattern.FindStringSubmatch(key); m != nil {
		return m[1] + "-" + strings.ToUpper(m[2]), true
	}
	return "", false
}

// NormalizeLanguage returns the lower-cased primary subtag: "ES-ar" becomes "es".
func NormalizeLanguage(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if i := strings.IndexAny(s, "-_"); i >= 0 {
		s = s[:i]
	}
	return s
}

// Region returns the upper-cased region subtag of a lang-CC code, or "" when absent.
func Region(code string) string {
	if i := strings.IndexAny(code, "-_"); i >= 0 && i+1 < len(code) {
		return strings.ToUpper(code[i+1:])
	}
	return ""
}

// Language returns the language subtag of a lang-CC code.
func Language(code string) string {
	return NormalizeLanguage(code)
}

// SupportedCountries returns the canonical codes with curated sources, sorted.
func SupportedCountries() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	sort.Strings(out)
	return out
}

// IsSupported reports whether code is one of SupportedCountries.
func IsSupported(code string) bool {
	for _, c := range supported {
		if c == code {
			return true
		}
	}
	return false
}

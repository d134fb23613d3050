package conversation

import (
	"regexp"
	"strings"
)

// Combined name+city patterns, tried in order. The bare "NAME de CITY"
// fallback goes last so the explicit phrasings win.
var nameCityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:soy|me llamo)\s+(.+?)\s*,?\s+de\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:soy|me llamo)\s+(.+?)\s+y\s+vivo\s+en\s+(.+)$`),
	regexp.MustCompile(`(?i)^(.+?)\s+de\s+(.+)$`),
}

var shippingPrefixRe = regexp.MustCompile(`(?i)^(?:soy|me llamo)\s+`)

// splitNameCity extracts (name, city) from phrases like "Soy Manuel de
// Sevilla", "Me llamo Manuel de Sevilla" or "Soy Manuel y vivo en
// Sevilla", with a bare "Manuel de Sevilla" fallback.
func splitNameCity(text string) (name, city string, ok bool) {
	t := strings.TrimSpace(text)
	for _, re := range nameCityPatterns {
		if m := re.FindStringSubmatch(t); m != nil {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

// isValidHumanField accepts a trimmed value of at least two characters
// that is not purely numeric. Numbers are never names or cities.
func isValidHumanField(value string) bool {
	v := strings.TrimSpace(value)
	if len(v) < 2 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

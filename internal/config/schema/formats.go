package schema

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	urlPattern = regexp.MustCompile(`(?i)^https?://` +
		`(?:(?:[A-Z0-9](?:[A-Z0-9-]{0,61}[A-Z0-9])?\.)+[A-Z]{2,6}\.?|` +
		`localhost|` +
		`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})` +
		`(?::\d+)?` +
		`(?:/?|[/?]\S+)$`)

	versionPattern  = regexp.MustCompile(`^\d{4}(?:\.\d+)?$`)
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)
)

// LogLevels lists the accepted log level names.
var LogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// IsURL accepts http and https URLs with a domain, localhost or IPv4 host.
func IsURL(value any) bool {
	s, ok := value.(string)
	return ok && urlPattern.MatchString(s)
}

// IsVersion accepts host versions of the form "YYYY" or "YYYY.N".
func IsVersion(value any) bool {
	s, ok := value.(string)
	return ok && versionPattern.MatchString(s)
}

// IsLogLevel accepts a log level name, case-insensitively.
func IsLogLevel(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, lvl := range LogLevels {
		if strings.EqualFold(s, lvl) {
			return true
		}
	}
	return false
}

// IsHexColor accepts #RGB and #RRGGBB colors.
func IsHexColor(value any) bool {
	s, ok := value.(string)
	return ok && hexColorPattern.MatchString(s)
}

// IsPositive accepts numbers greater than zero.
func IsPositive(value any) bool {
	return isNumber(value) && toFloat64(value) > 0
}

// IsNonNegative accepts numbers greater than or equal to zero.
func IsNonNegative(value any) bool {
	return isNumber(value) && toFloat64(value) >= 0
}

// IsPort accepts integers in 1..65535.
func IsPort(value any) bool {
	if !isInteger(value) {
		return false
	}
	n := toInt64(value)
	return n >= 1 && n <= 65535
}

// HasExtension returns a predicate accepting string paths whose extension
// matches one of exts, case-insensitively. Extensions may omit the dot.
func HasExtension(exts ...string) Predicate {
	want := make([]string, 0, len(exts))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		want = append(want, strings.ToLower(e))
	}
	return func(value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		ext := strings.ToLower(filepath.Ext(s))
		for _, e := range want {
			if ext == e {
				return true
			}
		}
		return false
	}
}

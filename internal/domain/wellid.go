package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// wellIDRe matches well identifiers such as "83", "12A" or "3SW".
var wellIDRe = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// ParseWellFileName extracts the well identifier from an observation file
// name of the form <prefix><id><suffix>, e.g.
// "grand-island-test-wenzel-12A.csv" -> "12A". Any directory part is ignored.
// The identifier must be non-empty and alphanumeric.
func ParseWellFileName(name, prefix, suffix string) (string, error) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, suffix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, base)
	}
	if len(base) < len(prefix)+len(suffix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, base)
	}
	id := base[len(prefix) : len(base)-len(suffix)]
	if !wellIDRe.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, base)
	}
	return id, nil
}

// IsPumpedWell reports whether an identifier refers to the pumped well.
// Identifiers containing the pumped-well marker are treated as the pumped
// well, as in the source data where it may carry a suffix.
func IsPumpedWell(wellID string, pumped PumpedWell) bool {
	return pumped.ID != "" && strings.Contains(wellID, pumped.ID)
}

// LineOf derives the line code from an observation well identifier.
// The pumped well is assigned pumped.Line, identifiers containing "SW" are on
// the SW line, and every other identifier ends with its one-letter line.
func LineOf(wellID string, pumped PumpedWell) string {
	switch {
	case IsPumpedWell(wellID, pumped):
		return pumped.Line
	case strings.Contains(wellID, "SW"):
		return "SW"
	case wellID == "":
		return ""
	default:
		return wellID[len(wellID)-1:]
	}
}

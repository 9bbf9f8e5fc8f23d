package billing

import (
	"fmt"
	"regexp"
)

var numberPattern = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d{3,})$`)

// FormatNumber renders a document number, e.g. INV-2024-007
func FormatNumber(kind DocumentKind, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%03d", kind.NumberPrefix(), year, seq)
}

// MatchesNumberFormat reports whether number has the generated shape for kind
func MatchesNumberFormat(kind DocumentKind, number string) bool {
	m := numberPattern.FindStringSubmatch(number)
	return m != nil && m[1] == kind.NumberPrefix()
}

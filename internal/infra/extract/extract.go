// Package extract pulls a currency amount out of free-form notification text.
// It looks for a currency marker token followed by a numeric token, strips
// thousands separators, and parses the result as an exact decimal.
package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMarkers are the currency marker tokens recognized out of the box.
var DefaultMarkers = []string{"Rp", "RP", "rp", "IDR"}

// Extractor locates amounts following one of its currency markers.
type Extractor struct {
	pattern *regexp.Regexp
}

// New builds an extractor for the given markers.
// Empty markers fall back to DefaultMarkers.
func New(markers []string) *Extractor {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	// Marker, optional separating space or period, then the numeric token.
	p := regexp.MustCompile(`(?:` + strings.Join(quoted, "|") + `)[ .]?([0-9][0-9.,]*)`)
	return &Extractor{pattern: p}
}

// FromText returns the first amount found in s. The boolean is false when no
// marker/number pair is present or the number does not parse.
func (e *Extractor) FromText(s string) (decimal.Decimal, bool) {
	m := e.pattern.FindStringSubmatch(s)
	if m == nil {
		return decimal.Decimal{}, false
	}
	return parseAmount(m[1])
}

// parseAmount strips `.` and `,` thousands separators and parses the rest.
// Both separators are treated as grouping, never as a decimal point — amounts
// on payment notifications are whole currency units.
func parseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(s)
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

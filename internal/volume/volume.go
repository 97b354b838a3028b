// Package volume converts the heterogeneous traffic representations the
// upstream sources emit (raw counts, compact integers, pre-formatted
// "200,000+" strings) into one canonical magnitude-suffixed form, plus the
// reverse mapping used for ranking.
package volume

import (
	"math"
	"strconv"
	"strings"
)

// Unknown is the placeholder rendered when a source reports no traffic data.
const Unknown = "—"

// Options controls the magnitude heuristics.
type Options struct {
	// AssumeCompactThousands treats bare numbers in [1, 1000) as already
	// being expressed in thousands, so 500 renders as "500K+". This
	// compensates for an upstream API that reports compact integers instead
	// of raw counts. It is a heuristic, not documented upstream behavior,
	// and can misfire for genuinely small counts, so it stays switchable.
	AssumeCompactThousands bool
}

// DefaultOptions returns the heuristics as observed in production feeds.
func DefaultOptions() Options {
	return Options{AssumeCompactThousands: true}
}

// Format renders a raw traffic value with the default options.
func Format(raw any) string {
	return FormatWith(raw, DefaultOptions())
}

// FormatWith renders a raw traffic value as a canonical suffixed string.
// Rules, in order: nil or empty → Unknown; a string already carrying a
// K/M/B suffix (optionally "+") passes through unchanged; otherwise the
// value is coerced to a number (comma thousands-separators stripped) and
// rendered with a rounded B+/M+/K+ suffix. Malformed strings come back
// unmodified.
func FormatWith(raw any, opts Options) string {
	if raw == nil {
		return Unknown
	}

	if s, ok := raw.(string); ok {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return Unknown
		}
		if hasMagnitudeSuffix(trimmed) {
			return trimmed
		}
		n, err := parseNumeric(trimmed)
		if err != nil {
			return s
		}
		return formatNumber(n, opts)
	}

	n, ok := toFloat(raw)
	if !ok {
		return Unknown
	}
	return formatNumber(n, opts)
}

// ToNumber parses a canonical volume string with the default options.
func ToNumber(s string) int64 {
	return ToNumberWith(s, DefaultOptions())
}

// ToNumberWith maps a canonical suffixed string back to an integer count,
// used only for ranking rows. It applies the same compact-thousands
// heuristic as FormatWith so the two stay round-trip consistent. Malformed
// input yields 0.
func ToNumberWith(s string, opts Options) int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == Unknown {
		return 0
	}

	t := strings.TrimSuffix(s, "+")
	mult := int64(1)
	switch {
	case strings.HasSuffix(t, "K"), strings.HasSuffix(t, "k"):
		mult = 1_000
		t = t[:len(t)-1]
	case strings.HasSuffix(t, "M"), strings.HasSuffix(t, "m"):
		mult = 1_000_000
		t = t[:len(t)-1]
	case strings.HasSuffix(t, "B"), strings.HasSuffix(t, "b"):
		mult = 1_000_000_000
		t = t[:len(t)-1]
	}

	n, err := parseNumeric(strings.TrimSpace(t))
	if err != nil {
		return 0
	}
	if mult == 1 && opts.AssumeCompactThousands && n >= 1 && n < 1000 {
		mult = 1_000
	}
	return int64(math.Round(n * float64(mult)))
}

func formatNumber(n float64, opts Options) string {
	switch {
	case opts.AssumeCompactThousands && n >= 1 && n < 1000:
		return strconv.FormatInt(int64(math.Round(n)), 10) + "K+"
	case n >= 1e9:
		return strconv.FormatInt(int64(math.Round(n/1e9)), 10) + "B+"
	case n >= 1e6:
		return strconv.FormatInt(int64(math.Round(n/1e6)), 10) + "M+"
	case n >= 1e3:
		return strconv.FormatInt(int64(math.Round(n/1e3)), 10) + "K+"
	default:
		return strconv.FormatInt(int64(math.Round(n)), 10)
	}
}

func hasMagnitudeSuffix(s string) bool {
	t := strings.TrimSuffix(s, "+")
	if t == "" {
		return false
	}
	switch t[len(t)-1] {
	case 'K', 'M', 'B':
		return true
	}
	return false
}

func parseNumeric(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

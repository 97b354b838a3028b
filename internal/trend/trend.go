// Package trend holds the domain model shared by every stage of a run: the
// raw item shape both upstream sources map into, the normalized key that
// makes items comparable across sources and runs, and the enrichment join.
package trend

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/deusflow/trends/internal/volume"
)

// Item is one trending entry from one polling cycle, as delivered by a
// source. VolumeRaw keeps the upstream representation untouched (string or
// number); canonicalization happens at join time.
type Item struct {
	Title             string
	Link              string
	VolumeRaw         any
	StartedMinutesAgo int
	RelatedQueries    []string
	BreakdownLinks    []string
	Source            string
}

// EnrichedRow is a baseline Item left-outer joined with metadata from a
// secondary source under the same normalized key. The baseline row is always
// kept; missing enrichment leaves the placeholder values in place.
type EnrichedRow struct {
	Item
	Key    string // Normalize(Title)
	Volume string // canonical suffixed form, volume.Unknown when absent
	IsNew  bool
}

// Normalize canonicalizes a title into the key used both for run-over-run
// diffing and for joining baseline and enrichment sources: NFD-decomposed
// with combining diacritics stripped, lowercased, trimmed, internal
// whitespace collapsed to single spaces. Total and idempotent; empty input
// stays empty.
func Normalize(title string) string {
	if title == "" {
		return ""
	}

	decomposed := norm.NFD.String(title)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(strings.ToLower(b.String())), " ")
}

// MergeEnrichment joins baseline items with enrichment items by normalized
// key. Every baseline item produces exactly one row, in baseline order;
// enrichment only fills fields the baseline lacks. Enrichment-only keys are
// dropped: the baseline feed decides what is trending.
func MergeEnrichment(baseline, enrichment []Item, opts volume.Options) []EnrichedRow {
	byKey := make(map[string]Item, len(enrichment))
	for _, e := range enrichment {
		key := Normalize(e.Title)
		if key == "" {
			continue
		}
		if _, dup := byKey[key]; !dup {
			byKey[key] = e
		}
	}

	rows := make([]EnrichedRow, 0, len(baseline))
	for _, item := range baseline {
		row := EnrichedRow{Item: item, Key: Normalize(item.Title)}

		if extra, ok := byKey[row.Key]; ok {
			if row.VolumeRaw == nil {
				row.VolumeRaw = extra.VolumeRaw
			}
			if row.StartedMinutesAgo == 0 {
				row.StartedMinutesAgo = extra.StartedMinutesAgo
			}
			if len(row.RelatedQueries) == 0 {
				row.RelatedQueries = extra.RelatedQueries
			}
			if len(row.BreakdownLinks) == 0 {
				row.BreakdownLinks = extra.BreakdownLinks
			}
			if row.Link == "" {
				row.Link = extra.Link
			}
		}

		row.Volume = volume.FormatWith(row.VolumeRaw, opts)
		rows = append(rows, row)
	}

	return rows
}

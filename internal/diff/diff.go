// Package diff decides which of the current trends are new relative to the
// persisted seen set, and whether the run should notify at all.
package diff

import (
	"fmt"

	"github.com/deusflow/trends/internal/trend"
)

// Mode selects how a run's keys are persisted to the seen set.
type Mode string

const (
	// Additive unions the current keys into the seen set. The set only
	// grows: a title never reappears as new once recorded, even across
	// unrelated days.
	Additive Mode = "additive"

	// Replace rewrites the seen set to exactly the current key set, giving a
	// strict run-over-run diff: a trend that drops out and later returns
	// counts as new again.
	Replace Mode = "replace"
)

// ParseMode validates a configured store mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Additive, Replace:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown store mode %q (want additive or replace)", s)
}

// Result is the outcome of diffing one run against the seen snapshot.
type Result struct {
	// Rows are the input rows, in input order, annotated with IsNew. All
	// rows are kept for display even when keys repeat within the batch.
	Rows []trend.EnrichedRow

	// NewKeys are the keys absent from the pre-run snapshot, deduplicated,
	// in first-appearance order.
	NewKeys []string

	// AllKeys are all current keys, deduplicated, in first-appearance
	// order. This is what gets persisted.
	AllKeys []string

	// ShouldNotify is the anti-spam gate: true iff at least one current key
	// was not in the snapshot. False means the whole run stays silent; that
	// is a no-op, not an error.
	ShouldNotify bool

	// Degraded marks a run whose seen store was unreachable: the NEW
	// annotation is disabled but the baseline list is still delivered.
	Degraded bool
}

// Compute marks which rows are new relative to the pre-run seen snapshot.
// Duplicate keys within the batch collapse to one entry in AllKeys and
// NewKeys but every display row is kept.
func Compute(rows []trend.EnrichedRow, seen map[string]bool) Result {
	res := Result{Rows: make([]trend.EnrichedRow, len(rows))}

	inBatch := make(map[string]bool, len(rows))
	for i, row := range rows {
		row.IsNew = row.Key != "" && !seen[row.Key]
		res.Rows[i] = row

		if row.Key == "" || inBatch[row.Key] {
			continue
		}
		inBatch[row.Key] = true

		res.AllKeys = append(res.AllKeys, row.Key)
		if row.IsNew {
			res.NewKeys = append(res.NewKeys, row.Key)
			res.ShouldNotify = true
		}
	}

	return res
}

// Degrade is the store-unreachable fallback: every row is marked not-new and
// the run still notifies with the plain baseline list. Nothing is persisted
// from a degraded run, so AllKeys stays empty.
func Degrade(rows []trend.EnrichedRow) Result {
	res := Result{
		Rows:         make([]trend.EnrichedRow, len(rows)),
		ShouldNotify: true,
		Degraded:     true,
	}
	for i, row := range rows {
		row.IsNew = false
		res.Rows[i] = row
	}
	return res
}

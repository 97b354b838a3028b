// Package format renders a diffed trend list into a Slack payload. Pure:
// given the same rows, meta and clock value the output is byte-identical,
// which is what makes the formatter testable without a webhook.
package format

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/trends/internal/slack"
	"github.com/deusflow/trends/internal/trend"
	"github.com/deusflow/trends/internal/volume"
)

// Layout selects the message shape.
type Layout string

const (
	// LayoutBlocks renders one section block per trend with a NEW badge.
	LayoutBlocks Layout = "blocks"
	// LayoutTable renders a single fixed-width monospace table.
	LayoutTable Layout = "table"
)

// Sort selects the row order.
type Sort string

const (
	// SortFeed keeps the baseline feed order.
	SortFeed Sort = "feed"
	// SortVolume orders by descending estimated volume.
	SortVolume Sort = "volume"
)

// Meta carries everything BuildPayload needs besides the rows. Now and
// Location are injected so output never depends on host clock or locale.
type Meta struct {
	Region     string
	Now        time.Time
	Location   *time.Location
	Layout     Layout
	Sort       Sort
	Limit      int
	VolumeOpts volume.Options
	Note       string // extra context line, e.g. the degraded-run notice
}

const timestampLayout = "Mon, 02 Jan 2006 15:04 MST"

// Table column widths; cells are truncated with an ellipsis marker.
const (
	colTrend     = 24
	colVolume    = 8
	colStarted   = 7
	colBreakdown = 28
)

// BuildPayload renders the rows. It never mutates its input.
func BuildPayload(rows []trend.EnrichedRow, meta Meta) slack.Payload {
	ordered := orderRows(rows, meta)
	if meta.Limit > 0 && len(ordered) > meta.Limit {
		ordered = ordered[:meta.Limit]
	}

	newCount := 0
	for _, row := range ordered {
		if row.IsNew {
			newCount++
		}
	}

	header := fmt.Sprintf("📈 Trending in %s", meta.Region)
	stamp := meta.Now.In(meta.Location).Format(timestampLayout)
	context := fmt.Sprintf("%s · %d topics · %d new", stamp, len(ordered), newCount)

	payload := slack.Payload{
		Text: fmt.Sprintf("Trending in %s: %d topics, %d new", meta.Region, len(ordered), newCount),
		Blocks: []slack.Block{
			{Type: "header", Text: &slack.Text{Type: "plain_text", Text: header, Emoji: true}},
			{Type: "context", Elements: []slack.Text{{Type: "mrkdwn", Text: context}}},
		},
	}

	if meta.Layout == LayoutTable {
		payload.Blocks = append(payload.Blocks, slack.Block{
			Type: "section",
			Text: &slack.Text{Type: "mrkdwn", Text: renderTable(ordered)},
		})
	} else {
		for i, row := range ordered {
			payload.Blocks = append(payload.Blocks, slack.Block{
				Type: "section",
				Text: &slack.Text{Type: "mrkdwn", Text: renderRow(i+1, row)},
			})
		}
	}

	if meta.Note != "" {
		payload.Blocks = append(payload.Blocks, slack.Block{
			Type:     "context",
			Elements: []slack.Text{{Type: "mrkdwn", Text: meta.Note}},
		})
	}

	return payload
}

// BuildFailurePayload is the best-effort failure summary sent when a run
// aborts before it has anything to report.
func BuildFailurePayload(region string, runErr error) slack.Payload {
	return slack.Payload{
		Text: fmt.Sprintf("⚠️ trend run for %s failed: %v", region, runErr),
	}
}

func orderRows(rows []trend.EnrichedRow, meta Meta) []trend.EnrichedRow {
	ordered := make([]trend.EnrichedRow, len(rows))
	copy(ordered, rows)

	if meta.Sort == SortVolume {
		sort.SliceStable(ordered, func(i, j int) bool {
			return volume.ToNumberWith(ordered[i].Volume, meta.VolumeOpts) >
				volume.ToNumberWith(ordered[j].Volume, meta.VolumeOpts)
		})
	}
	return ordered
}

func renderRow(number int, row trend.EnrichedRow) string {
	var b strings.Builder

	title := row.Title
	if row.Link != "" {
		title = fmt.Sprintf("<%s|%s>", row.Link, row.Title)
	}

	fmt.Fprintf(&b, "*%d.* %s", number, title)
	if row.IsNew {
		b.WriteString(" :new:")
	}

	fmt.Fprintf(&b, "\n`%s`", row.Volume)
	if row.StartedMinutesAgo > 0 {
		fmt.Fprintf(&b, " · started %s ago", startedLabel(row.StartedMinutesAgo))
	}
	if len(row.RelatedQueries) > 0 {
		fmt.Fprintf(&b, " · related: %s", strings.Join(row.RelatedQueries, ", "))
	}

	return b.String()
}

func renderTable(rows []trend.EnrichedRow) string {
	var b strings.Builder

	b.WriteString("```")
	fmt.Fprintf(&b, "%2s  %-*s  %-*s  %-*s  %-*s\n",
		"#", colTrend, "Trend", colVolume, "Volume", colStarted, "Started", colBreakdown, "Breakdown")

	for i, row := range rows {
		started := volume.Unknown
		if row.StartedMinutesAgo > 0 {
			started = startedLabel(row.StartedMinutesAgo)
		}
		breakdown := volume.Unknown
		if len(row.BreakdownLinks) > 0 {
			breakdown = row.BreakdownLinks[0]
		}

		fmt.Fprintf(&b, "%2d  %-*s  %-*s  %-*s  %-*s\n",
			i+1,
			colTrend, truncate(row.Title, colTrend),
			colVolume, truncate(row.Volume, colVolume),
			colStarted, truncate(started, colStarted),
			colBreakdown, truncate(breakdown, colBreakdown))
	}

	b.WriteString("```")
	return b.String()
}

func startedLabel(minutes int) string {
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes < 48*60:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dd", minutes/(24*60))
	}
}

// truncate cuts a cell to its column width, marking the cut with an
// ellipsis. Width is counted in runes, not bytes.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

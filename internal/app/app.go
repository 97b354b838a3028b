// Package app orchestrates one scheduled run: fetch the trending baseline,
// enrich it, diff against the seen set, post to Slack, persist. The process
// exits after one run; scheduling belongs to cron or the CI workflow.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/deusflow/trends/internal/config"
	"github.com/deusflow/trends/internal/diff"
	"github.com/deusflow/trends/internal/feed"
	"github.com/deusflow/trends/internal/format"
	"github.com/deusflow/trends/internal/logger"
	"github.com/deusflow/trends/internal/metrics"
	"github.com/deusflow/trends/internal/slack"
	"github.com/deusflow/trends/internal/trend"
	"github.com/deusflow/trends/internal/volume"
)

// deps is the seam between the orchestration logic and the real
// collaborators, so run can be exercised with fakes.
type deps struct {
	loadSources     func(path string) (*feed.SourcesConfig, error)
	fetchBaseline   func(ctx context.Context, urls []string) ([]trend.Item, error)
	fetchEnrichment func(ctx context.Context, sources []feed.APISource) ([]trend.Item, error)
	openStore       func(cfg *config.Config) (SeenStore, error)
	send            func(ctx context.Context, payload slack.Payload) error
	now             func() time.Time
}

// Run executes one complete run with the real collaborators.
func Run(ctx context.Context, cfg *config.Config) (*RunResult, error) {
	fetcher := feed.New(cfg.Region, cfg.RequestTimeout)
	client := slack.NewClient(cfg.SlackWebhookURL, cfg.RequestTimeout)

	d := deps{
		loadSources:     feed.LoadSources,
		fetchBaseline:   fetcher.FetchBaseline,
		fetchEnrichment: fetcher.FetchEnrichment,
		openStore:       openStore,
		send:            client.Send,
		now:             time.Now,
	}

	start := time.Now()
	result, err := run(ctx, cfg, d)
	metrics.Global.RecordRunDuration(time.Since(start))

	if err != nil {
		metrics.Global.SetError(err.Error())
	} else {
		metrics.Global.SetLastRun()
	}
	return result, err
}

func run(ctx context.Context, cfg *config.Config, d deps) (*RunResult, error) {
	result := &RunResult{Region: cfg.Region}

	mode, err := diff.ParseMode(cfg.StoreMode)
	if err != nil {
		return result, &RunError{Kind: FailureStore, Err: err}
	}

	sources, err := d.loadSources(cfg.SourcesConfigPath)
	if err != nil {
		metrics.Global.IncrementFetchFailures()
		return result, &RunError{Kind: FailureFetch, Err: err}
	}

	baseline, err := d.fetchBaseline(ctx, sources.RSSFeeds)
	if err != nil {
		metrics.Global.IncrementFetchFailures()
		kind := FailureFetch
		var parseErr *feed.ParseError
		if errors.As(err, &parseErr) {
			kind = FailureParse
		}

		// Best effort: a short failure summary so the channel is not
		// silently dark. Its own delivery error is swallowed.
		if sendErr := d.send(ctx, format.BuildFailurePayload(cfg.Region, err)); sendErr != nil {
			logger.Warn("failure summary not delivered", "error", sendErr)
		}
		return result, &RunError{Kind: kind, Err: err}
	}
	result.Fetched = len(baseline)
	metrics.Global.AddTrendsFetched(len(baseline))

	var enrichment []trend.Item
	if len(sources.APISources) > 0 {
		enrichment, err = d.fetchEnrichment(ctx, sources.APISources)
		if err != nil {
			logger.Warn("enrichment unavailable, continuing with baseline only", "error", err)
			enrichment = nil
		}
	}

	volOpts := volume.Options{AssumeCompactThousands: cfg.CompactVolumeInThousands}
	rows := trend.MergeEnrichment(baseline, enrichment, volOpts)

	var res diff.Result
	store, err := d.openStore(cfg)
	if err == nil {
		defer store.Close()
		var seen map[string]bool
		seen, err = store.Read(cfg.Region)
		if err == nil {
			res = diff.Compute(rows, seen)
		}
	}
	if err != nil {
		metrics.Global.IncrementStoreDegradations()
		if !cfg.DegradeOnStoreFailure {
			return result, &RunError{Kind: FailureStore, Err: err}
		}
		logger.Warn("seen store unavailable, running degraded", "error", err)
		res = diff.Degrade(rows)
		store = nil
	}
	result.Degraded = res.Degraded
	result.NewCount = len(res.NewKeys)
	metrics.Global.AddNewTrendsDetected(len(res.NewKeys))

	if !res.ShouldNotify && !cfg.AlwaysNotify {
		// Nothing new: stay silent, but still persist so replace mode keeps
		// tracking which trends dropped out.
		if store != nil {
			if writeErr := store.Write(cfg.Region, res.AllKeys, mode); writeErr != nil {
				logger.Error("failed to persist seen set", "error", writeErr)
			}
		}
		metrics.Global.IncrementRunsSkipped()
		logger.Info("no new trends, skipping notification", "region", cfg.Region, "trends", len(rows))
		result.Skipped = true
		return result, nil
	}

	loc, locErr := time.LoadLocation(cfg.Timezone)
	if locErr != nil {
		loc = time.UTC
	}

	meta := format.Meta{
		Region:     cfg.Region,
		Now:        d.now(),
		Location:   loc,
		Layout:     format.Layout(cfg.MessageLayout),
		Sort:       format.Sort(cfg.SortMode),
		Limit:      cfg.ResultLimit,
		VolumeOpts: volOpts,
	}
	if res.Degraded {
		meta.Note = "⚠️ seen store unavailable, new-trend detection disabled for this run"
	}

	payload := format.BuildPayload(res.Rows, meta)
	if err := d.send(ctx, payload); err != nil {
		metrics.Global.IncrementDeliveryFailures()
		// Deliberately not persisted: the next run re-announces what this
		// one failed to deliver.
		return result, &RunError{Kind: FailureDelivery, Err: err}
	}
	metrics.Global.IncrementSlackMessagesSent()
	result.Notified = true

	if store != nil && len(res.AllKeys) > 0 {
		if writeErr := store.Write(cfg.Region, res.AllKeys, mode); writeErr != nil {
			logger.Error("failed to persist seen set", "error", writeErr)
		}
	}

	logger.Info("run complete",
		"region", cfg.Region,
		"trends", result.Fetched,
		"new", result.NewCount,
		"degraded", result.Degraded)
	return result, nil
}

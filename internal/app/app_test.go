package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/deusflow/trends/internal/config"
	"github.com/deusflow/trends/internal/diff"
	"github.com/deusflow/trends/internal/feed"
	"github.com/deusflow/trends/internal/slack"
	"github.com/deusflow/trends/internal/trend"
)

type fakeStore struct {
	seen    map[string]bool
	readErr error
	written []string
	mode    diff.Mode
}

func (f *fakeStore) Read(string) (map[string]bool, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.seen, nil
}

func (f *fakeStore) Write(_ string, keys []string, mode diff.Mode) error {
	f.written = keys
	f.mode = mode
	return nil
}

func (f *fakeStore) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		SlackWebhookURL:       "https://hooks.slack.com/services/T/B/x",
		Region:                "DK",
		ResultLimit:           10,
		StoreBackend:          "file",
		StoreMode:             "replace",
		DegradeOnStoreFailure: true,
		Timezone:              "UTC",
		MessageLayout:         "blocks",
		SortMode:              "feed",
		RequestTimeout:        time.Second,
	}
}

func testDeps(store *fakeStore, sent *[]slack.Payload, sendErr error) deps {
	return deps{
		loadSources: func(string) (*feed.SourcesConfig, error) {
			return &feed.SourcesConfig{RSSFeeds: []string{"https://example.dk/rss"}}, nil
		},
		fetchBaseline: func(context.Context, []string) ([]trend.Item, error) {
			return []trend.Item{
				{Title: "Storm over Jylland", VolumeRaw: "50K+"},
				{Title: "Superliga"},
			}, nil
		},
		fetchEnrichment: func(context.Context, []feed.APISource) ([]trend.Item, error) {
			return nil, nil
		},
		openStore: func(*config.Config) (SeenStore, error) { return store, nil },
		send: func(_ context.Context, p slack.Payload) error {
			if sent != nil {
				*sent = append(*sent, p)
			}
			return sendErr
		},
		now: func() time.Time { return time.Date(2026, 8, 24, 8, 0, 0, 0, time.UTC) },
	}
}

func TestRunNotifiesAndPersists(t *testing.T) {
	store := &fakeStore{seen: map[string]bool{"superliga": true}}
	var sent []slack.Payload

	result, err := run(context.Background(), testConfig(), testDeps(store, &sent, nil))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !result.Notified || result.Skipped {
		t.Errorf("result = %+v, want notified", result)
	}
	if result.NewCount != 1 {
		t.Errorf("NewCount = %d", result.NewCount)
	}
	if len(sent) != 1 {
		t.Fatalf("sent %d payloads, want 1", len(sent))
	}
	if len(store.written) != 2 {
		t.Errorf("persisted keys = %v, want both current keys", store.written)
	}
	if store.mode != diff.Replace {
		t.Errorf("persist mode = %q", store.mode)
	}
}

func TestRunSkipsWhenNothingNew(t *testing.T) {
	store := &fakeStore{seen: map[string]bool{"storm over jylland": true, "superliga": true}}
	var sent []slack.Payload

	result, err := run(context.Background(), testConfig(), testDeps(store, &sent, nil))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !result.Skipped || result.Notified {
		t.Errorf("result = %+v, want skipped", result)
	}
	if len(sent) != 0 {
		t.Errorf("skipped run sent %d payloads", len(sent))
	}
	// Replace mode still needs the current keys recorded.
	if len(store.written) != 2 {
		t.Errorf("skipped run persisted %v", store.written)
	}
}

func TestRunAlwaysNotifyOverridesGate(t *testing.T) {
	store := &fakeStore{seen: map[string]bool{"storm over jylland": true, "superliga": true}}
	var sent []slack.Payload

	cfg := testConfig()
	cfg.AlwaysNotify = true

	result, err := run(context.Background(), cfg, testDeps(store, &sent, nil))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Notified || len(sent) != 1 {
		t.Errorf("result = %+v, sent = %d", result, len(sent))
	}
}

func TestRunDegradedStillSends(t *testing.T) {
	store := &fakeStore{readErr: fmt.Errorf("connection refused")}
	var sent []slack.Payload

	result, err := run(context.Background(), testConfig(), testDeps(store, &sent, nil))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if !result.Degraded || !result.Notified {
		t.Errorf("result = %+v, want degraded and notified", result)
	}
	if result.NewCount != 0 {
		t.Errorf("degraded run reported %d new", result.NewCount)
	}
	if len(sent) != 1 {
		t.Fatalf("sent %d payloads, want 1", len(sent))
	}
	if store.written != nil {
		t.Errorf("degraded run persisted %v", store.written)
	}
}

func TestRunStoreFailureWithoutDegradeAborts(t *testing.T) {
	store := &fakeStore{readErr: fmt.Errorf("connection refused")}
	var sent []slack.Payload

	cfg := testConfig()
	cfg.DegradeOnStoreFailure = false

	_, err := run(context.Background(), cfg, testDeps(store, &sent, nil))

	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Kind != FailureStore {
		t.Fatalf("err = %v, want store failure", err)
	}
	if len(sent) != 0 {
		t.Errorf("aborted run sent %d payloads", len(sent))
	}
}

func TestRunDeliveryFailureDoesNotPersist(t *testing.T) {
	store := &fakeStore{seen: map[string]bool{}}
	var sent []slack.Payload

	d := testDeps(store, &sent, &slack.DeliveryError{Status: 500})

	_, err := run(context.Background(), testConfig(), d)

	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Kind != FailureDelivery {
		t.Fatalf("err = %v, want delivery failure", err)
	}
	if store.written != nil {
		t.Errorf("failed delivery persisted %v; next run could not re-announce", store.written)
	}
}

func TestRunFetchFailureSendsSummary(t *testing.T) {
	store := &fakeStore{}
	var sent []slack.Payload

	d := testDeps(store, &sent, nil)
	d.fetchBaseline = func(context.Context, []string) ([]trend.Item, error) {
		return nil, &feed.FetchError{Region: "DK", Attempts: 2, Err: fmt.Errorf("timeout")}
	}

	_, err := run(context.Background(), testConfig(), d)

	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Kind != FailureFetch {
		t.Fatalf("err = %v, want fetch failure", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected a failure summary, sent = %d", len(sent))
	}
}

func TestRunParseFailureClassified(t *testing.T) {
	store := &fakeStore{}
	var sent []slack.Payload

	d := testDeps(store, &sent, nil)
	d.fetchBaseline = func(context.Context, []string) ([]trend.Item, error) {
		return nil, &feed.FetchError{
			Region:   "DK",
			Attempts: 1,
			Err:      &feed.ParseError{Source: "https://example.dk/rss", Err: fmt.Errorf("bad xml")},
		}
	}

	_, err := run(context.Background(), testConfig(), d)

	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Kind != FailureParse {
		t.Fatalf("err = %v, want parse failure", err)
	}
}

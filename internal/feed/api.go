package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/deusflow/trends/internal/trend"
)

// fetchAPI downloads one JSON endpoint and decodes it with the decoder for
// its declared shape.
func (f *Fetcher) fetchAPI(ctx context.Context, url, shape string) ([]trend.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status from %s: %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}

	items, err := decodeItems(body, shape)
	if err != nil {
		return nil, &ParseError{Source: url, Err: err}
	}
	for i := range items {
		items[i].Source = url
	}
	return items, nil
}

// decodeItems dispatches on the source shape declared in sources.yaml. Each
// shape has its own typed decoder instead of one pile of optional-chaining.
func decodeItems(data []byte, shape string) ([]trend.Item, error) {
	data = stripSecurityPrefix(data)

	switch shape {
	case "realtime":
		return decodeRealtime(data)
	case "daily":
		return decodeDaily(data)
	case "", "flat":
		return decodeFlat(data)
	default:
		return nil, fmt.Errorf("unknown source shape %q", shape)
	}
}

// stripSecurityPrefix drops the `)]}'` anti-hijacking prefix Google APIs
// prepend to their JSON.
func stripSecurityPrefix(data []byte) []byte {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, ")]}'") {
		trimmed = strings.TrimPrefix(trimmed, ")]}'")
		trimmed = strings.TrimLeft(trimmed, ",\r\n ")
	}
	return []byte(trimmed)
}

// realtimePayload is the realtime-trends story shape.
type realtimePayload struct {
	StorySummaries struct {
		TrendingStories []struct {
			Title       string   `json:"title"`
			EntityNames []string `json:"entityNames"`
			Articles    []struct {
				ArticleTitle string `json:"articleTitle"`
				URL          string `json:"url"`
			} `json:"articles"`
		} `json:"trendingStories"`
	} `json:"storySummaries"`
}

func decodeRealtime(data []byte) ([]trend.Item, error) {
	var payload realtimePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	stories := payload.StorySummaries.TrendingStories
	items := make([]trend.Item, 0, len(stories))
	for _, story := range stories {
		if story.Title == "" {
			continue
		}
		item := trend.Item{
			Title:          story.Title,
			RelatedQueries: story.EntityNames,
		}
		for _, article := range story.Articles {
			if article.URL != "" {
				item.BreakdownLinks = append(item.BreakdownLinks, article.URL)
			}
		}
		if len(story.Articles) > 0 {
			item.Link = story.Articles[0].URL
		}
		items = append(items, item)
	}
	return items, nil
}

// dailyPayload is the daily-trends shape, where the title is itself an
// object and traffic arrives pre-formatted.
type dailyPayload struct {
	Default struct {
		TrendingSearchesDays []struct {
			TrendingSearches []struct {
				Title struct {
					Query string `json:"query"`
				} `json:"title"`
				FormattedTraffic string `json:"formattedTraffic"`
				RelatedQueries   []struct {
					Query string `json:"query"`
				} `json:"relatedQueries"`
				Articles []struct {
					URL string `json:"url"`
				} `json:"articles"`
			} `json:"trendingSearches"`
		} `json:"trendingSearchesDays"`
	} `json:"default"`
}

func decodeDaily(data []byte) ([]trend.Item, error) {
	var payload dailyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	var items []trend.Item
	for _, day := range payload.Default.TrendingSearchesDays {
		for _, search := range day.TrendingSearches {
			if search.Title.Query == "" {
				continue
			}
			item := trend.Item{Title: search.Title.Query}
			if search.FormattedTraffic != "" {
				item.VolumeRaw = search.FormattedTraffic
			}
			for _, rq := range search.RelatedQueries {
				if rq.Query != "" {
					item.RelatedQueries = append(item.RelatedQueries, rq.Query)
				}
			}
			for _, article := range search.Articles {
				if article.URL != "" {
					item.BreakdownLinks = append(item.BreakdownLinks, article.URL)
				}
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// Field priority for the generic flat shape. First present key wins; a miss
// falls back to the zero value.
var (
	flatListKeys    = []string{"items", "trends", "results"}
	flatTitleKeys   = []string{"title", "query", "name"}
	flatLinkKeys    = []string{"url", "link", "shareUrl"}
	flatVolumeKeys  = []string{"formattedTraffic", "traffic", "searchVolume", "volume"}
	flatStartedKeys = []string{"startedMinutesAgo", "activeMinutes"}
	flatRelatedKeys = []string{"relatedQueries", "related"}
)

// decodeFlat decodes the generic search-API shape: a top-level array, or an
// object whose item array sits under the first present of flatListKeys.
func decodeFlat(data []byte) ([]trend.Item, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	list, err := flatList(raw)
	if err != nil {
		return nil, err
	}

	items := make([]trend.Item, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		item := trend.Item{
			Title:             firstString(obj, flatTitleKeys),
			Link:              firstString(obj, flatLinkKeys),
			StartedMinutesAgo: int(firstNumber(obj, flatStartedKeys)),
		}
		if item.Title == "" {
			continue
		}
		if v, ok := firstValue(obj, flatVolumeKeys); ok {
			item.VolumeRaw = v
		}
		if v, ok := firstValue(obj, flatRelatedKeys); ok {
			item.RelatedQueries = stringList(v)
		}

		items = append(items, item)
	}
	return items, nil
}

func flatList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range flatListKeys {
			if list, ok := v[key].([]any); ok {
				return list, nil
			}
		}
		return nil, fmt.Errorf("no item list under any of %v", flatListKeys)
	default:
		return nil, fmt.Errorf("unexpected top-level %T", raw)
	}
}

// firstString probes keys in priority order. A title-style nested object
// ({"query": "..."}) counts as a string.
func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if q, ok := v["query"].(string); ok && q != "" {
				return q
			}
		}
	}
	return ""
}

func firstNumber(obj map[string]any, keys []string) float64 {
	for _, key := range keys {
		if n, ok := obj[key].(float64); ok {
			return n
		}
	}
	return 0
}

func firstValue(obj map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// stringList flattens a related-queries value: plain strings or
// {"query": "..."} objects, anything else dropped.
func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, entry := range list {
		switch e := entry.(type) {
		case string:
			if e != "" {
				out = append(out, e)
			}
		case map[string]any:
			if q, ok := e["query"].(string); ok && q != "" {
				out = append(out, q)
			}
		}
	}
	return out
}

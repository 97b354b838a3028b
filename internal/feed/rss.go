package feed

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/trends/internal/trend"
)

// fetchRSS downloads and maps one RSS trending feed. Google-style feeds
// carry their metrics in the "ht" extension namespace (approx_traffic,
// news_item entries); feeds without it fall back to scraping the anchor
// links out of the HTML description.
func (f *Fetcher) fetchRSS(ctx context.Context, url string) ([]trend.Item, error) {
	parsed, err := f.rssParser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, &ParseError{Source: url, Err: err}
	}

	items := make([]trend.Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		item := trend.Item{
			Title:  strings.TrimSpace(it.Title),
			Link:   it.Link,
			Source: url,
		}
		if item.Title == "" {
			continue
		}

		if it.PublishedParsed != nil {
			if age := f.now().Sub(*it.PublishedParsed); age > 0 {
				item.StartedMinutesAgo = int(age.Minutes())
			}
		}

		if ht, ok := it.Extensions["ht"]; ok {
			if vals := ht["approx_traffic"]; len(vals) > 0 && vals[0].Value != "" {
				item.VolumeRaw = vals[0].Value
			}
			for _, news := range ht["news_item"] {
				if urls := news.Children["news_item_url"]; len(urls) > 0 && urls[0].Value != "" {
					item.BreakdownLinks = append(item.BreakdownLinks, urls[0].Value)
				}
				if titles := news.Children["news_item_title"]; len(titles) > 0 && titles[0].Value != "" {
					item.RelatedQueries = append(item.RelatedQueries, strings.TrimSpace(titles[0].Value))
				}
			}
		}

		if len(item.BreakdownLinks) == 0 && it.Description != "" {
			texts, links := anchorsFromHTML(it.Description)
			item.RelatedQueries = append(item.RelatedQueries, texts...)
			item.BreakdownLinks = links
		}

		items = append(items, item)
	}

	return items, nil
}

// anchorsFromHTML pulls the anchor texts and hrefs out of an HTML
// description blob. Best-effort: unparseable HTML just yields nothing.
func anchorsFromHTML(html string) (texts, links []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil
	}

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			texts = append(texts, text)
		}
		if href, ok := sel.Attr("href"); ok && href != "" {
			links = append(links, href)
		}
	})
	return texts, links
}

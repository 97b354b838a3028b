package feed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourcesConfig is the YAML source list. Both lists are walked in order:
// the next candidate is tried only after the previous one failed or came
// back empty.
//
//	rss_feeds:
//	  - "https://trends.google.com/trending/rss?geo={geo}"
//	api_sources:
//	  - url: "https://..."
//	    shape: "realtime"
type SourcesConfig struct {
	RSSFeeds   []string    `yaml:"rss_feeds"`
	APISources []APISource `yaml:"api_sources"`
}

// APISource is one JSON endpoint plus the decoder shape to use for it.
type APISource struct {
	URL   string `yaml:"url"`
	Shape string `yaml:"shape"`
}

// LoadSources reads the source list from a YAML file.
func LoadSources(path string) (*SourcesConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode sources config: %w", err)
	}
	if len(cfg.RSSFeeds) == 0 {
		return nil, fmt.Errorf("sources config %s lists no rss_feeds", path)
	}
	return &cfg, nil
}

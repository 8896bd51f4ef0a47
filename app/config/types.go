package config

// Config represents the full sources.yaml document.
type Config struct {
	GlobalMinHot   float64             `yaml:"global_min_hot"`
	TTLDefaultDays int                 `yaml:"ttl_default_days"`
	Colors         map[string]int      `yaml:"colors"`
	FeedTypes      map[string]FeedType `yaml:"feed_types"`

	RSS        []Source            `yaml:"rss"`
	HTML       []Source            `yaml:"html"`
	Categories map[string]Category `yaml:"categories"`
}

// FeedType carries the per-type policy knobs. TTL and max age each accept
// two units; the more precise one wins when both are set. The similarity
// threshold is a pointer so an explicit 0 (merge everything above the
// global floor) is distinguishable from unset.
type FeedType struct {
	TTLMinutes          int    `yaml:"ttl_minutes"`
	TTLDays             int    `yaml:"ttl_days"`
	SimilarityThreshold *int   `yaml:"similarity_threshold"`
	MaxAgeHours         int    `yaml:"max_age_hours"`
	MaxAgeDays          int    `yaml:"max_age_days"`
	RefreshOnRepeat     bool   `yaml:"refresh_on_repeat"`
	Color               string `yaml:"color"`
}

// Source is a raw rss or html source entry.
type Source struct {
	Name     string   `yaml:"name"`
	URL      string   `yaml:"url"`
	Selector string   `yaml:"selector"`
	Type     string   `yaml:"type"`
	Tags     []string `yaml:"tags"`
	Color    string   `yaml:"color"`
	NeedsJS  bool     `yaml:"needs_js"`
}

// Category groups reddit subreddit listings under a named category.
// The category name doubles as the color lookup key.
type Category struct {
	Reddit []string `yaml:"reddit"`
	Type   string   `yaml:"type"`
	Tags   []string `yaml:"tags"`
}

package sources

import (
	"testing"
	"time"

	"github.com/lysyi3m/deal-comb/app/config"
)

func intp(v int) *int {
	return &v
}

func baseConfig() *config.Config {
	return &config.Config{
		GlobalMinHot:   70,
		TTLDefaultDays: 30,
		Colors: map[string]int{
			"default": 0x5865F2,
			"privacy": 0x2ECC71,
		},
		FeedTypes: map[string]config.FeedType{
			"rss":   {TTLMinutes: 360, SimilarityThreshold: intp(95), MaxAgeHours: 24},
			"deals": {TTLDays: 1, SimilarityThreshold: intp(90), MaxAgeDays: 30},
		},
	}
}

func TestResolveRSSSource(t *testing.T) {
	cfg := baseConfig()
	cfg.RSS = []config.Source{
		{Name: "Privacy Blog", URL: "https://example.com/feed.xml", Type: "rss", Tags: []string{"privacy"}},
	}

	registry, err := Resolve(cfg)
	if err != nil {
		t.Fatal(err)
	}

	src := registry.Get("Privacy Blog")
	if src == nil {
		t.Fatal("Expected source to be resolved")
	}
	if src.Kind != KindRSS {
		t.Errorf("Expected kind rss, got %s", src.Kind)
	}
	if src.Policy.TTL != 360*time.Minute {
		t.Errorf("Expected TTL 360m, got %v", src.Policy.TTL)
	}
	if src.Policy.SimilarityThreshold != 95 {
		t.Errorf("Expected threshold 95, got %d", src.Policy.SimilarityThreshold)
	}
	if src.Policy.MaxAge != 24*time.Hour {
		t.Errorf("Expected max age 24h, got %v", src.Policy.MaxAge)
	}
	if src.Bucket() != "rss" {
		t.Errorf("Expected bucket rss, got %s", src.Bucket())
	}
	if src.Policy.Color != 0x5865F2 {
		t.Errorf("Expected default color, got %#x", src.Policy.Color)
	}
}

func TestResolveUnknownType(t *testing.T) {
	cfg := baseConfig()
	cfg.RSS = []config.Source{
		{Name: "Some Podcast", URL: "https://example.com/feed.xml", Type: "podcast"},
	}

	_, err := Resolve(cfg)
	if err == nil {
		t.Fatal("Expected error for undeclared source type")
	}
	if !config.IsConfigError(err) {
		t.Errorf("Expected ConfigError, got %T", err)
	}
}

func TestResolveDuplicateName(t *testing.T) {
	cfg := baseConfig()
	cfg.RSS = []config.Source{
		{Name: "Dupe", URL: "https://a.example.com/feed.xml", Type: "rss"},
	}
	cfg.HTML = []config.Source{
		{Name: "Dupe", URL: "https://b.example.com/deals", Selector: ".deal", Type: "deals"},
	}

	_, err := Resolve(cfg)
	if err == nil {
		t.Fatal("Expected error for duplicate source name")
	}
}

func TestResolveHTMLRequiresSelector(t *testing.T) {
	cfg := baseConfig()
	cfg.HTML = []config.Source{
		{Name: "No Selector", URL: "https://example.com/deals", Type: "deals"},
	}

	_, err := Resolve(cfg)
	if err == nil {
		t.Fatal("Expected error for html source without selector")
	}
}

func TestResolveCategoryRequiresSubreddits(t *testing.T) {
	cfg := baseConfig()
	cfg.Categories = map[string]config.Category{
		"privacy": {Type: "deals"},
	}

	_, err := Resolve(cfg)
	if err == nil {
		t.Fatal("Expected error for category without subreddit list")
	}
}

func TestResolveCategoryColor(t *testing.T) {
	cfg := baseConfig()
	cfg.Categories = map[string]config.Category{
		"privacy": {Type: "deals", Reddit: []string{"VPNDeals"}},
	}

	registry, err := Resolve(cfg)
	if err != nil {
		t.Fatal(err)
	}

	src := registry.Get("privacy")
	if src == nil {
		t.Fatal("Expected category source to be resolved")
	}
	if src.Kind != KindReddit {
		t.Errorf("Expected kind reddit, got %s", src.Kind)
	}
	// Category name doubles as the color key
	if src.Policy.Color != 0x2ECC71 {
		t.Errorf("Expected privacy color, got %#x", src.Policy.Color)
	}
	if len(src.Subreddits) != 1 || src.Subreddits[0] != "VPNDeals" {
		t.Errorf("Expected subreddit list [VPNDeals], got %v", src.Subreddits)
	}
}

func TestResolvePolicyDefaults(t *testing.T) {
	cfg := baseConfig()
	cfg.FeedTypes["sparse"] = config.FeedType{}
	cfg.RSS = []config.Source{
		{Name: "Sparse", URL: "https://example.com/feed.xml", Type: "sparse"},
	}

	registry, err := Resolve(cfg)
	if err != nil {
		t.Fatal(err)
	}

	src := registry.Get("Sparse")
	if src.Policy.TTL != 30*24*time.Hour {
		t.Errorf("Expected ttl_default_days fallback, got %v", src.Policy.TTL)
	}
	if src.Policy.MaxAge != 30*24*time.Hour {
		t.Errorf("Expected ttl_default_days fallback for max age, got %v", src.Policy.MaxAge)
	}
	if src.Policy.SimilarityThreshold != 90 {
		t.Errorf("Expected default threshold 90, got %d", src.Policy.SimilarityThreshold)
	}
}

func TestResolveExplicitZeroThreshold(t *testing.T) {
	cfg := baseConfig()
	cfg.FeedTypes["loose"] = config.FeedType{TTLMinutes: 60, SimilarityThreshold: intp(0), MaxAgeHours: 24}
	cfg.RSS = []config.Source{
		{Name: "Loose Feed", URL: "https://example.com/feed.xml", Type: "loose"},
	}

	registry, err := Resolve(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// An explicit 0 is a deliberate policy, not an unset field
	if got := registry.Get("Loose Feed").Policy.SimilarityThreshold; got != 0 {
		t.Errorf("Expected threshold 0 to be honored, got %d", got)
	}
}

func TestResolveByKind(t *testing.T) {
	cfg := baseConfig()
	cfg.RSS = []config.Source{
		{Name: "Feed A", URL: "https://a.example.com/feed.xml", Type: "rss"},
		{Name: "Feed B", URL: "https://b.example.com/feed.xml", Type: "rss"},
	}
	cfg.HTML = []config.Source{
		{Name: "Deals", URL: "https://example.com/deals", Selector: ".deal", Type: "deals"},
	}

	registry, err := Resolve(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if got := len(registry.ByKind(KindRSS)); got != 2 {
		t.Errorf("Expected 2 rss sources, got %d", got)
	}
	if got := len(registry.ByKind(KindHTML)); got != 1 {
		t.Errorf("Expected 1 html source, got %d", got)
	}
	if registry.Count() != 3 {
		t.Errorf("Expected 3 sources total, got %d", registry.Count())
	}
}

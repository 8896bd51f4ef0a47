package sources

import (
	"log/slog"
	"sort"
	"time"

	"github.com/lysyi3m/deal-comb/app/config"
)

// Similarity threshold applied when a feed type leaves it unset.
const defaultSimilarityThreshold = 90

// Registry holds every resolved source together with the document-level
// knobs the dedup engine needs.
type Registry struct {
	GlobalMinHot float64

	sources []Source
	byName  map[string]*Source
}

// Resolve validates the raw configuration and normalizes every declared
// source into a Source with its effective Policy. It is a pure transform:
// no side effects beyond validation.
func Resolve(cfg *config.Config) (*Registry, error) {
	r := &Registry{
		GlobalMinHot: cfg.GlobalMinHot,
		byName:       make(map[string]*Source),
	}

	for _, raw := range cfg.RSS {
		src, err := resolveFeed(cfg, raw, KindRSS)
		if err != nil {
			return nil, err
		}
		if err := r.add(src); err != nil {
			return nil, err
		}
	}

	for _, raw := range cfg.HTML {
		src, err := resolveFeed(cfg, raw, KindHTML)
		if err != nil {
			return nil, err
		}
		if err := r.add(src); err != nil {
			return nil, err
		}
	}

	// Map iteration order is random; keep source order stable across runs
	catNames := make([]string, 0, len(cfg.Categories))
	for name := range cfg.Categories {
		catNames = append(catNames, name)
	}
	sort.Strings(catNames)

	for _, name := range catNames {
		src, err := resolveCategory(cfg, name, cfg.Categories[name])
		if err != nil {
			return nil, err
		}
		if err := r.add(src); err != nil {
			return nil, err
		}
	}

	// Index by name once the slice is final
	for i := range r.sources {
		r.byName[r.sources[i].Name] = &r.sources[i]
	}

	slog.Debug("Source registry resolved", "sources", len(r.sources), "global_min_hot", r.GlobalMinHot)

	return r, nil
}

func resolveFeed(cfg *config.Config, raw config.Source, kind Kind) (Source, error) {
	if raw.Name == "" {
		return Source{}, config.NewConfigError("%s source with empty name", kind)
	}
	if raw.URL == "" {
		return Source{}, config.NewConfigError("source %q: url is required", raw.Name)
	}
	if kind == KindHTML && raw.Selector == "" {
		return Source{}, config.NewConfigError("source %q: selector is required for html sources", raw.Name)
	}
	if raw.Type == "" {
		return Source{}, config.NewConfigError("source %q: type is required", raw.Name)
	}

	ft, err := cfg.FeedTypeFor(raw.Name, raw.Type)
	if err != nil {
		return Source{}, err
	}

	policy, err := resolvePolicy(cfg, raw.Name, raw.Type, ft, raw.Color)
	if err != nil {
		return Source{}, err
	}

	return Source{
		Name:     raw.Name,
		Kind:     kind,
		URL:      raw.URL,
		Selector: raw.Selector,
		Tags:     raw.Tags,
		NeedsJS:  raw.NeedsJS,
		Policy:   policy,
	}, nil
}

func resolveCategory(cfg *config.Config, name string, cat config.Category) (Source, error) {
	if name == "" {
		return Source{}, config.NewConfigError("category with empty name")
	}
	if len(cat.Reddit) == 0 {
		return Source{}, config.NewConfigError("category %q: a subreddit list is required", name)
	}
	if cat.Type == "" {
		return Source{}, config.NewConfigError("category %q: type is required", name)
	}

	ft, err := cfg.FeedTypeFor(name, cat.Type)
	if err != nil {
		return Source{}, err
	}

	// The category name is the color key for reddit sources.
	policy, err := resolvePolicy(cfg, name, cat.Type, ft, name)
	if err != nil {
		return Source{}, err
	}

	return Source{
		Name:       name,
		Kind:       KindReddit,
		Subreddits: cat.Reddit,
		Tags:       cat.Tags,
		Policy:     policy,
	}, nil
}

func resolvePolicy(cfg *config.Config, sourceName, typeName string, ft config.FeedType, colorName string) (Policy, error) {
	ttl := ft.TTL()
	if ttl == 0 {
		ttl = time.Duration(cfg.TTLDefaultDays) * 24 * time.Hour
	}
	maxAge := ft.MaxAge()
	if maxAge == 0 {
		maxAge = time.Duration(cfg.TTLDefaultDays) * 24 * time.Hour
	}
	if ttl <= 0 {
		return Policy{}, config.NewConfigError("source %q: TTL must be a positive duration", sourceName)
	}
	if maxAge <= 0 {
		return Policy{}, config.NewConfigError("source %q: max age must be a positive duration", sourceName)
	}

	threshold := defaultSimilarityThreshold
	if ft.SimilarityThreshold != nil {
		threshold = *ft.SimilarityThreshold
	}

	if colorName == "" {
		colorName = ft.Color
	}
	color, _ := cfg.ColorFor(colorName)

	return Policy{
		Type:                typeName,
		TTL:                 ttl,
		SimilarityThreshold: threshold,
		MaxAge:              maxAge,
		RefreshOnRepeat:     ft.RefreshOnRepeat,
		Color:               color,
	}, nil
}

func (r *Registry) add(src Source) error {
	for i := range r.sources {
		if r.sources[i].Name == src.Name {
			return config.NewConfigError("duplicate source name %q", src.Name)
		}
	}
	r.sources = append(r.sources, src)
	return nil
}

// All returns every resolved source.
func (r *Registry) All() []Source {
	return r.sources
}

// Get returns the source with the given name, or nil.
func (r *Registry) Get(name string) *Source {
	return r.byName[name]
}

// ByKind returns sources handled by the given adapter kind.
func (r *Registry) ByKind(kind Kind) []Source {
	var out []Source
	for _, s := range r.sources {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of resolved sources.
func (r *Registry) Count() int {
	return len(r.sources)
}

package cfg

import (
	"cmp"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Paths
	ConfigPath string `long:"config" env:"CONFIG_PATH" default:"./config/sources.yaml" description:"Path to the sources configuration file"`
	DBPath     string `long:"db-path" env:"DB_PATH" default:"./data/deals.sqlite" description:"Path to the SQLite database file"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for source processing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	FetchTimeout      int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"20" description:"Per-source fetch timeout in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Run modes
	DryRun bool   `long:"dry-run" description:"Run the full pipeline but do not post notifications"`
	Force  string `long:"force" choice:"rss" choice:"html" choice:"reddit" choice:"all" description:"Ignore schedule and force-check sources of the given kind"`
	Source string `long:"source" description:"Only process the source with the given name"`
	Once   bool   `long:"once" description:"Run a single scheduling pass and exit"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Deal Comb/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ConfigPath:        raw.ConfigPath,
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		FetchTimeout:      raw.FetchTimeout,
		APIAccessKey:      raw.APIAccessKey,
		DryRun:            raw.DryRun,
		Force:             raw.Force,
		Source:            raw.Source,
		Once:              raw.Once,
		Webhooks:          parseWebhooks(os.Getenv("DISCORD_WEBHOOKS")),
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// parseWebhooks splits the comma-separated DISCORD_WEBHOOKS value,
// dropping empty entries.
func parseWebhooks(raw string) []string {
	var webhooks []string
	for _, w := range strings.Split(raw, ",") {
		if w = strings.TrimSpace(w); w != "" {
			webhooks = append(webhooks, w)
		}
	}
	return webhooks
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

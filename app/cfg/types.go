package cfg

type Cfg struct {
	// Paths
	ConfigPath string
	DBPath     string

	// Application configuration
	Port              string
	WorkerCount       int
	SchedulerInterval int
	FetchTimeout      int
	APIAccessKey      string

	// Run modes
	DryRun bool
	Force  string
	Source string
	Once   bool

	// Notification delivery
	Webhooks []string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

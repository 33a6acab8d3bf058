package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "BLACKGLASS_CONFIG"
	listenAddrEnv = "BLACKGLASS_LISTEN_ADDR"
	reportsDirEnv = "BLACKGLASS_REPORTS_DIR"
	sqlitePathEnv = "BLACKGLASS_SQLITE_PATH"
	logLevelEnv   = "BLACKGLASS_LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig     `yaml:"logging"`
	HTTP      HTTPConfig        `yaml:"http"`
	Feeds     map[string]string `yaml:"feeds"`
	Alerts    map[string]string `yaml:"alerts"`
	Cache     CacheConfig       `yaml:"cache"`
	Fetch     FetchConfig       `yaml:"fetch"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Sink      SinkConfig        `yaml:"sink"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig describes the transport adapter listener.
type HTTPConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// CacheConfig controls the feed cache time-to-live.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttlSeconds"`
}

// TTL resolves the configured TTL to a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// FetchConfig bounds outbound feed requests.
type FetchConfig struct {
	TimeoutSeconds     int `yaml:"timeoutSeconds"`
	RequestsPerMinute  int `yaml:"requestsPerMinute"`
	MaxEntriesPerFeed  int `yaml:"maxEntriesPerFeed"`
	MaxParallelFetches int `yaml:"maxParallelFetches"`
}

// Timeout resolves the per-request fetch timeout.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// SchedulerConfig defines when the cache-warming job runs.
type SchedulerConfig struct {
	CronExpression string `yaml:"cronExpression"`
}

// SinkConfig selects where finished reports are persisted.
type SinkConfig struct {
	Kind       string `yaml:"kind"` // "filesystem" or "sqlite"
	ReportsDir string `yaml:"reportsDir"`
	SQLitePath string `yaml:"sqlitePath"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(listenAddrEnv); v != "" {
		c.HTTP.ListenAddr = v
	}
	if v := os.Getenv(reportsDirEnv); v != "" {
		c.Sink.ReportsDir = v
	}
	if v := os.Getenv(sqlitePathEnv); v != "" {
		c.Sink.SQLitePath = v
		c.Sink.Kind = "sqlite"
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.HTTP.ListenAddr != "" {
		base.HTTP = override.HTTP
	}
	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}
	if len(override.Alerts) > 0 {
		base.Alerts = override.Alerts
	}
	if override.Cache.TTLSeconds > 0 {
		base.Cache = override.Cache
	}
	if override.Fetch.TimeoutSeconds > 0 {
		base.Fetch.TimeoutSeconds = override.Fetch.TimeoutSeconds
	}
	if override.Fetch.RequestsPerMinute > 0 {
		base.Fetch.RequestsPerMinute = override.Fetch.RequestsPerMinute
	}
	if override.Fetch.MaxEntriesPerFeed > 0 {
		base.Fetch.MaxEntriesPerFeed = override.Fetch.MaxEntriesPerFeed
	}
	if override.Fetch.MaxParallelFetches > 0 {
		base.Fetch.MaxParallelFetches = override.Fetch.MaxParallelFetches
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler = override.Scheduler
	}
	if override.Sink.Kind != "" {
		base.Sink.Kind = override.Sink.Kind
	}
	if override.Sink.ReportsDir != "" {
		base.Sink.ReportsDir = override.Sink.ReportsDir
	}
	if override.Sink.SQLitePath != "" {
		base.Sink.SQLitePath = override.Sink.SQLitePath
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		HTTP:    HTTPConfig{ListenAddr: ":8000"},
		Feeds: map[string]string{
			"reuters":       "https://www.reuters.com/world/rss.xml",
			"aljazeera":     "https://www.aljazeera.com/xml/rss/all.xml",
			"foreignpolicy": "https://foreignpolicy.com/feed/",
			"stratfor":      "https://worldview.stratfor.com/rss.xml",
			"economist":     "https://www.economist.com/international/rss.xml",
			"bbc_world":     "http://feeds.bbci.co.uk/news/world/rss.xml",
			"cnn_world":     "http://rss.cnn.com/rss/edition_world.rss",
			"cfr":           "https://www.cfr.org/rss.xml",
			"war_on_rocks":  "https://warontherocks.com/feed/",
			"defense_one":   "https://www.defenseone.com/rss/",
			"jane_defense":  "https://www.janes.com/feeds/news",
		},
		Alerts:    map[string]string{},
		Cache:     CacheConfig{TTLSeconds: 3600},
		Fetch:     FetchConfig{TimeoutSeconds: 10, RequestsPerMinute: 100, MaxEntriesPerFeed: 20, MaxParallelFetches: 5},
		Scheduler: SchedulerConfig{CronExpression: "@every 30m"},
		Sink:      SinkConfig{Kind: "filesystem", ReportsDir: "reports"},
	}
}

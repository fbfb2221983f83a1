package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// ScheduleOff disables a scheduled job in serve mode.
const ScheduleOff = "off"

// Config holds all agent settings, populated from environment variables.
type Config struct {
	DataDir       string
	QueueFile     string
	RankingsFile  string
	ChangelogFile string
	LogFile       string
	LogLevel      string
	LogFormat     string

	StalenessThresholdDays int
	AddBatchSize           int
	RefreshBatchSize       int
	AlertCityLimit         int
	ReportLimit            int
	RecordCacheSize        int

	// Model configuration.
	GeminiAPIKey  string
	LLMModel      string
	LLMMaxTokens  int
	LLMWebSearch  bool
	LLMTimeout    time.Duration
	LLMRPS        float64
	LLMMaxRetries int

	// Event stream configuration.
	KafkaBrokers     []string
	KafkaEventsTopic string
	EventsEnabled    bool

	// Serve mode.
	HTTPAddr        string
	ShutdownTimeout time.Duration
	ScheduleFull    string
	ScheduleRefresh string
	ScheduleAlert   string
	QueueWatch      bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:       sharedcfg.EnvOrDefault("DATA_DIR", "./data/cities"),
		QueueFile:     sharedcfg.EnvOrDefault("QUEUE_FILE", "./data/city_queue.json"),
		RankingsFile:  sharedcfg.EnvOrDefault("RANKINGS_FILE", "./data/rankings.json"),
		ChangelogFile: sharedcfg.EnvOrDefault("CHANGELOG_FILE", "./logs/changelog.json"),
		LogFile:       envOrDefaultAllowEmpty("LOG_FILE", "./logs/agent.log"),
		LogLevel:      sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		LLMModel:         sharedcfg.EnvOrDefault("LLM_MODEL", "gemini-2.5-flash"),
		KafkaBrokers:     sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaEventsTopic: sharedcfg.EnvOrDefault("KAFKA_EVENTS_TOPIC", "city-safety-events"),
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout:  shutdownTimeout,
		ScheduleFull:     sharedcfg.EnvOrDefault("SCHEDULE_FULL", "0 2 * * 0"),
		ScheduleRefresh:  sharedcfg.EnvOrDefault("SCHEDULE_REFRESH", "0 3 * * *"),
		ScheduleAlert:    sharedcfg.EnvOrDefault("SCHEDULE_ALERT", "0 */6 * * *"),
	}

	ints := []struct {
		key      string
		def      int
		min, max int
		dst      *int
	}{
		{"STALENESS_THRESHOLD_DAYS", 30, 1, 3650, &cfg.StalenessThresholdDays},
		{"ADD_BATCH_SIZE", 5, 1, 1000, &cfg.AddBatchSize},
		{"REFRESH_BATCH_SIZE", 10, 1, 1000, &cfg.RefreshBatchSize},
		{"ALERT_CITY_LIMIT", 50, 1, 1000, &cfg.AlertCityLimit},
		{"REPORT_LIMIT", 20, 1, 10000, &cfg.ReportLimit},
		{"RECORD_CACHE_SIZE", 256, 1, 100000, &cfg.RecordCacheSize},
		{"LLM_MAX_TOKENS", 8192, 1, 1 << 20, &cfg.LLMMaxTokens},
		{"LLM_MAX_RETRIES", 2, 0, 10, &cfg.LLMMaxRetries},
	}
	for _, v := range ints {
		n, err := parseIntRange(v.key, v.def, v.min, v.max)
		if err != nil {
			return nil, err
		}
		*v.dst = n
	}

	if cfg.LLMWebSearch, err = parseBool("LLM_WEB_SEARCH", true); err != nil {
		return nil, err
	}
	if cfg.QueueWatch, err = parseBool("QUEUE_WATCH", true); err != nil {
		return nil, err
	}
	if cfg.EventsEnabled, err = parseBool("EVENTS_ENABLED", len(cfg.KafkaBrokers) > 0); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = parsePositiveDuration("LLM_TIMEOUT", "120s"); err != nil {
		return nil, err
	}
	if cfg.LLMRPS, err = parsePositiveFloat("LLM_RPS", 0.25); err != nil {
		return nil, err
	}

	if cfg.EventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.EventsEnabled && cfg.KafkaEventsTopic == "" {
		return nil, errors.New("KAFKA_EVENTS_TOPIC is required")
	}

	for key, spec := range map[string]string{
		"SCHEDULE_FULL":    cfg.ScheduleFull,
		"SCHEDULE_REFRESH": cfg.ScheduleRefresh,
		"SCHEDULE_ALERT":   cfg.ScheduleAlert,
	} {
		if spec == ScheduleOff {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return cfg, nil
}

// RequireLLM reports an error when the settings needed to call the model are missing.
func (c *Config) RequireLLM() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

// envOrDefaultAllowEmpty is EnvOrDefault except an explicitly empty value wins.
func envOrDefaultAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parseIntRange(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be %d-%d", key, lo, hi)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be true or false", key)
	}
	return b, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return f, nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Version is the application version, injected at build time via ldflags.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	OMDB      OMDBConfig      `mapstructure:"omdb"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Curation  CurationConfig  `mapstructure:"curation"`
	Related   RelatedConfig   `mapstructure:"related"`
	Suggest   SuggestConfig   `mapstructure:"suggest"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	Path       string `mapstructure:"path"`   // directory for log files, empty disables file logging
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// TMDBConfig holds TMDB catalogue API configuration.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	Language     string `mapstructure:"language"`
	Timeout      int    `mapstructure:"timeout"` // seconds
}

// OMDBConfig holds the secondary rating aggregator configuration.
type OMDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

// RetryConfig holds the retry policy for catalogue requests.
type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	BaseDelayMS int `mapstructure:"base_delay_ms"`
}

// CurationConfig overrides the built-in content policy. Empty lists keep
// the defaults.
type CurationConfig struct {
	BlockedTitles   []string `mapstructure:"blocked_titles"`
	BlockedKeywords []string `mapstructure:"blocked_keywords"`
	RequirePoster   bool     `mapstructure:"require_poster"`
	ExcludeAdult    bool     `mapstructure:"exclude_adult"`
}

// RelatedConfig holds the quality gates for the related-movie aggregator.
// The language allow-list is a relevance heuristic, not content policy,
// so it stays configurable.
type RelatedConfig struct {
	MinVoteCount     int      `mapstructure:"min_vote_count"`
	MinVoteAverage   float64  `mapstructure:"min_vote_average"`
	AllowedLanguages []string `mapstructure:"allowed_languages"`
	Limit            int      `mapstructure:"limit"`
}

// SuggestConfig holds suggestion engine tuning.
type SuggestConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
	MaxItems   int `mapstructure:"max_items"`
}

// SchedulerConfig holds background task configuration.
type SchedulerConfig struct {
	SectionWarmCron string `mapstructure:"section_warm_cron"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.cinebase")
	}

	v.SetEnvPrefix("CINEBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults + env vars are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8585)

	v.SetDefault("database.path", "./data/cinebase.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("tmdb.language", "en-US")
	v.SetDefault("tmdb.timeout", 15)

	v.SetDefault("omdb.api_key", "")
	v.SetDefault("omdb.base_url", "https://www.omdbapi.com/")
	v.SetDefault("omdb.timeout", 10)

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.base_delay_ms", 1000)

	v.SetDefault("curation.require_poster", true)
	v.SetDefault("curation.exclude_adult", true)

	v.SetDefault("related.min_vote_count", 50)
	v.SetDefault("related.min_vote_average", 5.5)
	v.SetDefault("related.allowed_languages", []string{"en", "ja"})
	v.SetDefault("related.limit", 12)

	v.SetDefault("suggest.debounce_ms", 300)
	v.SetDefault("suggest.max_items", 7)

	v.SetDefault("scheduler.section_warm_cron", "*/30 * * * *")
}

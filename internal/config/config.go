package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/sightings-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	InputPath  string
	InputSheet string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	PublishMaxAttempts int
	TopN               int

	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	ExportXLSX string
	ExportCSV  string

	RulesFile string
	Rules     domain.Rules
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	maxAttempts, err := parsePositiveInt("PUBLISH_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}
	topN, err := parsePositiveInt("TOP_N", 50)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		InputPath:  sharedcfg.EnvOrDefault("INPUT_PATH", "nuforc_reports.csv"),
		InputSheet: os.Getenv("INPUT_SHEET"),

		HTTPAddr:        envOrDefaultAllowEmpty("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BatchSize:          batchSize,
		PublishMaxAttempts: maxAttempts,
		TopN:               topN,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "cleaned-sightings"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		ExportXLSX: os.Getenv("EXPORT_XLSX"),
		ExportCSV:  os.Getenv("EXPORT_CSV"),

		RulesFile: os.Getenv("RULES_FILE"),
		Rules:     domain.DefaultRules(),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	if cfg.RulesFile != "" {
		rules, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}

	return cfg, nil
}

// LoadRules reads cleaning rules from a TOML file. Keys left out of the file
// keep their defaults; unknown keys are an error.
func LoadRules(path string) (domain.Rules, error) {
	var rules domain.Rules
	meta, err := toml.DecodeFile(path, &rules)
	if err != nil {
		return domain.Rules{}, fmt.Errorf("invalid RULES_FILE: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return domain.Rules{}, fmt.Errorf("invalid RULES_FILE: unknown keys %s", strings.Join(keys, ", "))
	}
	return rules.WithDefaults(), nil
}

// envOrDefaultAllowEmpty distinguishes an unset variable from one set to "".
func envOrDefaultAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/djenbridge/internal/engine/compactor"
)

// Version is the djenbridge release.
const Version = "0.3.0"

// Config holds all djenbridge configuration.
type Config struct {
	LogLevel        string          `yaml:"log_level"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	Connector       ConnectorConfig `yaml:"connector"`
	Engine          EngineConfig    `yaml:"engine"`
	Cache           CacheConfig     `yaml:"cache"`
	Breaker         BreakerConfig   `yaml:"breaker"`
	Admission       AdmissionConfig `yaml:"admission"`
	Adapter         AdapterConfig   `yaml:"adapter"`
	Server          ServerConfig    `yaml:"server"`
	Output          OutputConfig    `yaml:"output"`
}

// ConnectorConfig holds upstream connection settings.
type ConnectorConfig struct {
	Provider    string            `yaml:"provider"` // "djen" or "static"
	APIKey      string            `yaml:"api_key"`
	Endpoint    string            `yaml:"endpoint"`
	Timeout     time.Duration     `yaml:"timeout"` // per attempt
	MaxRetries  int               `yaml:"max_retries"`
	BackoffBase time.Duration     `yaml:"backoff_base"`
	Extra       map[string]string `yaml:"extra"`
}

// EngineConfig holds normalization and classification settings.
type EngineConfig struct {
	RulesPath string `yaml:"rules_path"` // empty uses the embedded table
	Verbosity string `yaml:"verbosity"`  // "minimal", "standard", "full"
}

// CacheConfig holds TTL policy.
type CacheConfig struct {
	FreshTTL     time.Duration `yaml:"fresh_ttl"`
	HistoricTTL  time.Duration `yaml:"historic_ttl"`
	StaleHorizon time.Duration `yaml:"stale_horizon"`
	Timezone     string        `yaml:"timezone"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	CoolDown         time.Duration `yaml:"cool_down"`
}

// AdmissionConfig holds per-client ceilings.
type AdmissionConfig struct {
	PerMinute int           `yaml:"per_minute"`
	PerHour   int           `yaml:"per_hour"`
	IdleTTL   time.Duration `yaml:"idle_ttl"`
}

// AdapterConfig holds facade settings.
type AdapterConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	MockFallback bool          `yaml:"mock_fallback"`
}

// ServerConfig holds HTTP transport settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// OutputConfig holds result destination settings for one-shot queries.
type OutputConfig struct {
	Format string `yaml:"format"` // "stdout", "file" or "both"
	Pretty bool   `yaml:"pretty"`
	File   string `yaml:"file"`
	// FileMaxMB rolls the file over past this size; 0 never does.
	FileMaxMB   int `yaml:"file_max_mb"`
	FileBackups int `yaml:"file_backups"`
	// WebhookURL, when set, also receives records in batched POSTs.
	WebhookURL string `yaml:"webhook_url"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		Connector: ConnectorConfig{
			Provider:    "djen",
			Endpoint:    "https://comunicaapi.pje.jus.br/api/v1/comunicacao",
			Timeout:     30 * time.Second,
			MaxRetries:  3,
			BackoffBase: time.Second,
		},
		Engine: EngineConfig{
			Verbosity: "standard",
		},
		Cache: CacheConfig{
			FreshTTL:     5 * time.Minute,
			HistoricTTL:  6 * time.Hour,
			StaleHorizon: 24 * time.Hour,
			Timezone:     "America/Sao_Paulo",
		},
		Breaker: BreakerConfig{
			FailureThreshold: 3,
			CoolDown:         60 * time.Second,
		},
		Admission: AdmissionConfig{
			PerMinute: 100,
			PerHour:   1000,
			IdleTTL:   2 * time.Hour,
		},
		Adapter: AdapterConfig{
			FetchTimeout: 2 * time.Minute,
			MockFallback: true,
		},
		Server: ServerConfig{
			Addr:         ":8000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 3 * time.Minute,
		},
		Output: OutputConfig{
			Format:      "stdout",
			FileBackups: 10,
		},
	}
}

// Load reads configuration from environment variables on top of Defaults.
func Load() Config {
	return fromEnv(Defaults())
}

// LoadFile reads a YAML file on top of Defaults, then applies environment
// variables, which take precedence.
func LoadFile(path string) (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return fromEnv(cfg), nil
}

func fromEnv(base Config) Config {
	cfg := base
	cfg.LogLevel = getenv("DJEN_LOG_LEVEL", base.LogLevel)
	cfg.ShutdownTimeout = getenvDuration("DJEN_SHUTDOWN_TIMEOUT", base.ShutdownTimeout)

	cfg.Connector.Provider = getenv("DJEN_CONNECTOR", base.Connector.Provider)
	cfg.Connector.APIKey = getenv("DJEN_API_KEY", base.Connector.APIKey)
	cfg.Connector.Endpoint = getenv("DJEN_ENDPOINT", base.Connector.Endpoint)
	cfg.Connector.Timeout = getenvDuration("DJEN_TIMEOUT", base.Connector.Timeout)
	cfg.Connector.MaxRetries = getenvInt("DJEN_MAX_RETRIES", base.Connector.MaxRetries)
	cfg.Connector.BackoffBase = getenvDuration("DJEN_BACKOFF", base.Connector.BackoffBase)
	cfg.Connector.Extra = loadConnectorExtra(base.Connector.Extra)

	cfg.Engine.RulesPath = getenv("DJEN_RULES_PATH", base.Engine.RulesPath)
	cfg.Engine.Verbosity = getenv("DJEN_VERBOSITY", base.Engine.Verbosity)

	cfg.Cache.FreshTTL = getenvDuration("DJEN_CACHE_FRESH_TTL", base.Cache.FreshTTL)
	cfg.Cache.HistoricTTL = getenvDuration("DJEN_CACHE_HISTORIC_TTL", base.Cache.HistoricTTL)
	cfg.Cache.StaleHorizon = getenvDuration("DJEN_CACHE_STALE_HORIZON", base.Cache.StaleHorizon)
	cfg.Cache.Timezone = getenv("DJEN_TIMEZONE", base.Cache.Timezone)

	cfg.Breaker.FailureThreshold = getenvInt("DJEN_BREAKER_THRESHOLD", base.Breaker.FailureThreshold)
	cfg.Breaker.CoolDown = getenvDuration("DJEN_BREAKER_COOLDOWN", base.Breaker.CoolDown)

	cfg.Admission.PerMinute = getenvInt("DJEN_RATE_PER_MINUTE", base.Admission.PerMinute)
	cfg.Admission.PerHour = getenvInt("DJEN_RATE_PER_HOUR", base.Admission.PerHour)
	cfg.Admission.IdleTTL = getenvDuration("DJEN_RATE_IDLE_TTL", base.Admission.IdleTTL)

	cfg.Adapter.FetchTimeout = getenvDuration("DJEN_FETCH_TIMEOUT", base.Adapter.FetchTimeout)
	cfg.Adapter.MockFallback = getenvBool("DJEN_MOCK_FALLBACK", base.Adapter.MockFallback)

	cfg.Server.Addr = getenv("DJEN_ADDR", base.Server.Addr)
	cfg.Server.ReadTimeout = getenvDuration("DJEN_READ_TIMEOUT", base.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getenvDuration("DJEN_WRITE_TIMEOUT", base.Server.WriteTimeout)

	cfg.Output.Format = getenv("DJEN_OUTPUT", base.Output.Format)
	cfg.Output.Pretty = getenvBool("DJEN_OUTPUT_PRETTY", base.Output.Pretty)
	cfg.Output.File = getenv("DJEN_OUTPUT_FILE", base.Output.File)
	cfg.Output.FileMaxMB = getenvInt("DJEN_OUTPUT_MAX_MB", base.Output.FileMaxMB)
	cfg.Output.FileBackups = getenvInt("DJEN_OUTPUT_BACKUPS", base.Output.FileBackups)
	cfg.Output.WebhookURL = getenv("DJEN_WEBHOOK_URL", base.Output.WebhookURL)
	return cfg
}

var (
	validProviders = map[string]bool{"djen": true, "static": true}
	validFormats   = map[string]bool{"stdout": true, "file": true, "both": true}
)

// Validate checks the configuration for errors. It collects every problem
// rather than stopping at the first.
func (c Config) Validate() error {
	var errs []error

	if !validProviders[c.Connector.Provider] {
		errs = append(errs, fmt.Errorf("unknown connector provider %q (DJEN_CONNECTOR)", c.Connector.Provider))
	}
	if c.Connector.Provider == "djen" && c.Connector.Endpoint == "" {
		errs = append(errs, errors.New("DJEN_ENDPOINT must not be empty"))
	}
	if c.Connector.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("connector timeout must be positive, got %v", c.Connector.Timeout))
	}
	if c.Connector.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("max retries must be >= 0, got %d", c.Connector.MaxRetries))
	}
	if c.Connector.BackoffBase <= 0 {
		errs = append(errs, fmt.Errorf("backoff must be positive, got %v", c.Connector.BackoffBase))
	}
	for _, key := range []string{"page_size", "max_pages"} {
		if v, ok := c.Connector.Extra[key]; ok {
			if n, err := strconv.Atoi(v); err != nil || n <= 0 {
				errs = append(errs, fmt.Errorf("connector %s must be a positive integer, got %q", key, v))
			}
		}
	}
	if v, ok := c.Connector.Extra["page_interval"]; ok {
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			errs = append(errs, fmt.Errorf("connector page_interval must be a non-negative duration, got %q", v))
		}
	}

	switch c.Engine.Verbosity {
	case "minimal", "standard", "full":
	default:
		errs = append(errs, fmt.Errorf("verbosity must be minimal, standard, or full, got %q", c.Engine.Verbosity))
	}
	if c.Engine.RulesPath != "" {
		if _, err := os.Stat(c.Engine.RulesPath); err != nil {
			errs = append(errs, fmt.Errorf("rules file: %w", err))
		}
	}

	if c.Cache.FreshTTL <= 0 || c.Cache.HistoricTTL <= 0 || c.Cache.StaleHorizon < 0 {
		errs = append(errs, errors.New("cache TTLs must be positive and the stale horizon non-negative"))
	}
	if _, err := time.LoadLocation(c.Cache.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("cache timezone: %w", err))
	}

	if c.Breaker.FailureThreshold < 1 {
		errs = append(errs, fmt.Errorf("breaker failure threshold must be >= 1, got %d", c.Breaker.FailureThreshold))
	}
	if c.Breaker.CoolDown <= 0 {
		errs = append(errs, fmt.Errorf("breaker cool-down must be positive, got %v", c.Breaker.CoolDown))
	}

	if c.Admission.PerMinute < 0 || c.Admission.PerHour < 0 {
		errs = append(errs, errors.New("rate ceilings must be >= 0 (0 disables)"))
	}
	if c.Adapter.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %v", c.Adapter.FetchTimeout))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %v", c.ShutdownTimeout))
	}

	if !validFormats[c.Output.Format] {
		errs = append(errs, fmt.Errorf("output must be stdout, file, or both, got %q", c.Output.Format))
	} else if c.Output.Format != "stdout" && c.Output.File == "" {
		errs = append(errs, errors.New("DJEN_OUTPUT_FILE is required when output includes a file"))
	}
	if c.Output.FileMaxMB < 0 || c.Output.FileBackups < 0 {
		errs = append(errs, fmt.Errorf("output file size and backups must be >= 0, got %d MB and %d", c.Output.FileMaxMB, c.Output.FileBackups))
	}
	if c.Output.WebhookURL != "" {
		if u, err := url.Parse(c.Output.WebhookURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("DJEN_WEBHOOK_URL must be an http(s) URL, got %q", c.Output.WebhookURL))
		}
	}

	return errors.Join(errs...)
}

// ParsedVerbosity returns the compactor verbosity level.
func (c EngineConfig) ParsedVerbosity() compactor.Verbosity {
	return compactor.ParseVerbosity(c.Verbosity)
}

// Location resolves the cache timezone, defaulting to UTC-3 when unknown.
func (c CacheConfig) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("BRT", -3*60*60)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadConnectorExtra reads provider-specific env vars into a copy of base.
func loadConnectorExtra(base map[string]string) map[string]string {
	vars := []struct {
		envVar   string
		extraKey string
	}{
		{"DJEN_PAGE_SIZE", "page_size"},
		{"DJEN_MAX_PAGES", "max_pages"},
		{"DJEN_PAGE_INTERVAL", "page_interval"},
	}

	var m map[string]string
	if len(base) > 0 {
		m = make(map[string]string, len(base))
		for k, v := range base {
			m[k] = v
		}
	}
	for _, v := range vars {
		if val := os.Getenv(v.envVar); val != "" {
			if m == nil {
				m = make(map[string]string)
			}
			m[v.extraKey] = val
		}
	}
	return m
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

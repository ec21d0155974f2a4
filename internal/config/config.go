package config

import "time"

// Default configuration values.
const (
	defaultServiceName      = "reviewscope"
	defaultServiceVersion   = "1.0.0"
	defaultServicePort      = 8085
	defaultAIBaseURL        = "https://ai.gateway.lovable.dev/v1"
	defaultAIModel          = "google/gemini-3-pro-preview"
	defaultAITimeoutSec     = 120
	defaultAIRequestsPerSec = 2
	defaultQuota            = 20
	defaultWindow           = time.Hour
	defaultSweepInterval    = 10 * time.Minute
	defaultLogLevel         = "info"
)

// Config holds all configuration for the reviewscope service.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"REVIEWSCOPE_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"        yaml:"debug"`
}

// AIConfig holds upstream reasoning service configuration. The API key is
// environment-only so it never lands in a config file.
type AIConfig struct {
	BaseURL        string        `env:"REVIEWSCOPE_AI_BASE_URL" yaml:"base_url"`
	Model          string        `env:"REVIEWSCOPE_AI_MODEL"    yaml:"model"`
	APIKey         string        `env:"REVIEWSCOPE_AI_API_KEY"  yaml:"-"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestsPerSec int           `yaml:"requests_per_sec"`
}

// RateLimitConfig holds inbound admission limiter settings.
type RateLimitConfig struct {
	Quota         int           `yaml:"quota"`
	Window        time.Duration `yaml:"window"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DatabaseConfig holds the optional batch store configuration. An empty
// DSN runs the service stateless.
type DatabaseConfig struct {
	DSN string `env:"REVIEWSCOPE_DATABASE_DSN" yaml:"dsn"`
}

// LoggingConfig holds logging configuration. Output is always JSON.
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return loadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setAIDefaults(&cfg.AI)
	setRateLimitDefaults(&cfg.RateLimit)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setAIDefaults(a *AIConfig) {
	if a.BaseURL == "" {
		a.BaseURL = defaultAIBaseURL
	}
	if a.Model == "" {
		a.Model = defaultAIModel
	}
	if a.Timeout == 0 {
		a.Timeout = defaultAITimeoutSec * time.Second
	}
	if a.RequestsPerSec == 0 {
		a.RequestsPerSec = defaultAIRequestsPerSec
	}
}

func setRateLimitDefaults(r *RateLimitConfig) {
	if r.Quota == 0 {
		r.Quota = defaultQuota
	}
	if r.Window == 0 {
		r.Window = defaultWindow
	}
	if r.SweepInterval == 0 {
		r.SweepInterval = defaultSweepInterval
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
}

package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Environments []Environment `yaml:"environments"`
	Suites       []Suite       `yaml:"suites"`
	Runner       Runner        `yaml:"runner"`
	Browser      Browser       `yaml:"browser"`
	Metrics      Metrics       `yaml:"metrics"`
	Logging      Logging       `yaml:"logging"`
}

// Environment defines one backend deployment under test.
type Environment struct {
	Name        string            `yaml:"name"`
	APIBaseURL  string            `yaml:"api_base_url"`
	WebBaseURL  string            `yaml:"web_base_url,omitempty"`
	Timeout     time.Duration     `yaml:"timeout"`
	MaxRetries  int               `yaml:"max_retries"`
	HTTP2       bool              `yaml:"http2,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	Credentials Credentials       `yaml:"credentials,omitempty"`
}

// Credentials holds the login identity used for authenticated checks.
type Credentials struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	APIToken string `yaml:"api_token,omitempty"`
}

// Suite selects check groups to run against an environment.
type Suite struct {
	Name        string   `yaml:"name"`
	Environment string   `yaml:"environment"`
	Groups      []string `yaml:"groups"`
	Seed        int64    `yaml:"seed,omitempty"`
}

// Runner configures the check worker pool.
type Runner struct {
	PoolSize  int     `yaml:"pool_size"`
	QueueSize int     `yaml:"queue_size"`
	MaxRPS    float64 `yaml:"max_rps"`
}

// Browser configures the optional browser session.
type Browser struct {
	Enabled     bool          `yaml:"enabled"`
	Headless    bool          `yaml:"headless"`
	DebuggerURL string        `yaml:"debugger_url,omitempty"`
	NavTimeout  time.Duration `yaml:"nav_timeout"`
}

// Metrics configures Prometheus metrics.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Logging configures the structured logger.
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// KnownGroups lists every check group the harness ships.
var KnownGroups = []string{
	"members",
	"accounts",
	"transactions",
	"transfers",
	"statements",
	"alerts",
	"security",
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Runner: Runner{
			PoolSize:  8,
			QueueSize: 256,
			MaxRPS:    20,
		},
		Browser: Browser{
			Enabled:    false,
			Headless:   true,
			NavTimeout: 30 * time.Second,
		},
		Metrics: Metrics{
			Enabled: false,
			Address: ":9090",
			Path:    "/metrics",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

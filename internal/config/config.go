package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the explicit configuration object handed to the runner,
// catalog, and monitor at construction time. Credentials are loaded into
// it once; nothing mutates process-wide environment state afterwards.
type Config struct {
	DataDir      string   `mapstructure:"data_dir"`
	DBPath       string   `mapstructure:"db_path"`
	ProjectsDir  string   `mapstructure:"projects_dir"`
	WorkflowDirs []string `mapstructure:"workflow_dirs"`

	// BaseCommand is the wrapped orchestration tool's command line
	// prefix; every catalog invocation starts with it.
	BaseCommand    []string      `mapstructure:"base_command"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	CaptureLimit   int           `mapstructure:"capture_limit"`

	MaxCorrections        int      `mapstructure:"max_corrections"`
	Indicators            []string `mapstructure:"indicators"`
	DetectorScript        string   `mapstructure:"detector_script"`
	ProbeMemory           bool     `mapstructure:"probe_memory"`
	MaxConcurrentSessions int      `mapstructure:"max_concurrent_sessions"`

	OpenRouterToken string `mapstructure:"openrouter_token"`
	OpenRouterModel string `mapstructure:"openrouter_model"`

	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load reads .env (if present), then the optional config file, then
// environment variables prefixed FLOWDECK_. Defaults cover everything
// else.
func Load() (*Config, error) {
	// Tokens such as OPENROUTER_TOKEN traditionally live in a .env next
	// to the project; load it into the process env so viper sees it.
	godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dataDir := filepath.Join(homeDir, ".flowdeck")

	v := viper.New()
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("projects_dir", filepath.Join(dataDir, "projects"))
	v.SetDefault("workflow_dirs", []string{".flowdeck/workflows", filepath.Join(dataDir, "workflows")})
	v.SetDefault("base_command", []string{"npx", "claude-flow@alpha"})
	v.SetDefault("default_timeout", "10m")
	v.SetDefault("capture_limit", 1<<20)
	v.SetDefault("max_corrections", 3)
	v.SetDefault("indicators", []string{"error"})
	v.SetDefault("probe_memory", false)
	v.SetDefault("max_concurrent_sessions", 4)
	v.SetDefault("openrouter_model", "qwen/qwen3-coder:free")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(dataDir))
	v.AddConfigPath(".flowdeck")

	v.SetEnvPrefix("flowdeck")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file is fine; defaults and env cover it.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "flowdeck.db")
	}
	if cfg.OpenRouterToken == "" {
		cfg.OpenRouterToken = os.Getenv("OPENROUTER_TOKEN")
	}
	if model := os.Getenv("OPENROUTER_MODEL"); model != "" {
		cfg.OpenRouterModel = model
	}

	return &cfg, nil
}

// EnsureDirs creates the data layout.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.ProjectsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// RunnerEnv is the credential overlay merged into every invocation's
// environment, replacing the original's process-wide token mutation.
func (c *Config) RunnerEnv() map[string]string {
	env := make(map[string]string)
	if c.OpenRouterToken != "" {
		env["OPENROUTER_TOKEN"] = c.OpenRouterToken
	}
	return env
}

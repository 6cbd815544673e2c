package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the typed bootstrap configuration. It is registered in the
// container as the "config" service.
type Config struct {
	App       AppConfig
	Container ContainerConfig
	Log       LogConfig
	Storage   StorageConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
	Key   string
}

// ContainerConfig points at the declarative service and binding files and
// tunes the injectable factory.
type ContainerConfig struct {
	ServicesFile   string
	BindingsFile   string
	StrictAutowire bool
	AwareSkip      []string
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

type StorageConfig struct {
	// DataDir roots the file manager. The data cache persists under it.
	DataDir string
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GoContainer"),
			Env:   env("APP_ENV", "local"),
			Debug: envBool("APP_DEBUG", true),
			Port:  env("APP_PORT", "8000"),
			Key:   env("APP_KEY", ""),
		},
		Container: ContainerConfig{
			ServicesFile:   env("CONTAINER_SERVICES_FILE", "config/services.yaml"),
			BindingsFile:   env("CONTAINER_BINDINGS_FILE", "config/bindings.yaml"),
			StrictAutowire: envBool("CONTAINER_STRICT_AUTOWIRE", false),
			AwareSkip:      GetList("CONTAINER_AWARE_SKIP", nil),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "console"),
		},
		Storage: StorageConfig{
			DataDir: env("STORAGE_DATA_DIR", "data"),
		},
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// GetList returns a comma-separated env value with blanks dropped.
func GetList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
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

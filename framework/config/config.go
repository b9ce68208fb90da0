package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the typed application configuration.
type Config struct {
	App AppConfig
	DB  DBConfig
	Log LogConfig
}

type AppConfig struct {
	Name    string
	Env     string // local | production | testing
	Debug   bool
	Port    string
	Version string
	Modules []string // feature modules to enable, in order
}

type DBConfig struct {
	Path string // SQLite file, or ":memory:"
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

// Load reads the env files (default ".env", missing files are ignored) and
// builds a Config from the environment. Variables already set in the process
// environment win over file values.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	return &Config{
		App: AppConfig{
			Name:    env("APP_NAME", "todos"),
			Env:     env("APP_ENV", "local"),
			Debug:   envBool("APP_DEBUG", false),
			Port:    env("APP_PORT", "3000"),
			Version: env("APP_VERSION", "0.1.0"),
			Modules: envList("APP_MODULES", []string{"version", "todos"}),
		},
		DB: DBConfig{
			Path: env("DB_PATH", "database.sqlite"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "console"),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// GetList returns a comma separated env value with blanks dropped.
func GetList(key string, defaultVal []string) []string {
	return envList(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

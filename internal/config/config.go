// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	RateLimit       int           `yaml:"rate_limit"`
	RateWindow      time.Duration `yaml:"rate_window"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type PersistenceConfig struct {
	Type   string `yaml:"type"`   // "memory", "sqlite", "file", "redis" или "postgres"
	Path   string `yaml:"path"`   // sqlite и file; пусто - каталог данных пользователя
	URL    string `yaml:"url"`    // postgres
	Addr   string `yaml:"addr"`   // redis
	Prefix string `yaml:"prefix"` // redis
}

type WorkerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

const (
	PersistenceMemory   = "memory"
	PersistenceSQLite   = "sqlite"
	PersistenceFile     = "file"
	PersistenceRedis    = "redis"
	PersistencePostgres = "postgres"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			RateLimit:       100,
			RateWindow:      time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Persistence: PersistenceConfig{
			Type:   PersistenceSQLite,
			Addr:   "localhost:6379",
			Prefix: "todo:",
		},
		Worker: WorkerConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
		},
	}
}

// Load читает yaml поверх значений по умолчанию; отсутствие файла не ошибка.
// Переменные окружения TODO_* имеют приоритет над файлом
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	default:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix("TODO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	keys := []string{
		"server.port", "server.host", "server.rate_limit", "server.rate_window", "server.shutdown_timeout",
		"logging.development",
		"persistence.type", "persistence.path", "persistence.url", "persistence.addr", "persistence.prefix",
		"worker.enabled", "worker.interval",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("привязка переменной окружения %s: %w", key, err)
		}
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setString("server.port", &cfg.Server.Port)
	setString("server.host", &cfg.Server.Host)
	setString("persistence.type", &cfg.Persistence.Type)
	setString("persistence.path", &cfg.Persistence.Path)
	setString("persistence.url", &cfg.Persistence.URL)
	setString("persistence.addr", &cfg.Persistence.Addr)
	setString("persistence.prefix", &cfg.Persistence.Prefix)

	if v.IsSet("server.rate_limit") {
		cfg.Server.RateLimit = v.GetInt("server.rate_limit")
	}
	if v.IsSet("server.rate_window") {
		cfg.Server.RateWindow = v.GetDuration("server.rate_window")
	}
	if v.IsSet("server.shutdown_timeout") {
		cfg.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	}
	if v.IsSet("logging.development") {
		cfg.Logging.Development = v.GetBool("logging.development")
	}
	if v.IsSet("worker.enabled") {
		cfg.Worker.Enabled = v.GetBool("worker.enabled")
	}
	if v.IsSet("worker.interval") {
		cfg.Worker.Interval = v.GetDuration("worker.interval")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

package config

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

const (
	TokenStorePostgres = "postgres"
	TokenStoreMemory   = "memory"
)

type AppConfig struct {
	App            AppInfo          `yaml:"app"`
	ServerAddr     string           `yaml:"serverAddr"`
	DatabaseConfig DatabaseConfig   `yaml:"databaseConfig"`
	RedisConfig    RedisConfig      `yaml:"redisConfig"`
	TokenStore     TokenStoreConfig `yaml:"tokenStore"`
	JWT            JWTConfig        `yaml:"jwt"`
	Cookies        CookieConfig     `yaml:"cookies"`
	Log            LogConfig        `yaml:"log"`
	OTEL           OTELConfig       `yaml:"otel"`
}

// LoadConfig читает yaml, проставляет значения по умолчанию и валидирует обязательные поля.
// Ошибка валидации имеет тип *ConfigurationError, сервис с ней стартовать не должен.
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфигурацию: %w", err)
	}

	return ParseConfig(file)
}

func ParseConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("не удалось разобрать конфигурацию: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.App.Name == "" {
		cfg.App.Name = "magic-villa-api"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "dev"
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8080"
	}
	if cfg.TokenStore.Driver == "" {
		cfg.TokenStore.Driver = TokenStorePostgres
	}
	if cfg.DatabaseConfig.QueryTimeout == 0 {
		cfg.DatabaseConfig.QueryTimeout = 2 * time.Second
	}
	if cfg.Cookies.SameSite == "" {
		cfg.Cookies.SameSite = "none"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = cfg.App.Name
	}
	if cfg.OTEL.SampleRatio == 0 {
		cfg.OTEL.SampleRatio = 1.0
	}
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	return NewDatabaseConnection("postgres", cfg.DSN, cfg.QueryTimeout)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}

package config

import "time"

type AppInfo struct {
	Name    string `yaml:"name"`
	Env     string `yaml:"env"`
	Version string `yaml:"version"`
}

type DatabaseConfig struct {
	DSN          string        `yaml:"dsn"`
	QueryTimeout time.Duration `yaml:"queryTimeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TokenStoreConfig : где хранятся refresh-токены, "postgres" или "memory"
type TokenStoreConfig struct {
	Driver string `yaml:"driver"`
}

type JWTConfig struct {
	Secret                    string  `yaml:"secret"`
	Issuer                    string  `yaml:"issuer"`
	Audience                  string  `yaml:"audience"`
	AccessTokenExpiryMinutes  float64 `yaml:"accessTokenExpiryMinutes"`
	RefreshTokenExpiryMinutes float64 `yaml:"refreshTokenExpiryMinutes"`
}

func (c *JWTConfig) AccessTokenTTL() time.Duration {
	return minutes(c.AccessTokenExpiryMinutes)
}

func (c *JWTConfig) RefreshTokenTTL() time.Duration {
	return minutes(c.RefreshTokenExpiryMinutes)
}

func minutes(value float64) time.Duration {
	return time.Duration(value * float64(time.Minute))
}

type CookieConfig struct {
	Secure   bool   `yaml:"secure"`
	SameSite string `yaml:"sameSite"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type OTELConfig struct {
	Enable       bool    `yaml:"enable"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	ServiceName  string  `yaml:"serviceName"`
	SampleRatio  float64 `yaml:"sampleRatio"`
}

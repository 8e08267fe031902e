// Package config carga la configuración del servidor desde YAML con
// overlay de variables de entorno (el env gana, igual que en deploys
// con secrets inyectados).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
		// debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// "postgres" | "memory"
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		MaxConns int    `yaml:"max_conns"`
	} `yaml:"storage"`

	Cache struct {
		// "" | "redis"
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	JWT struct {
		Issuer string `yaml:"issuer"`
		// Algoritmo de las claves nuevas: RS256..ES512
		Algorithm  string `yaml:"algorithm"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
		// Vida total de una clave de firma (firma + verificación)
		KeyTTL string `yaml:"key_ttl"`
		// TTL del cache in-process de la clave activa
		KeyCacheTTL string `yaml:"key_cache_ttl"`
	} `yaml:"jwt"`

	Secrets struct {
		// base64, 32 bytes decodificados: cifra privadas en reposo
		MasterKey string `yaml:"master_key"`
		// >= 32 bytes: HMAC de tokens opacos y codes
		TokenHashSecret string `yaml:"token_hash_secret"`
	} `yaml:"secrets"`
}

// Load lee el YAML (si path no está vacío) y aplica el overlay de env.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: leer %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parsear %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overlay(&c.App.Env, "APP_ENV")
	overlay(&c.App.LogLevel, "LOG_LEVEL")
	overlay(&c.Server.Addr, "SERVER_ADDR")
	overlay(&c.Storage.Driver, "STORAGE_DRIVER")
	overlay(&c.Storage.DSN, "STORAGE_DSN")
	overlayInt(&c.Storage.MaxConns, "STORAGE_MAX_CONNS")
	overlay(&c.Cache.Kind, "CACHE_KIND")
	overlay(&c.Cache.Redis.Addr, "REDIS_ADDR")
	overlayInt(&c.Cache.Redis.DB, "REDIS_DB")
	overlay(&c.Cache.Redis.Prefix, "REDIS_PREFIX")
	overlay(&c.JWT.Issuer, "JWT_ISSUER")
	overlay(&c.JWT.Algorithm, "JWT_ALGORITHM")
	overlay(&c.JWT.AccessTTL, "JWT_ACCESS_TTL")
	overlay(&c.JWT.RefreshTTL, "JWT_REFRESH_TTL")
	overlay(&c.JWT.KeyTTL, "JWT_KEY_TTL")
	overlay(&c.JWT.KeyCacheTTL, "JWT_KEY_CACHE_TTL")
	overlay(&c.Secrets.MasterKey, "SECRETBOX_MASTER_KEY")
	overlay(&c.Secrets.TokenHashSecret, "TOKEN_HASH_SECRET")
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "http://localhost:8080"
	}
	if c.JWT.Algorithm == "" {
		c.JWT.Algorithm = "ES256"
	}
}

// AccessTTL parsea el TTL de access tokens (default 15m).
func (c *Config) AccessTTL() time.Duration { return c.duration(c.JWT.AccessTTL, 15*time.Minute) }

// RefreshTTL parsea el TTL de refresh tokens (default 30 días).
func (c *Config) RefreshTTL() time.Duration {
	return c.duration(c.JWT.RefreshTTL, 30*24*time.Hour)
}

// KeyTTL parsea la vida de las claves de firma (default 1 año).
func (c *Config) KeyTTL() time.Duration { return c.duration(c.JWT.KeyTTL, 365*24*time.Hour) }

// KeyCacheTTL parsea el TTL del cache de clave activa (default 30s).
func (c *Config) KeyCacheTTL() time.Duration {
	return c.duration(c.JWT.KeyCacheTTL, 30*time.Second)
}

func (c *Config) duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func overlay(dst *string, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

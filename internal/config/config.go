package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix scopes environment overrides, e.g. AUTHFRONT_IDENTITY_BASE_URL.
const EnvPrefix = "AUTHFRONT_"

type Config struct {
	Identity   IdentityConfig   `koanf:"identity"`
	OAuth      OAuthConfig      `koanf:"oauth"`
	Session    SessionConfig    `koanf:"session"`
	Navigation NavigationConfig `koanf:"navigation"`
	Log        LogConfig        `koanf:"log"`
	Server     ServerConfig     `koanf:"server"`
	Redis      RedisConfig      `koanf:"redis"`
}

type IdentityConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type OAuthConfig struct {
	Provider       string        `koanf:"provider"` // google, keycloak
	ClientID       string        `koanf:"client_id"`
	ClientSecret   string        `koanf:"client_secret"`
	Issuer         string        `koanf:"issuer"`
	UserInfoURL    string        `koanf:"userinfo_url"`
	CallbackAddr   string        `koanf:"callback_addr"`
	Scopes         []string      `koanf:"scopes"`
	ConsentTimeout time.Duration `koanf:"consent_timeout"`
}

type SessionConfig struct {
	Backend   string `koanf:"backend"` // file, redis
	Path      string `koanf:"path"`
	KeyPrefix string `koanf:"key_prefix"`
}

type NavigationConfig struct {
	Home string `koanf:"home"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// ServerConfig configures the development identity service.
type ServerConfig struct {
	Port        string        `koanf:"port"`
	DatabaseDSN string        `koanf:"database_dsn"`
	JWTSecret   string        `koanf:"jwt_secret"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

func defaults() Config {
	return Config{
		Identity: IdentityConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 10 * time.Second,
		},
		OAuth: OAuthConfig{
			Provider:       "google",
			Issuer:         "https://accounts.google.com",
			UserInfoURL:    "https://www.googleapis.com/oauth2/v1/userinfo",
			CallbackAddr:   "127.0.0.1:0",
			Scopes:         []string{"openid", "profile", "email"},
			ConsentTimeout: 5 * time.Minute,
		},
		Session: SessionConfig{
			Backend: "file",
			Path:    "session.json",
		},
		Navigation: NavigationConfig{Home: "/home"},
		Log:        LogConfig{Level: "info"},
		Server: ServerConfig{
			Port:     "5000",
			TokenTTL: 24 * time.Hour,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
	}
}

// Load reads .env (if present), then the optional YAML file at path,
// then AUTHFRONT_* environment variables, each layer overriding the previous.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, fmt.Errorf("config: load %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	return cfg, nil
}

// envKey maps AUTHFRONT_IDENTITY_BASE_URL to identity.base_url: the first
// underscore separates the section, the rest belong to the field name.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	return section + "." + field
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Minio     MinioConfig     `yaml:"minio"`
	Generator GeneratorConfig `yaml:"generator"`
	Chatbot   ChatbotConfig   `yaml:"chatbot"`
	Auth      AuthConfig      `yaml:"auth"`
	Store     StoreConfig     `yaml:"store"`
	Users     []User          `yaml:"users"`
}

type ServerConfig struct {
	Port               int `yaml:"port"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

// GeneratorConfig points at the AI minutes-generation collaborator.
type GeneratorConfig struct {
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ChatbotConfig points at the community chatbot collaborator. The base URL
// can be overridden with the VECINUS_CHATBOT_URL environment variable.
type ChatbotConfig struct {
	BaseURL string `yaml:"base_url"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type StoreConfig struct {
	MaxActas int `yaml:"max_actas"`
}

type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
	Name         string `yaml:"name"`
	Community    string `yaml:"community"`
	Role         string `yaml:"role"` // presidente, vecino
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerMinute == 0 {
		cfg.Server.RateLimitPerMinute = 100
	}
	if cfg.Minio.ExpireDays == 0 {
		cfg.Minio.ExpireDays = 7
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Generator.TimeoutSeconds == 0 {
		cfg.Generator.TimeoutSeconds = 120
	}
	if cfg.Chatbot.BaseURL == "" {
		cfg.Chatbot.BaseURL = "http://localhost:8000"
	}
	if cfg.Store.MaxActas == 0 {
		cfg.Store.MaxActas = 100
	}

	// Environment override for the chatbot collaborator
	if envURL := os.Getenv("VECINUS_CHATBOT_URL"); envURL != "" {
		cfg.Chatbot.BaseURL = envURL
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}

// IsPresidente reports whether the user can generate and sign actas.
func (u *User) IsPresidente() bool {
	return u.Role == "presidente"
}

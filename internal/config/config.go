package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port     int    `yaml:"port"`
	GinMode  string `yaml:"gin_mode"`
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type VerificationFileConfig struct {
	TTL          string `yaml:"ttl"`
	Length       int    `yaml:"length"`
	MaxAttempts  int    `yaml:"max_attempts"`
	ResendWindow string `yaml:"resend_window"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type SessionFileConfig struct {
	AbandonThreshold string `yaml:"abandon_threshold"`
	CleanupSchedule  string `yaml:"cleanup_schedule"`
}

type ConfigFile struct {
	App          AppConfig              `yaml:"app"`
	Database     DatabaseConfig         `yaml:"database"`
	Redis        RedisConfig            `yaml:"redis"`
	Verification VerificationFileConfig `yaml:"verification"`
	Twilio       TwilioConfig           `yaml:"twilio"`
	Session      SessionFileConfig      `yaml:"session"`
}

type Config struct {
	Port                     string
	GinMode                  string
	LogLevel                 string
	DSN                      string
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	VerificationTTL          time.Duration
	VerificationLength       int
	VerificationMaxAttempts  int
	VerificationResendWindow time.Duration
	TwilioSID                string
	TwilioToken              string
	TwilioFrom               string
	AbandonThreshold         time.Duration
	CleanupSchedule          string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	configFile, err := loadConfigFile(env("CONFIG_PATH", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	verTTL, err := time.ParseDuration(configFile.Verification.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid verification TTL: %w", err)
	}

	resWnd, err := time.ParseDuration(configFile.Verification.ResendWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid verification resend window: %w", err)
	}

	abandon, err := time.ParseDuration(configFile.Session.AbandonThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid abandon threshold: %w", err)
	}

	cleanupSchedule := configFile.Session.CleanupSchedule
	if cleanupSchedule == "" {
		cleanupSchedule = "@every 1h"
	}

	return &Config{
		Port:                     fmt.Sprintf("%d", configFile.App.Port),
		GinMode:                  configFile.App.GinMode,
		LogLevel:                 configFile.App.LogLevel,
		DSN:                      env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:                env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:            env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:                  configFile.Redis.DB,
		VerificationTTL:          verTTL,
		VerificationLength:       configFile.Verification.Length,
		VerificationMaxAttempts:  configFile.Verification.MaxAttempts,
		VerificationResendWindow: resWnd,
		TwilioSID:                env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:              env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:               env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
		AbandonThreshold:         abandon,
		CleanupSchedule:          cleanupSchedule,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}

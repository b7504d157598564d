package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr string
	Env        string
	LogLevel   string

	// operator login; AuthDisabled skips it entirely (local use)
	AuthDisabled           bool
	OperatorUsername       string
	OperatorPasswordBcrypt string
	CookieHashKey          []byte
	CookieBlockKey         []byte

	RateLimitRPS   float64
	RateLimitBurst int

	// MergeBusy collapses overlapping busy periods before free time is derived.
	MergeBusy bool
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// FromEnv reads the configuration from the environment. A meetplan.yaml in
// the working directory or ./config may supply the same keys.
func FromEnv() (Config, error) {
	v := viper.New()
	v.SetConfigName("meetplan")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_DISABLED", false)
	v.SetDefault("OPERATOR_USERNAME", "admin")
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("MERGE_BUSY", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
	}

	cfg := Config{
		ListenAddr:             v.GetString("LISTEN_ADDR"),
		Env:                    strings.ToLower(v.GetString("ENV")),
		LogLevel:               v.GetString("LOG_LEVEL"),
		AuthDisabled:           v.GetBool("AUTH_DISABLED"),
		OperatorUsername:       strings.TrimSpace(v.GetString("OPERATOR_USERNAME")),
		OperatorPasswordBcrypt: strings.TrimSpace(v.GetString("OPERATOR_PASSWORD_BCRYPT")),
		RateLimitRPS:           v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:         v.GetInt("RATE_LIMIT_BURST"),
		MergeBusy:              v.GetBool("MERGE_BUSY"),
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst < 1 {
		return Config{}, fmt.Errorf("invalid RATE_LIMIT_RPS/RATE_LIMIT_BURST")
	}
	if cfg.AuthDisabled {
		return cfg, nil
	}

	if cfg.OperatorPasswordBcrypt == "" {
		return Config{}, fmt.Errorf("OPERATOR_PASSWORD_BCRYPT is required (see `meetplan hash-password`), or set AUTH_DISABLED=true")
	}
	hashKey := v.GetString("COOKIE_HASH_KEY")
	blockKey := v.GetString("COOKIE_BLOCK_KEY")
	if hashKey == "" || blockKey == "" {
		return Config{}, fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY are required (32 and 16/24/32 bytes base64, see `meetplan keys`)")
	}
	var err error
	cfg.CookieHashKey, err = decodeB64(hashKey)
	if err != nil {
		return Config{}, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
	}
	cfg.CookieBlockKey, err = decodeB64(blockKey)
	if err != nil {
		return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
	}
	switch len(cfg.CookieBlockKey) {
	case 16, 24, 32:
	default:
		return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", len(cfg.CookieBlockKey))
	}
	return cfg, nil
}

func decodeB64(s string) ([]byte, error) {
	b, err := os.ReadFile(s)
	if err == nil {
		// allow pointing to file path for k8s secret mounts
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

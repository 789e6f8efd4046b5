// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	BackendURL string `validate:"required,url"`
	ListenAddr string `validate:"required,hostname_port"`
	DBPath     string `validate:"required"`

	// SecretKeyHex is the raw ADMINPANEL_SECRET_KEY value. SecretKey holds the
	// decoded bytes, or nil when unset.
	SecretKeyHex string `validate:"omitempty,hexadecimal,len=64"`
	SecretKey    []byte `validate:"-"`

	EnvFile string `validate:"-"`
}

// HasSecretKey reports whether credentials will be encrypted at rest.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Variables already present in the process environment take precedence over
// the dotenv file named by ADMINPANEL_ENV_FILE (.env), which is optional.
// ADMINPANEL_BACKEND_URL is required. Optional variables with defaults:
// ADMINPANEL_LISTEN_ADDR (127.0.0.1:8080), ADMINPANEL_DB_PATH (adminpanel.db).
// ADMINPANEL_SECRET_KEY, when set, must be 64 hex characters.
func Load() (*Config, error) {
	envFile := ".env"
	if v, ok := os.LookupEnv("ADMINPANEL_ENV_FILE"); ok && v != "" {
		envFile = v
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := &Config{
		BackendURL:   strings.TrimRight(strings.TrimSpace(os.Getenv("ADMINPANEL_BACKEND_URL")), "/"),
		ListenAddr:   "127.0.0.1:8080",
		DBPath:       "adminpanel.db",
		SecretKeyHex: strings.TrimSpace(os.Getenv("ADMINPANEL_SECRET_KEY")),
		EnvFile:      envFile,
	}

	if v, ok := os.LookupEnv("ADMINPANEL_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("ADMINPANEL_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if cfg.SecretKeyHex != "" {
		key, err := hex.DecodeString(cfg.SecretKeyHex)
		if err != nil {
			return nil, fmt.Errorf("ADMINPANEL_SECRET_KEY is not valid hex: %w", err)
		}
		cfg.SecretKey = key
	}

	return cfg, nil
}

// envNames maps struct fields to the variable an operator sets, so
// validation errors name something actionable.
var envNames = map[string]string{
	"BackendURL":   "ADMINPANEL_BACKEND_URL",
	"ListenAddr":   "ADMINPANEL_LISTEN_ADDR",
	"DBPath":       "ADMINPANEL_DB_PATH",
	"SecretKeyHex": "ADMINPANEL_SECRET_KEY",
}

func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %q check", name, fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

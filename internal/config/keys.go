package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no Anthropic API key is configured.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// GetAPIKey resolves the Anthropic API key, preferring the environment
// over the config file. Config values may reference environment variables
// with ${VAR}; an unresolved reference counts as unset.
func GetAPIKey(cfg *Config) (string, error) {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}
	if cfg != nil {
		if key := expandKey(cfg.Anthropic.APIKey); key != "" {
			return key, nil
		}
	}
	return "", ErrNoAPIKey
}

// GetPlacesAPIKey resolves the Google Places key the same way. An empty
// result is not an error; venue search is simply disabled without it.
func GetPlacesAPIKey(cfg *Config) string {
	if key := os.Getenv("GOOGLE_PLACES_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return expandKey(cfg.Google.PlacesAPIKey)
	}
	return ""
}

// expandKey expands environment references in a configured secret and
// treats a reference that did not resolve as empty.
func expandKey(raw string) string {
	key := expandEnv(raw)
	if strings.HasPrefix(key, "${") {
		return ""
	}
	return key
}

// ValidateAPIKey checks the shape of an Anthropic key. It does not call
// the API; a well-formed key can still be revoked or wrong.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskAPIKey returns a masked form of a secret for display, keeping the
// prefix and last four characters of longer keys.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource says where a key was resolved from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource reports where GetAPIKey would find the Anthropic key.
func GetAPIKeySource(cfg *Config) KeySource {
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return KeySourceEnv
	}
	if cfg != nil && expandKey(cfg.Anthropic.APIKey) != "" {
		return KeySourceConfig
	}
	return KeySourceNone
}

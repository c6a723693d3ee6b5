package config

import "testing"

func TestGetAPIKeyPrefersEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env-key")

	cfg := &Config{}
	cfg.Anthropic.APIKey = "sk-ant-config-key"

	key, err := GetAPIKey(cfg)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if key != "sk-ant-env-key" {
		t.Errorf("key = %q, want the environment value", key)
	}
	if src := GetAPIKeySource(cfg); src != KeySourceEnv {
		t.Errorf("source = %q, want %q", src, KeySourceEnv)
	}
}

func TestGetAPIKeyFallsBackToConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := &Config{}
	cfg.Anthropic.APIKey = "sk-ant-config-key"

	key, err := GetAPIKey(cfg)
	if err != nil {
		t.Fatalf("GetAPIKey: %v", err)
	}
	if key != "sk-ant-config-key" {
		t.Errorf("key = %q", key)
	}
	if src := GetAPIKeySource(cfg); src != KeySourceConfig {
		t.Errorf("source = %q, want %q", src, KeySourceConfig)
	}
}

func TestGetAPIKeyMissing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := GetAPIKey(&Config{}); err != ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if src := GetAPIKeySource(&Config{}); src != KeySourceNone {
		t.Errorf("source = %q, want %q", src, KeySourceNone)
	}
}

func TestValidateAPIKey(t *testing.T) {
	cases := []struct {
		key     string
		wantErr bool
	}{
		{"", true},
		{"sk-ant-short", true},
		{"not-a-key-but-quite-long-anyway", true},
		{"sk-ant-REDACTED", false},
	}
	for _, tc := range cases {
		err := ValidateAPIKey(tc.key)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateAPIKey(%q) error = %v, wantErr %v", tc.key, err, tc.wantErr)
		}
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("empty key mask = %q", got)
	}
	if got := MaskAPIKey("sk-ant-short"); got != "***" {
		t.Errorf("short key mask = %q", got)
	}
	masked := MaskAPIKey("sk-ant-REDACTED")
	if masked != "sk-ant-...mnop" {
		t.Errorf("mask = %q", masked)
	}
}

func TestGetPlacesAPIKeyPrefersEnvironment(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "env-places-key")

	cfg := &Config{}
	cfg.Google.PlacesAPIKey = "config-places-key"

	if key := GetPlacesAPIKey(cfg); key != "env-places-key" {
		t.Errorf("key = %q, want the environment value", key)
	}
}

func TestGetPlacesAPIKeyMissingIsEmpty(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "")

	if key := GetPlacesAPIKey(&Config{}); key != "" {
		t.Errorf("key = %q, want empty", key)
	}
}

func TestKeysTreatUnresolvedReferenceAsUnset(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GOOGLE_PLACES_API_KEY", "")

	cfg := &Config{}
	cfg.Anthropic.APIKey = "${HUDDLE_UNSET_KEY_REF}"
	cfg.Google.PlacesAPIKey = "${HUDDLE_UNSET_KEY_REF}"

	if _, err := GetAPIKey(cfg); err != ErrNoAPIKey {
		t.Errorf("expected ErrNoAPIKey for unresolved reference, got %v", err)
	}
	if key := GetPlacesAPIKey(cfg); key != "" {
		t.Errorf("unresolved reference should be empty, got %q", key)
	}
}

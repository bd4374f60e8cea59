package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"publicBaseUrl": "http://localhost:8080",
		"googleOAuth": map[string]any{
			"clientId": "",
		},
		"session": map[string]any{
			"persistentTtl": "720h",
		},
		"secretKey": map[string]any{
			"purposeToken": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "PUBLICBASEURL", want: "publicBaseUrl"},
		{envKey: "GOOGLEOAUTH_CLIENTID", want: "googleOAuth.clientId"},
		{envKey: "SESSION_PERSISTENTTTL", want: "session.persistentTtl"},
		{envKey: "SECRETKEY_PURPOSETOKEN", want: "secretKey.purposeToken"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Auth.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.Auth.MaxFailedAttempts)
	}
	if cfg.TwoFactor.Digits != 6 || cfg.TwoFactor.Period != 30 {
		t.Errorf("TwoFactor defaults = %d digits / %ds, want 6 / 30s", cfg.TwoFactor.Digits, cfg.TwoFactor.Period)
	}
	if cfg.Session.TTL >= cfg.Session.PersistentTTL {
		t.Errorf("session TTL %v should be shorter than persistent TTL %v", cfg.Session.TTL, cfg.Session.PersistentTTL)
	}
	if cfg.Tokens.ConfirmTTL <= cfg.Tokens.ResetTTL {
		t.Errorf("confirm TTL %v should outlive reset TTL %v", cfg.Tokens.ConfirmTTL, cfg.Tokens.ResetTTL)
	}
}

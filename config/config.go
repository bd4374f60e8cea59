package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
	} `json:"http" yaml:"http"`

	// PublicBaseURL is the externally reachable origin, used to build
	// confirmation and password reset links.
	PublicBaseURL string `json:"publicBaseUrl" yaml:"publicBaseUrl"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Redis *RedisConfig `json:"redis" yaml:"redis"`

	SecretKey struct {
		// PurposeToken signs email confirmation and password reset tokens.
		PurposeToken string `json:"purposeToken" yaml:"purposeToken"`
	} `json:"secretKey" yaml:"secretKey"`

	GoogleOAuth *GoogleOAuthConfig `json:"googleOAuth" yaml:"googleOAuth"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	PasswordStrength *PasswordStrengthConfig `json:"passwordStrength" yaml:"passwordStrength"`

	Session *SessionConfig `json:"session" yaml:"session"`

	TwoFactor *TwoFactorConfig `json:"twoFactor" yaml:"twoFactor"`

	Tokens *TokensConfig `json:"tokens" yaml:"tokens"`
}

// RedisConfig defines the connection settings for the session and token stores.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type GoogleOAuthConfig struct {
	ClientID     string `json:"clientId" yaml:"clientId"`
	ClientSecret string `json:"clientSecret" yaml:"clientSecret"`
	RedirectURI  string `json:"redirectUri" yaml:"redirectUri"`
	Scopes       string `json:"scopes" yaml:"scopes"`
}

// AuthConfig defines authentication-related configuration.
type AuthConfig struct {
	BcryptCost int `json:"bcryptCost" yaml:"bcryptCost"`

	// MaxFailedAttempts is the number of consecutive password failures that
	// triggers a lockout. Zero falls back to the default.
	MaxFailedAttempts int `json:"maxFailedAttempts" yaml:"maxFailedAttempts"`

	// LockoutWindow bounds how long failures accumulate; a failure older than
	// the window restarts the counter.
	LockoutWindow time.Duration `json:"lockoutWindow" yaml:"lockoutWindow"`

	// LockoutDuration is how long an identity stays locked once the threshold
	// is crossed.
	LockoutDuration time.Duration `json:"lockoutDuration" yaml:"lockoutDuration"`

	// RequireConfirmedEmail rejects password logins from identities whose
	// email has not been confirmed yet.
	RequireConfirmedEmail bool `json:"requireConfirmedEmail" yaml:"requireConfirmedEmail"`
}

// PasswordStrengthConfig defines password strength requirements.
type PasswordStrengthConfig struct {
	MinLength        int  `json:"minLength" yaml:"minLength"`
	RequireUppercase bool `json:"requireUppercase" yaml:"requireUppercase"`
	RequireLowercase bool `json:"requireLowercase" yaml:"requireLowercase"`
	RequireNumbers   bool `json:"requireNumbers" yaml:"requireNumbers"`
	RequireSpecial   bool `json:"requireSpecial" yaml:"requireSpecial"`
	MaxLength        int  `json:"maxLength" yaml:"maxLength"`
}

// SessionConfig defines session issuance settings.
type SessionConfig struct {
	// TTL bounds non-persistent sessions server-side; the cookie itself is
	// browser-session scoped.
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// PersistentTTL is used when the client asks to be remembered.
	PersistentTTL time.Duration `json:"persistentTtl" yaml:"persistentTtl"`

	CookieSecure bool `json:"cookieSecure" yaml:"cookieSecure"`
}

// TwoFactorConfig defines TOTP and recovery code settings.
type TwoFactorConfig struct {
	Issuer             string `json:"issuer" yaml:"issuer"`
	Digits             int    `json:"digits" yaml:"digits"`
	Period             int    `json:"period" yaml:"period"`
	Skew               int    `json:"skew" yaml:"skew"`
	RecoveryCodeCount  int    `json:"recoveryCodeCount" yaml:"recoveryCodeCount"`
	RecoveryCodeLength int    `json:"recoveryCodeLength" yaml:"recoveryCodeLength"`
}

// TokensConfig defines lifetimes for single-purpose tokens.
type TokensConfig struct {
	ConfirmTTL time.Duration `json:"confirmTtl" yaml:"confirmTtl"`
	ResetTTL   time.Duration `json:"resetTtl" yaml:"resetTtl"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.MaxFailedAttempts == 0 {
		cfg.Auth.MaxFailedAttempts = 5
	}
	if cfg.Auth.LockoutWindow == 0 {
		cfg.Auth.LockoutWindow = 10 * time.Minute
	}
	if cfg.Auth.LockoutDuration == 0 {
		cfg.Auth.LockoutDuration = 5 * time.Minute
	}

	if cfg.Session == nil {
		cfg.Session = &SessionConfig{}
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Session.PersistentTTL == 0 {
		cfg.Session.PersistentTTL = 30 * 24 * time.Hour
	}

	if cfg.TwoFactor == nil {
		cfg.TwoFactor = &TwoFactorConfig{}
	}
	if cfg.TwoFactor.Issuer == "" {
		cfg.TwoFactor.Issuer = cfg.Env.ServiceName
	}
	if cfg.TwoFactor.Digits == 0 {
		cfg.TwoFactor.Digits = 6
	}
	if cfg.TwoFactor.Period == 0 {
		cfg.TwoFactor.Period = 30
	}
	if cfg.TwoFactor.Skew == 0 {
		cfg.TwoFactor.Skew = 1
	}
	if cfg.TwoFactor.RecoveryCodeCount == 0 {
		cfg.TwoFactor.RecoveryCodeCount = 10
	}
	if cfg.TwoFactor.RecoveryCodeLength == 0 {
		cfg.TwoFactor.RecoveryCodeLength = 10
	}

	if cfg.Tokens == nil {
		cfg.Tokens = &TokensConfig{}
	}
	if cfg.Tokens.ConfirmTTL == 0 {
		cfg.Tokens.ConfirmTTL = 24 * time.Hour
	}
	if cfg.Tokens.ResetTTL == 0 {
		cfg.Tokens.ResetTTL = 30 * time.Minute
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment
const EnvPrefix = "MOFH"

// Configuration keys. Each maps to MOFH_<KEY> in the environment.
const (
	KeyAPIUser         = "api_user"
	KeyAPIKey          = "api_key"
	KeyBaseURL         = "base_url"
	KeyTimeout         = "timeout"
	KeyOutput          = "output"
	KeyLogLevel        = "log_level"
	KeyLogDevelopment  = "log_development"
	KeySecretsBackend  = "secrets_backend"
	KeySecretsPath     = "secrets_path"
	KeySecretsVersion  = "secrets_version"
	KeySecretsLocalDir = "secrets_local_dir"
	KeyAWSRegion       = "aws_region"
	KeyAWSProfile      = "aws_profile"
	KeyAWSEndpoint     = "aws_endpoint"
	KeyVaultAddr       = "vault_addr"
	KeyVaultToken      = "vault_token"
	KeyVaultMount      = "vault_mount"
	KeyVaultKVVersion  = "vault_kv_version"
	KeyVaultRoleID     = "vault_role_id"
	KeyVaultSecretID   = "vault_secret_id"
	KeyMetricsTextfile = "metrics_textfile"
)

// Secret backends
const (
	BackendEnv   = "env"
	BackendLocal = "local"
	BackendAWS   = "aws"
	BackendVault = "vault"
)

// Config holds all CLI configuration
type Config struct {
	Panel   PanelConfig
	Secrets SecretsConfig
	Logger  LoggerConfig
	Output  string // yaml or json

	// MetricsTextfile, if set, receives the panel call metrics in Prometheus
	// text format after each command (node_exporter textfile collector).
	MetricsTextfile string
}

// PanelConfig holds the reseller API connection settings
type PanelConfig struct {
	BaseURL string
	APIUser string
	APIKey  string
	Timeout time.Duration
}

// SecretsConfig selects where the reseller API credentials come from
type SecretsConfig struct {
	Backend  string // env, local, aws, vault
	Path     string // secret name/path holding {"api_user","api_key"}
	Version  string // pinned secret version, latest when empty
	LocalDir string
	AWS      AWSConfig
	Vault    VaultConfig
}

// AWSConfig holds AWS Secrets Manager settings
type AWSConfig struct {
	Region   string
	Profile  string
	Endpoint string
}

// VaultConfig holds HashiCorp Vault settings. A RoleID switches from token
// to AppRole login.
type VaultConfig struct {
	Address   string
	Token     string
	RoleID    string
	SecretID  string
	Mount     string
	KVVersion int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// New returns a viper instance reading MOFH_* environment variables, with
// defaults applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBaseURL, "https://panel.myownfreehost.net/xml-api")
	v.SetDefault(KeyTimeout, 45*time.Second)
	v.SetDefault(KeyOutput, "yaml")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogDevelopment, false)
	v.SetDefault(KeySecretsBackend, BackendEnv)
	v.SetDefault(KeySecretsLocalDir, "./secrets")
	v.SetDefault(KeyVaultMount, "secret")
	v.SetDefault(KeyVaultKVVersion, 2)

	return v
}

// LoadEnvFile loads a .env file into the process environment. An empty path
// means ".env" in the working directory, which may be absent.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from v and validates it
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Panel: PanelConfig{
			BaseURL: v.GetString(KeyBaseURL),
			APIUser: v.GetString(KeyAPIUser),
			APIKey:  v.GetString(KeyAPIKey),
			Timeout: v.GetDuration(KeyTimeout),
		},
		Secrets: SecretsConfig{
			Backend:  strings.ToLower(v.GetString(KeySecretsBackend)),
			Path:     v.GetString(KeySecretsPath),
			Version:  v.GetString(KeySecretsVersion),
			LocalDir: v.GetString(KeySecretsLocalDir),
			AWS: AWSConfig{
				Region:   v.GetString(KeyAWSRegion),
				Profile:  v.GetString(KeyAWSProfile),
				Endpoint: v.GetString(KeyAWSEndpoint),
			},
			Vault: VaultConfig{
				Address:   v.GetString(KeyVaultAddr),
				Token:     v.GetString(KeyVaultToken),
				RoleID:    v.GetString(KeyVaultRoleID),
				SecretID:  v.GetString(KeyVaultSecretID),
				Mount:     v.GetString(KeyVaultMount),
				KVVersion: v.GetInt(KeyVaultKVVersion),
			},
		},
		Logger: LoggerConfig{
			Level:       v.GetString(KeyLogLevel),
			Development: v.GetBool(KeyLogDevelopment),
		},
		Output:          strings.ToLower(v.GetString(KeyOutput)),
		MetricsTextfile: v.GetString(KeyMetricsTextfile),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields for the selected secret backend
func (c *Config) Validate() error {
	if c.Panel.BaseURL == "" {
		return fmt.Errorf("MOFH_BASE_URL is required")
	}
	if c.Panel.Timeout <= 0 {
		return fmt.Errorf("MOFH_TIMEOUT must be positive")
	}
	if c.Output != "yaml" && c.Output != "json" {
		return fmt.Errorf("unsupported output format %q (want yaml or json)", c.Output)
	}

	switch c.Secrets.Backend {
	case BackendEnv:
		if c.Panel.APIUser == "" {
			return fmt.Errorf("MOFH_API_USER is required")
		}
		if c.Panel.APIKey == "" {
			return fmt.Errorf("MOFH_API_KEY is required")
		}
	case BackendLocal:
		if c.Secrets.Path == "" {
			return fmt.Errorf("MOFH_SECRETS_PATH is required when MOFH_SECRETS_BACKEND=local")
		}
	case BackendAWS:
		if c.Secrets.Path == "" {
			return fmt.Errorf("MOFH_SECRETS_PATH is required when MOFH_SECRETS_BACKEND=aws")
		}
		if c.Secrets.AWS.Region == "" {
			return fmt.Errorf("MOFH_AWS_REGION is required when MOFH_SECRETS_BACKEND=aws")
		}
	case BackendVault:
		if c.Secrets.Path == "" {
			return fmt.Errorf("MOFH_SECRETS_PATH is required when MOFH_SECRETS_BACKEND=vault")
		}
		if c.Secrets.Vault.Address == "" {
			return fmt.Errorf("MOFH_VAULT_ADDR is required when MOFH_SECRETS_BACKEND=vault")
		}
		if c.Secrets.Vault.RoleID != "" {
			if c.Secrets.Vault.SecretID == "" {
				return fmt.Errorf("MOFH_VAULT_SECRET_ID is required with MOFH_VAULT_ROLE_ID")
			}
		} else if c.Secrets.Vault.Token == "" {
			return fmt.Errorf("MOFH_VAULT_TOKEN is required when MOFH_SECRETS_BACKEND=vault")
		}
		if c.Secrets.Vault.KVVersion != 1 && c.Secrets.Vault.KVVersion != 2 {
			return fmt.Errorf("MOFH_VAULT_KV_VERSION must be 1 or 2")
		}
	default:
		return fmt.Errorf("unsupported secrets backend %q", c.Secrets.Backend)
	}

	return nil
}

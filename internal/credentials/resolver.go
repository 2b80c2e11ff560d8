// Package credentials resolves the reseller API user and key the CLI
// authenticates with.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Lebyy/mofh-go/internal/adapters/ports"
	"github.com/Lebyy/mofh-go/internal/adapters/secrets"
	"github.com/Lebyy/mofh-go/internal/config"
	"github.com/Lebyy/mofh-go/pkg/resilience"
	"go.uber.org/zap"
)

// Secret keys holding the reseller credentials
const (
	KeyAPIUser = "api_user"
	KeyAPIKey  = "api_key"
)

// Credentials is the reseller API user and key pair
type Credentials struct {
	APIUser string
	APIKey  string
}

// Resolver looks up credentials from the environment or a secret backend
type Resolver struct {
	cfg      *config.Config
	secrets  ports.SecretManagerAdapter
	timeouts *resilience.TimeoutConfig
	logger   *zap.Logger
}

// NewResolver creates a resolver. sm may be nil when the env backend is used.
func NewResolver(cfg *config.Config, sm ports.SecretManagerAdapter, logger *zap.Logger) *Resolver {
	return &Resolver{
		cfg:      cfg,
		secrets:  sm,
		timeouts: resilience.DefaultTimeoutConfig(),
		logger:   logger,
	}
}

// WithTimeouts overrides the secret lookup deadline
func (r *Resolver) WithTimeouts(tc *resilience.TimeoutConfig) *Resolver {
	r.timeouts = tc
	return r
}

// Resolve returns the credentials for the configured backend
func (r *Resolver) Resolve(ctx context.Context) (Credentials, error) {
	if r.cfg.Secrets.Backend == config.BackendEnv {
		return Credentials{APIUser: r.cfg.Panel.APIUser, APIKey: r.cfg.Panel.APIKey}, nil
	}

	if r.secrets == nil {
		return Credentials{}, fmt.Errorf("no secret manager configured for backend %s", r.cfg.Secrets.Backend)
	}

	lookupCtx, cancel := r.timeouts.SecretLookupContext(ctx)
	defer cancel()

	var secret *ports.Secret
	var err error
	if version := r.cfg.Secrets.Version; version != "" {
		secret, err = r.secrets.GetSecretVersion(lookupCtx, r.cfg.Secrets.Path, version)
	} else {
		secret, err = r.secrets.GetSecret(lookupCtx, r.cfg.Secrets.Path)
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to load credentials from %s: %w", r.cfg.Secrets.Backend, err)
	}

	creds, err := FromSecret(secret)
	if err != nil {
		return Credentials{}, fmt.Errorf("secret %s: %w", r.cfg.Secrets.Path, err)
	}

	r.logger.Debug("Resolved panel credentials",
		zap.String("backend", r.cfg.Secrets.Backend),
		zap.String("secret_path", r.cfg.Secrets.Path),
		zap.String("secret_version", secret.Version),
	)

	return creds, nil
}

// FromSecret extracts credentials from a secret's key/value data, falling
// back to a JSON object in its value.
func FromSecret(secret *ports.Secret) (Credentials, error) {
	if secret == nil {
		return Credentials{}, fmt.Errorf("empty secret")
	}

	creds := Credentials{
		APIUser: secret.Data[KeyAPIUser],
		APIKey:  secret.Data[KeyAPIKey],
	}

	if creds.APIUser == "" && creds.APIKey == "" && strings.HasPrefix(strings.TrimSpace(secret.Value), "{") {
		var raw map[string]string
		if err := json.Unmarshal([]byte(secret.Value), &raw); err != nil {
			return Credentials{}, fmt.Errorf("failed to parse secret value: %w", err)
		}
		creds.APIUser = raw[KeyAPIUser]
		creds.APIKey = raw[KeyAPIKey]
	}

	if creds.APIUser == "" {
		return Credentials{}, fmt.Errorf("%s is required", KeyAPIUser)
	}
	if creds.APIKey == "" {
		return Credentials{}, fmt.Errorf("%s is required", KeyAPIKey)
	}

	return creds, nil
}

// NewSecretManager builds the secret backend selected by cfg. The env backend
// needs none and returns nil.
func NewSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	switch cfg.Backend {
	case config.BackendEnv:
		return nil, nil

	case config.BackendLocal:
		logger.Warn("Using local secret manager - NOT for production use!",
			zap.String("dir", cfg.LocalDir),
		)
		return secrets.NewLocalSecretManager(cfg.LocalDir, logger), nil

	case config.BackendAWS:
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.AWS.Region)
		awsCfg.Profile = cfg.AWS.Profile
		awsCfg.Endpoint = cfg.AWS.Endpoint
		return secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)

	case config.BackendVault:
		vaultCfg := secrets.DefaultVaultConfig(cfg.Vault.Address)
		vaultCfg.Token = cfg.Vault.Token
		if cfg.Vault.RoleID != "" {
			vaultCfg.AuthMethod = secrets.VaultAuthAppRole
			vaultCfg.RoleID = cfg.Vault.RoleID
			vaultCfg.SecretID = cfg.Vault.SecretID
		}
		if cfg.Vault.Mount != "" {
			vaultCfg.MountPath = cfg.Vault.Mount
		}
		if cfg.Vault.KVVersion != 0 {
			vaultCfg.KVVersion = cfg.Vault.KVVersion
		}
		return secrets.NewVaultAdapter(ctx, vaultCfg, logger)

	default:
		return nil, fmt.Errorf("unsupported secrets backend %q", cfg.Backend)
	}
}

package secrets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Lebyy/mofh-go/internal/adapters/ports"
	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// Vault auth methods
const (
	VaultAuthToken   = "token"
	VaultAuthAppRole = "approle"
)

// VaultConfig configures the Vault KV backend
type VaultConfig struct {
	Address    string
	AuthMethod string // VaultAuthToken or VaultAuthAppRole
	Token      string
	RoleID     string
	SecretID   string
	MountPath  string // KV mount, "secret" by default
	KVVersion  int    // 1 or 2
}

// DefaultVaultConfig returns a token-authenticated KV v2 config on the "secret" mount
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:    address,
		AuthMethod: VaultAuthToken,
		MountPath:  "secret",
		KVVersion:  2,
	}
}

type vaultAdapter struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
}

// NewVaultAdapter logs in to Vault and returns a read-only KV adapter
func NewVaultAdapter(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if err := login(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	logger.Debug("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
		zap.Int("kv_version", cfg.KVVersion),
	)

	return &vaultAdapter{client: client, config: cfg, logger: logger}, nil
}

func login(ctx context.Context, client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "", VaultAuthToken:
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case VaultAuthAppRole:
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret reads the latest version of path below the KV mount,
// e.g. "mofh/reseller".
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	a.logger.Debug("Retrieving secret from Vault", zap.String("path", path))
	startTime := time.Now()

	var (
		kv  *vault.KVSecret
		err error
	)
	if a.config.KVVersion == 1 {
		kv, err = a.client.KVv1(a.config.MountPath).Get(ctx, path)
	} else {
		kv, err = a.client.KVv2(a.config.MountPath).Get(ctx, path)
	}
	if err != nil {
		a.logger.Error("Failed to retrieve secret from Vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}

	a.logger.Debug("Secret retrieved",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return fromKV(kv, "1"), nil
}

// GetSecretVersion reads one version of path. KV v2 only.
func (a *vaultAdapter) GetSecretVersion(ctx context.Context, path string, version string) (*ports.Secret, error) {
	if a.config.KVVersion == 1 {
		return nil, fmt.Errorf("secret versions need KV v2, mount %s is v1", a.config.MountPath)
	}

	v, err := strconv.Atoi(version)
	if err != nil {
		return nil, fmt.Errorf("invalid Vault secret version %q: %w", version, err)
	}

	kv, err := a.client.KVv2(a.config.MountPath).GetVersion(ctx, path, v)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret version: %w", err)
	}
	return fromKV(kv, version), nil
}

// fromKV keeps the string values of a KV secret. A "value" key also
// becomes Secret.Value.
func fromKV(kv *vault.KVSecret, version string) *ports.Secret {
	secret := &ports.Secret{
		Data:    make(map[string]string, len(kv.Data)),
		Version: version,
	}
	for k, v := range kv.Data {
		if s, ok := v.(string); ok {
			secret.Data[k] = s
		}
	}
	secret.Value = secret.Data["value"]

	if md := kv.VersionMetadata; md != nil {
		secret.Version = strconv.Itoa(md.Version)
		if !md.CreatedTime.IsZero() {
			secret.CreatedAt = md.CreatedTime.Format(time.RFC3339)
		}
	}
	return secret
}

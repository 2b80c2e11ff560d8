package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The raw secret value
	Data      map[string]string // Key/value form when the backend stores structured secrets
	Version   string            // Secret version identifier
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for reading the panel API
// credentials from a secret management service.
// Implementations: local filesystem, AWS Secrets Manager, HashiCorp Vault.
type SecretManagerAdapter interface {
	// GetSecret retrieves the latest version of a secret by its path/name
	// Path format depends on implementation:
	//   - local: file path relative to the base directory
	//   - AWS: secret name or ARN, e.g. "mofh/reseller-api"
	//   - Vault: path below the KV mount, e.g. "mofh/reseller-api"
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// GetSecretVersion retrieves a specific version of a secret
	GetSecretVersion(ctx context.Context, path string, version string) (*Secret, error)
}

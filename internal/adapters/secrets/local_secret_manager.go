package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lebyy/mofh-go/internal/adapters/ports"
	"go.uber.org/zap"
)

// localSecretManager implements SecretManagerAdapter using local filesystem
// WARNING: This is for development only. Use AWS Secrets Manager or Vault in production.
type localSecretManager struct {
	basePath string
	logger   *zap.Logger
}

// NewLocalSecretManager creates a new local filesystem secret manager
func NewLocalSecretManager(basePath string, logger *zap.Logger) ports.SecretManagerAdapter {
	return &localSecretManager{
		basePath: basePath,
		logger:   logger,
	}
}

// GetSecret reads a secret file. Supported formats:
//
//	{"value": "...", "data": {"api_user": "...", "api_key": "..."}, "created_at": "..."}
//	{"api_user": "...", "api_key": "..."}
//	plain text
func (m *localSecretManager) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	filePath := filepath.Join(m.basePath, filepath.Clean("/"+secretPath))

	m.logger.Debug("Reading secret from filesystem",
		zap.String("path", secretPath),
	)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	var envelope struct {
		Value     string            `json:"value"`
		Data      map[string]string `json:"data"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && (envelope.Value != "" || len(envelope.Data) > 0) {
		return &ports.Secret{
			Value:     envelope.Value,
			Data:      envelope.Data,
			Version:   "v1",
			CreatedAt: envelope.CreatedAt,
		}, nil
	}

	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err == nil {
		return &ports.Secret{
			Value:   string(data),
			Data:    flat,
			Version: "v1",
		}, nil
	}

	// Return as plain text if not JSON
	return &ports.Secret{
		Value:   strings.TrimSpace(string(data)),
		Version: "v1",
	}, nil
}

// GetSecretVersion only knows "latest": files on disk are not versioned.
func (m *localSecretManager) GetSecretVersion(ctx context.Context, path string, version string) (*ports.Secret, error) {
	if version != "" && version != "latest" {
		return nil, fmt.Errorf("local secrets are not versioned, got version %q", version)
	}
	return m.GetSecret(ctx, path)
}

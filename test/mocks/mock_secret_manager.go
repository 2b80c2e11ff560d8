package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/Lebyy/mofh-go/internal/adapters/ports"
)

// MockSecretManager is an in-memory SecretManagerAdapter for testing
type MockSecretManager struct {
	mu       sync.Mutex
	secrets  map[string]*ports.Secret
	versions map[string]*ports.Secret
	calls    []string

	// Err, if set, is returned from every lookup
	Err error
}

// NewMockSecretManager creates an empty mock secret manager
func NewMockSecretManager() *MockSecretManager {
	return &MockSecretManager{
		secrets:  make(map[string]*ports.Secret),
		versions: make(map[string]*ports.Secret),
	}
}

// Put stores a secret under path
func (m *MockSecretManager) Put(path string, secret *ports.Secret) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[path] = secret
}

// PutVersion stores a secret under path at a specific version
func (m *MockSecretManager) PutVersion(path, version string, secret *ports.Secret) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[path+"@"+version] = secret
}

// GetSecret returns the stored secret or a not-found error
func (m *MockSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, path)
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	secret, ok := m.secrets[path]
	if !ok {
		return nil, fmt.Errorf("secret not found: %s", path)
	}
	return secret, nil
}

// GetSecretVersion returns a secret stored with PutVersion. Calls records
// it as "path@version".
func (m *MockSecretManager) GetSecretVersion(ctx context.Context, path string, version string) (*ports.Secret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := path + "@" + version
	m.calls = append(m.calls, key)
	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	secret, ok := m.versions[key]
	if !ok {
		return nil, fmt.Errorf("secret version not found: %s", key)
	}
	return secret, nil
}

// Calls returns the secret paths requested so far
func (m *MockSecretManager) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

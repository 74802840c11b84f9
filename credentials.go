package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// CredentialProvider supplies the bearer token attached to requests. Clear
// is called when the server answers 401 so a dead token is not reused.
type CredentialProvider interface {
	Token() (string, bool)
	Clear() error
}

// MemoryCredentials keeps a token for the lifetime of the process.
type MemoryCredentials struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryCredentials returns a provider holding token (may be empty).
func NewMemoryCredentials(token string) *MemoryCredentials {
	return &MemoryCredentials{token: token}
}

func (m *MemoryCredentials) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

// Set replaces the stored token.
func (m *MemoryCredentials) Set(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
}

func (m *MemoryCredentials) Clear() error {
	m.Set("")
	return nil
}

// tokenFile is the on-disk layout of FileCredentials.
type tokenFile struct {
	Token   string    `yaml:"token"`
	SavedAt time.Time `yaml:"saved_at"`
}

// FileCredentials persists a token in a YAML file so it survives restarts.
// The file is read on every call; a missing file means no token.
type FileCredentials struct {
	mu   sync.Mutex
	path string
}

// NewFileCredentials returns a provider backed by path.
func NewFileCredentials(path string) *FileCredentials {
	return &FileCredentials{path: path}
}

// Path returns the backing file.
func (f *FileCredentials) Path() string { return f.path }

func (f *FileCredentials) Token() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.path)
	if err != nil {
		return "", false
	}
	var tf tokenFile
	if err := yaml.Unmarshal(b, &tf); err != nil {
		return "", false
	}
	return tf.Token, tf.Token != ""
}

// Save writes token with owner-only permissions.
func (f *FileCredentials) Save(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := yaml.Marshal(tokenFile{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (f *FileCredentials) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// ChainCredentials consults providers in order and clears all of them.
type ChainCredentials struct {
	providers []CredentialProvider
}

// NewChainCredentials returns a chain. The usual order is the durable store
// first, then the session store.
func NewChainCredentials(providers ...CredentialProvider) *ChainCredentials {
	return &ChainCredentials{providers: providers}
}

func (c *ChainCredentials) Token() (string, bool) {
	for _, p := range c.providers {
		if tok, ok := p.Token(); ok {
			return tok, true
		}
	}
	return "", false
}

func (c *ChainCredentials) Clear() error {
	var errs []error
	for _, p := range c.providers {
		if err := p.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

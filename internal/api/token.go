package api

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/strandtools/strand/internal/paths"
)

// TokenStore supplies the bearer token and clears it when the backend
// reports it expired.
type TokenStore interface {
	Token() (string, error)
	Clear() error
}

// FileTokenStore keeps the token in a file under the strand dir.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// DefaultTokenPath returns ~/.strand/token, honoring STRAND_DIR.
func DefaultTokenPath() string {
	path, err := paths.TokenPath()
	if err != nil {
		return filepath.Join(os.TempDir(), "strand-token")
	}
	return path
}

// NewFileTokenStore creates a store at path, or the default path if
// path is empty.
func NewFileTokenStore(path string) *FileTokenStore {
	if path == "" {
		path = DefaultTokenPath()
	}
	return &FileTokenStore{path: path}
}

// Token reads the stored token. Returns ErrNoToken if the file is
// missing or empty.
func (s *FileTokenStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save writes the token with owner-only permissions.
func (s *FileTokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0600)
}

// Clear removes the stored token. Missing file is not an error.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// StaticToken is a TokenStore for tests and one-off scripts.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	if t == "" {
		return "", ErrNoToken
	}
	return string(t), nil
}

func (t StaticToken) Clear() error { return nil }

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const credentialsFile = "credentials.json"

// Store persists the current token pair across process restarts. It is a
// pure persistence primitive: no network calls, no business rules.
type Store interface {
	Save(*Session) error
	// Load returns ErrNotLoggedIn when no session is persisted.
	Load() (*Session, error)
	// Clear is idempotent.
	Clear() error
}

// FileStore implements Store using a JSON file under the user's home
// directory, scoped to one device profile.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore at the default location
// (~/.kbctl/credentials.json), creating the directory if needed.
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	dir := filepath.Join(home, ".kbctl")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create .kbctl directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, credentialsFile)}, nil
}

// NewFileStoreAt creates a FileStore backed by the given file path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the session to the credentials file.
func (s *FileStore) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load reads the persisted session from the credentials file.
func (s *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return &sess, nil
}

// Clear removes the credentials file. Clearing an absent file is a no-op.
func (s *FileStore) Clear() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(s.path)
}

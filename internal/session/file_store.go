package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FileStore persists a single session in a YAML file for the CLI. The
// request and response arguments are ignored and may be nil.
type FileStore struct {
	path    string
	decoder Decoder
	mu      sync.Mutex
}

type fileState struct {
	Token   string    `yaml:"token"`
	SavedAt time.Time `yaml:"saved_at"`
}

// NewFileStore creates a store backed by path
func NewFileStore(path string, decoder Decoder) *FileStore {
	return &FileStore{path: path, decoder: decoder}
}

// DefaultPath is ~/.config/fitforge/session.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "fitforge", "session.yaml"), nil
}

func (s *FileStore) Name() string { return "file" }

// Path returns the backing file
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Set(_ http.ResponseWriter, _ *http.Request, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.decoder.Decode(token)
	if err != nil {
		_ = s.remove() //nolint:errcheck // the decode error is what the caller needs
		recordEvent("malformed", s.Name())
		return Session{}, err
	}

	data, err := yaml.Marshal(fileState{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return Session{}, fmt.Errorf("failed to encode session file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return Session{}, fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return Session{}, fmt.Errorf("failed to write session file: %w", err)
	}
	recordEvent("set", s.Name())

	return sess, nil
}

func (s *FileStore) Get(_ *http.Request) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var state fileState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if state.Token == "" {
		return Session{}, ErrNoSession
	}

	return s.decoder.Decode(state.Token)
}

func (s *FileStore) Clear(_ http.ResponseWriter, _ *http.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordEvent("cleared", s.Name())
	return s.remove()
}

func (s *FileStore) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

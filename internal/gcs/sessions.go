package gcs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/webskin/gcs-go-cli/internal/errors"
	"gopkg.in/yaml.v3"
)

// Session represents a saved bearer token for one GCS Manager endpoint.
// Tokens come from Globus Auth out of band (globus-cli, a web flow, or a
// service credential); this store only remembers them per endpoint.
type Session struct {
	URL         string    `yaml:"url"`
	AccessToken string    `yaml:"access-token"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// Sessions represents the sessions file structure
type Sessions struct {
	Sessions map[string]*Session `yaml:"sessions"`
}

// getSessionsPath is a variable that returns the path to the sessions file
// It's a variable (not a function) to allow tests to override it
var getSessionsPath = func() string {
	var sessionsPath string

	switch runtime.GOOS {
	case "windows":
		sessionsPath = filepath.Join(os.Getenv("USERPROFILE"), ".gcssessions")
	default: // linux, darwin, etc.
		sessionsPath = filepath.Join(os.Getenv("HOME"), ".gcssessions")
	}

	return sessionsPath
}

// GetSessionsPath returns the path to the sessions file
func GetSessionsPath() string {
	return getSessionsPath()
}

// SetGetSessionsPathFunc allows tests to override the sessions path resolution
func SetGetSessionsPathFunc(fn func() string) {
	getSessionsPath = fn
}

// LoadSessions loads sessions from the sessions file
func LoadSessions() (*Sessions, error) {
	sessionsPath := GetSessionsPath()

	data, err := os.ReadFile(sessionsPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty sessions if file doesn't exist
			return &Sessions{
				Sessions: make(map[string]*Session),
			}, nil
		}
		return nil, fmt.Errorf("%s: %w", errors.MsgFailedToReadSessionsFile, err)
	}

	var sessions Sessions
	if err := yaml.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("%s: %w", errors.MsgFailedToParseSessionsFile, err)
	}

	if sessions.Sessions == nil {
		sessions.Sessions = make(map[string]*Session)
	}

	return &sessions, nil
}

// Save saves sessions to the sessions file
func (s *Sessions) Save() error {
	sessionsPath := GetSessionsPath()

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", errors.MsgFailedToMarshalSessions, err)
	}

	// Create with restricted permissions (600)
	if err := os.WriteFile(sessionsPath, data, 0600); err != nil {
		return fmt.Errorf("%s: %w", errors.MsgFailedToWriteSessionsFile, err)
	}

	return nil
}

// AddSession adds or updates a session
func (s *Sessions) AddSession(name string, session *Session) {
	if s.Sessions == nil {
		s.Sessions = make(map[string]*Session)
	}
	s.Sessions[name] = session
}

// GetSession returns a specific session by name
func (s *Sessions) GetSession(name string) (*Session, error) {
	session, ok := s.Sessions[name]
	if !ok {
		return nil, fmt.Errorf(errors.MsgSessionNotFound, name)
	}
	return session, nil
}

// DeleteSession removes a session
func (s *Sessions) DeleteSession(name string) error {
	if _, ok := s.Sessions[name]; !ok {
		return fmt.Errorf(errors.MsgSessionNotFound, name)
	}

	delete(s.Sessions, name)

	return nil
}

// IsTokenExpired checks if a token is likely expired
// Globus Auth access tokens expire server-side; for display purposes we
// check age against the usual 48 hour lifetime
func (s *Session) IsTokenExpired(maxAge time.Duration) bool {
	if maxAge == 0 {
		maxAge = 48 * time.Hour
	}
	return time.Since(s.CreatedAt) > maxAge
}

// LoadConfigFromSession loads config from a specific session
func LoadConfigFromSession(sessionName string) (*Config, error) {
	sessions, err := LoadSessions()
	if err != nil {
		return nil, err
	}

	session, err := sessions.GetSession(sessionName)
	if err != nil {
		return nil, err
	}

	// Validate that the session has a token
	if session.AccessToken == "" {
		return nil, fmt.Errorf("session '%s' has no access token (session may be invalid)", sessionName)
	}

	// Load config from file first (to get timeout and output settings)
	config, err := LoadConfig()
	if err != nil {
		// If config file doesn't exist, create a minimal config
		config = &Config{Timeout: 30}
	}

	// Override with session data (session takes precedence for auth)
	config.BaseURL = session.URL
	config.AccessToken = session.AccessToken

	return config, nil
}

package gcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: Setup paths for isolated test environment
type testSessionPaths struct {
	sessionsPath string
	configDir    string
	configPath   string
	homeDir      string
}

func setupSessionTestPaths(t *testing.T) *testSessionPaths {
	t.Helper()
	tempDir := t.TempDir()
	return &testSessionPaths{
		homeDir:      tempDir,
		configDir:    filepath.Join(tempDir, ".config", "gcs"),
		configPath:   filepath.Join(tempDir, ".config", "gcs", "config.yaml"),
		sessionsPath: filepath.Join(tempDir, ".gcssessions"),
	}
}

// Test helper: Override path functions for isolated test environment
func overrideSessionPathFunctions(t *testing.T, paths *testSessionPaths) {
	t.Helper()
	originalGetSessionsPath := getSessionsPath
	originalGetConfigDir := getConfigDir

	SetGetSessionsPathFunc(func() string { return paths.sessionsPath })
	SetGetConfigDirFunc(func() string { return paths.configDir })

	t.Cleanup(func() {
		SetGetSessionsPathFunc(originalGetSessionsPath)
		SetGetConfigDirFunc(originalGetConfigDir)
	})
}

// Test helper: Create sessions file with test data
func createTestSessionsFile(t *testing.T, path string, sessions *Sessions) {
	t.Helper()

	// Ensure directory exists
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	require.NoError(t, err)

	// Save sessions
	originalGetSessionsPath := getSessionsPath
	SetGetSessionsPathFunc(func() string { return path })
	defer SetGetSessionsPathFunc(originalGetSessionsPath)

	err = sessions.Save()
	require.NoError(t, err)
}

// Test helper: Create test config file
func createTestConfigFile(t *testing.T, configPath string, content string) {
	t.Helper()
	dir := filepath.Dir(configPath)
	err := os.MkdirAll(dir, 0700)
	require.NoError(t, err)
	err = os.WriteFile(configPath, []byte(content), 0600)
	require.NoError(t, err)
}

func TestGetSessionsPath(t *testing.T) {
	path := GetSessionsPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, ".gcssessions")
}

func TestGetSessionsPath_Override(t *testing.T) {
	originalFunc := getSessionsPath
	defer func() { getSessionsPath = originalFunc }()

	customPath := "/custom/path/.gcssessions"
	SetGetSessionsPathFunc(func() string { return customPath })

	assert.Equal(t, customPath, GetSessionsPath())
}

func TestLoadSessions_NoFile(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	// LoadSessions should return empty sessions when file doesn't exist
	sessions, err := LoadSessions()
	require.NoError(t, err)
	require.NotNil(t, sessions)
	assert.Empty(t, sessions.Sessions)
}

func TestLoadSessions_ValidFile(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	testTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	testSessions := &Sessions{
		Sessions: map[string]*Session{
			"campus-cluster": {
				URL:         "https://abc123.08cc.data.globus.org/api",
				AccessToken: "cluster-token",
				CreatedAt:   testTime,
			},
			"lab-endpoint": {
				URL:         "https://def456.12ab.data.globus.org/api",
				AccessToken: "lab-token",
				CreatedAt:   testTime.Add(time.Hour),
			},
		},
	}
	createTestSessionsFile(t, paths.sessionsPath, testSessions)

	loaded, err := LoadSessions()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Sessions, 2)

	session := loaded.Sessions["campus-cluster"]
	require.NotNil(t, session)
	assert.Equal(t, "https://abc123.08cc.data.globus.org/api", session.URL)
	assert.Equal(t, "cluster-token", session.AccessToken)
}

func TestLoadSessions_InvalidYAML(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	err := os.WriteFile(paths.sessionsPath, []byte("invalid: yaml: content: ["), 0600)
	require.NoError(t, err)

	_, err = LoadSessions()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse sessions file")
}

func TestLoadSessions_EmptyFile(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	err := os.WriteFile(paths.sessionsPath, []byte(""), 0600)
	require.NoError(t, err)

	// Should return empty sessions without error
	sessions, err := LoadSessions()
	require.NoError(t, err)
	require.NotNil(t, sessions)
	assert.NotNil(t, sessions.Sessions)
}

func TestLoadSessions_NilSessionsMap(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	err := os.WriteFile(paths.sessionsPath, []byte("sessions: null\n"), 0600)
	require.NoError(t, err)

	// Should initialize the map
	sessions, err := LoadSessions()
	require.NoError(t, err)
	require.NotNil(t, sessions)
	assert.NotNil(t, sessions.Sessions)
}

func TestSessions_Save(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	sessions := &Sessions{
		Sessions: map[string]*Session{
			"test": {
				URL:         "https://test.local/api",
				AccessToken: "token",
				CreatedAt:   time.Now(),
			},
		},
	}

	err := sessions.Save()
	require.NoError(t, err)

	// Verify file was created with correct permissions
	info, err := os.Stat(paths.sessionsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Verify content can be loaded back
	loaded, err := LoadSessions()
	require.NoError(t, err)
	assert.Len(t, loaded.Sessions, 1)
	assert.Equal(t, "https://test.local/api", loaded.Sessions["test"].URL)
}

func TestSessions_Save_NilSessionsMap(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	sessions := &Sessions{
		Sessions: nil,
	}

	err := sessions.Save()
	require.NoError(t, err)
}

func TestSessions_AddSession(t *testing.T) {
	sessions := &Sessions{}

	session := &Session{
		URL:         "https://abc123.08cc.data.globus.org/api",
		AccessToken: "token",
		CreatedAt:   time.Now(),
	}

	sessions.AddSession("new-session", session)

	assert.NotNil(t, sessions.Sessions)
	assert.Len(t, sessions.Sessions, 1)
	assert.Equal(t, session, sessions.Sessions["new-session"])
}

func TestSessions_AddSession_OverwriteExisting(t *testing.T) {
	sessions := &Sessions{
		Sessions: map[string]*Session{
			"existing": {
				URL:         "https://old.example.org/api",
				AccessToken: "old-token",
			},
		},
	}

	newSession := &Session{
		URL:         "https://new.example.org/api",
		AccessToken: "new-token",
		CreatedAt:   time.Now(),
	}

	sessions.AddSession("existing", newSession)

	assert.Len(t, sessions.Sessions, 1)
	assert.Equal(t, "https://new.example.org/api", sessions.Sessions["existing"].URL)
	assert.Equal(t, "new-token", sessions.Sessions["existing"].AccessToken)
}

func TestSessions_AddSession_NilMap(t *testing.T) {
	sessions := &Sessions{Sessions: nil}

	session := &Session{URL: "https://test.local/api"}
	sessions.AddSession("test", session)

	assert.NotNil(t, sessions.Sessions)
	assert.Equal(t, session, sessions.Sessions["test"])
}

func TestSessions_GetSession(t *testing.T) {
	sessions := &Sessions{
		Sessions: map[string]*Session{
			"campus-cluster": {
				URL:         "https://abc123.08cc.data.globus.org/api",
				AccessToken: "token",
				CreatedAt:   time.Now(),
			},
		},
	}

	session, err := sessions.GetSession("campus-cluster")
	require.NoError(t, err)
	assert.Equal(t, "https://abc123.08cc.data.globus.org/api", session.URL)
	assert.Equal(t, "token", session.AccessToken)
}

func TestSessions_GetSession_NotFound(t *testing.T) {
	sessions := &Sessions{
		Sessions: map[string]*Session{
			"existing": {URL: "https://test.local/api"},
		},
	}

	_, err := sessions.GetSession("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
	assert.Contains(t, err.Error(), "not found")
}

func TestSessions_GetSession_EmptySessions(t *testing.T) {
	sessions := &Sessions{
		Sessions: map[string]*Session{},
	}

	_, err := sessions.GetSession("any")
	assert.Error(t, err)
}

func TestSessions_DeleteSession(t *testing.T) {
	sessions := &Sessions{
		Sessions: map[string]*Session{
			"to-delete": {URL: "https://delete.me/api"},
			"to-keep":   {URL: "https://keep.me/api"},
		},
	}

	err := sessions.DeleteSession("to-delete")
	require.NoError(t, err)

	assert.Len(t, sessions.Sessions, 1)
	_, exists := sessions.Sessions["to-delete"]
	assert.False(t, exists)
	_, exists = sessions.Sessions["to-keep"]
	assert.True(t, exists)
}

func TestSessions_DeleteSession_NotFound(t *testing.T) {
	sessions := &Sessions{
		Sessions: map[string]*Session{
			"existing": {URL: "https://test.local/api"},
		},
	}

	err := sessions.DeleteSession("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
	assert.Contains(t, err.Error(), "not found")
}

func TestSession_IsTokenExpired(t *testing.T) {
	tests := []struct {
		name      string
		createdAt time.Time
		maxAge    time.Duration
		want      bool
	}{
		{
			name:      "token not expired with default maxAge",
			createdAt: time.Now().Add(-1 * time.Hour),
			maxAge:    0, // default 48 hours
			want:      false,
		},
		{
			name:      "token expired with default maxAge",
			createdAt: time.Now().Add(-49 * time.Hour),
			maxAge:    0, // default 48 hours
			want:      true,
		},
		{
			name:      "token not expired with custom maxAge",
			createdAt: time.Now().Add(-30 * time.Minute),
			maxAge:    1 * time.Hour,
			want:      false,
		},
		{
			name:      "token expired with custom maxAge",
			createdAt: time.Now().Add(-2 * time.Hour),
			maxAge:    1 * time.Hour,
			want:      true,
		},
		{
			name:      "token slightly before expiry",
			createdAt: time.Now().Add(-47*time.Hour - 59*time.Minute),
			maxAge:    0,
			want:      false,
		},
		{
			name:      "token just past expiry",
			createdAt: time.Now().Add(-48*time.Hour - time.Second),
			maxAge:    0,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &Session{
				CreatedAt: tt.createdAt,
			}

			got := session.IsTokenExpired(tt.maxAge)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfigFromSession(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	configContent := `timeout: 60
verbose: false
output-format: json
color: never
`
	createTestConfigFile(t, paths.configPath, configContent)

	testSessions := &Sessions{
		Sessions: map[string]*Session{
			"campus-cluster": {
				URL:         "https://abc123.08cc.data.globus.org/api",
				AccessToken: "session-token",
				CreatedAt:   time.Now(),
			},
		},
	}
	createTestSessionsFile(t, paths.sessionsPath, testSessions)

	config, err := LoadConfigFromSession("campus-cluster")
	require.NoError(t, err)
	require.NotNil(t, config)

	// Session data overrides auth settings, file supplies the rest
	assert.Equal(t, "https://abc123.08cc.data.globus.org/api", config.BaseURL)
	assert.Equal(t, "session-token", config.AccessToken)
	assert.Equal(t, 60, config.Timeout)
	assert.Equal(t, "json", config.OutputFormat)
}

func TestLoadConfigFromSession_NotFound(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	testSessions := &Sessions{Sessions: map[string]*Session{}}
	createTestSessionsFile(t, paths.sessionsPath, testSessions)

	_, err := LoadConfigFromSession("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestLoadConfigFromSession_NoAccessToken(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	testSessions := &Sessions{
		Sessions: map[string]*Session{
			"no-token": {
				URL:         "https://abc123.08cc.data.globus.org/api",
				AccessToken: "",
				CreatedAt:   time.Now(),
			},
		},
	}
	createTestSessionsFile(t, paths.sessionsPath, testSessions)

	_, err := LoadConfigFromSession("no-token")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "has no access token")
}

func TestLoadConfigFromSession_NoConfigFile(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	testSessions := &Sessions{
		Sessions: map[string]*Session{
			"campus-cluster": {
				URL:         "https://abc123.08cc.data.globus.org/api",
				AccessToken: "session-token",
				CreatedAt:   time.Now(),
			},
		},
	}
	createTestSessionsFile(t, paths.sessionsPath, testSessions)

	// Should fall back to defaults for everything but the session fields
	config, err := LoadConfigFromSession("campus-cluster")
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, 30, config.Timeout)
	assert.Equal(t, "https://abc123.08cc.data.globus.org/api", config.BaseURL)
}

func TestSession_YAML_Marshaling(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	testTime := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)
	original := &Sessions{
		Sessions: map[string]*Session{
			"session-1": {
				URL:         "https://abc123.08cc.data.globus.org/api",
				AccessToken: "token-abc-123",
				CreatedAt:   testTime,
			},
			"session-2": {
				URL:         "https://def456.12ab.data.globus.org/api",
				AccessToken: "token-xyz-789",
				CreatedAt:   testTime.Add(2 * time.Hour),
			},
		},
	}

	err := original.Save()
	require.NoError(t, err)

	loaded, err := LoadSessions()
	require.NoError(t, err)

	assert.Len(t, loaded.Sessions, 2)

	s1 := loaded.Sessions["session-1"]
	require.NotNil(t, s1)
	assert.Equal(t, original.Sessions["session-1"].URL, s1.URL)
	assert.Equal(t, original.Sessions["session-1"].AccessToken, s1.AccessToken)
	assert.True(t, original.Sessions["session-1"].CreatedAt.Equal(s1.CreatedAt))

	s2 := loaded.Sessions["session-2"]
	require.NotNil(t, s2)
	assert.Equal(t, original.Sessions["session-2"].URL, s2.URL)
	assert.Equal(t, original.Sessions["session-2"].AccessToken, s2.AccessToken)
}

func TestSessions_FilePermissions(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	sessions := &Sessions{
		Sessions: map[string]*Session{
			"test": {
				URL:         "https://test.local/api",
				AccessToken: "sensitive-token",
				CreatedAt:   time.Now(),
			},
		},
	}

	err := sessions.Save()
	require.NoError(t, err)

	info, err := os.Stat(paths.sessionsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(),
		"Sessions file should have 0600 permissions to protect sensitive tokens")
}

func TestSessions_MultipleOperations(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	sessions := &Sessions{Sessions: make(map[string]*Session)}

	sessions.AddSession("session-1", &Session{
		URL:         "https://one.example.org/api",
		AccessToken: "token1",
		CreatedAt:   time.Now(),
	})
	sessions.AddSession("session-2", &Session{
		URL:         "https://two.example.org/api",
		AccessToken: "token2",
		CreatedAt:   time.Now(),
	})
	sessions.AddSession("session-3", &Session{
		URL:         "https://three.example.org/api",
		AccessToken: "token3",
		CreatedAt:   time.Now(),
	})

	assert.Len(t, sessions.Sessions, 3)

	err := sessions.DeleteSession("session-2")
	require.NoError(t, err)
	assert.Len(t, sessions.Sessions, 2)

	sessions.AddSession("session-1", &Session{
		URL:         "https://updated.example.org/api",
		AccessToken: "updated-token",
		CreatedAt:   time.Now(),
	})

	assert.Len(t, sessions.Sessions, 2)
	assert.Equal(t, "https://updated.example.org/api", sessions.Sessions["session-1"].URL)

	// Save and reload
	err = sessions.Save()
	require.NoError(t, err)

	loaded, err := LoadSessions()
	require.NoError(t, err)
	assert.Len(t, loaded.Sessions, 2)
	assert.Equal(t, "https://updated.example.org/api", loaded.Sessions["session-1"].URL)
	assert.Equal(t, "https://three.example.org/api", loaded.Sessions["session-3"].URL)
}

func TestSetGetSessionsPathFunc(t *testing.T) {
	original := getSessionsPath

	customPath := "/custom/sessions/path"
	SetGetSessionsPathFunc(func() string {
		return customPath
	})

	assert.Equal(t, customPath, GetSessionsPath())

	SetGetSessionsPathFunc(original)
	assert.NotEqual(t, customPath, GetSessionsPath())
}

func TestLoadSessions_ReadPermissionError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("Skipping permission test when running as root")
	}

	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	// Create sessions file with no read permissions
	err := os.WriteFile(paths.sessionsPath, []byte("sessions: {}"), 0000)
	require.NoError(t, err)

	t.Cleanup(func() {
		os.Chmod(paths.sessionsPath, 0644)
	})

	_, err = LoadSessions()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read sessions file")
}

func TestSessions_EmptySessionName(t *testing.T) {
	sessions := &Sessions{
		Sessions: map[string]*Session{},
	}

	// Adding with empty name works; it's just a map key
	session := &Session{URL: "https://test.local/api"}
	sessions.AddSession("", session)

	assert.Len(t, sessions.Sessions, 1)

	retrieved, err := sessions.GetSession("")
	require.NoError(t, err)
	assert.Equal(t, session, retrieved)

	err = sessions.DeleteSession("")
	require.NoError(t, err)
	assert.Empty(t, sessions.Sessions)
}

func TestSessions_SpecialCharactersInName(t *testing.T) {
	paths := setupSessionTestPaths(t)
	overrideSessionPathFunctions(t, paths)

	sessions := &Sessions{Sessions: make(map[string]*Session)}

	specialNames := []string{
		"session-with-dashes",
		"session_with_underscores",
		"session.with.dots",
		"session with spaces",
		"session/with/slashes",
		"session:with:colons",
	}

	for _, name := range specialNames {
		sessions.AddSession(name, &Session{
			URL:         "https://" + name,
			AccessToken: "token-" + name,
			CreatedAt:   time.Now(),
		})
	}

	err := sessions.Save()
	require.NoError(t, err)

	loaded, err := LoadSessions()
	require.NoError(t, err)

	for _, name := range specialNames {
		session, err := loaded.GetSession(name)
		require.NoError(t, err, "Failed to get session with name: %s", name)
		assert.Equal(t, "https://"+name, session.URL)
	}
}

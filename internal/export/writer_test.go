package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSession(t *testing.T) {
	w := NewWriter(t.TempDir())
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	sessionID, files, err := w.WriteSession("login_checks", now, []Document{
		{Kind: "plain", Content: "# Test Cases\n"},
		{Kind: "bdd", Content: "# BDD Test Scenarios\n"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sessionID, "session_20250314_092653_"), "sessionID = %s", sessionID)

	require.Len(t, files, 2)
	assert.Equal(t, "login_checks_plain.md", files[0].Name)
	assert.Equal(t, "plain", files[0].Kind)
	assert.Equal(t, "login_checks_bdd.md", files[1].Name)

	data, err := os.ReadFile(files[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "# Test Cases\n", string(data))
}

func TestWriteSession_DefaultPrefix(t *testing.T) {
	w := NewWriter(t.TempDir())

	_, files, err := w.WriteSession("", time.Now(), []Document{{Kind: "plain", Content: "x"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "test_cases_plain.md", files[0].Name)
}

func TestWriteSession_DistinctSessionDirs(t *testing.T) {
	w := NewWriter(t.TempDir())
	now := time.Now()

	first, _, err := w.WriteSession("p", now, []Document{{Kind: "plain", Content: "a"}})
	require.NoError(t, err)
	second, _, err := w.WriteSession("p", now, []Document{{Kind: "plain", Content: "b"}})
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same timestamp must still yield distinct sessions")
}

func TestResolve(t *testing.T) {
	w := NewWriter(t.TempDir())

	sessionID, files, err := w.WriteSession("p", time.Now(), []Document{{Kind: "bdd", Content: "scenario"}})
	require.NoError(t, err)

	path, err := w.Resolve(sessionID, files[0].Name)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "scenario", string(data))
}

func TestResolve_RejectsTraversal(t *testing.T) {
	base := t.TempDir()
	secret := filepath.Join(filepath.Dir(base), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("keep out"), 0o644))

	w := NewWriter(base)

	for _, tt := range []struct {
		name    string
		session string
		file    string
	}{
		{"dotdot session", "..", "secret.txt"},
		{"dotdot file", "session_x", filepath.Join("..", "..", "secret.txt")},
		{"absolute file", "session_x", secret},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Resolve(tt.session, tt.file)
			assert.Error(t, err)
		})
	}
}

func TestResolve_MissingFile(t *testing.T) {
	w := NewWriter(t.TempDir())

	_, err := w.Resolve("session_nope", "gone.md")
	assert.Error(t, err)
}

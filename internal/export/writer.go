// Package export writes rendered documents to per-session output
// directories on behalf of the transport and CLI layers.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document is one rendered markdown file within a session.
type Document struct {
	Kind    string // e.g. "plain", "bdd"
	Content string
}

// File is a written document's location.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"type"`
}

// Writer writes sessions under a fixed base directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// BaseDir returns the session root directory.
func (w *Writer) BaseDir() string { return w.baseDir }

// WriteSession writes the documents into a fresh session directory and
// returns the session id plus one File per document in input order.
func (w *Writer) WriteSession(prefix string, now time.Time, docs []Document) (string, []File, error) {
	if prefix == "" {
		prefix = "test_cases"
	}
	sessionID := fmt.Sprintf("session_%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8])
	sessionDir := filepath.Join(w.baseDir, sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create session dir: %w", err)
	}

	files := make([]File, 0, len(docs))
	for _, doc := range docs {
		name := fmt.Sprintf("%s_%s.md", prefix, doc.Kind)
		path := filepath.Join(sessionDir, name)
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return "", nil, fmt.Errorf("write %s: %w", name, err)
		}
		files = append(files, File{Name: name, Path: path, Kind: doc.Kind})
	}
	return sessionID, files, nil
}

// Resolve maps a session id and file name back to a path, refusing anything
// that escapes the base directory.
func (w *Writer) Resolve(sessionID, name string) (string, error) {
	path := filepath.Join(w.baseDir, sessionID, name)
	cleanBase, err := filepath.Abs(w.baseDir)
	if err != nil {
		return "", err
	}
	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if cleanPath != cleanBase && !isWithin(cleanBase, cleanPath) {
		return "", fmt.Errorf("file outside output directory")
	}
	if _, err := os.Stat(cleanPath); err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}
	return cleanPath, nil
}

func isWithin(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

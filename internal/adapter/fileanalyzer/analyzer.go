// Package fileanalyzer turns local files into supporting-context blocks for
// the prompt builder. Only text-based formats are read directly; richer
// extraction (PDF, Office, OCR) belongs to an external pipeline feeding the
// same ContextBlock shape.
package fileanalyzer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

// ErrUnsupportedFile marks a file whose format this analyzer cannot read.
var ErrUnsupportedFile = errors.New("unsupported file format")

// maxFileSize caps extracted context so one large file cannot blow the
// prompt budget.
const maxFileSize = 1 << 20 // 1 MiB

var textExtensions = map[string]bool{
	".csv":      true,
	".json":     true,
	".log":      true,
	".markdown": true,
	".md":       true,
	".txt":      true,
	".xml":      true,
	".yaml":     true,
	".yml":      true,
}

// Analyze reads the file and returns it as a context block labeled with its
// base name.
func Analyze(path string) (testgen.ContextBlock, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] {
		return testgen.ContextBlock{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return testgen.ContextBlock{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > maxFileSize {
		return testgen.ContextBlock{}, fmt.Errorf("%s exceeds %d byte limit", filepath.Base(path), maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return testgen.ContextBlock{}, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return testgen.ContextBlock{}, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnsupportedFile, filepath.Base(path))
	}

	return testgen.ContextBlock{
		Filename: filepath.Base(path),
		Text:     string(data),
	}, nil
}

// AnalyzeAll analyzes every path, returning blocks for the readable files
// and one error per file that could not be read.
func AnalyzeAll(paths []string) ([]testgen.ContextBlock, []error) {
	blocks := make([]testgen.ContextBlock, 0, len(paths))
	var errs []error
	for _, path := range paths {
		block, err := Analyze(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, errs
}

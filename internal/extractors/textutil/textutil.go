// Package textutil holds helpers shared by the extractors.
package textutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// TitleFromName derives a human-readable title from a file name.
func TitleFromName(name string) string {
	filename := filepath.Base(name)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// DecodeText validates UTF-8 text, strips a byte order mark and normalises
// line endings to "\n".
func DecodeText(content []byte) (string, bool) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(content) {
		return "", false
	}
	s := strings.ReplaceAll(string(content), "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n"), true
}

// CollapseSpaces replaces runs of whitespace with a single space and trims.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WithTempFile writes content to a temporary file with the given extension,
// calls fn with its path, and removes the file afterwards. File-based
// parsers use it to read in-memory documents.
func WithTempFile(content []byte, ext string, fn func(path string) error) error {
	f, err := os.CreateTemp("", "jse-extract-*"+ext)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return fn(path)
}

// CopyMetadata creates a shallow copy of metadata, never returning nil.
func CopyMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

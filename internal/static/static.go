// Package static reads files from disk into ready-to-send HTTP responses.
package static

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mtlprog/pageserve/internal/domain"
)

// DefaultContentType is used when the file extension has no registered type.
const DefaultContentType = "text/html; charset=utf-8"

// Result is the response produced for a served file.
type Result struct {
	Status      int
	ContentType string
	Body        []byte
}

// ServeFile reads path and returns its contents with an inferred content type.
// The file is read on every call; nothing is cached between calls.
// Missing files yield domain.ErrFileNotFound, every other failure
// (directories, permissions, I/O faults) yields domain.ErrFileUnreadable.
func ServeFile(path string) (Result, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return Result{Status: http.StatusNotFound}, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		return Result{Status: http.StatusInternalServerError}, fmt.Errorf("%w: %w", domain.ErrFileUnreadable, err)
	}

	return Result{
		Status:      http.StatusOK,
		ContentType: ContentType(path),
		Body:        body,
	}, nil
}

// ContentType infers the MIME type of path from its extension.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".html", ".htm":
		return DefaultContentType
	case "":
		return DefaultContentType
	}

	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return DefaultContentType
}

// Package blob implements the file-backed blob store behind item image
// uploads: bytes in, stable URL out.
package blob

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes blobs under a directory and hands out URLs rooted at a
// base path served by Handler.
type Store struct {
	dir     string
	baseURL string
}

// NewStore creates the blob directory if needed.
func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Put stores data under a random name with the given extension and
// returns the URL it will be served from.
func (s *Store) Put(data []byte, ext string) (string, error) {
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return s.baseURL + "/" + name, nil
}

// Handler serves the stored blobs.
func (s *Store) Handler() http.Handler {
	return http.FileServer(http.Dir(s.dir))
}

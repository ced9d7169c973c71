// Package blob stores uploaded resume files on the local filesystem and
// hands out the URL paths under which the API serves them back.
package blob

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path prefix under which stored files are served.
const URLPrefix = "/uploads"

// ErrInvalidPath marks a URL path that does not address a file inside the
// uploads root.
var ErrInvalidPath = errors.New("invalid blob path")

// Store is a filesystem-backed resume blob store. Files are namespaced by
// owning user id so a leaked filename from one user cannot address another
// user's uploads.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates the uploads root if needed and returns a store over it.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("uploads root is required")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads root: %w", err)
	}

	return &Store{root: root, logger: logger}, nil
}

// Root returns the filesystem directory backing the store.
func (s *Store) Root() string {
	return s.root
}

// Save writes an uploaded file for ownerID and returns its public URL path,
// e.g. /uploads/<ownerID>/<uuid>.pdf. The original filename only contributes
// its extension; the stored name is always generated.
func (s *Store) Save(ownerID, originalName string, r io.Reader) (string, error) {
	ext := filepath.Ext(originalName)
	name := uuid.New().String() + ext

	dir := filepath.Join(s.root, ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create user uploads dir: %w", err)
	}

	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create blob file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write blob file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to close blob file: %w", err)
	}

	urlPath := path.Join(URLPrefix, ownerID, name)
	s.logger.Debug("Stored resume blob",
		slog.String("owner_id", ownerID),
		slog.String("path", urlPath),
	)

	return urlPath, nil
}

// Remove deletes the file behind a URL path previously returned by Save.
// A path that no longer exists is not an error; removal is idempotent.
func (s *Store) Remove(urlPath string) error {
	full, err := s.Resolve(urlPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove blob file: %w", err)
	}

	s.logger.Debug("Removed resume blob", slog.String("path", urlPath))
	return nil
}

// Resolve maps a public URL path to its filesystem location, rejecting
// anything that would escape the uploads root.
func (s *Store) Resolve(urlPath string) (string, error) {
	rel, ok := strings.CutPrefix(urlPath, URLPrefix+"/")
	if !ok {
		return "", fmt.Errorf("%w: %q is not under %s", ErrInvalidPath, urlPath, URLPrefix)
	}

	cleaned := path.Clean(rel)
	if cleaned != rel || strings.HasPrefix(cleaned, "..") || strings.Contains(cleaned, "/../") {
		return "", fmt.Errorf("%w: %q is not a stored blob path", ErrInvalidPath, urlPath)
	}

	full := filepath.Join(s.root, filepath.FromSlash(cleaned))

	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve uploads root: %w", err)
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve blob path: %w", err)
	}
	if !strings.HasPrefix(absFull, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes uploads root", ErrInvalidPath, urlPath)
	}

	return absFull, nil
}

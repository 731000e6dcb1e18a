package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/aoperat/centumbob/constants"
	"github.com/aoperat/centumbob/internal/common"
)

const fileIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var (
	ErrUnsupportedExt = fmt.Errorf("unsupported image extension: %w", common.ErrInvalidInput)
	ErrImageTooLarge  = fmt.Errorf("image exceeds %d bytes: %w", constants.MaxImageBytes, common.ErrInvalidInput)
	ErrEmptyImage     = fmt.Errorf("image is empty: %w", common.ErrInvalidInput)
	ErrPathEscape     = fmt.Errorf("path escapes the upload root: %w", common.ErrInvalidInput)
)

// ImageStore keeps uploaded menu images under a single root directory laid out as
// <root>/<restaurant>/<date range>/image_<unix ms>_<id><ext>. Paths handed out are
// relative to root and always use forward slashes.
type ImageStore struct {
	root   string
	now    func() time.Time
	newID  func() (string, error)
	logger *slog.Logger
}

func NewImageStore(root string, logger *slog.Logger) *ImageStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageStore{
		root:   root,
		now:    time.Now,
		newID:  func() (string, error) { return gonanoid.Generate(fileIDAlphabet, 8) },
		logger: logger,
	}
}

// Root returns the upload directory.
func (s *ImageStore) Root() string { return s.root }

// Save writes data and returns its path relative to the store root.
func (s *ImageStore) Save(restaurant, dateRange, ext string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if len(data) > constants.MaxImageBytes {
		return "", ErrImageTooLarge
	}
	if !AllowedExt(ext) {
		return "", fmt.Errorf("extension %q: %w", ext, ErrUnsupportedExt)
	}
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}

	name := fmt.Sprintf("image_%d_%s.%s", s.now().UnixMilli(), id, constants.NormalizeExt(ext))
	rel := path.Join(SafeName(restaurant), SafeName(dateRange), name)
	abs := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	s.logger.Info("ingest.image.saved", "path", rel, "bytes", len(data))
	return rel, nil
}

// Resolve maps a stored relative path to a file path under the root. Absolute paths and
// paths that climb out of the root are rejected.
func (s *ImageStore) Resolve(rel string) (string, error) {
	rel = strings.TrimSpace(strings.ReplaceAll(rel, `\`, "/"))
	if rel == "" || strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return "", ErrPathEscape
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrPathEscape
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Read returns the bytes of a stored image.
func (s *ImageStore) Read(rel string) ([]byte, error) {
	abs, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("image %q: %w", rel, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return data, nil
}

// Exists reports whether rel names a stored regular file.
func (s *ImageStore) Exists(rel string) bool {
	abs, err := s.Resolve(rel)
	if err != nil {
		return false
	}
	fi, err := os.Stat(abs)
	return err == nil && fi.Mode().IsRegular()
}

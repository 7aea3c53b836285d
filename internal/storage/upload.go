package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// URLPrefix is the route under which stored files are served.
const URLPrefix = "/uploads/"

const hashPrefixLen = 12

var (
	ErrUnsupportedImage = errors.New("unsupported image file format")
	ErrInvalidFilename  = errors.New("invalid file name")
	ErrFileTooLarge     = errors.New("file too large")
	ErrFileNotFound     = errors.New("file not found")
)

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// FileSink stores uploaded images in a flat directory.
type FileSink struct {
	dir      string
	maxBytes int64
}

// NewFileSink creates dir if needed. maxBytes <= 0 disables the size limit.
func NewFileSink(dir string, maxBytes int64) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &FileSink{dir: dir, maxBytes: maxBytes}, nil
}

// AllowedFile reports whether filename has an allow-listed image extension.
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

// SanitizeFilename reduces filename to a safe "<slug>.<ext>" form with no
// directory components. It returns "" if nothing usable remains.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	i := strings.LastIndex(filename, ".")
	if i <= 0 {
		return ""
	}
	base := slug.Make(filename[:i])
	ext := strings.ToLower(filename[i+1:])
	if base == "" || ext == "" {
		return ""
	}
	return base + "." + ext
}

// Store writes the bytes read from r and returns the reference to serve them
// from. The key combines postID, a content hash and the sanitized filename, so
// uploads for different posts never overwrite each other.
func (s *FileSink) Store(_ context.Context, postID, filename string, r io.Reader) (string, error) {
	if !AllowedFile(filename) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, filename)
	}
	name := SanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxBytes)
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])[:hashPrefixLen] + "-" + name
	if p := slug.Make(postID); p != "" {
		key = p + "-" + key
	}

	if err := writeFileAtomic(filepath.Join(s.dir, key), data); err != nil {
		return "", err
	}
	return URLPrefix + key, nil
}

// Open returns the on-disk path for a stored name. Names that are not already
// in sanitized form are refused.
func (s *FileSink) Open(name string) (string, error) {
	if name == "" || name != SanitizeFilename(name) || !AllowedFile(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrFileNotFound, name)
		}
		return "", fmt.Errorf("stat upload %q: %w", name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %q", ErrFileNotFound, name)
	}
	return path, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp upload: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

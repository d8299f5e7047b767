// Package storage keeps uploaded files in named areas and hands out public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ougirez/zstats/internal/pkg/constants"
	"github.com/ougirez/zstats/internal/pkg/logger"
	"github.com/spf13/afero"
)

type Storage interface {
	// Upload stores payload under area and returns its object path and public URL.
	Upload(ctx context.Context, area, name string, payload io.Reader, opts ...UploadOption) (*Object, error)
	Remove(ctx context.Context, area, objectPath string) error
	PublicURL(area, objectPath string) string
	// Open returns the stored file for serving.
	Open(area, objectPath string) (afero.File, error)
}

type Object struct {
	Path      string
	PublicURL string
	Size      int64
}

type uploadConfig struct {
	maxSize int64
}

type UploadOption func(*uploadConfig)

// WithMaxSize rejects uploads larger than n bytes. Zero disables the check.
func WithMaxSize(n int64) UploadOption {
	return func(c *uploadConfig) {
		c.maxSize = n
	}
}

type fsStorage struct {
	fs      afero.Fs
	baseURL string
	areas   map[string]struct{}
}

// New returns a Storage rooted at fs. Only the listed areas are writable.
func New(fs afero.Fs, baseURL string, areas []string) Storage {
	s := &fsStorage{
		fs:      fs,
		baseURL: strings.TrimRight(baseURL, "/"),
		areas:   make(map[string]struct{}, len(areas)),
	}
	for _, a := range areas {
		s.areas[a] = struct{}{}
	}
	return s
}

// NewOS stores files on disk under root.
func NewOS(root, baseURL string) Storage {
	fs := afero.NewBasePathFs(afero.NewOsFs(), root)
	return New(fs, baseURL, []string{constants.StorageAreaMedia, constants.StorageAreaAssets})
}

func (s *fsStorage) checkArea(area string) error {
	if _, ok := s.areas[area]; !ok {
		return fmt.Errorf("%w: unknown storage area %q", constants.ErrBadRequest, area)
	}
	return nil
}

// objectName builds a unique, path-safe name keeping the original extension.
func objectName(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	return uuid.NewString() + ext
}

func (s *fsStorage) Upload(ctx context.Context, area, name string, payload io.Reader, opts ...UploadOption) (*Object, error) {
	var cfg uploadConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := s.checkArea(area); err != nil {
		return nil, err
	}

	if err := s.fs.MkdirAll(area, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", area, err)
	}

	objectPath := objectName(name)
	full := path.Join(area, objectPath)

	f, err := s.fs.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", full, err)
	}

	src := payload
	if cfg.maxSize > 0 {
		src = io.LimitReader(payload, cfg.maxSize+1)
	}

	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && cfg.maxSize > 0 && n > cfg.maxSize {
		err = constants.ErrPayloadTooLarge
	}
	if err != nil {
		if rmErr := s.fs.Remove(full); rmErr != nil {
			logger.Warnf(ctx, "storage: failed to clean up %s: %s", full, rmErr.Error())
		}
		return nil, err
	}

	return &Object{
		Path:      objectPath,
		PublicURL: s.PublicURL(area, objectPath),
		Size:      n,
	}, nil
}

func (s *fsStorage) Remove(_ context.Context, area, objectPath string) error {
	if err := s.checkArea(area); err != nil {
		return err
	}

	full, err := cleanPath(area, objectPath)
	if err != nil {
		return err
	}

	if err = s.fs.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return constants.ErrDBNotFound
		}
		return err
	}
	return nil
}

func (s *fsStorage) Open(area, objectPath string) (afero.File, error) {
	if err := s.checkArea(area); err != nil {
		return nil, err
	}

	full, err := cleanPath(area, objectPath)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, constants.ErrDBNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *fsStorage) PublicURL(area, objectPath string) string {
	return s.baseURL + "/" + url.PathEscape(area) + "/" + url.PathEscape(objectPath)
}

func cleanPath(area, objectPath string) (string, error) {
	if objectPath == "" || strings.Contains(objectPath, "..") || strings.ContainsAny(objectPath, `/\`) {
		return "", fmt.Errorf("%w: invalid object path %q", constants.ErrBadRequest, objectPath)
	}
	return path.Join(area, objectPath), nil
}

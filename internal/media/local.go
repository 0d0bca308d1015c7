package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage хранит файлы на диске; каталог раздается роутером как /uploads
type LocalStorage struct {
	baseDir   string
	publicURL string
}

// NewLocalStorage создает каталог baseDir, если его нет
func NewLocalStorage(baseDir, publicURL string) (*LocalStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &LocalStorage{baseDir: abs, publicURL: publicURL}, nil
}

// Dir возвращает корневой каталог хранилища
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// resolve не дает ключу выйти за пределы baseDir
func (s *LocalStorage) resolve(key string) (string, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(filepath.Clean("/"+key)))
	if full == s.baseDir || !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return full, nil
}

// Upload копирует поток в файл
func (s *LocalStorage) Upload(ctx context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("failed to create media dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", key, err)
	}

	return joinURL(s.publicURL, key), nil
}

// Delete удаляет файл
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

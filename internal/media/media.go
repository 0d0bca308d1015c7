// Package media хранит загруженные пользователями файлы
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"connectsphere/internal/config"
	"connectsphere/internal/utils"
)

// Storage - объектное хранилище медиафайлов
type Storage interface {
	// Upload сохраняет файл под ключом key и возвращает его публичный URL
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete удаляет файл; отсутствие файла ошибкой не считается
	Delete(ctx context.Context, key string) error
}

// NewKey строит ключ вида <folder>/<unixnano>-<random>-<имя файла>
func NewKey(folder, fileName string) string {
	name := fmt.Sprintf("%d-%s-%s", time.Now().UnixNano(), utils.RandomString(8), utils.SanitizeFileName(fileName))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// New создает хранилище по cfg.Media.Driver
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Media.Driver {
	case config.MediaS3:
		return NewS3Storage(ctx, &cfg.S3)
	case config.MediaLocal:
		return NewLocalStorage(cfg.Media.LocalDir, cfg.Media.PublicURL)
	}
	return nil, fmt.Errorf("unknown media driver %q", cfg.Media.Driver)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

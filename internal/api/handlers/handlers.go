// Package handlers содержит обработчики маршрутов API
package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"connectsphere/internal/api/middleware"
	"connectsphere/internal/db/queries"
	"connectsphere/internal/media"
	"connectsphere/internal/metrics"
	"connectsphere/internal/models"
	"connectsphere/internal/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// callerOf возвращает вызывающего, сохраненного аутентификацией
func callerOf(c *gin.Context) (*models.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return nil, middleware.ErrNoCaller
	}
	return caller, nil
}

// pageOf читает page и limit; значения уже проверены правилами маршрута
func pageOf(c *gin.Context) models.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return models.NewPage(page, limit)
}

// bodyField возвращает непустое значение поля тела (JSON или multipart)
func bodyField(c *gin.Context, field string) (string, bool) {
	v := validation.FromGin(c).Lookup(validation.InBody, field)
	raw := strings.TrimSpace(v.Raw)
	return raw, v.Present && raw != ""
}

// formFile возвращает загруженный файл, если он есть
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	return validation.FromGin(c).Lookup(validation.InFile, field).File
}

// authorsOf загружает авторов по идентификаторам; удаленные авторы пропускаются
func authorsOf(ctx context.Context, users queries.UserQueriesInterface, ids []string) (map[string]*models.User, error) {
	authors := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if _, ok := authors[id]; ok {
			continue
		}
		u, err := users.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				authors[id] = nil
				continue
			}
			return nil, fmt.Errorf("failed to load author %s: %w", id, err)
		}
		authors[id] = u
	}
	return authors, nil
}

// Uploader загружает и удаляет медиафайлы пользователей
type Uploader struct {
	storage media.Storage
	folder  string
	log     *zap.Logger
}

// NewUploader создает новый экземпляр Uploader
func NewUploader(storage media.Storage, folder string, log *zap.Logger) *Uploader {
	return &Uploader{storage: storage, folder: folder, log: log}
}

// Upload передает файл в хранилище без промежуточной записи на диск
func (u *Uploader) Upload(ctx context.Context, fh *multipart.FileHeader) (models.MediaFile, error) {
	f, err := fh.Open()
	if err != nil {
		return models.MediaFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	key := media.NewKey(u.folder, fh.Filename)
	url, err := u.storage.Upload(ctx, key, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		return models.MediaFile{}, err
	}
	return models.MediaFile{Name: key, URL: url}, nil
}

// Remove удаляет файл; ошибка только логируется
func (u *Uploader) Remove(ctx context.Context, key string) {
	if key == "" || key == models.DefaultProfilePicName {
		return
	}
	if err := u.storage.Delete(ctx, key); err != nil {
		metrics.MediaCleanupFailuresTotal.Inc()
		u.log.Warn("Failed to delete media", zap.String("key", key), zap.Error(err))
	}
}

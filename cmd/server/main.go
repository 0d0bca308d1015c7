package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectsphere/internal/api"
	"connectsphere/internal/config"
	"connectsphere/internal/db/store"
	"connectsphere/internal/logger"
	"connectsphere/internal/media"
	"connectsphere/internal/token"
	"connectsphere/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		File:     cfg.Log.File,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Подключаемся к хранилищу с ограничением по времени
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	st, err := store.Open(startCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			zapLogger.Error("Failed to close store", zap.Error(err))
		}
	}()

	mediaStorage, err := media.New(startCtx, cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize media storage", zap.String("driver", cfg.Media.Driver), zap.Error(err))
	}

	maker, err := token.NewJWTMaker(cfg.JWT.Secret)
	if err != nil {
		zapLogger.Fatal("Failed to create token maker", zap.Error(err))
	}

	// Настраиваем маршруты
	router := api.SetupRouter(api.Dependencies{
		Config: cfg,
		Log:    zapLogger,
		Store:  st,
		Maker:  maker,
		Hasher: utils.NewPasswordHasher(cfg.BcryptCost),
		Media:  mediaStorage,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Server is starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Корректное завершение работы
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	// Даем 10 секунд на завершение текущих запросов
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("Server exited properly")
}

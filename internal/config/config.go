package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилищ
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	MediaLocal = "local"
	MediaS3    = "s3"
)

// Config содержит все настройки приложения
type Config struct {
	Env          string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	StoreDriver string
	BcryptCost  int

	CORSAllowedOrigins string

	Mongo     MongoConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Media     MediaConfig
	S3        S3Config
	Log       LogConfig
	RateLimit RateLimitConfig
}

// MongoConfig содержит настройки MongoDB
type MongoConfig struct {
	URI    string
	DBName string
}

// DatabaseConfig содержит настройки базы данных
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret     string
	ExpireTime time.Duration
}

// MediaConfig содержит настройки хранения медиафайлов
type MediaConfig struct {
	Driver    string
	Folder    string
	LocalDir  string
	PublicURL string
	MaxBytes  int64
}

// S3Config содержит настройки S3-совместимого хранилища
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level    string
	Encoding string
	File     string
}

// RateLimitConfig ограничивает частоту запросов к /auth с одного IP
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// environment - плоское отображение переменных окружения
type environment struct {
	Env          string        `envconfig:"ENV" default:"development"`
	Port         string        `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"mongo"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"12"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	MongoURI    string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDBName string `envconfig:"MONGO_DBNAME" default:"connectsphere"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"root"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"password"`
	DBName     string `envconfig:"DB_NAME" default:"connectsphere"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret string `envconfig:"JWT_SECRET_KEY" required:"true"`
	JWTExpire TTL    `envconfig:"JWT_EXPIRE" default:"24h"`

	MediaDriver    string `envconfig:"MEDIA_DRIVER" default:"local"`
	MediaFolder    string `envconfig:"MEDIA_FOLDER" default:"connectSphere"`
	MediaLocalDir  string `envconfig:"MEDIA_LOCAL_DIR" default:"./uploads"`
	MediaPublicURL string `envconfig:"MEDIA_PUBLIC_URL" default:"http://localhost:8080/uploads"`
	MediaMaxBytes  int64  `envconfig:"MEDIA_MAX_BYTES" default:"10485760"`

	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3PublicURL string `envconfig:"S3_PUBLIC_URL"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogFile     string `envconfig:"LOG_FILE"`

	AuthRateLimit int `envconfig:"AUTH_RATE_LIMIT" default:"20"`
	AuthRateBurst int `envconfig:"AUTH_RATE_BURST" default:"5"`
}

func (e *environment) config() *Config {
	return &Config{
		Env:                e.Env,
		Port:               e.Port,
		ReadTimeout:        e.ReadTimeout,
		WriteTimeout:       e.WriteTimeout,
		StoreDriver:        e.StoreDriver,
		BcryptCost:         e.BcryptCost,
		CORSAllowedOrigins: e.CORSAllowedOrigins,
		Mongo:              MongoConfig{URI: e.MongoURI, DBName: e.MongoDBName},
		Database: DatabaseConfig{
			Host:     e.DBHost,
			Port:     e.DBPort,
			User:     e.DBUser,
			Password: e.DBPassword,
			DBName:   e.DBName,
			SSLMode:  e.DBSSLMode,
		},
		JWT: JWTConfig{Secret: e.JWTSecret, ExpireTime: e.JWTExpire.Duration()},
		Media: MediaConfig{
			Driver:    e.MediaDriver,
			Folder:    e.MediaFolder,
			LocalDir:  e.MediaLocalDir,
			PublicURL: e.MediaPublicURL,
			MaxBytes:  e.MediaMaxBytes,
		},
		S3: S3Config{
			Bucket:    e.S3Bucket,
			Region:    e.S3Region,
			Endpoint:  e.S3Endpoint,
			AccessKey: e.S3AccessKey,
			SecretKey: e.S3SecretKey,
			PublicURL: e.S3PublicURL,
		},
		Log:       LogConfig{Level: e.LogLevel, Encoding: e.LogEncoding, File: e.LogFile},
		RateLimit: RateLimitConfig{PerMinute: e.AuthRateLimit, Burst: e.AuthRateBurst},
	}
}

// TTL - срок жизни токена: длительность Go ("24h"), дни ("7d") или секунды ("3600")
type TTL time.Duration

// Decode реализует envconfig.Decoder
func (t *TTL) Decode(value string) error {
	d, err := ParseTTL(value)
	if err != nil {
		return err
	}
	*t = TTL(d)
	return nil
}

// Duration возвращает значение как time.Duration
func (t TTL) Duration() time.Duration {
	return time.Duration(t)
}

// ParseTTL разбирает срок жизни токена
func ParseTTL(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty duration")
	}

	var d time.Duration
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		d = time.Duration(n) * time.Second
	} else if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.ParseInt(days, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		d, err = time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", value, err)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %q", value)
	}
	return d, nil
}

// AllowedOrigins разбивает CORSAllowedOrigins на список
func (c *Config) AllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// IsProduction сообщает, что сервис запущен в боевом режиме
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT_SECRET_KEY must be at least 32 characters")
	}
	switch c.StoreDriver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.Media.Driver {
	case MediaLocal:
	case MediaS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required when MEDIA_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown MEDIA_DRIVER %q", c.Media.Driver)
	}
	if c.Media.MaxBytes <= 0 {
		return errors.New("MEDIA_MAX_BYTES must be positive")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}
	return nil
}

// Load загружает конфигурацию: сначала необязательный .env файл, затем окружение
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to check %s: %w", envFilePath, err)
		}
	}

	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	cfg := env.config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

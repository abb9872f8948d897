package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort = "5000"
	defaultAppEnv     = "development"
	defaultCORSOrigin = "http://localhost:5173"
	defaultBucket     = "skillswap-avatars"

	// Секрет для разработки. В production обязателен JWT_SECRET.
	devJWTSecret = "skillswap-dev-secret" //nolint:gosec // Значение только для локального запуска

	// Переменные окружения.
	envServerPort    = "SERVER_PORT"
	envTLSCertFile   = "TLS_CERT_FILE"
	envTLSKeyFile    = "TLS_KEY_FILE"
	envDatabaseDSN   = "DATABASE_DSN"
	envJWTSecret     = "JWT_SECRET" //nolint:gosec // Ложное срабатывание, это имя переменной окружения
	envAppEnv        = "APP_ENV"
	envRedisAddr     = "REDIS_ADDR"
	envMinioEndpoint = "MINIO_ENDPOINT"
	envMinioUser     = "MINIO_USER"
	envMinioPassword = "MINIO_PASSWORD" //nolint:gosec // Ложное срабатывание, это имя переменной окружения
	envMinioBucket   = "MINIO_BUCKET"
	envCORSOrigins   = "CORS_ORIGINS"
)

// config хранит конфигурацию сервера.
// Пустые DatabaseDSN, RedisAddr и MinioEndpoint включают хранилища в памяти.
type config struct {
	Port          string
	CertFile      string
	KeyFile       string
	DatabaseDSN   string
	JWTSecret     string
	AppEnv        string
	RedisAddr     string
	MinioEndpoint string
	MinioUser     string
	MinioPassword string
	MinioBucket   string
	CORSOrigins   []string
}

// isProduction сообщает, запущен ли сервер в боевом окружении.
func (c *config) isProduction() bool {
	return c.AppEnv == "production"
}

// useTLS сообщает, заданы ли сертификат и ключ.
func (c *config) useTLS() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// parseFlags разбирает флаги и переменные окружения, возвращает config или ошибку.
// Перед разбором подгружается .env из текущего каталога, если он есть.
func parseFlags() (*config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Не удалось загрузить .env: %v", err)
	}

	cfg := &config{}
	var corsOrigins string

	flag.StringVar(&cfg.Port, "port", "",
		fmt.Sprintf("Порт HTTP-сервера (env: %s, default: %s)", envServerPort, defaultServerPort))
	flag.StringVar(&cfg.CertFile, "cert-file", "",
		fmt.Sprintf("Путь к файлу TLS-сертификата (env: %s)", envTLSCertFile))
	flag.StringVar(&cfg.KeyFile, "key-file", "",
		fmt.Sprintf("Путь к файлу TLS-ключа (env: %s)", envTLSKeyFile))
	flag.StringVar(&cfg.DatabaseDSN, "database-dsn", "",
		fmt.Sprintf("Строка подключения к PostgreSQL (env: %s)", envDatabaseDSN))
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", "",
		fmt.Sprintf("Секрет подписи сессий (env: %s)", envJWTSecret))
	flag.StringVar(&cfg.AppEnv, "env", "",
		fmt.Sprintf("Окружение: development или production (env: %s)", envAppEnv))
	flag.StringVar(&cfg.RedisAddr, "redis-addr", "",
		fmt.Sprintf("Адрес Redis для отзыва сессий (env: %s)", envRedisAddr))
	flag.StringVar(&cfg.MinioEndpoint, "minio-endpoint", "",
		fmt.Sprintf("Адрес MinIO для аватаров (env: %s)", envMinioEndpoint))
	flag.StringVar(&corsOrigins, "cors-origins", "",
		fmt.Sprintf("Разрешенные origin через запятую (env: %s)", envCORSOrigins))

	flag.Parse()

	// Применяем переменные окружения, если флаги не заданы
	applyEnv(&cfg.Port, envServerPort, defaultServerPort)
	applyEnv(&cfg.CertFile, envTLSCertFile, "")
	applyEnv(&cfg.KeyFile, envTLSKeyFile, "")
	applyEnv(&cfg.DatabaseDSN, envDatabaseDSN, "")
	applyEnv(&cfg.JWTSecret, envJWTSecret, "")
	applyEnv(&cfg.AppEnv, envAppEnv, defaultAppEnv)
	applyEnv(&cfg.RedisAddr, envRedisAddr, "")
	applyEnv(&cfg.MinioEndpoint, envMinioEndpoint, "")
	applyEnv(&cfg.MinioUser, envMinioUser, "minioadmin")
	applyEnv(&cfg.MinioPassword, envMinioPassword, "minioadmin")
	applyEnv(&cfg.MinioBucket, envMinioBucket, defaultBucket)
	applyEnv(&corsOrigins, envCORSOrigins, defaultCORSOrigin)
	cfg.CORSOrigins = splitList(corsOrigins)

	// Проверяем обязательные параметры
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, errors.New("для TLS нужны оба параметра: --cert-file (" + envTLSCertFile +
			") и --key-file (" + envTLSKeyFile + ")")
	}
	if cfg.JWTSecret == "" {
		if cfg.isProduction() {
			return nil, errors.New("не указан секрет сессий (--jwt-secret или " + envJWTSecret + ")")
		}
		log.Printf("Секрет сессий не задан, используется секрет для разработки")
		cfg.JWTSecret = devJWTSecret
	}

	return cfg, nil
}

// applyEnv заполняет пустое значение из переменной окружения или значением по умолчанию.
func applyEnv(target *string, key, fallback string) {
	if *target != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*target = value
		return
	}
	*target = fallback
}

// splitList разбирает список через запятую, отбрасывая пустые элементы.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/maynagashev/skillswap/server/internal/handlers"
	appmiddleware "github.com/maynagashev/skillswap/server/internal/middleware"
	"github.com/maynagashev/skillswap/server/internal/repository"
	"github.com/maynagashev/skillswap/server/internal/services"
	"github.com/maynagashev/skillswap/server/internal/session"
	"github.com/maynagashev/skillswap/server/internal/storage"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	// Лимит попыток входа и регистрации с одного IP.
	authRateLimit = rate.Limit(1)
	authRateBurst = 10
)

// newPostgresDB подменяется в тестах.
var newPostgresDB = repository.NewPostgresDB

// Структура для хранения инициализированных зависимостей.
type dependencies struct {
	db          *sqlx.DB
	redis       *redis.Client
	fileStorage storage.FileStorage

	sessions    *session.Manager
	revocations session.RevocationStore
	authLimiter *appmiddleware.RateLimiter

	authHandler   *handlers.AuthHandler
	userHandler   *handlers.UserHandler
	swapHandler   *handlers.SwapHandler
	healthHandler *handlers.HealthHandler
}

// close освобождает соединения с внешними хранилищами.
func (d *dependencies) close() {
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Printf("Ошибка закрытия соединения с БД: %v", err)
		}
	}
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Printf("Ошибка закрытия соединения с Redis: %v", err)
		}
	}
}

// main - точка входа. Вызывает run и обрабатывает ошибку.
func main() {
	if err := run(); err != nil {
		log.Printf("Ошибка выполнения сервера: %v", err)
		os.Exit(1)
	}
}

// run содержит основную логику запуска сервера и возвращает ошибку.
func run() error {
	log.Println("Запуск сервера SkillSwap...")

	cfg, err := parseFlags()
	if err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("ошибка инициализации зависимостей: %w", err)
	}
	defer deps.close()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      setupRouter(deps, cfg.CORSOrigins),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if cfg.useTLS() {
			log.Printf("Запуск HTTPS-сервера на порту %s (сертификат: %s)", cfg.Port, cfg.CertFile)
			serveErr <- server.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
			return
		}
		log.Printf("Запуск HTTP-сервера на порту %s", cfg.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка запуска сервера: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Получен сигнал завершения, останавливаем сервер...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	log.Println("Сервер остановлен.")
	return nil
}

// setupDependencies инициализирует и возвращает все необходимые зависимости сервера.
// Для незаданных DATABASE_DSN, REDIS_ADDR и MINIO_ENDPOINT используются реализации в памяти.
func setupDependencies(ctx context.Context, cfg *config) (*dependencies, error) {
	deps := &dependencies{}
	checks := make(map[string]handlers.HealthCheck)

	// 1. Пользователи и запросы на обмен
	var (
		userRepo repository.UserRepository
		swapRepo repository.SwapRepository
	)
	if cfg.DatabaseDSN != "" {
		db, err := newPostgresDB(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации БД: %w", err)
		}
		deps.db = db
		if err = repository.Migrate(ctx, db); err != nil {
			deps.close()
			return nil, err
		}
		userRepo = repository.NewPostgresUserRepository(db)
		swapRepo = repository.NewPostgresSwapRepository(db)
		checks["database"] = db.PingContext
		log.Println("Соединение с БД успешно установлено.")
	} else {
		log.Println("DATABASE_DSN не задан, данные хранятся в памяти.")
		memUsers := repository.NewMemoryUserRepository()
		userRepo = memUsers
		swapRepo = repository.NewMemorySwapRepository(memUsers)
	}

	// 2. Отзыв сессий
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			deps.close()
			return nil, fmt.Errorf("ошибка подключения к Redis %s: %w", cfg.RedisAddr, err)
		}
		deps.redis = client
		deps.revocations = session.NewRedisStore(client)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Printf("Подключение к Redis %s установлено.", cfg.RedisAddr)
	} else {
		log.Println("REDIS_ADDR не задан, отозванные сессии хранятся в памяти.")
		deps.revocations = session.NewMemoryStore()
	}

	// 3. Хранилище аватаров
	if cfg.MinioEndpoint != "" {
		minioClient, err := storage.NewMinioClient(ctx, storage.MinioConfig{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioUser,
			SecretAccessKey: cfg.MinioPassword,
			UseSSL:          cfg.isProduction(),
			BucketName:      cfg.MinioBucket,
		})
		if err != nil {
			deps.close()
			return nil, fmt.Errorf("ошибка инициализации клиента MinIO: %w", err)
		}
		deps.fileStorage = minioClient
	} else {
		log.Println("MINIO_ENDPOINT не задан, аватары хранятся в памяти.")
		deps.fileStorage = storage.NewMemoryStorage()
	}
	checks["storage"] = deps.fileStorage.Ping

	// 4. Сервисы
	deps.sessions = session.NewManager(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, deps.sessions, deps.revocations, deps.fileStorage)
	userService := services.NewUserService(userRepo, deps.fileStorage)
	swapService := services.NewSwapService(swapRepo, userRepo)

	// 5. Обработчики
	deps.authLimiter = appmiddleware.NewRateLimiter(authRateLimit, authRateBurst)
	deps.authHandler = handlers.NewAuthHandler(authService, cfg.isProduction())
	deps.userHandler = handlers.NewUserHandler(userService)
	deps.swapHandler = handlers.NewSwapHandler(swapService)
	deps.healthHandler = handlers.NewHealthHandler(checks)

	return deps, nil
}

// setupRouter настраивает и возвращает роутер chi.
func setupRouter(deps *dependencies, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Маршруты --- //
	r.Get("/ping", handlers.Ping)
	r.Get("/health", deps.healthHandler.Health)

	authenticated := appmiddleware.Authenticator(deps.sessions, deps.revocations)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(deps.authLimiter.Handler)
				r.Post("/signup", deps.authHandler.Signup)
				r.Post("/login", deps.authHandler.Login)
			})

			r.With(appmiddleware.OptionalAuthenticator(deps.sessions, deps.revocations)).
				Post("/logout", deps.authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Get("/me", deps.authHandler.Me)
				r.Put("/profile", deps.authHandler.UpdateProfile)
				r.Put("/profile/avatar", deps.authHandler.UploadAvatar)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/browse", deps.userHandler.Browse)
			r.Get("/{id}/avatar", deps.userHandler.Avatar)
		})

		r.Route("/swaps", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", deps.swapHandler.List)
			r.Post("/send", deps.swapHandler.Send)
			r.Put("/respond", deps.swapHandler.Respond)
			r.Get("/summary", deps.swapHandler.Summary)
		})
	})
	return r
}

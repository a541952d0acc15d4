package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orderdesk/backend/internal/config"
	"github.com/orderdesk/backend/internal/handler"
	"github.com/orderdesk/backend/internal/logging"
	"github.com/orderdesk/backend/internal/repository"
	"github.com/orderdesk/backend/internal/service"
	"github.com/orderdesk/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("load config failed", "error", err)
	}
	logging.Setup("orderdesk-api", cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logging.Fatal("invalid config", "error", err)
	}

	pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	orderRepo := repository.NewPgOrderRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	contactRepo := repository.NewPgContactRepository(pool)
	newsletterRepo := repository.NewPgNewsletterRepository(pool)

	// 複数レプリカで共有するため、REDIS_URL があれば Redis の台帳を使う
	var ledger repository.SubmissionLedger = repository.NewPgSubmissionLedger(pool)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logging.Fatal("invalid REDIS_URL", "error", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logging.Fatal("failed to connect to redis", "error", err)
		}
		ledger = repository.NewRedisSubmissionLedger(rdb, cfg.ContactWindow)
		slog.Info("contact ledger: redis")
	}

	limiter := service.NewContactRateLimiter(ledger, cfg.ContactWindow)
	messageService := service.NewMessageService(orderRepo, messageRepo)
	orderService := service.NewOrderService(orderRepo)
	contactService := service.NewContactService(contactRepo, userRepo, limiter)
	newsletterService := service.NewNewsletterService(newsletterRepo)

	h := handler.New(userRepo, cfg.FrontendURL)
	if rdb != nil {
		h.AddHealthCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	meHandler := handler.NewMeHandler(userRepo)
	orderHandler := handler.NewOrderHandler(orderService)
	messageHandler := handler.NewMessageHandler(messageService, orderService)
	contactHandler := handler.NewContactHandler(contactService, limiter)
	newsletterHandler := handler.NewNewsletterHandler(newsletterService)

	sessionSecret := auth.SessionSecretBytes(cfg.SessionSecret)
	resolver := auth.RoleResolverFunc(func(ctx context.Context, userID string) (string, error) {
		user, err := userRepo.FindByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return "", auth.ErrUnknownUser
		}
		if err != nil {
			return "", err
		}
		return string(user.Role), nil
	})

	// 認証必要エンドポイント
	wrapAuth := auth.DevAuth(auth.DevUserID, cfg.DevRole)
	if cfg.AuthRequired {
		wrapAuth = auth.RequireAuth(sessionSecret, resolver)
	} else {
		slog.Warn("authentication disabled", "dev_user", auth.DevUserID, "dev_role", cfg.DevRole)
	}
	authed := func(fn http.HandlerFunc) http.Handler {
		return wrapAuth(fn)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("POST /api/newsletter", newsletterHandler.Subscribe)
	mux.Handle("GET /api/me", authed(meHandler.Me))

	// 注文
	mux.Handle("POST /api/orders", authed(orderHandler.Create))
	mux.Handle("GET /api/orders/{id}", authed(orderHandler.Get))
	mux.Handle("GET /api/me/orders", authed(orderHandler.ListMine))

	// 注文メッセージ
	mux.Handle("GET /api/orders/{id}/messages", authed(messageHandler.List))
	mux.Handle("POST /api/orders/{id}/messages", authed(messageHandler.Send))
	mux.Handle("POST /api/orders/{id}/messages/read", authed(messageHandler.MarkRead))
	mux.Handle("GET /api/orders/{id}/messages/unread", authed(messageHandler.Unread))

	// お問い合わせ
	mux.Handle("POST /api/contact", authed(contactHandler.Submit))

	// Admin routes (staff only, services enforce the role)
	mux.Handle("GET /api/admin/orders", authed(orderHandler.AdminList))
	mux.Handle("PATCH /api/admin/orders/{id}/status", authed(orderHandler.UpdateStatus))
	mux.Handle("GET /api/admin/contacts", authed(contactHandler.AdminList))
	mux.Handle("PATCH /api/admin/contacts/{id}/read", authed(contactHandler.MarkRead))
	mux.Handle("DELETE /api/admin/contacts/{id}", authed(contactHandler.Delete))

	rateLimiter := handler.NewRateLimiter(cfg.APIRateLimitPerMinute, cfg.TrustedProxyCount)
	root := handler.RequestLogger(handler.SecurityHeaders(h.CORS(rateLimiter.Middleware(mux))))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	rateLimiter.Stop()
	slog.Info("server stopped")
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/todoman/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	TokenVerifier     middleware.TokenVerifier
	AuthObserver      middleware.AuthObserver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	Logger            *slog.Logger

	// 認証
	IdentityService IdentityServiceInterface
	TokenIssuer     TokenIssuerInterface
	AuthConfig      AuthHandlerConfig

	// Todo
	TodoService TodoServiceInterface

	// ユーザー
	UserService UserServiceInterface

	// メトリクス
	Metrics        MetricsRecorder
	MetricsHandler http.Handler // /metrics 用。nilの場合はルートを公開しない
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → (認証ルートのみ) Auth → RateLimit → CSRF
//
// 登録・ログインなどの認証ルート（/api/v1/auth/*）は認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))

	authHandler := NewAuthHandler(deps.IdentityService, deps.TokenIssuer, deps.TokenVerifier, deps.AuthConfig, deps.Metrics)
	todoHandler := NewTodoHandler(deps.TodoService, deps.Metrics)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)

	// --- 認証不要のルート ---

	// ヘルスチェック
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheusスクレイプ
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// CSRFトークン取得
	r.Get("/api/v1/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// 認証ルート
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		// /me はハンドラー内でトークンを検証し、ユーザーをDBから再取得する
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.AuthObserver))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		writeMW := deps.RateLimiter.WriteMiddleware()

		// Todo管理
		r.Route("/api/v1/todos", func(r chi.Router) {
			r.Get("/", todoHandler.ListTodos)
			// 書き込み操作には書き込み専用レート制限を追加
			r.With(writeMW).Post("/", todoHandler.CreateTodo)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", todoHandler.GetTodo)
				r.With(writeMW).Put("/", todoHandler.UpdateTodo)
				r.With(writeMW).Patch("/", todoHandler.PatchTodo)
				r.With(writeMW).Delete("/", todoHandler.DeleteTodo)
				r.With(writeMW).Post("/toggle", todoHandler.ToggleTodo)
			})
		})

		// ユーザー管理
		r.Route("/api/v1/users", func(r chi.Router) {
			r.With(writeMW).Delete("/me", userHandler.Withdraw)
		})
	})

	return r
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
)

// IdentityServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type IdentityServiceInterface interface {
	// Register は新規ユーザーを登録する。メールアドレス重複時はEmailTakenエラーを返す。
	Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error)
	// Authenticate はメールアドレスとパスワードを照合する。
	// 認証失敗時は(nil, nil)を返し、未知のメールアドレスと誤ったパスワードを区別しない。
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	// GetByID は指定IDのユーザーを返す。見つからない場合はnilを返す。
	GetByID(ctx context.Context, userID string) (*model.User, error)
}

// TokenIssuerInterface はアクセストークンの発行インターフェース。
type TokenIssuerInterface interface {
	Issue(userID, email string, ttl time.Duration) (string, error)
}

// TokenVerifierInterface はアクセストークンの検証インターフェース。
type TokenVerifierInterface interface {
	Verify(raw string) (*model.TokenClaims, error)
}

// MetricsRecorder はハンドラーが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordTodoOperation(operation string)
	RecordUserRegistered()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieSecure bool
	TokenTTL     time.Duration // アクセストークンとCookieの有効期間
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  IdentityServiceInterface
	issuer   TokenIssuerInterface
	verifier TokenVerifierInterface
	config   AuthHandlerConfig
	metrics  MetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnil可。
func NewAuthHandler(
	service IdentityServiceInterface,
	issuer TokenIssuerInterface,
	verifier TokenVerifierInterface,
	config AuthHandlerConfig,
	metrics MetricsRecorder,
) *AuthHandler {
	return &AuthHandler{
		service:  service,
		issuer:   issuer,
		verifier: verifier,
		config:   config,
		metrics:  metrics,
	}
}

// --- リクエスト・レスポンス型 ---

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
	}
}

// Register は新規ユーザーを登録する。
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUserRegistered()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Login はメールアドレスとパスワードで認証し、署名付きトークンを
// HTTP Only Cookieに設定する。
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		// 未知のメールアドレスと誤ったパスワードで同じレスポンスを返す
		writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
			Code:     "INVALID_CREDENTIALS",
			Message:  "メールアドレスまたはパスワードが正しくありません。",
			Category: "auth",
			Action:   "入力内容を確認して再度お試しください。",
		})
		return
	}

	raw, err := h.issuer.Issue(user.ID, user.Email, h.config.TokenTTL)
	if err != nil {
		slog.Error("failed to issue access token", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    raw,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   int(h.config.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	})

	slog.Info("user logged in", slog.String("user_id", user.ID))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "ログインしました。",
		"user_id": user.ID,
	})
}

// Logout はトークンCookieを削除する。
// トークンは自己完結型でサーバー側に状態を持たないため、削除はCookieのクリアのみ。
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "ログアウトしました。",
	})
}

// Me は現在のログインユーザー情報を返す。
// トークンの検証だけでなくDBからユーザーを再取得するため、
// トークンが有効でもユーザーが削除済みの場合は401を返す。
// GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.AuthCookieName)
	if err != nil || cookie.Value == "" {
		writeUnauthorized(w)
		return
	}

	claims, err := h.verifier.Verify(cookie.Value)
	if err != nil {
		writeUnauthorized(w)
		return
	}

	user, err := h.service.GetByID(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		writeUnauthorized(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/token"
)

// AuthCookieName は署名付きトークンを運ぶCookieの名前。
const AuthCookieName = "access_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// TokenVerifier はトークン検証に必要なインターフェース。
// token.Codecの部分集合として定義する。
type TokenVerifier interface {
	Verify(raw string) (*model.TokenClaims, error)
}

// AuthObserver は認証失敗の観測に必要なインターフェース。
type AuthObserver interface {
	// RecordAuthFailure は認証失敗を理由別に記録する。
	RecordAuthFailure(reason string)
}

// NewAuthMiddleware はHTTP Only Cookieから署名付きトークンを読み取り、
// 検証するミドルウェアを返す。DBアクセスは行わず、署名と期限の検証のみで
// 認証済みユーザーIDをリクエストコンテキストに注入する。
//
// 失敗の内訳（Cookie欠落・署名不正・期限切れ）はログとメトリクスにのみ
// 記録し、クライアントへは区別のない401を返す。トークンの状態を
// 外部から探られないようにするため。
func NewAuthMiddleware(verifier TokenVerifier, observer AuthObserver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AuthCookieName)
			if err != nil || cookie.Value == "" {
				rejectUnauthorized(w, observer, "missing_cookie")
				return
			}

			claims, err := verifier.Verify(cookie.Value)
			if err != nil {
				rejectUnauthorized(w, observer, authFailureReason(err))
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func rejectUnauthorized(w http.ResponseWriter, observer AuthObserver, reason string) {
	if observer != nil {
		observer.RecordAuthFailure(reason)
	}
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// authFailureReason は検証エラーをメトリクスラベル用の理由に変換する。
func authFailureReason(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return "expired"
	case errors.Is(err, token.ErrBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

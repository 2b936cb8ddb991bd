// Package token は署名付きアクセストークンの発行と検証を提供する。
//
// トークンは自己完結型（HS256署名のJWT）であり、サーバー側には保存しない。
// 有効性は署名と有効期限のみで決まるため、ホットパスでのセッションストア
// 往復が不要になる。トレードオフとしてログアウトはクライアント側の
// Cookie削除のみとなり、失効リストは持たない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/todoman/internal/model"
)

// 検証失敗の内部分類。
// クライアントへのレスポンスは一律401だが、ログとメトリクスのために
// 失敗理由を内部では区別する。すべてErrInvalidTokenをラップしているため、
// 呼び出し側は errors.Is(err, ErrInvalidToken) で一括判定できる。
var (
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrBadSignature   = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrMissingClaims  = fmt.Errorf("%w: missing claims", ErrInvalidToken)
)

// claims はトークンのペイロード。
// subにはユーザーのメールアドレス、user_idにはユーザーIDを格納する。
type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Codec はアクセストークンの発行・検証を行う。
// シークレットは起動時に設定から渡され、以後変更されない。
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec はCodecを生成する。
func NewCodec(secret string) *Codec {
	return &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue は指定ユーザーのアクセストークンを発行する。
// ペイロードは {sub: email, user_id, exp: now+ttl}。副作用はない。
func (c *Codec) Issue(userID, email string, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	cl := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、本人性情報を返す。
// 署名不正・期限切れ・フォーマット不正・クレーム欠落はいずれも
// ErrInvalidTokenをラップしたエラーとして返す。
func (c *Codec) Verify(raw string) (*model.TokenClaims, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(c.now))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	// 署名が正しくてもsubとuser_idの両方が揃っていなければ無効とする
	if cl.Subject == "" || cl.UserID == "" {
		return nil, ErrMissingClaims
	}

	return &model.TokenClaims{
		UserID:  cl.UserID,
		Subject: cl.Subject,
	}, nil
}

// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには決して含めない。
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenClaims は署名付きアクセストークンが運ぶ本人性情報を表す。
// サーバー側には保存されず、署名と有効期限のみで有効性が決まる。
type TokenClaims struct {
	UserID  string
	Subject string // ユーザーのメールアドレス
}

package handler

import (
	"context"

	"github.com/hitoshi/todoman/internal/identity"
	"github.com/hitoshi/todoman/internal/model"
)

// IdentityServiceAdapter は identity.Service を IdentityServiceInterface と
// UserServiceInterface に適合させるアダプタ。
type IdentityServiceAdapter struct {
	svc *identity.Service
}

// NewIdentityServiceAdapter はIdentityServiceAdapterを生成する。
func NewIdentityServiceAdapter(svc *identity.Service) *IdentityServiceAdapter {
	return &IdentityServiceAdapter{svc: svc}
}

// Register は新規ユーザーを登録する。
func (a *IdentityServiceAdapter) Register(ctx context.Context, email, password, firstName, lastName string) (*model.User, error) {
	return a.svc.Register(ctx, identity.RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
}

// Authenticate はメールアドレスとパスワードを照合する。
func (a *IdentityServiceAdapter) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	return a.svc.Authenticate(ctx, email, password)
}

// GetByID は指定IDのユーザーを返す。
func (a *IdentityServiceAdapter) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return a.svc.GetByID(ctx, userID)
}

// Withdraw はユーザーの退会処理を実行する。
func (a *IdentityServiceAdapter) Withdraw(ctx context.Context, userID string) error {
	return a.svc.Delete(ctx, userID)
}

// --- compile-time interface checks ---

var _ IdentityServiceInterface = (*IdentityServiceAdapter)(nil)
var _ UserServiceInterface = (*IdentityServiceAdapter)(nil)

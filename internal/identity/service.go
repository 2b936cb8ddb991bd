// Package identity はユーザー登録・認証・検索のドメインロジックを提供する。
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// RegisterInput はユーザー登録の入力を表す。
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service はユーザー管理のサービス層。
// 平文パスワードはハッシュ化後に破棄され、保存もログ出力もされない。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// Register は新規ユーザーを登録する。
// メールアドレスが既に存在する場合はEmailTakenエラーを返す。
// パスワードはbcryptでソルト付きハッシュ化して保存する。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, model.NewValidationError("メールアドレスは必須です")
	}
	if input.Password == "" {
		return nil, model.NewValidationError("パスワードは必須です")
	}

	// 事前チェック: 既存メールアドレスならハッシュ計算前に弾く
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェックをすり抜けた同時登録の競合
		if err == repository.ErrDuplicateEmail {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Authenticate はメールアドレスとパスワードでユーザーを認証する。
// 「ユーザーが存在しない」と「パスワードが違う」はどちらもnilを返し、
// レスポンスからもタイミングからも区別できないようにする。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}

	if user == nil {
		// 存在しないユーザーでもハッシュ計算を1回行い、両経路のコストを揃える
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}

	return user, nil
}

// GetByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (s *Service) GetByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	return user, nil
}

// GetByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	return user, nil
}

// Delete は指定IDのユーザーを削除する。
// 所有するTodoはストアのCASCADE制約により一括削除される。
// ユーザーが存在しない場合はUserNotFoundエラーを返す。
func (s *Service) Delete(ctx context.Context, userID string) error {
	deleted, err := s.userRepo.DeleteByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewUserNotFoundError()
	}

	slog.Info("user deleted",
		slog.String("user_id", userID),
	)

	return nil
}

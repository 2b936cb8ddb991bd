package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// --- モック定義 ---

// mockUserRepo はrepository.UserRepositoryのモック実装。
type mockUserRepo struct {
	createFn      func(ctx context.Context, user *model.User) error
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	deleteByIDFn  func(ctx context.Context, id string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return true, nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// --- Register ---

func TestRegister_Success_HashesPassword(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}

	svc := NewService(repo)
	user, err := svc.Register(context.Background(), RegisterInput{
		Email:     "alice@example.com",
		Password:  "secret-password",
		FirstName: "Alice",
		LastName:  "Yamada",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.ID == "" {
		t.Error("expected generated user ID")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "alice@example.com")
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if created.PasswordHash == "" || created.PasswordHash == "secret-password" {
		t.Error("password must be stored as a hash, not plaintext")
	}
}

func TestRegister_DuplicateEmail_ReturnsEmailTaken(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "existing", Email: email}, nil
		},
	}

	svc := NewService(repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "secret-password",
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
		t.Errorf("error = %v, want EMAIL_TAKEN APIError", err)
	}
}

func TestRegister_ConcurrentDuplicate_ReturnsEmailTaken(t *testing.T) {
	// 事前チェックは通過するが、INSERT時に一意性制約違反になるケース
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateEmail
		},
	}

	svc := NewService(repo)
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "secret-password",
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
		t.Errorf("error = %v, want EMAIL_TAKEN APIError", err)
	}
}

func TestRegister_EmptyEmail_ReturnsValidationError(t *testing.T) {
	svc := NewService(&mockUserRepo{})
	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  ",
		Password: "secret-password",
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationError {
		t.Errorf("error = %v, want VALIDATION_ERROR APIError", err)
	}
}

func TestRegister_EmptyPassword_ReturnsValidationError(t *testing.T) {
	svc := NewService(&mockUserRepo{})
	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "alice@example.com",
	})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidationError {
		t.Errorf("error = %v, want VALIDATION_ERROR APIError", err)
	}
}

// --- Authenticate ---

// 登録したパスワードで認証が成功し、同一ユーザーIDが返ることを検証する。
func TestAuthenticate_RoundTripWithRegister(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			stored = user
			return nil
		},
	}

	svc := NewService(repo)
	registered, err := svc.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// 以後の検索は登録済みユーザーを返す
	repo.findByEmailFn = func(ctx context.Context, email string) (*model.User, error) {
		if email == stored.Email {
			return stored, nil
		}
		return nil, nil
	}

	user, err := svc.Authenticate(context.Background(), "alice@example.com", "correct-password")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user == nil {
		t.Fatal("expected authentication to succeed")
	}
	if user.ID != registered.ID {
		t.Errorf("user.ID = %q, want %q", user.ID, registered.ID)
	}

	// 誤ったパスワードでは一律nil
	user, err = svc.Authenticate(context.Background(), "alice@example.com", "wrong-password")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user != nil {
		t.Error("expected nil for wrong password")
	}
}

func TestAuthenticate_UnknownEmail_ReturnsNil(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	user, err := svc.Authenticate(context.Background(), "nobody@example.com", "any-password")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if user != nil {
		t.Error("expected nil for unknown email")
	}
}

// --- GetByID / GetByEmail ---

func TestGetByID_NotFound_ReturnsNil(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	user, err := svc.GetByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if user != nil {
		t.Error("expected nil for missing user")
	}
}

func TestGetByEmail_Found_ReturnsUser(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-1", Email: email}, nil
		},
	}
	svc := NewService(repo)

	user, err := svc.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if user == nil || user.ID != "user-1" {
		t.Errorf("user = %+v, want ID user-1", user)
	}
}

// --- Delete ---

func TestDelete_Success(t *testing.T) {
	deleteCalled := false
	repo := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) (bool, error) {
			deleteCalled = true
			return true, nil
		},
	}
	svc := NewService(repo)

	if err := svc.Delete(context.Background(), "user-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !deleteCalled {
		t.Error("expected DeleteByID to be called")
	}
}

func TestDelete_Missing_ReturnsUserNotFound(t *testing.T) {
	repo := &mockUserRepo{
		deleteByIDFn: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	svc := NewService(repo)

	err := svc.Delete(context.Background(), "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error = %v, want USER_NOT_FOUND APIError", err)
	}
}

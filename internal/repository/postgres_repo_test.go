package repository

import (
	"errors"
	"testing"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresTodoRepoはTodoRepositoryインターフェースを満たすことを検証
func TestPostgresTodoRepo_ImplementsInterface(t *testing.T) {
	var _ TodoRepository = (*PostgresTodoRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresTodoRepoが正しく初期化されることを検証
func TestNewPostgresTodoRepo_Initializes(t *testing.T) {
	repo := NewPostgresTodoRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// ErrDuplicateEmailがerrors.Isで判定可能なセンチネルであることを検証
func TestErrDuplicateEmail_IsSentinel(t *testing.T) {
	wrapped := errors.Join(ErrDuplicateEmail)
	if !errors.Is(wrapped, ErrDuplicateEmail) {
		t.Error("wrapped error should match ErrDuplicateEmail")
	}
}

// Package todo は所有者スコープ付きTodo管理のドメインロジックを提供する。
//
// すべての読み取り・更新・削除はレコードIDと認証済みユーザーIDの両方で
// フィルタされる。該当レコードがない場合は一律TodoNotFoundを返し、
// 「存在しない」と「他ユーザーの所有」を区別しないことで
// 非所有者へのレコード存在の漏洩を防ぐ。
package todo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
	"github.com/hitoshi/todoman/internal/security"
)

// defaultListLimit は一覧取得のデフォルト件数。
const defaultListLimit = 100

// CreateInput はTodo作成の入力を表す。
// Statusが空の場合はStatusTodoがデフォルトになる。
// UserIDは含まない: 所有者は常に認証済みユーザーから解決される。
type CreateInput struct {
	Title       string
	Description string
	Completed   bool
	Priority    model.TodoPriority
	Status      model.TodoStatus
}

// UpdateInput は全置換更新の入力を表す。
// 全フィールドが明示的な値として扱われる（full replace）。
type UpdateInput struct {
	Title       string
	Description string
	Completed   bool
	Priority    model.TodoPriority
	Status      model.TodoStatus
}

// PatchInput は部分更新の入力を表す。
// nilのフィールドは変更されない（absentとnullを区別するスパースパッチ）。
type PatchInput struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *model.TodoPriority
	Status      *model.TodoStatus
}

// Service はTodo管理のサービス層。
type Service struct {
	todoRepo  repository.TodoRepository
	userRepo  repository.UserRepository
	sanitizer security.InputSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	todoRepo repository.TodoRepository,
	userRepo repository.UserRepository,
	sanitizer security.InputSanitizerService,
) *Service {
	return &Service{
		todoRepo:  todoRepo,
		userRepo:  userRepo,
		sanitizer: sanitizer,
	}
}

// Create は新規Todoを作成する。
// 所有者IDはリクエスト本文の値を一切信頼せず、認証済みユーザーIDを強制する。
// トークンは有効だが参照先ユーザーが既に削除されている場合はUserNotFoundを返す。
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (*model.Todo, error) {
	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("所有者の確認に失敗しました: %w", err)
	}
	if owner == nil {
		return nil, model.NewUserNotFoundError()
	}

	title := s.sanitizer.Sanitize(input.Title)
	if title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不明な優先度です: %s", priority))
	}

	statusSet := input.Status != ""
	status := input.Status
	if !statusSet {
		status = model.StatusTodo
	}
	if !status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不明なステータスです: %s", status))
	}

	now := time.Now().UTC()
	todo := &model.Todo{
		ID:          uuid.New().String(),
		UserID:      ownerID,
		Title:       title,
		Description: s.sanitizer.Sanitize(input.Description),
		Completed:   input.Completed,
		Priority:    priority,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	applyReconciliation(todo, model.StatusTodo, statusSet, input.Completed)

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("Todoの作成に失敗しました: %w", err)
	}

	slog.Info("todo created",
		slog.String("todo_id", todo.ID),
		slog.String("user_id", ownerID),
	)

	return todo, nil
}

// GetByID は指定IDのTodoを取得する。
func (s *Service) GetByID(ctx context.Context, ownerID, todoID string) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByIDAndOwner(ctx, todoID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("Todoの取得に失敗しました: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(todoID)
	}
	return todo, nil
}

// List は認証済みユーザーのTodo一覧をオフセット・リミット付きで返す。
// skipが負の場合は0、limitが0以下の場合はデフォルト値に補正する。
func (s *Service) List(ctx context.Context, ownerID string, skip, limit int) ([]*model.Todo, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	todos, err := s.todoRepo.ListByOwner(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("Todo一覧の取得に失敗しました: %w", err)
	}
	return todos, nil
}

// Update はTodoを全置換で更新する。
func (s *Service) Update(ctx context.Context, ownerID, todoID string, input UpdateInput) (*model.Todo, error) {
	title := s.sanitizer.Sanitize(input.Title)
	if title == "" {
		return nil, model.NewValidationError("タイトルは必須です")
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不明な優先度です: %s", priority))
	}

	status := input.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不明なステータスです: %s", status))
	}

	description := s.sanitizer.Sanitize(input.Description)

	todo, err := s.todoRepo.UpdateByIDAndOwner(ctx, todoID, ownerID, func(t *model.Todo) error {
		prevStatus := t.Status
		t.Title = title
		t.Description = description
		t.Completed = input.Completed
		t.Priority = priority
		t.Status = status
		applyReconciliation(t, prevStatus, true, true)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Todoの更新に失敗しました: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(todoID)
	}

	return todo, nil
}

// Patch はTodoを部分更新する。入力に含まれるフィールドのみを変更する。
func (s *Service) Patch(ctx context.Context, ownerID, todoID string, input PatchInput) (*model.Todo, error) {
	var title string
	if input.Title != nil {
		title = s.sanitizer.Sanitize(*input.Title)
		if title == "" {
			return nil, model.NewValidationError("タイトルは必須です")
		}
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不明な優先度です: %s", *input.Priority))
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不明なステータスです: %s", *input.Status))
	}

	var description string
	if input.Description != nil {
		description = s.sanitizer.Sanitize(*input.Description)
	}

	todo, err := s.todoRepo.UpdateByIDAndOwner(ctx, todoID, ownerID, func(t *model.Todo) error {
		prevStatus := t.Status
		if input.Title != nil {
			t.Title = title
		}
		if input.Description != nil {
			t.Description = description
		}
		if input.Completed != nil {
			t.Completed = *input.Completed
		}
		if input.Priority != nil {
			t.Priority = *input.Priority
		}
		if input.Status != nil {
			t.Status = *input.Status
		}
		applyReconciliation(t, prevStatus, input.Status != nil, input.Completed != nil)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Todoの更新に失敗しました: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(todoID)
	}

	return todo, nil
}

// Delete はTodoを削除する。
// ソフトデリートは行わないため、同じIDへの2回目の呼び出しはTodoNotFoundになる。
func (s *Service) Delete(ctx context.Context, ownerID, todoID string) error {
	deleted, err := s.todoRepo.DeleteByIDAndOwner(ctx, todoID, ownerID)
	if err != nil {
		return fmt.Errorf("Todoの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewTodoNotFoundError(todoID)
	}

	slog.Info("todo deleted",
		slog.String("todo_id", todoID),
		slog.String("user_id", ownerID),
	)

	return nil
}

// Toggle はcompletedを反転する。
// trueになった場合はstatusをcompletedへ、falseになった場合は
// 直前のstatusがcompletedならtodoへリセットする。
// それ以外のstatus（in-progress等）は保持し、進捗状態を失わない。
func (s *Service) Toggle(ctx context.Context, ownerID, todoID string) (*model.Todo, error) {
	todo, err := s.todoRepo.UpdateByIDAndOwner(ctx, todoID, ownerID, func(t *model.Todo) error {
		prevStatus := t.Status
		t.Completed = !t.Completed
		applyReconciliation(t, prevStatus, false, true)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Todoの更新に失敗しました: %w", err)
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(todoID)
	}

	return todo, nil
}

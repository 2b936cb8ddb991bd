// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/todoman/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意性制約違反を表す。
// サービス層の事前チェックをすり抜けた同時登録の競合でも返る。
var ErrDuplicateEmail = errors.New("duplicate email")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// メールアドレスが既に存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	// メールアドレスは大文字小文字を区別して照合する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するtodosはCASCADE削除される。削除した場合はtrueを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// TodoRepository はTodoデータの永続化インターフェース。
// 読み取り・更新・削除はすべてレコードIDと所有者IDの両方でフィルタし、
// 「存在しない」と「他ユーザーの所有」を区別しない。
type TodoRepository interface {
	// Create はTodoを作成する。
	Create(ctx context.Context, todo *model.Todo) error

	// FindByIDAndOwner は指定IDかつ指定所有者のTodoを取得する。
	// 該当しない場合はnilを返す。
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Todo, error)

	// ListByOwner は指定所有者のTodo一覧を作成順で返す。
	// skip/limitによるオフセットページネーションを行う。
	ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*model.Todo, error)

	// UpdateByIDAndOwner は指定IDかつ指定所有者のTodoを行ロック付き
	// トランザクション内で読み取り、mutateを適用して書き戻す。
	// 同一レコードへの並行更新がstatus/completedの不整合を
	// 生まないよう、read-check-writeを単一のトランザクションで行う。
	// 該当レコードがない場合は(nil, nil)を返す。
	// mutateがエラーを返した場合はロールバックしてそのエラーを返す。
	UpdateByIDAndOwner(ctx context.Context, id, ownerID string, mutate func(*model.Todo) error) (*model.Todo, error)

	// DeleteByIDAndOwner は指定IDかつ指定所有者のTodoを削除する。
	// 削除した場合はtrueを返す。
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error)
}

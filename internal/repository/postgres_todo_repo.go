package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/todoman/internal/model"
)

// PostgresTodoRepo はPostgreSQLを使用したTodoリポジトリ。
type PostgresTodoRepo struct {
	db *sql.DB
}

// NewPostgresTodoRepo はPostgresTodoRepoを生成する。
func NewPostgresTodoRepo(db *sql.DB) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: db}
}

// Create はTodoを作成する。
func (r *PostgresTodoRepo) Create(ctx context.Context, todo *model.Todo) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, user_id, title, description, completed, priority, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		todo.ID, todo.UserID, todo.Title, todo.Description, todo.Completed,
		todo.Priority, todo.Status, todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}

	return nil
}

// FindByIDAndOwner は指定IDかつ指定所有者のTodoを取得する。
// 該当しない場合はnilを返す。
func (r *PostgresTodoRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, completed, priority, status, created_at, updated_at
		 FROM todos WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed,
		&todo.Priority, &todo.Status, &todo.CreatedAt, &todo.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	return todo, nil
}

// ListByOwner は指定所有者のTodo一覧を作成順で返す。
func (r *PostgresTodoRepo) ListByOwner(ctx context.Context, ownerID string, skip, limit int) ([]*model.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, description, completed, priority, status, created_at, updated_at
		 FROM todos WHERE user_id = $1
		 ORDER BY created_at, id
		 OFFSET $2 LIMIT $3`,
		ownerID, skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		todo := &model.Todo{}
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description,
			&todo.Completed, &todo.Priority, &todo.Status, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// UpdateByIDAndOwner は指定IDかつ指定所有者のTodoを行ロック付き
// トランザクション内で読み取り、mutateを適用して書き戻す。
// 該当レコードがない場合は(nil, nil)を返す。
func (r *PostgresTodoRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID string, mutate func(*model.Todo) error) (*model.Todo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 行ロックを取得し、並行する書き込みを直列化する
	todo := &model.Todo{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, title, description, completed, priority, status, created_at, updated_at
		 FROM todos WHERE id = $1 AND user_id = $2
		 FOR UPDATE`,
		id, ownerID,
	).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed,
		&todo.Priority, &todo.Status, &todo.CreatedAt, &todo.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo for update: %w", err)
	}

	if err := mutate(todo); err != nil {
		return nil, err
	}

	todo.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE todos
		 SET title = $1, description = $2, completed = $3, priority = $4, status = $5, updated_at = $6
		 WHERE id = $7 AND user_id = $8`,
		todo.Title, todo.Description, todo.Completed, todo.Priority, todo.Status,
		todo.UpdatedAt, todo.ID, todo.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return todo, nil
}

// DeleteByIDAndOwner は指定IDかつ指定所有者のTodoを削除する。
// 削除した場合はtrueを返す。
func (r *PostgresTodoRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TodoRepository = (*PostgresTodoRepo)(nil)

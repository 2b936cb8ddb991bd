package model

import "time"

// TodoPriority はTodo項目の優先度を表す。
type TodoPriority string

const (
	PriorityLow    TodoPriority = "low"
	PriorityMedium TodoPriority = "medium"
	PriorityHigh   TodoPriority = "high"
)

// IsValid は優先度が定義済みの値かどうかを判定する。
func (p TodoPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// TodoStatus はTodo項目の進捗状態を表す。
// ワイヤ上の値は既存クライアントとの互換性のためハイフン区切り（in-progress）を使用する。
type TodoStatus string

const (
	StatusTodo       TodoStatus = "todo"
	StatusInProgress TodoStatus = "in-progress"
	StatusCompleted  TodoStatus = "completed"
)

// IsValid はステータスが定義済みの値かどうかを判定する。
func (s TodoStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Todo はユーザーが所有するタスク項目を表す。
// 不変条件: completed == true ⟺ status == StatusCompleted。
// この整合性はtodoパッケージのreconcileがすべての書き込みで保証する。
type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Completed   bool
	Priority    TodoPriority
	Status      TodoStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

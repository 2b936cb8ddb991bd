package todo

import (
	"testing"

	"github.com/hitoshi/todoman/internal/model"
)

func TestApplyReconciliation(t *testing.T) {
	tests := []struct {
		name          string
		status        model.TodoStatus
		completed     bool
		prevStatus    model.TodoStatus
		statusSet     bool
		completedSet  bool
		wantStatus    model.TodoStatus
		wantCompleted bool
	}{
		{
			name:          "status=completedの明示でcompletedがtrueになる",
			status:        model.StatusCompleted,
			completed:     false,
			prevStatus:    model.StatusTodo,
			statusSet:     true,
			completedSet:  false,
			wantStatus:    model.StatusCompleted,
			wantCompleted: true,
		},
		{
			name:          "status=completedはcompleted=falseの明示より優先される",
			status:        model.StatusCompleted,
			completed:     false,
			prevStatus:    model.StatusTodo,
			statusSet:     true,
			completedSet:  true,
			wantStatus:    model.StatusCompleted,
			wantCompleted: true,
		},
		{
			name:          "completed=trueの明示でstatusがcompletedになる",
			status:        model.StatusInProgress,
			completed:     true,
			prevStatus:    model.StatusInProgress,
			statusSet:     false,
			completedSet:  true,
			wantStatus:    model.StatusCompleted,
			wantCompleted: true,
		},
		{
			name:          "completed=falseで完了済みレコードのstatusがtodoに戻る",
			status:        model.StatusCompleted,
			completed:     false,
			prevStatus:    model.StatusCompleted,
			statusSet:     false,
			completedSet:  true,
			wantStatus:    model.StatusTodo,
			wantCompleted: false,
		},
		{
			name:          "completed=falseでも同時に明示されたstatusは保持される",
			status:        model.StatusInProgress,
			completed:     false,
			prevStatus:    model.StatusCompleted,
			statusSet:     true,
			completedSet:  true,
			wantStatus:    model.StatusInProgress,
			wantCompleted: false,
		},
		{
			name:          "非completedのstatus明示でcompletedがfalseに戻る",
			status:        model.StatusInProgress,
			completed:     true,
			prevStatus:    model.StatusCompleted,
			statusSet:     true,
			completedSet:  false,
			wantStatus:    model.StatusInProgress,
			wantCompleted: false,
		},
		{
			name:          "completed=falseで未完了レコードはstatusを変えない",
			status:        model.StatusInProgress,
			completed:     false,
			prevStatus:    model.StatusInProgress,
			statusSet:     false,
			completedSet:  true,
			wantStatus:    model.StatusInProgress,
			wantCompleted: false,
		},
		{
			name:          "どちらも明示されなければ変化しない",
			status:        model.StatusInProgress,
			completed:     false,
			prevStatus:    model.StatusInProgress,
			statusSet:     false,
			completedSet:  false,
			wantStatus:    model.StatusInProgress,
			wantCompleted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo := &model.Todo{
				Status:    tt.status,
				Completed: tt.completed,
			}

			applyReconciliation(todo, tt.prevStatus, tt.statusSet, tt.completedSet)

			if todo.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", todo.Status, tt.wantStatus)
			}
			if todo.Completed != tt.wantCompleted {
				t.Errorf("completed = %v, want %v", todo.Completed, tt.wantCompleted)
			}
			if (todo.Completed && todo.Status != model.StatusCompleted) ||
				(!todo.Completed && todo.Status == model.StatusCompleted) {
				t.Errorf("整合性が崩れている: status=%s completed=%v", todo.Status, todo.Completed)
			}
		})
	}
}

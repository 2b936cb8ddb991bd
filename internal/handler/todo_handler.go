package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/todoman/internal/middleware"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/todo"
)

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	Create(ctx context.Context, ownerID string, input todo.CreateInput) (*model.Todo, error)
	GetByID(ctx context.Context, ownerID, todoID string) (*model.Todo, error)
	List(ctx context.Context, ownerID string, skip, limit int) ([]*model.Todo, error)
	Update(ctx context.Context, ownerID, todoID string, input todo.UpdateInput) (*model.Todo, error)
	Patch(ctx context.Context, ownerID, todoID string, input todo.PatchInput) (*model.Todo, error)
	Delete(ctx context.Context, ownerID, todoID string) error
	Toggle(ctx context.Context, ownerID, todoID string) (*model.Todo, error)
}

// TodoHandler はTodo管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
	metrics MetricsRecorder
}

// NewTodoHandler はTodoHandlerを生成する。metricsはnil可。
func NewTodoHandler(service TodoServiceInterface, metrics MetricsRecorder) *TodoHandler {
	return &TodoHandler{
		service: service,
		metrics: metrics,
	}
}

// --- リクエスト・レスポンス型 ---

// todoCreateRequest はTodo作成リクエストのボディ。
// completed・priority・statusは省略可能で、省略時はfalse・medium・todoになる。
type todoCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// todoUpdateRequest はTodo全置換更新リクエストのボディ。
type todoUpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// todoPatchRequest はTodo部分更新リクエストのボディ。
// 省略されたフィールドは変更されない。
type todoPatchRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// todoResponse はTodoのレスポンス。
type todoResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// toTodoResponse はmodel.TodoからAPIレスポンスに変換する。
func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// CreateTodo は新規Todoを作成する。
// POST /api/v1/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req todoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	created, err := h.service.Create(r.Context(), userID, todo.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    model.TodoPriority(req.Priority),
		Status:      model.TodoStatus(req.Status),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTodoOperation("create")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toTodoResponse(created))
}

// ListTodos は認証済みユーザーのTodo一覧を返す。
// GET /api/v1/todos?skip=0&limit=100
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	skip := parseIntQuery(r, "skip", 0)
	limit := parseIntQuery(r, "limit", 0)

	todos, err := h.service.List(r.Context(), userID, skip, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]todoResponse, len(todos))
	for i, t := range todos {
		results[i] = toTodoResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// GetTodo はTodo詳細を返す。
// GET /api/v1/todos/:id
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	todoID := chi.URLParam(r, "id")

	found, err := h.service.GetByID(r.Context(), userID, todoID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(found))
}

// UpdateTodo はTodoを全置換で更新する。
// PUT /api/v1/todos/:id
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	todoID := chi.URLParam(r, "id")

	var req todoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, todoID, todo.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    model.TodoPriority(req.Priority),
		Status:      model.TodoStatus(req.Status),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTodoOperation("update")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(updated))
}

// PatchTodo はTodoを部分更新する。
// PATCH /api/v1/todos/:id
func (h *TodoHandler) PatchTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	todoID := chi.URLParam(r, "id")

	var req todoPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	input := todo.PatchInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Priority != nil {
		p := model.TodoPriority(*req.Priority)
		input.Priority = &p
	}
	if req.Status != nil {
		s := model.TodoStatus(*req.Status)
		input.Status = &s
	}

	patched, err := h.service.Patch(r.Context(), userID, todoID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTodoOperation("patch")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(patched))
}

// DeleteTodo はTodoを削除する。
// DELETE /api/v1/todos/:id
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	todoID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, todoID); err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTodoOperation("delete")
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleTodo はTodoの完了状態を反転する。
// POST /api/v1/todos/:id/toggle
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	todoID := chi.URLParam(r, "id")

	toggled, err := h.service.Toggle(r.Context(), userID, todoID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTodoOperation("toggle")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTodoResponse(toggled))
}

// parseIntQuery はクエリパラメータを整数として解析する。
// 欠落や解析失敗の場合はデフォルト値を返す。
func parseIntQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meibo/internal/model"
	"github.com/hitoshi/meibo/internal/repository"
	"github.com/hitoshi/meibo/internal/student"
)

// StudentServiceInterface は生徒ハンドラーが必要とするサービスインターフェース。
type StudentServiceInterface interface {
	// List は制約をすべて満たす生徒レコードを返す。
	List(ctx context.Context, constraints map[string]string) ([]*model.Student, error)
	// GetSID は生徒番号のみの射影を返す。
	GetSID(ctx context.Context, sID string) (*repository.StudentIDView, error)
	// Create は生徒レコードを作成する。
	Create(ctx context.Context, input student.CreateInput) (*model.Student, error)
}

// StudentHandler は生徒レコードのHTTPハンドラー。
type StudentHandler struct {
	service StudentServiceInterface
}

// NewStudentHandler はStudentHandlerを生成する。
func NewStudentHandler(service StudentServiceInterface) *StudentHandler {
	return &StudentHandler{service: service}
}

// createStudentRequest は生徒作成リクエストのボディ。
// gradeは受け付けるがサーバー側の既定値で上書きされる。
type createStudentRequest struct {
	SID    string `json:"sId"`
	Name   string `json:"name"`
	School string `json:"school"`
	Grade  string `json:"grade"`
}

// studentResponse は生徒レコードのAPIレスポンス。
type studentResponse struct {
	ID        string    `json:"id"`
	SID       string    `json:"sId"`
	Name      string    `json:"name"`
	School    string    `json:"school"`
	Grade     string    `json:"grade"`
	CreatedAt time.Time `json:"createdAt"`
}

// studentIDResponse は生徒番号のみの射影レスポンス。
type studentIDResponse struct {
	SID string `json:"sId"`
}

// toStudentResponse はドメインのStudentをレスポンス型に変換する。
func toStudentResponse(s *model.Student) studentResponse {
	return studentResponse{
		ID:        s.ID,
		SID:       s.SID,
		Name:      s.Name,
		School:    s.School,
		Grade:     string(s.Grade),
		CreatedAt: s.CreatedAt,
	}
}

// List は生徒一覧をクエリパラメータの制約で絞り込んで返す。
// すべてのクエリキーが制約として扱われる。複数値が指定された場合は
// 先頭の値を採用する。未知のキーを含む制約は空の一覧を返す。
// GET /records?school=North&grade=FRESHMAN
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	constraints := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			constraints[key] = values[0]
		}
	}

	students, err := h.service.List(r.Context(), constraints)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]studentResponse, len(students))
	for i, s := range students {
		results[i] = toStudentResponse(s)
	}
	writeJSON(w, http.StatusOK, results)
}

// Get は指定された生徒番号のレコードを生徒番号のみの射影で返す。
// GET /records/{sId}
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	sID := chi.URLParam(r, "sId")

	view, err := h.service.GetSID(r.Context(), sID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, studentIDResponse{SID: view.SID})
}

// Create は生徒レコードを作成する。成功時は200で作成済みレコードを返す。
// POST /records
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "failed to parse request body",
			Category: "validation",
			Action:   "send a valid JSON body",
		})
		return
	}

	created, err := h.service.Create(r.Context(), student.CreateInput{
		SID:    req.SID,
		Name:   req.Name,
		School: req.School,
		Grade:  req.Grade,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toStudentResponse(created))
}

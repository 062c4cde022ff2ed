package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meibo/internal/model"
	"github.com/hitoshi/meibo/internal/repository"
	"github.com/hitoshi/meibo/internal/student"
)

// --- モック定義 ---

type mockStudentService struct {
	listFn   func(ctx context.Context, constraints map[string]string) ([]*model.Student, error)
	getSIDFn func(ctx context.Context, sID string) (*repository.StudentIDView, error)
	createFn func(ctx context.Context, input student.CreateInput) (*model.Student, error)
}

func (m *mockStudentService) List(ctx context.Context, constraints map[string]string) ([]*model.Student, error) {
	if m.listFn != nil {
		return m.listFn(ctx, constraints)
	}
	return nil, nil
}

func (m *mockStudentService) GetSID(ctx context.Context, sID string) (*repository.StudentIDView, error) {
	if m.getSIDFn != nil {
		return m.getSIDFn(ctx, sID)
	}
	return nil, model.NewStudentNotFoundError()
}

func (m *mockStudentService) Create(ctx context.Context, input student.CreateInput) (*model.Student, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

var _ StudentServiceInterface = (*mockStudentService)(nil)

// newStudentRouter はURLパラメータ解決のためchiルーター越しにハンドラーを配線する。
func newStudentRouter(svc StudentServiceInterface) http.Handler {
	h := NewStudentHandler(svc)
	r := chi.NewRouter()
	r.Get("/records", h.List)
	r.Get("/records/{sId}", h.Get)
	r.Post("/records", h.Create)
	return r
}

func TestList_PassesAllQueryKeysAsConstraints(t *testing.T) {
	var gotConstraints map[string]string
	router := newStudentRouter(&mockStudentService{
		listFn: func(ctx context.Context, constraints map[string]string) ([]*model.Student, error) {
			gotConstraints = constraints
			return []*model.Student{
				{ID: "1", SID: "s-001", Name: "Alice", School: "North", Grade: model.GradeFreshman},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/records?school=North&grade=FRESHMAN&unknownKey=x", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	// 既知・未知を問わずすべてのクエリキーが制約として渡ること
	want := map[string]string{"school": "North", "grade": "FRESHMAN", "unknownKey": "x"}
	for k, v := range want {
		if gotConstraints[k] != v {
			t.Errorf("constraints[%q] = %q, want %q", k, gotConstraints[k], v)
		}
	}

	var resp []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0]["sId"] != "s-001" {
		t.Errorf("unexpected response: %v", resp)
	}
}

func TestList_RepeatedQueryKey_UsesFirstValue(t *testing.T) {
	var gotConstraints map[string]string
	router := newStudentRouter(&mockStudentService{
		listFn: func(ctx context.Context, constraints map[string]string) ([]*model.Student, error) {
			gotConstraints = constraints
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/records?school=North&school=South", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if gotConstraints["school"] != "North" {
		t.Errorf("school = %q, want first value North", gotConstraints["school"])
	}
}

func TestList_EmptyResult_ReturnsEmptyArray(t *testing.T) {
	router := newStudentRouter(&mockStudentService{
		listFn: func(ctx context.Context, constraints map[string]string) ([]*model.Student, error) {
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// nullではなく[]が返ること
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestGet_Found_ReturnsNarrowProjection(t *testing.T) {
	router := newStudentRouter(&mockStudentService{
		getSIDFn: func(ctx context.Context, sID string) (*repository.StudentIDView, error) {
			return &repository.StudentIDView{SID: sID}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/records/s-001", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["sId"] != "s-001" {
		t.Errorf("sId = %v, want s-001", resp["sId"])
	}
	// 射影は生徒番号のみで、他の属性が漏れないこと
	if len(resp) != 1 {
		t.Errorf("response has %d keys, want 1: %v", len(resp), resp)
	}
}

func TestGet_Missing_Returns404WithMessage(t *testing.T) {
	router := newStudentRouter(&mockStudentService{})

	req := httptest.NewRequest(http.MethodGet, "/records/s-999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"message":"student not found"`) {
		t.Errorf("body = %s, want message %q", w.Body.String(), "student not found")
	}
}

func TestCreate_Success_Returns200WithRecord(t *testing.T) {
	var gotInput student.CreateInput
	router := newStudentRouter(&mockStudentService{
		createFn: func(ctx context.Context, input student.CreateInput) (*model.Student, error) {
			gotInput = input
			return &model.Student{
				ID:     "uuid-1",
				SID:    input.SID,
				Name:   input.Name,
				School: input.School,
				Grade:  model.GradeFreshman,
			}, nil
		},
	})

	body := `{"sId":"s-010","name":"Dave","school":"East","grade":"SENIOR"}`
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 作成成功は201ではなく200で返ること
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotInput.SID != "s-010" || gotInput.Grade != "SENIOR" {
		t.Errorf("input = %+v", gotInput)
	}

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["grade"] != "FRESHMAN" {
		t.Errorf("grade = %v, want FRESHMAN", resp["grade"])
	}
}

func TestCreate_MalformedBody_Returns400(t *testing.T) {
	router := newStudentRouter(&mockStudentService{
		createFn: func(ctx context.Context, input student.CreateInput) (*model.Student, error) {
			t.Error("service must not be called for malformed body")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreate_DuplicateSID_Returns409(t *testing.T) {
	router := newStudentRouter(&mockStudentService{
		createFn: func(ctx context.Context, input student.CreateInput) (*model.Student, error) {
			return nil, model.NewDuplicateStudentError(input.SID)
		},
	})

	body := `{"sId":"s-001"}`
	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

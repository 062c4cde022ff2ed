package student

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/meibo/internal/filter"
	"github.com/hitoshi/meibo/internal/model"
	"github.com/hitoshi/meibo/internal/repository"
)

// --- モック定義 ---

type mockStudentRepo struct {
	listAllFn      func(ctx context.Context) ([]*model.Student, error)
	findSIDBySIDFn func(ctx context.Context, sID string) (*repository.StudentIDView, error)
	createFn       func(ctx context.Context, student *model.Student) error
}

func (m *mockStudentRepo) ListAll(ctx context.Context) ([]*model.Student, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockStudentRepo) FindSIDBySID(ctx context.Context, sID string) (*repository.StudentIDView, error) {
	if m.findSIDBySIDFn != nil {
		return m.findSIDBySIDFn(ctx, sID)
	}
	return nil, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *model.Student) error {
	if m.createFn != nil {
		return m.createFn(ctx, student)
	}
	return nil
}

var _ repository.StudentRepository = (*mockStudentRepo)(nil)

// passthroughSanitizer はサニタイズせずそのまま返す。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

// markingSanitizer は呼び出しを記録しつつ目印を付けて返す。
type markingSanitizer struct {
	calls []string
}

func (m *markingSanitizer) Sanitize(raw string) string {
	m.calls = append(m.calls, raw)
	return "clean:" + raw
}

func newTestService(repo *mockStudentRepo) *Service {
	return NewService(repo, filter.NewEngine(), passthroughSanitizer{})
}

func sampleStudents() []*model.Student {
	return []*model.Student{
		{ID: "1", SID: "s-001", Name: "Alice", School: "North", Grade: model.GradeFreshman},
		{ID: "2", SID: "s-002", Name: "Bob", School: "South", Grade: model.GradeSenior},
		{ID: "3", SID: "s-003", Name: "Carol", School: "North", Grade: model.GradeFreshman},
	}
}

// --- 一覧のテスト ---

func TestList_NoConstraints_ReturnsAllInOrder(t *testing.T) {
	repo := &mockStudentRepo{
		listAllFn: func(ctx context.Context) ([]*model.Student, error) {
			return sampleStudents(), nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"s-001", "s-002", "s-003"} {
		if got[i].SID != want {
			t.Errorf("got[%d].SID = %q, want %q", i, got[i].SID, want)
		}
	}
}

func TestList_WithConstraints_FiltersThroughEngine(t *testing.T) {
	repo := &mockStudentRepo{
		listAllFn: func(ctx context.Context) ([]*model.Student, error) {
			return sampleStudents(), nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.List(context.Background(), map[string]string{"school": "North"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].SID != "s-001" || got[1].SID != "s-003" {
		t.Errorf("unexpected result order: %q, %q", got[0].SID, got[1].SID)
	}
}

func TestList_RepositoryFailure_PropagatesError(t *testing.T) {
	repo := &mockStudentRepo{
		listAllFn: func(ctx context.Context) ([]*model.Student, error) {
			return nil, errors.New("connection lost")
		},
	}
	svc := newTestService(repo)

	if _, err := svc.List(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}

// --- 取得のテスト ---

func TestGetSID_Found_ReturnsNarrowProjection(t *testing.T) {
	repo := &mockStudentRepo{
		findSIDBySIDFn: func(ctx context.Context, sID string) (*repository.StudentIDView, error) {
			return &repository.StudentIDView{SID: sID}, nil
		},
	}
	svc := newTestService(repo)

	view, err := svc.GetSID(context.Background(), "s-001")
	if err != nil {
		t.Fatalf("GetSID() error = %v", err)
	}
	if view.SID != "s-001" {
		t.Errorf("SID = %q, want s-001", view.SID)
	}
}

func TestGetSID_Missing_ReturnsStudentNotFound(t *testing.T) {
	svc := newTestService(&mockStudentRepo{})

	_, err := svc.GetSID(context.Background(), "s-999")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeStudentNotFound {
		t.Fatalf("error = %v, want STUDENT_NOT_FOUND", err)
	}
	if apiErr.Message != "student not found" {
		t.Errorf("message = %q, want %q", apiErr.Message, "student not found")
	}
}

// --- 作成のテスト ---

func TestCreate_Success_AppliesServerDefaultGrade(t *testing.T) {
	var created *model.Student
	repo := &mockStudentRepo{
		createFn: func(ctx context.Context, student *model.Student) error {
			created = student
			return nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.Create(context.Background(), CreateInput{
		SID:    "s-010",
		Name:   "Dave",
		School: "East",
		Grade:  "SENIOR", // クライアント指定の学年は採用されない
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created == nil {
		t.Fatal("expected Create to reach the store")
	}
	if got.Grade != model.GradeFreshman {
		t.Errorf("grade = %q, want FRESHMAN regardless of input", got.Grade)
	}
	if got.ID == "" {
		t.Error("expected non-empty ID")
	}
	if got.SID != "s-010" || got.Name != "Dave" || got.School != "East" {
		t.Errorf("unexpected attributes: %+v", got)
	}
}

func TestCreate_MissingSID_ReturnsValidationError(t *testing.T) {
	createCalled := false
	repo := &mockStudentRepo{
		createFn: func(ctx context.Context, student *model.Student) error {
			createCalled = true
			return nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{Name: "NoID"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Fatalf("error = %v, want VALIDATION_ERROR", err)
	}
	if createCalled {
		t.Error("validation failure must not reach the store")
	}
}

func TestCreate_SanitizesAttributesBeforeStore(t *testing.T) {
	sanitizer := &markingSanitizer{}
	var created *model.Student
	repo := &mockStudentRepo{
		createFn: func(ctx context.Context, student *model.Student) error {
			created = student
			return nil
		},
	}
	svc := NewService(repo, filter.NewEngine(), sanitizer)

	_, err := svc.Create(context.Background(), CreateInput{SID: "s-011", Name: "Eve", School: "West"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.SID != "clean:s-011" || created.Name != "clean:Eve" || created.School != "clean:West" {
		t.Errorf("attributes not sanitized: %+v", created)
	}
	if len(sanitizer.calls) != 3 {
		t.Errorf("sanitizer calls = %d, want 3", len(sanitizer.calls))
	}
}

func TestCreate_DuplicateSID_PropagatesConflict(t *testing.T) {
	repo := &mockStudentRepo{
		createFn: func(ctx context.Context, student *model.Student) error {
			return model.NewDuplicateStudentError(student.SID)
		},
	}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{SID: "s-001"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeDuplicateStudent {
		t.Fatalf("error = %v, want DUPLICATE_STUDENT", err)
	}
}

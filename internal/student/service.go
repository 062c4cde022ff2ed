// Package student は生徒レコードの登録・取得・一覧のドメインロジックを提供する。
package student

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/meibo/internal/filter"
	"github.com/hitoshi/meibo/internal/model"
	"github.com/hitoshi/meibo/internal/repository"
)

// AttributeSanitizer は呼び出し側から渡された属性値のサニタイズ機能の
// インターフェース。保存前にマークアップを除去するために使用する。
type AttributeSanitizer interface {
	Sanitize(raw string) string
}

// CreateInput は生徒レコード作成の入力属性。
// Gradeは受け付けるが常にサーバー側の既定値で上書きされる。
type CreateInput struct {
	SID    string
	Name   string
	School string
	Grade  string
}

// Service は生徒レコードのサービス層。
// 一覧取得はフィルタエンジンによるメモリ内絞り込みを経由する。
type Service struct {
	students  repository.StudentRepository
	engine    *filter.Engine
	sanitizer AttributeSanitizer
}

// NewService はServiceを生成する。
func NewService(students repository.StudentRepository, engine *filter.Engine, sanitizer AttributeSanitizer) *Service {
	return &Service{
		students:  students,
		engine:    engine,
		sanitizer: sanitizer,
	}
}

// List は制約をすべて満たす生徒レコードを登録順で返す。
// 制約が空の場合は全件を返す。制約値の検証は行わず、
// 一致しないレコードが結果から外れるだけでエラーにはしない。
func (s *Service) List(ctx context.Context, constraints map[string]string) ([]*model.Student, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return s.engine.Apply(constraints, students), nil
}

// GetSID は指定された生徒番号のレコードを生徒番号のみの射影で返す。
// レコードが存在しない場合はSTUDENT_NOT_FOUNDを返す。
func (s *Service) GetSID(ctx context.Context, sID string) (*repository.StudentIDView, error) {
	view, err := s.students.FindSIDBySID(ctx, sID)
	if err != nil {
		return nil, fmt.Errorf("failed to find student: %w", err)
	}
	if view == nil {
		return nil, model.NewStudentNotFoundError()
	}
	return view, nil
}

// Create は生徒レコードを作成して返す。
// 属性値は保存前にサニタイズされる。学年は入力に関わらず
// サーバー側の既定値（FRESHMAN）で上書きされる。
func (s *Service) Create(ctx context.Context, input CreateInput) (*model.Student, error) {
	sID := strings.TrimSpace(s.sanitizer.Sanitize(input.SID))
	if sID == "" {
		return nil, model.NewValidationError("sId")
	}

	student := &model.Student{
		ID:        uuid.New().String(),
		SID:       sID,
		Name:      strings.TrimSpace(s.sanitizer.Sanitize(input.Name)),
		School:    strings.TrimSpace(s.sanitizer.Sanitize(input.School)),
		Grade:     model.GradeFreshman,
		CreatedAt: time.Now(),
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	slog.Info("student created",
		slog.String("id", student.ID),
		slog.String("s_id", student.SID),
	)
	return student, nil
}

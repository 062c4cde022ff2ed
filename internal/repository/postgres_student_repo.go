package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/meibo/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = pq.ErrorCode("23505")

// PostgresStudentRepo はPostgreSQLを使用した生徒リポジトリ。
type PostgresStudentRepo struct {
	db *sql.DB
}

// NewPostgresStudentRepo はPostgresStudentRepoを生成する。
func NewPostgresStudentRepo(db *sql.DB) *PostgresStudentRepo {
	return &PostgresStudentRepo{db: db}
}

// ListAll は全生徒レコードを登録順で返す。
func (r *PostgresStudentRepo) ListAll(ctx context.Context) ([]*model.Student, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, s_id, name, school, grade, created_at
		 FROM students
		 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		s := &model.Student{}
		if err := rows.Scan(&s.ID, &s.SID, &s.Name, &s.School, &s.Grade, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate student rows: %w", err)
	}

	return students, nil
}

// FindSIDBySID は指定sIdのレコードを識別子のみのビューとして返す。見つからない場合はnilを返す。
func (r *PostgresStudentRepo) FindSIDBySID(ctx context.Context, sID string) (*StudentIDView, error) {
	view := &StudentIDView{}
	err := r.db.QueryRowContext(ctx,
		`SELECT s_id FROM students WHERE s_id = $1`,
		sID,
	).Scan(&view.SID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find student by sId: %w", err)
	}

	return view, nil
}

// Create は生徒レコードを作成する。sId重複はDUPLICATE_STUDENTエラーとして返す。
func (r *PostgresStudentRepo) Create(ctx context.Context, student *model.Student) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO students (id, s_id, name, school, grade, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		student.ID, student.SID, student.Name, student.School, student.Grade, student.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.NewDuplicateStudentError(student.SID)
		}
		return fmt.Errorf("failed to insert student: %w", err)
	}

	return nil
}

// compile-time interface check
var _ StudentRepository = (*PostgresStudentRepo)(nil)

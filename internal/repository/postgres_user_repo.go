package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/meibo/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーアカウントリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByEmail は正規化済みメールアドレスでアカウントを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.UserAccount, error) {
	user := &model.UserAccount{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, auth_id, email, created_at FROM user_accounts WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.AuthID, &user.Email, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// Create はアカウントを作成する。email重複はDUPLICATE_EMAILエラーとして返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.UserAccount) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_accounts (id, auth_id, email, created_at)
		 VALUES ($1, $2, $3, $4)`,
		user.ID, user.AuthID, user.Email, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.NewDuplicateEmailError()
		}
		return fmt.Errorf("failed to insert user account: %w", err)
	}

	return nil
}

// DeleteByAuthID は認可局ユーザーIDでアカウントを削除する。
// 補償処理で対象が既に存在しない場合もエラーにはしない（冪等）。
func (r *PostgresUserRepo) DeleteByAuthID(ctx context.Context, authID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_accounts WHERE auth_id = $1`,
		authID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user account: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)

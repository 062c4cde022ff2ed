// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/meibo/internal/model"
)

// StudentIDView は識別子のみに絞った生徒レコードのビュー（narrow projection）。
type StudentIDView struct {
	SID string
}

// StudentRepository は生徒レコードの永続化インターフェース。
type StudentRepository interface {
	// ListAll は全生徒レコードをストアの列挙順（登録順）で返す。
	ListAll(ctx context.Context) ([]*model.Student, error)

	// FindSIDBySID は指定sIdのレコードを識別子のみのビューとして返す。
	// 見つからない場合はnilを返す（エラーにはしない）。
	FindSIDBySID(ctx context.Context, sID string) (*StudentIDView, error)

	// Create は生徒レコードを作成する。
	// sId重複はmodel.ErrCodeDuplicateStudentのAPIErrorとして返す。
	Create(ctx context.Context, student *model.Student) error
}

// UserRepository はユーザーアカウントの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は正規化済み（小文字）メールアドレスでアカウントを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.UserAccount, error)

	// Create はアカウントを作成する。登録フローの第2ステップ
	// （認可局側アカウント作成成功の直後）でのみ呼び出される。
	// email重複はmodel.ErrCodeDuplicateEmailのAPIErrorとして返す。
	Create(ctx context.Context, user *model.UserAccount) error

	// DeleteByAuthID は認可局ユーザーIDでアカウントを削除する。
	// 登録フローの補償処理および管理操作でのみ使用する。
	DeleteByAuthID(ctx context.Context, authID string) error
}

// Package account は登録・ログインのアカウントライフサイクルを調停する。
//
// 登録は認可局とローカルストアという独立した2つのシステムへの
// 非トランザクショナルな書き込みを伴うため、部分失敗時の補償処理を持つ。
// ログインは両方の検査に通るまで一切書き込みを行わないため補償は不要。
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/meibo/internal/authority"
	"github.com/hitoshi/meibo/internal/model"
	"github.com/hitoshi/meibo/internal/repository"
)

// AuthorityClient はアカウントライフサイクルが必要とする認可局操作のインターフェース。
type AuthorityClient interface {
	// CreateAccount は認可局側にアカウントを作成し、認可局ユーザーIDを返す。
	CreateAccount(ctx context.Context, email, password string) (string, error)
	// VerifyPassword はパスワードを検証する。不一致はエラーではなくfalseを返す。
	VerifyPassword(ctx context.Context, authID, password string) (bool, error)
	// IssueSignInToken はサインイントークンを発行する。
	IssueSignInToken(ctx context.Context, authID string) (string, error)
	// DeleteAccount は認可局側アカウントを削除する（補償処理用、ベストエフォート）。
	DeleteAccount(ctx context.Context, authID string) error
}

// MetricsRecorder は認証関連メトリクスの記録インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordRegistrationRollback()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// Service は登録とログインのオーケストレーションを提供する。
type Service struct {
	authority AuthorityClient
	users     repository.UserRepository
	metrics   MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(authority AuthorityClient, users repository.UserRepository, metrics MetricsRecorder) *Service {
	return &Service{
		authority: authority,
		users:     users,
		metrics:   metrics,
	}
}

// Register はユーザー登録を実行し、発行されたサインイントークンを返す。
//
// 線形のステートマシンで、補償分岐は1つ:
//  1. 入力検証
//  2. 認可局側アカウント作成（拒否されたらここで終了）
//  3. ローカルのユーザーレコード作成（失敗したら認可局側アカウントを補償削除）
//  4. サインイントークン発行（失敗したら両側を補償削除）
//
// 補償は応答を返す前に必ず完了させる。認可局側アカウントが
// リンクされないまま残ると、そのメールアドレスは上流で使用済みのまま
// ローカルから到達できない孤児アカウントになるため。
func (s *Service) Register(ctx context.Context, emailAddress, password string) (string, error) {
	// 1. 入力検証。参照実装はこの検査を欠くことがあるが、ここでは必須とする。
	if strings.TrimSpace(emailAddress) == "" {
		return "", model.NewValidationError("emailAddress")
	}
	if password == "" {
		return "", model.NewValidationError("password")
	}

	email := strings.ToLower(emailAddress)

	// 2. 認可局側アカウントの作成
	authID, err := s.authority.CreateAccount(ctx, email, password)
	if err != nil {
		var apiErr *authority.APIError
		if errors.As(err, &apiErr) {
			slog.Warn("authority rejected account creation",
				slog.String("email", email),
				slog.Int("status", apiErr.StatusCode),
			)
			// 最初の説明メッセージを返す。形式が不明な場合は汎用メッセージ。
			return "", model.NewAuthenticationError(apiErr.FirstMessage())
		}
		slog.Error("authority account creation failed",
			slog.String("error", err.Error()),
		)
		return "", model.NewAuthorityUnavailableError()
	}

	// 3. ローカルのユーザーレコードと紐付け
	user := &model.UserAccount{
		ID:        uuid.New().String(),
		AuthID:    authID,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		slog.Error("failed to link user account",
			slog.String("auth_id", authID),
			slog.String("error", err.Error()),
		)
		s.compensateAuthority(ctx, authID)
		return "", model.NewAuthenticationError("")
	}

	// 4. サインイントークンの発行。
	// ここで失敗した場合はローカル・認可局の両方を巻き戻し、
	// 登録全体を失敗として扱う（半端に登録された状態を残さない）。
	token, err := s.authority.IssueSignInToken(ctx, authID)
	if err != nil {
		slog.Error("failed to issue sign-in token after registration",
			slog.String("auth_id", authID),
			slog.String("error", err.Error()),
		)
		if derr := s.users.DeleteByAuthID(ctx, authID); derr != nil {
			slog.Error("failed to remove local user account during rollback",
				slog.String("auth_id", authID),
				slog.String("error", derr.Error()),
			)
		}
		s.compensateAuthority(ctx, authID)
		return "", model.NewAuthorityUnavailableError()
	}

	s.metrics.RecordRegistration()
	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", email),
	)
	return token, nil
}

// Login はログインを実行し、発行されたサインイントークンを返す。
// 未登録メールアドレスとパスワード誤りは同一の汎用メッセージで拒否し、
// どちらのケースかをクライアントに区別させない。検証に通るまで
// 一切の書き込みを行わない。
func (s *Service) Login(ctx context.Context, emailAddress, password string) (string, error) {
	email := strings.ToLower(emailAddress)

	// 1. ローカルのユーザーレコードを検索。見つからなければ即座に終了する。
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user account: %w", err)
	}
	if user == nil {
		s.metrics.RecordLoginFailure()
		return "", model.NewAuthenticationError("")
	}

	// 2. パスワード検証。クライアントが提示したIDではなく、
	// ローカルレコードに紐付く認可局ユーザーIDを必ず使う。
	verified, err := s.authority.VerifyPassword(ctx, user.AuthID, password)
	if err != nil {
		slog.Error("password verification failed",
			slog.String("error", err.Error()),
		)
		return "", model.NewAuthorityUnavailableError()
	}
	if !verified {
		s.metrics.RecordLoginFailure()
		return "", model.NewAuthenticationError("")
	}

	// 3. サインイントークンの発行
	token, err := s.authority.IssueSignInToken(ctx, user.AuthID)
	if err != nil {
		slog.Error("failed to issue sign-in token",
			slog.String("error", err.Error()),
		)
		return "", model.NewAuthorityUnavailableError()
	}

	s.metrics.RecordLoginSuccess()
	slog.Info("user logged in", slog.String("user_id", user.ID))
	return token, nil
}

// compensateAuthority は認可局側アカウントをベストエフォートで削除する。
// 補償自体の失敗は元のエラーを覆い隠さないよう、ログに記録して握りつぶす。
func (s *Service) compensateAuthority(ctx context.Context, authID string) {
	s.metrics.RecordRegistrationRollback()
	if err := s.authority.DeleteAccount(ctx, authID); err != nil {
		slog.Error("compensating account deletion failed",
			slog.String("auth_id", authID),
			slog.String("error", err.Error()),
		)
	}
}

// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, records, authority, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeStudentNotFound      = "STUDENT_NOT_FOUND"
	ErrCodeDuplicateStudent     = "DUPLICATE_STUDENT"
	ErrCodeDuplicateEmail       = "DUPLICATE_EMAIL"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeAuthorityUnavailable = "AUTHORITY_UNAVAILABLE"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
)

// genericAuthMessage は認証失敗時の汎用メッセージ。
// メールアドレス未登録とパスワード誤りをクライアントに区別させない。
const genericAuthMessage = "invalid email address or password"

// NewValidationError は必須フィールド欠落エラーを生成する。
func NewValidationError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("missing required field: %s", field),
		Category: "validation",
		Action:   "Provide the missing field and retry the request.",
	}
}

// NewStudentNotFoundError は生徒レコード未検出エラーを生成する。
func NewStudentNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeStudentNotFound,
		Message:  "student not found",
		Category: "records",
		Action:   "Check the student identifier and retry.",
	}
}

// NewDuplicateStudentError はsId重複エラーを生成する。
func NewDuplicateStudentError(sID string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateStudent,
		Message:  fmt.Sprintf("student already exists: %s", sID),
		Category: "records",
		Action:   "Use a different sId or update the existing record.",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "email address is already linked to an account",
		Category: "auth",
		Action:   "Sign in with the existing account instead.",
	}
}

// NewAuthenticationError は認証失敗エラーを生成する。
// messageが空の場合は汎用メッセージを使用する。
func NewAuthenticationError(message string) *APIError {
	if message == "" {
		message = genericAuthMessage
	}
	return &APIError{
		Code:     ErrCodeAuthenticationFailed,
		Message:  message,
		Category: "auth",
		Action:   "Check your email address and password, then try again.",
	}
}

// NewAuthorityUnavailableError は認可局の通信・可用性障害エラーを生成する。
// 資格情報の誤りによる拒否とは区別され、502系のステータスにマッピングされる。
func NewAuthorityUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthorityUnavailable,
		Message:  "identity authority is unavailable",
		Category: "authority",
		Action:   "Wait a moment and try again.",
	}
}

// NewUnauthorizedError は未認証リクエストエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "authentication required",
		Category: "auth",
		Action:   "Sign in and retry the request.",
	}
}

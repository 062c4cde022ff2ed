// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/meibo/internal/authority"
	"github.com/hitoshi/meibo/internal/model"
	"github.com/hitoshi/meibo/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// authIDContextKey はリクエストコンテキストに認可局ユーザーIDを格納するためのキー。
var authIDContextKey = contextKey("auth_id")

// TokenVerifier はセッショントークンの検証に必要なインターフェース。
// authority.Clientの部分集合として定義する。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// NewAuthMiddleware はaccessToken Cookieからセッショントークンを読み取り、
// 認可局で有効性を検証するミドルウェアを返す。
// 検証済みの認可局ユーザーIDをリクエストコンテキストに注入する。
// Cookie欠落・無効トークンには401、認可局の可用性障害には502を返す。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. CookieからセッショントークンTokenを取得
			cookie, err := r.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. トークンの有効性を認可局で検証
			authID, err := verifier.VerifyToken(r.Context(), cookie.Value)
			if err != nil {
				var apiErr *authority.APIError
				if errors.As(err, &apiErr) {
					WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
					return
				}
				slog.Error("session token verification failed",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusBadGateway, model.NewAuthorityUnavailableError())
				return
			}

			// 3. 検証済みユーザーIDをコンテキストに注入
			ctx := context.WithValue(r.Context(), authIDContextKey, authID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthIDFromContext はリクエストコンテキストから認可局ユーザーIDを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func AuthIDFromContext(ctx context.Context) (string, error) {
	authID, ok := ctx.Value(authIDContextKey).(string)
	if !ok || authID == "" {
		return "", fmt.Errorf("auth ID not found in context")
	}
	return authID, nil
}

// ContextWithAuthID はコンテキストに認可局ユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithAuthID(ctx context.Context, authID string) context.Context {
	return context.WithValue(ctx, authIDContextKey, authID)
}

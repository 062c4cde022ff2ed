package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/meibo/internal/model"
	"github.com/hitoshi/meibo/internal/session"
)

// AccountServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	// Register はユーザー登録を実行し、サインイントークンを返す。
	Register(ctx context.Context, emailAddress, password string) (string, error)
	// Login はログインを実行し、サインイントークンを返す。
	Login(ctx context.Context, emailAddress, password string) (string, error)
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service  AccountServiceInterface
	sessions *session.Manager
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AccountServiceInterface, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
	}
}

// credentialsRequest は登録・ログインリクエストのボディ。
type credentialsRequest struct {
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
}

// tokenResponse はトークン発行成功時のレスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// Register はユーザー登録を処理する。
// 成功時はaccessToken Cookieを設定し、トークンをボディでも返す。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Register(r.Context(), req.EmailAddress, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.sessions.Establish(w, token)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Login はログインを処理する。
// 成功時はaccessToken Cookieを設定し、トークンをボディでも返す。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Login(r.Context(), req.EmailAddress, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.sessions.Establish(w, token)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Logout はセッションCookieを破棄する。
// Cookieがない状態で呼ばれても同じ成功レスポンスを返す（冪等）。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// decodeCredentials はリクエストボディを解析する。
// 解析失敗時はエラーレスポンスを書き込みfalseを返す。
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "failed to parse request body",
			Category: "validation",
			Action:   "send a valid JSON body",
		})
		return credentialsRequest{}, false
	}
	return req, true
}

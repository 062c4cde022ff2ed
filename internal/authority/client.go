// Package authority は外部アイデンティティ認可局のHTTPクライアントを提供する。
//
// 認可局は資格情報の保管・検証を担う外部サービスで、アカウント作成、
// パスワード検証、サインイントークン発行、アカウント削除、
// アクセストークン検証のREST APIを公開している。
// 認可局内部のトークン形式には依存せず、不透明な文字列として扱う。
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// defaultBaseURL は認可局APIのデフォルトエンドポイント。
	defaultBaseURL = "https://api.authority.example.com/v1"
	// defaultTimeout は認可局呼び出しのデフォルトタイムアウト。
	defaultTimeout = 10 * time.Second
)

// APIError は認可局がリクエストを拒否（4xx応答）した際のエラー。
// 認可局が返す人間可読のメッセージリストを保持する。
// 通信・可用性障害（5xx、ネットワークエラー）はAPIErrorにはせず、
// 通常のエラーとして返す。
type APIError struct {
	StatusCode int
	Messages   []string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("authority rejected request (status %d): %s",
		e.StatusCode, strings.Join(e.Messages, "; "))
}

// FirstMessage は最初の説明メッセージを返す。メッセージが無い場合は空文字を返す。
func (e *APIError) FirstMessage() string {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0]
}

// ClientConfig は認可局クライアントの設定。
type ClientConfig struct {
	SecretKey string // 認可局APIの秘密鍵。ログには出力しない。
	BaseURL   string // テスト用にオーバーライド可能なエンドポイント
	Timeout   time.Duration
}

// Client は認可局REST APIのHTTPクライアント。
type Client struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
}

// NewClient はClientを生成する。
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		secretKey:  config.SecretKey,
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
	}
}

// --- APIレスポンス型 ---

// authorityErrorBody は認可局のエラーレスポンス。
type authorityErrorBody struct {
	Errors []struct {
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
	} `json:"errors"`
}

// createAccountResponse はアカウント作成エンドポイントのレスポンス。
type createAccountResponse struct {
	ID string `json:"id"`
}

// verifyPasswordResponse はパスワード検証エンドポイントのレスポンス。
type verifyPasswordResponse struct {
	Verified bool `json:"verified"`
}

// signInTokenResponse はサインイントークン発行エンドポイントのレスポンス。
type signInTokenResponse struct {
	Token string `json:"token"`
}

// verifyTokenResponse はトークン検証エンドポイントのレスポンス。
type verifyTokenResponse struct {
	UserID string `json:"user_id"`
}

// CreateAccount は認可局側にアカウントを作成し、認可局ユーザーIDを返す。
// メールアドレスが登録済み、またはパスワードポリシー違反の場合は
// *APIErrorを返す（説明メッセージつき）。
func (c *Client) CreateAccount(ctx context.Context, email, password string) (string, error) {
	body := map[string]any{
		"email_address": []string{email},
		"password":      password,
	}

	respBody, err := c.do(ctx, http.MethodPost, "/users", body)
	if err != nil {
		return "", err
	}

	var created createAccountResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("failed to parse create account response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("empty user id in create account response")
	}

	return created.ID, nil
}

// VerifyPassword は認可局側でパスワードを検証する。
// パスワード不一致ではエラーにせずfalseを返す。
// エラーを返すのは通信・可用性障害の場合のみ。
func (c *Client) VerifyPassword(ctx context.Context, authID, password string) (bool, error) {
	body := map[string]any{"password": password}

	respBody, err := c.do(ctx, http.MethodPost, "/users/"+authID+"/verify_password", body)
	if err != nil {
		// 4xxの拒否はパスワード不一致として扱う
		if _, ok := err.(*APIError); ok {
			return false, nil
		}
		return false, err
	}

	var verified verifyPasswordResponse
	if err := json.Unmarshal(respBody, &verified); err != nil {
		return false, fmt.Errorf("failed to parse verify password response: %w", err)
	}

	return verified.Verified, nil
}

// IssueSignInToken は指定の認可局ユーザーIDに対する一度きりの
// サインイントークンを発行する。
func (c *Client) IssueSignInToken(ctx context.Context, authID string) (string, error) {
	body := map[string]any{"user_id": authID}

	respBody, err := c.do(ctx, http.MethodPost, "/sign_in_tokens", body)
	if err != nil {
		return "", err
	}

	var issued signInTokenResponse
	if err := json.Unmarshal(respBody, &issued); err != nil {
		return "", fmt.Errorf("failed to parse sign-in token response: %w", err)
	}
	if issued.Token == "" {
		return "", fmt.Errorf("empty token in sign-in token response")
	}

	return issued.Token, nil
}

// DeleteAccount は認可局側のアカウントを削除する。
// 登録フローの補償処理として使用されるベストエフォート操作であり、
// 失敗の扱い（ログに記録して握りつぶす）は呼び出し元が判断する。
func (c *Client) DeleteAccount(ctx context.Context, authID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/"+authID, nil)
	return err
}

// VerifyToken はアクセストークンを検証し、認可局ユーザーIDを返す。
// 無効・期限切れトークンは*APIErrorとして返る。
func (c *Client) VerifyToken(ctx context.Context, token string) (string, error) {
	body := map[string]any{"token": token}

	respBody, err := c.do(ctx, http.MethodPost, "/tokens/verify", body)
	if err != nil {
		return "", err
	}

	var verified verifyTokenResponse
	if err := json.Unmarshal(respBody, &verified); err != nil {
		return "", fmt.Errorf("failed to parse verify token response: %w", err)
	}
	if verified.UserID == "" {
		return "", fmt.Errorf("empty user id in verify token response")
	}

	return verified.UserID, nil
}

// do はJSONボディつきのHTTPリクエストを実行し、レスポンスボディを返す。
// 4xx応答は*APIError、5xxおよび通信エラーは通常のエラーとして返す。
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create authority request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authority request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read authority response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, parseAPIError(resp.StatusCode, respBody)
	default:
		return nil, fmt.Errorf("authority returned status %d", resp.StatusCode)
	}
}

// parseAPIError は認可局のエラーレスポンスから*APIErrorを構築する。
// ボディが期待する形式でない場合はメッセージなしのAPIErrorを返す。
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var parsed authorityErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}

	for _, e := range parsed.Errors {
		msg := e.LongMessage
		if msg == "" {
			msg = e.Message
		}
		if msg != "" {
			apiErr.Messages = append(apiErr.Messages, msg)
		}
	}

	return apiErr
}

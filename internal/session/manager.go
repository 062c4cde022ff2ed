// Package session はアクセストークンCookieによるセッションの確立と破棄を提供する。
//
// サーバー側のセッションストアは持たない。Cookieそのものがセッションの
// ハンドルであり、後続リクエストでの有効性検証は認可局クライアントが行う。
package session

import "net/http"

// CookieName はセッションCookieの名前。
const CookieName = "accessToken"

// Config はセッションCookieの設定。
type Config struct {
	// Production は本番環境かどうか。Cookieのドメインスコープと
	// Secure属性の切り替えに使用する。
	Production bool
	// CookieDomain は本番環境で使用するドメイン（例: ".example.com"）。
	CookieDomain string
	// MaxAge はCookieの有効期間（秒）。
	MaxAge int
}

// Manager はセッションCookieの発行と破棄を行う。
type Manager struct {
	config Config
}

// NewManager はManagerを生成する。
func NewManager(config Config) *Manager {
	return &Manager{config: config}
}

// Establish はサインイントークンをaccessToken Cookieとしてクライアントに保存する。
// ドメインは本番環境では設定されたドメイン、それ以外ではlocalhostにスコープされる。
func (m *Manager) Establish(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.domain(),
		MaxAge:   m.config.MaxAge,
		HttpOnly: true,
		Secure:   m.config.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear はaccessToken Cookieの削除をクライアントに指示する。
// Cookieが存在しない場合に呼ばれても何も起きない（冪等）。
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.domain(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

// domain は環境フラグに応じたCookieドメインを返す。
func (m *Manager) domain() string {
	if m.config.Production {
		return m.config.CookieDomain
	}
	return "localhost"
}

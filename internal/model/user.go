// Package model はドメインモデルを定義する。
package model

import "time"

// UserAccount は外部認可局のユーザーIDとローカルのメールアドレスを紐付けるレコードを表す。
// auth_idとemailの一意性はストア側で強制される。emailは常に小文字に正規化して保存する。
type UserAccount struct {
	ID        string
	AuthID    string
	Email     string
	CreatedAt time.Time
}

// SignInToken は認可局が発行する一度きりのサインイントークンを表す。
// 永続化はせず、セッションCookieの確立にのみ使用する。
type SignInToken struct {
	Token  string
	AuthID string
}

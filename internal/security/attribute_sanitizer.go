// Package security はアプリケーションのセキュリティ機能を提供する。
//
// AttributeSanitizer は呼び出し側から渡された生徒属性の文字列を
// サニタイズし、保存データや応答に混入するマークアップを除去する。
// bluemondayライブラリの厳格ポリシーで、タグを一切許可しない。
package security

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// AttributeSanitizer は属性値からマークアップを除去する。
// 属性はプレーンテキストとして扱うため、許可タグは存在しない。
// scriptタグ、イベント属性、その他のHTML要素はすべて除去される。
// 同一入力に対して常に同一出力を返す（冪等）。
type AttributeSanitizer struct {
	policy *bluemonday.Policy
}

// NewAttributeSanitizer はAttributeSanitizerを生成する。
// ポリシーはStrictPolicy相当で、要素も属性も一切許可しない。
func NewAttributeSanitizer() *AttributeSanitizer {
	return &AttributeSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は属性値からすべてのマークアップを除去したテキストを返す。
// bluemondayはテキストをHTMLエスケープして返すため、プレーンテキスト
// 属性として保存できるようエスケープを戻す。空文字列には空文字列を返す。
func (s *AttributeSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return html.UnescapeString(s.policy.Sanitize(raw))
}

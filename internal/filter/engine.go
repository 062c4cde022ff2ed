// Package filter は生徒レコードに対する動的な属性フィルタエンジンを提供する。
//
// リクエスト側が指定できる制約キーは無制限だが、照合に使われるのは
// ここに登録された属性アクセサに対応するキーのみ。未登録キーを含む制約は
// どのレコードにも一致せず、決定的に空の結果を返す。
// 許可キー集合を明示的なマップとして持つことで、動的な属性参照に頼らずに
// 監査可能な形で「未知のキーは決して一致しない」という振る舞いを保存する。
package filter

import "github.com/hitoshi/meibo/internal/model"

// Accessor は生徒レコードから属性値を文字列として取り出す関数。
type Accessor func(s *model.Student) string

// Engine は許可されたフィルタキーと属性アクセサの対応を保持する。
type Engine struct {
	accessors map[string]Accessor
}

// NewEngine は生徒レコードの標準属性（sId, name, school, grade）を
// 登録したEngineを生成する。
func NewEngine() *Engine {
	return &Engine{
		accessors: map[string]Accessor{
			"sId":    func(s *model.Student) string { return s.SID },
			"name":   func(s *model.Student) string { return s.Name },
			"school": func(s *model.Student) string { return s.School },
			"grade":  func(s *model.Student) string { return string(s.Grade) },
		},
	}
}

// Apply は制約をすべて満たすレコードだけを元の列挙順のまま返す。
// 制約が空の場合は入力をそのまま返す。
// 照合は大文字小文字を区別する完全一致で、型の強制変換は行わない。
// 制約値の妥当性検証は行わず、一致しない値は単に結果から外れる
// （fail-softであり、エラーにはしない）。
func (e *Engine) Apply(constraints map[string]string, students []*model.Student) []*model.Student {
	if len(constraints) == 0 {
		return students
	}

	matched := make([]*model.Student, 0, len(students))
	for _, s := range students {
		if e.matches(constraints, s) {
			matched = append(matched, s)
		}
	}
	return matched
}

// matches は1件のレコードが全制約を満たすかを判定する。
func (e *Engine) matches(constraints map[string]string, s *model.Student) bool {
	for key, want := range constraints {
		accessor, ok := e.accessors[key]
		if !ok {
			// 未登録キーはどのレコードにも一致しない
			return false
		}
		if accessor(s) != want {
			return false
		}
	}
	return true
}

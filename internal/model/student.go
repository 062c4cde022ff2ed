// Package model はドメインモデルを定義する。
package model

import "time"

// Student は生徒レコードを表す。
// sIdは外部向けの一意キーで、ストア側で一意性が強制される。
type Student struct {
	ID        string
	SID       string
	Name      string
	School    string
	Grade     Grade
	CreatedAt time.Time
}

// Grade は学年を表す。
type Grade string

const (
	// GradeFreshman は1年生。新規作成時のサーバー側デフォルト値。
	GradeFreshman Grade = "FRESHMAN"
	// GradeSophomore は2年生。
	GradeSophomore Grade = "SOPHOMORE"
	// GradeJunior は3年生。
	GradeJunior Grade = "JUNIOR"
	// GradeSenior は4年生。
	GradeSenior Grade = "SENIOR"
)

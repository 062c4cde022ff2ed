package filter

import (
	"testing"

	"github.com/hitoshi/meibo/internal/model"
)

func sampleStudents() []*model.Student {
	return []*model.Student{
		{ID: "1", SID: "S1", Name: "Ann", School: "Lincoln", Grade: model.GradeFreshman},
		{ID: "2", SID: "S2", Name: "Ben", School: "Lincoln", Grade: model.GradeSenior},
		{ID: "3", SID: "S3", Name: "Cara", School: "Roosevelt", Grade: model.GradeFreshman},
	}
}

func TestApply_NoConstraints_ReturnsAllInOrder(t *testing.T) {
	e := NewEngine()
	students := sampleStudents()

	got := e.Apply(map[string]string{}, students)

	if len(got) != len(students) {
		t.Fatalf("len = %d, want %d", len(got), len(students))
	}
	// 元の列挙順が保存されること
	for i := range students {
		if got[i].SID != students[i].SID {
			t.Errorf("got[%d].SID = %q, want %q", i, got[i].SID, students[i].SID)
		}
	}
}

func TestApply_SingleConstraint_FiltersExactMatch(t *testing.T) {
	e := NewEngine()

	got := e.Apply(map[string]string{"school": "Lincoln"}, sampleStudents())

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].SID != "S1" || got[1].SID != "S2" {
		t.Errorf("got SIDs = %q, %q, want S1, S2", got[0].SID, got[1].SID)
	}
}

func TestApply_MultipleConstraints_RequiresAllToMatch(t *testing.T) {
	e := NewEngine()

	got := e.Apply(map[string]string{
		"grade":  "FRESHMAN",
		"school": "Lincoln",
	}, sampleStudents())

	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].SID != "S1" {
		t.Errorf("got[0].SID = %q, want S1", got[0].SID)
	}
}

func TestApply_UnknownKey_MatchesNothing(t *testing.T) {
	e := NewEngine()

	got := e.Apply(map[string]string{"nonexistentKey": "x"}, sampleStudents())

	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestApply_UnknownKeyCombinedWithValidKey_MatchesNothing(t *testing.T) {
	e := NewEngine()

	got := e.Apply(map[string]string{
		"school":  "Lincoln",
		"unknown": "y",
	}, sampleStudents())

	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestApply_CaseSensitiveComparison(t *testing.T) {
	e := NewEngine()

	// 値の大文字小文字が一致しない場合はエラーにならず、単に一致しない
	got := e.Apply(map[string]string{"school": "lincoln"}, sampleStudents())

	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestApply_NoMatchingValue_ReturnsEmptyNotError(t *testing.T) {
	e := NewEngine()

	// 等価比較として意味をなさない値でも失敗せず、空の結果を返す（fail-soft）
	got := e.Apply(map[string]string{"name": "'; DROP TABLE students;--"}, sampleStudents())

	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestApply_EmptyCollection_ReturnsEmpty(t *testing.T) {
	e := NewEngine()

	got := e.Apply(map[string]string{"grade": "FRESHMAN"}, nil)

	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

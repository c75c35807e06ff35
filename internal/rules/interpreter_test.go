package rules

import (
	"testing"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

func kinds(predicates []Predicate) []PredicateKind {
	ks := make([]PredicateKind, 0, len(predicates))
	for _, p := range predicates {
		ks = append(ks, p.Kind)
	}
	return ks
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        []PredicateKind
	}{
		{
			name:  "夜班禁排不需要限制词",
			title: "Night Shifts",
			want:  []PredicateKind{KindNightBan},
		},
		{
			name:        "典型的夜班禁排约定",
			title:       "No Night Shifts",
			description: "Cannot work overnight due to medical condition",
			want:        []PredicateKind{KindNightBan},
		},
		{
			name:  "周末禁排不需要限制词",
			title: "Weekend Preference",
			want:  []PredicateKind{KindWeekendBan},
		},
		{
			name:  "星期几禁排需要限制词",
			title: "Monday Unavailable",
			want:  []PredicateKind{KindDayBan},
		},
		{
			name:  "只有星期几没有限制词时不产生规则",
			title: "Prefers Monday",
			want:  []PredicateKind{},
		},
		{
			name:  "每周工时上限",
			title: "Maximum 40 hours per week",
			want:  []PredicateKind{KindWeeklyHourCap},
		},
		{
			name:  "每周班次上限",
			title: "Maximum 5 shifts per week",
			want:  []PredicateKind{KindWeeklyShiftCap},
		},
		{
			name:  "连续排班禁排",
			title: "No back-to-back shifts",
			want:  []PredicateKind{KindConsecutiveBan},
		},
		{
			name:        "早班禁排",
			title:       "No Early Mornings",
			description: "Cannot start before noon",
			want:        []PredicateKind{KindMorningBan},
		},
		{
			name:  "午后禁排",
			title: "Afternoon unavailable",
			want:  []PredicateKind{KindAfternoonBan},
		},
		{
			name:  "没有任何关键词的自由文本不产生规则",
			title: "Prefers Pediatric Ward",
			want:  []PredicateKind{},
		},
		{
			name:        "一条文本可以命中多种规则",
			title:       "No night or weekend work",
			description: "maximum 3 shifts per week",
			want:        []PredicateKind{KindWeekendBan, KindNightBan, KindWeeklyShiftCap},
		},
		{
			name:  "大小写不敏感",
			title: "NO NIGHT SHIFTS",
			want:  []PredicateKind{KindNightBan},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &domain.Convention{Title: tt.title, Description: tt.description}
			got := kinds(Interpret(c))
			if len(got) != len(tt.want) {
				t.Fatalf("Interpret() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Interpret() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestInterpretDayBanWeekday(t *testing.T) {
	c := &domain.Convention{Title: "Cannot work on Friday"}
	ps := Interpret(c)
	if len(ps) != 1 || ps[0].Kind != KindDayBan {
		t.Fatalf("Interpret() = %+v, want single day ban", ps)
	}
	if ps[0].Day != time.Friday {
		t.Errorf("Day = %v, want %v", ps[0].Day, time.Friday)
	}
}

func TestInterpretWeeklyCapLimits(t *testing.T) {
	c := &domain.Convention{Title: "Limits", Description: "36 hours per week and 4 shifts per week"}
	ps := Interpret(c)
	if len(ps) != 2 {
		t.Fatalf("Interpret() returned %d predicates, want 2", len(ps))
	}
	if ps[0].Kind != KindWeeklyHourCap || ps[0].Limit != 36 {
		t.Errorf("hour cap = %+v, want limit 36", ps[0])
	}
	if ps[1].Kind != KindWeeklyShiftCap || ps[1].Limit != 4 {
		t.Errorf("shift cap = %+v, want limit 4", ps[1])
	}
}

// "no" 是纯子串匹配，noon 这样的单词也会让限制词生效
func TestInterpretRestrictionSubstring(t *testing.T) {
	c := &domain.Convention{Title: "Works until noon on Tuesday"}
	ps := Interpret(c)
	if len(ps) != 1 || ps[0].Kind != KindDayBan || ps[0].Day != time.Tuesday {
		t.Fatalf("Interpret() = %+v, want Tuesday day ban", ps)
	}
}

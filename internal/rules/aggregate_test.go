package rules

import (
	"testing"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart time.Time
	}{
		{"周一是窗口起点", date(2026, time.August, 24), date(2026, time.August, 24)},
		{"周三回退到周一", date(2026, time.August, 26), date(2026, time.August, 24)},
		{"周六回退到周一", date(2026, time.August, 29), date(2026, time.August, 24)},
		{"周日回退六天到本周的周一", date(2026, time.August, 30), date(2026, time.August, 24)},
		{"带时刻的时间先归一化", time.Date(2026, time.August, 26, 15, 30, 0, 0, time.UTC), date(2026, time.August, 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekWindow(tt.date)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantStart.AddDate(0, 0, 7)) {
				t.Errorf("end = %v, want %v", end, tt.wantStart.AddDate(0, 0, 7))
			}
		})
	}
}

func TestShiftDurationHours(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		want    float64
		wantErr bool
	}{
		{"普通白班", "08:00:00", "16:00:00", 8, false},
		{"跨午夜的夜班", "22:00:00", "06:00:00", 8, false},
		{"半小时粒度", "09:30:00", "13:00:00", 3.5, false},
		{"格式错误", "8am", "16:00:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shift := &domain.Shift{StartTime: tt.start, EndTime: tt.end}
			got, err := ShiftDurationHours(shift)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ShiftDurationHours() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ShiftDurationHours() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShiftDurationHours() = %v, want %v", got, tt.want)
			}
		})
	}
}

func assignment(day time.Time, start, end string) *domain.ShiftAssignment {
	return &domain.ShiftAssignment{
		WorkDate: day,
		Shift:    &domain.Shift{StartTime: start, EndTime: end},
	}
}

func TestAggregate(t *testing.T) {
	// 2026-08-26 是周三，所在周为 08-24（周一）到 08-31（下周一）
	target := date(2026, time.August, 26)

	t.Run("空快照返回零值", func(t *testing.T) {
		agg := Aggregate(target, nil)
		if agg.Hours != 0 || agg.ShiftCount != 0 || agg.HasAdjacentAssignment {
			t.Fatalf("Aggregate() = %+v, want zero value", agg)
		}
	})

	t.Run("只统计周窗口内的排班", func(t *testing.T) {
		agg := Aggregate(target, []*domain.ShiftAssignment{
			assignment(date(2026, time.August, 24), "08:00:00", "16:00:00"),
			assignment(date(2026, time.August, 30), "08:00:00", "16:00:00"), // 周日，窗口内
			assignment(date(2026, time.August, 23), "08:00:00", "16:00:00"), // 上周日，窗口外
			assignment(date(2026, time.August, 31), "08:00:00", "16:00:00"), // 下周一，窗口外
		})
		if agg.ShiftCount != 2 {
			t.Errorf("ShiftCount = %d, want 2", agg.ShiftCount)
		}
		if agg.Hours != 16 {
			t.Errorf("Hours = %v, want 16", agg.Hours)
		}
	})

	t.Run("跨午夜班次按加 24 小时计算", func(t *testing.T) {
		agg := Aggregate(target, []*domain.ShiftAssignment{
			assignment(date(2026, time.August, 24), "22:00:00", "06:00:00"),
		})
		if agg.Hours != 8 {
			t.Errorf("Hours = %v, want 8", agg.Hours)
		}
	})

	t.Run("前后一天有排班即视为相邻", func(t *testing.T) {
		agg := Aggregate(target, []*domain.ShiftAssignment{
			assignment(date(2026, time.August, 25), "08:00:00", "16:00:00"),
		})
		if !agg.HasAdjacentAssignment {
			t.Error("HasAdjacentAssignment = false, want true")
		}

		agg = Aggregate(target, []*domain.ShiftAssignment{
			assignment(date(2026, time.August, 27), "08:00:00", "16:00:00"),
		})
		if !agg.HasAdjacentAssignment {
			t.Error("HasAdjacentAssignment = false, want true")
		}
	})

	t.Run("周一的相邻日可以落在窗口外", func(t *testing.T) {
		monday := date(2026, time.August, 24)
		agg := Aggregate(monday, []*domain.ShiftAssignment{
			assignment(date(2026, time.August, 23), "08:00:00", "16:00:00"), // 上周日
		})
		if !agg.HasAdjacentAssignment {
			t.Error("HasAdjacentAssignment = false, want true")
		}
		if agg.ShiftCount != 0 {
			t.Errorf("ShiftCount = %d, want 0", agg.ShiftCount)
		}
	})

	t.Run("时刻格式错误的历史记录按零工时统计", func(t *testing.T) {
		agg := Aggregate(target, []*domain.ShiftAssignment{
			assignment(date(2026, time.August, 24), "bad", "16:00:00"),
			assignment(date(2026, time.August, 25), "08:00:00", "16:00:00"),
		})
		if agg.ShiftCount != 2 {
			t.Errorf("ShiftCount = %d, want 2", agg.ShiftCount)
		}
		if agg.Hours != 8 {
			t.Errorf("Hours = %v, want 8", agg.Hours)
		}
	})
}

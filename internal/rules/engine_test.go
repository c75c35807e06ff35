package rules

import (
	"database/sql"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

// fakeSource 同时实现引擎的三个数据源接口
type fakeSource struct {
	conventions []*domain.UserConvention
	shifts      map[int64]*domain.Shift
	assignments []*domain.ShiftAssignment
}

func (f *fakeSource) FindActiveConventionsForUser(userID int64) ([]*domain.UserConvention, error) {
	return f.conventions, nil
}

func (f *fakeSource) GetShiftByID(id int64) (*domain.Shift, error) {
	shift, ok := f.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return shift, nil
}

func (f *fakeSource) FindAssignmentsByUserAndDateRange(userID int64, start time.Time, end time.Time) ([]*domain.ShiftAssignment, error) {
	out := make([]*domain.ShiftAssignment, 0)
	for _, sa := range f.assignments {
		if !sa.WorkDate.Before(start) && sa.WorkDate.Before(end) {
			out = append(out, sa)
		}
	}
	return out, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		shifts: map[int64]*domain.Shift{
			1: {ID: 1, Name: "早班", StartTime: "08:00:00", EndTime: "16:00:00", Type: domain.ShiftTypeMorning, Status: domain.ShiftStatusActive},
			2: {ID: 2, Name: "夜班", StartTime: "22:00:00", EndTime: "06:00:00", Type: domain.ShiftTypeNight, Status: domain.ShiftStatusActive},
		},
	}
}

func userConvention(selectionType domain.SelectionType, title, description string) *domain.UserConvention {
	return &domain.UserConvention{
		UserID:        1,
		SelectionType: selectionType,
		Convention: &domain.Convention{
			Title:       title,
			Description: description,
			Type:        domain.ConventionTypeRestriction,
			IsActive:    true,
		},
	}
}

func TestEngineValidateNoConventions(t *testing.T) {
	src := newFakeSource()
	engine := NewEngine(src, src, src)

	// 没有任何约定的用户直接通过，甚至不查询班次
	result, err := engine.Validate(1, 999, date(2026, time.August, 26))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.IsValid {
		t.Errorf("IsValid = false, want true")
	}
	if len(result.Violations) != 0 {
		t.Errorf("Violations = %v, want empty", result.Violations)
	}
	if result.Warnings == nil || len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want empty non-nil slice", result.Warnings)
	}
}

func TestEngineValidateShiftNotFound(t *testing.T) {
	src := newFakeSource()
	src.conventions = []*domain.UserConvention{
		userConvention(domain.SelectionTypeUserSelected, "No Night Shifts", ""),
	}
	engine := NewEngine(src, src, src)

	result, err := engine.Validate(1, 999, date(2026, time.August, 26))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(result.Violations) != 1 || result.Violations[0] != "班次不存在" {
		t.Errorf("Violations = %v, want [班次不存在]", result.Violations)
	}
}

func TestEngineValidateNightBan(t *testing.T) {
	src := newFakeSource()
	src.conventions = []*domain.UserConvention{
		userConvention(domain.SelectionTypeAdminAssigned, "No Night Shifts", "Cannot work overnight due to medical condition"),
	}
	engine := NewEngine(src, src, src)

	// 夜班违规
	result, err := engine.Validate(1, 2, date(2026, time.August, 26))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(result.Violations) != 1 || !strings.Contains(result.Violations[0], "No Night Shifts") {
		t.Errorf("Violations = %v, want one violation mentioning the convention title", result.Violations)
	}

	// 早班不受影响
	result, err = engine.Validate(1, 1, date(2026, time.August, 26))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.IsValid {
		t.Errorf("IsValid = false, want true, violations = %v", result.Violations)
	}
}

func TestEngineValidateWeeklyHourCap(t *testing.T) {
	src := newFakeSource()
	src.conventions = []*domain.UserConvention{
		userConvention(domain.SelectionTypeUserSelected, "Maximum 40 hours per week", ""),
	}
	// 本周已有四个 8 小时班次，共 32 小时
	for day := 24; day <= 27; day++ {
		src.assignments = append(src.assignments, &domain.ShiftAssignment{
			UserID:   1,
			WorkDate: date(2026, time.August, day),
			Shift:    src.shifts[1],
		})
	}
	engine := NewEngine(src, src, src)

	// 再加一个 8 小时班次刚好 40 小时，不超过上限
	result, err := engine.Validate(1, 1, date(2026, time.August, 29))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.IsValid {
		t.Errorf("IsValid = false, want true, violations = %v", result.Violations)
	}

	// 已有 40 小时后再加班次就超了
	src.assignments = append(src.assignments, &domain.ShiftAssignment{
		UserID:   1,
		WorkDate: date(2026, time.August, 28),
		Shift:    src.shifts[1],
	})
	result, err = engine.Validate(1, 1, date(2026, time.August, 29))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
}

func TestEngineValidateCollectsAllViolations(t *testing.T) {
	src := newFakeSource()
	src.conventions = []*domain.UserConvention{
		userConvention(domain.SelectionTypeAdminAssigned, "No Night Shifts", ""),
		userConvention(domain.SelectionTypeUserSelected, "No Weekend Work", "Unavailable on weekends"),
	}
	engine := NewEngine(src, src, src)

	// 周六的夜班同时违反两条约定，违规信息全部收集
	result, err := engine.Validate(1, 2, date(2026, time.August, 29))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(result.Violations) != 2 {
		t.Fatalf("Violations = %v, want 2 entries", result.Violations)
	}
}

// 同一用户同时持有工时上限和夜班禁排两条约定的完整场景
func TestEngineValidateHourCapWithNightBan(t *testing.T) {
	src := newFakeSource()
	src.conventions = []*domain.UserConvention{
		userConvention(domain.SelectionTypeAdminAssigned, "Maximum 40 Hours per Week", ""),
		userConvention(domain.SelectionTypeAdminAssigned, "No Night Shifts", ""),
	}
	src.conventions[0].Convention.Type = domain.ConventionTypeLegal
	src.conventions[1].Convention.Type = domain.ConventionTypeMedical
	// 本周一已有一个 8 小时白班
	src.assignments = []*domain.ShiftAssignment{
		{ID: 1, UserID: 1, WorkDate: date(2026, time.August, 24), Shift: src.shifts[1]},
	}
	engine := NewEngine(src, src, src)

	// 周三再排一个白班：16 小时不超上限，也不是夜班
	result, err := engine.Validate(1, 1, date(2026, time.August, 26))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.IsValid {
		t.Fatalf("IsValid = false, want true, violations = %v", result.Violations)
	}

	// 周四的 22:00-06:00 夜班：工时仍然合法，但违反夜班禁排
	result, err = engine.Validate(1, 2, date(2026, time.August, 27))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if result.IsValid {
		t.Error("IsValid = true, want false")
	}
	if len(result.Violations) != 1 {
		t.Fatalf("Violations = %v, want exactly one", result.Violations)
	}
	if !strings.Contains(result.Violations[0], "No Night Shifts") {
		t.Errorf("violation %q does not mention the night shift convention", result.Violations[0])
	}
}

// 允许类文本没有对应的规则，"Weekend Only Availability" 在工作日是空操作
func TestEngineValidateWeekendOnlyAvailability(t *testing.T) {
	src := newFakeSource()
	src.conventions = []*domain.UserConvention{
		userConvention(domain.SelectionTypeUserSelected, "Weekend Only Availability", ""),
	}
	engine := NewEngine(src, src, src)

	// 周二不在周末，weekend 关键词产生的周末禁排不命中
	result, err := engine.Validate(1, 1, date(2026, time.August, 25))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !result.IsValid {
		t.Errorf("IsValid = false, want true, violations = %v", result.Violations)
	}
}

func TestEngineValidateMoveExcludesSelf(t *testing.T) {
	t.Run("工时已满的一周内移动班次", func(t *testing.T) {
		src := newFakeSource()
		src.conventions = []*domain.UserConvention{
			userConvention(domain.SelectionTypeUserSelected, "Maximum 40 hours per week", ""),
		}
		// 周一到周五各一个 8 小时班次，共 40 小时
		for i := 0; i < 5; i++ {
			src.assignments = append(src.assignments, &domain.ShiftAssignment{
				ID:       int64(i + 1),
				UserID:   1,
				WorkDate: date(2026, time.August, 24+i),
				Shift:    src.shifts[1],
			})
		}
		engine := NewEngine(src, src, src)

		// 不排除自身时周六的校验被自己的工时挡下
		result, err := engine.Validate(1, 1, date(2026, time.August, 29))
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if result.IsValid {
			t.Error("Validate: IsValid = true, want false")
		}

		// 把周三的班次移动到周六：它自己的 8 小时不再计入，刚好 40 小时
		result, err = engine.ValidateMove(1, 1, date(2026, time.August, 29), 3)
		if err != nil {
			t.Fatalf("ValidateMove() error = %v", err)
		}
		if !result.IsValid {
			t.Errorf("ValidateMove: IsValid = false, want true, violations = %v", result.Violations)
		}
	})

	t.Run("移动到与原日期相邻的日子", func(t *testing.T) {
		src := newFakeSource()
		src.conventions = []*domain.UserConvention{
			userConvention(domain.SelectionTypeUserSelected, "No back-to-back shifts", ""),
		}
		src.assignments = []*domain.ShiftAssignment{
			{ID: 7, UserID: 1, WorkDate: date(2026, time.August, 25), Shift: src.shifts[1]},
		}
		engine := NewEngine(src, src, src)

		// 周二的班次移到周三：原日期与新日期相邻，但那条记录正是被移动的记录
		result, err := engine.ValidateMove(1, 1, date(2026, time.August, 26), 7)
		if err != nil {
			t.Fatalf("ValidateMove() error = %v", err)
		}
		if !result.IsValid {
			t.Errorf("IsValid = false, want true, violations = %v", result.Violations)
		}
	})
}

func TestEngineValidateIdempotent(t *testing.T) {
	src := newFakeSource()
	src.conventions = []*domain.UserConvention{
		userConvention(domain.SelectionTypeUserSelected, "Maximum 2 shifts per week", ""),
	}
	src.assignments = []*domain.ShiftAssignment{
		{UserID: 1, WorkDate: date(2026, time.August, 24), Shift: src.shifts[1]},
		{UserID: 1, WorkDate: date(2026, time.August, 25), Shift: src.shifts[1]},
	}
	engine := NewEngine(src, src, src)

	// 数据不变时重复校验结果一致
	var first *domain.ValidationResult
	for i := 0; i < 3; i++ {
		result, err := engine.Validate(1, 1, date(2026, time.August, 27))
		if err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if first == nil {
			first = result
			continue
		}
		if result.IsValid != first.IsValid || !slices.Equal(result.Violations, first.Violations) || !slices.Equal(result.Warnings, first.Warnings) {
			t.Fatalf("第 %d 次校验结果 %+v 与第一次 %+v 不一致", i+1, result, first)
		}
	}
	if first.IsValid {
		t.Error("IsValid = true, want false")
	}
}

package rules

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

// 校验引擎依赖的数据源，由 repository.Repository 实现，
// 测试中用内存实现替代

type ConventionSource interface {
	FindActiveConventionsForUser(userID int64) ([]*domain.UserConvention, error)
}

type ShiftSource interface {
	GetShiftByID(id int64) (*domain.Shift, error)
}

type AssignmentSource interface {
	FindAssignmentsByUserAndDateRange(userID int64, start time.Time, end time.Time) ([]*domain.ShiftAssignment, error)
}

// Engine 在一次调用内完成某个候选排班的全部约定校验。
// 引擎没有任何副作用，也不缓存数据，每次调用都重新读取当前数据，
// 因此在底层数据不变的情况下重复调用的结果完全一致
type Engine struct {
	conventions ConventionSource
	shifts      ShiftSource
	assignments AssignmentSource
}

func NewEngine(conventions ConventionSource, shifts ShiftSource, assignments AssignmentSource) *Engine {
	return &Engine{
		conventions: conventions,
		shifts:      shifts,
		assignments: assignments,
	}
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "周一",
	time.Tuesday:   "周二",
	time.Wednesday: "周三",
	time.Thursday:  "周四",
	time.Friday:    "周五",
	time.Saturday:  "周六",
	time.Sunday:    "周日",
}

// evalInput 汇总了评估谓词所需的全部上下文
type evalInput struct {
	date          time.Time
	startHour     int
	candidateHour float64
	agg           WeeklyAggregate
}

// needsAggregates 判断谓词列表中是否存在依赖周内聚合值的谓词，
// 不存在时引擎可以跳过对已有排班的查询
func needsAggregates(predicates []Predicate) bool {
	for _, p := range predicates {
		switch p.Kind {
		case KindConsecutiveBan, KindWeeklyHourCap, KindWeeklyShiftCap:
			return true
		}
	}
	return false
}

// evaluate 评估单条谓词，违规时返回嵌入约定标题的违规说明。
// 每条谓词对一次校验至多产生一条违规
func evaluate(p Predicate, c *domain.Convention, in evalInput) (string, bool) {
	switch p.Kind {
	case KindWeekendBan:
		wd := in.date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return fmt.Sprintf("违反约定「%s」：不允许在周末排班", c.Title), true
		}
	case KindDayBan:
		if in.date.Weekday() == p.Day {
			return fmt.Sprintf("违反约定「%s」：不允许在%s排班", c.Title, weekdayNames[p.Day]), true
		}
	case KindNightBan:
		if in.startHour >= 22 || in.startHour < 6 {
			return fmt.Sprintf("违反约定「%s」：不允许安排夜间班次", c.Title), true
		}
	case KindMorningBan:
		if in.startHour >= 5 && in.startHour < 12 {
			return fmt.Sprintf("违反约定「%s」：不允许安排早间班次", c.Title), true
		}
	case KindAfternoonBan:
		if in.startHour >= 12 && in.startHour < 22 {
			return fmt.Sprintf("违反约定「%s」：不允许安排午后或晚间班次", c.Title), true
		}
	case KindConsecutiveBan:
		if in.agg.HasAdjacentAssignment {
			return fmt.Sprintf("违反约定「%s」：不允许连续两天排班", c.Title), true
		}
	case KindWeeklyHourCap:
		if in.agg.Hours+in.candidateHour > float64(p.Limit) {
			return fmt.Sprintf("违反约定「%s」：本周工时将达到 %.1f 小时，超过上限 %d 小时", c.Title, in.agg.Hours+in.candidateHour, p.Limit), true
		}
	case KindWeeklyShiftCap:
		if in.agg.ShiftCount >= p.Limit {
			return fmt.Sprintf("违反约定「%s」：本周已有 %d 个班次，达到上限 %d 个", c.Title, in.agg.ShiftCount, p.Limit), true
		}
	}
	return "", false
}

// Validate 判断把班次 shiftID 安排给用户 userID 在 date 这一天是否符合该用户的全部约定。
// date 的时刻部分会被丢弃。没有关联任何启用约定的用户不受限制，直接通过。
// 所有约定的所有谓词都会被评估，违规信息会被完整收集，不会在第一条违规处提前返回，
// 管理员约定和用户自选约定具有同等效力
func (e *Engine) Validate(userID int64, shiftID int64, date time.Time) (*domain.ValidationResult, error) {
	return e.validate(userID, shiftID, date, 0)
}

// ValidateMove 校验把已存在的排班移动到 date 这一天。
// 语义与 Validate 相同，但聚合快照中会排除这条排班自身，
// 否则它在原日期上的工时和相邻日也会被计入移动后的校验
func (e *Engine) ValidateMove(userID int64, shiftID int64, date time.Time, assignmentID int64) (*domain.ValidationResult, error) {
	return e.validate(userID, shiftID, date, assignmentID)
}

func (e *Engine) validate(userID int64, shiftID int64, date time.Time, excludeAssignmentID int64) (*domain.ValidationResult, error) {
	result := &domain.ValidationResult{
		IsValid:    true,
		Violations: make([]string, 0),
		Warnings:   make([]string, 0),
	}

	ucs, err := e.conventions.FindActiveConventionsForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(ucs) == 0 {
		return result, nil
	}

	shift, err := e.shifts.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			result.IsValid = false
			result.Violations = append(result.Violations, "班次不存在")
			return result, nil
		}
		return nil, err
	}

	start, err := time.Parse(clockLayout, shift.StartTime)
	if err != nil {
		return nil, fmt.Errorf("班次 %d 的开始时间格式错误: %w", shift.ID, err)
	}
	candidateHours, err := ShiftDurationHours(shift)
	if err != nil {
		return nil, err
	}

	in := evalInput{
		date:          NormalizeDate(date),
		startHour:     start.Hour(),
		candidateHour: candidateHours,
	}

	// 先解释全部约定，只有在存在依赖聚合值的谓词时才查询已有排班
	interpreted := make([][]Predicate, len(ucs))
	needAgg := false
	for i, uc := range ucs {
		interpreted[i] = Interpret(uc.Convention)
		if needsAggregates(interpreted[i]) {
			needAgg = true
		}
	}

	if needAgg {
		weekStart, weekEnd := WeekWindow(in.date)
		// 快照范围向两侧各扩一天，目标日期是周一或周日时相邻日会落在周窗口外
		snapshot, err := e.assignments.FindAssignmentsByUserAndDateRange(userID, weekStart.AddDate(0, 0, -1), weekEnd.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		if excludeAssignmentID != 0 {
			kept := make([]*domain.ShiftAssignment, 0, len(snapshot))
			for _, sa := range snapshot {
				if sa.ID != excludeAssignmentID {
					kept = append(kept, sa)
				}
			}
			snapshot = kept
		}
		in.agg = Aggregate(in.date, snapshot)
	}

	for i, uc := range ucs {
		for _, p := range interpreted[i] {
			if msg, violated := evaluate(p, uc.Convention, in); violated {
				result.Violations = append(result.Violations, msg)
			}
		}
	}

	result.IsValid = len(result.Violations) == 0
	return result, nil
}

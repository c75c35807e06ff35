package rules

import (
	"fmt"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

const clockLayout = "15:04:05"

// NormalizeDate 丢弃时刻部分，把时间归一化到当天零点
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekWindow 返回 date 所在的周一到下周一的窗口 [start, end)。
// 周日会回退 6 天到本周的周一
func WeekWindow(date time.Time) (time.Time, time.Time) {
	d := NormalizeDate(date)
	offset := (int(d.Weekday()) + 6) % 7 // 周一为 0，周日为 6
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// ShiftDurationHours 根据班次模板的时刻计算工作时长（小时）。
// 结束时刻早于开始时刻说明班次跨越午夜（例如 22:00 到 06:00 的夜班），此时加上 24 小时
func ShiftDurationHours(shift *domain.Shift) (float64, error) {
	start, err := time.Parse(clockLayout, shift.StartTime)
	if err != nil {
		return 0, fmt.Errorf("班次 %d 的开始时间格式错误: %w", shift.ID, err)
	}
	end, err := time.Parse(clockLayout, shift.EndTime)
	if err != nil {
		return 0, fmt.Errorf("班次 %d 的结束时间格式错误: %w", shift.ID, err)
	}

	hours := end.Sub(start).Hours()
	if hours < 0 {
		hours += 24
	}
	return hours, nil
}

// WeeklyAggregate 是针对某个用户和某个目标日期计算出来的周内聚合值
type WeeklyAggregate struct {
	Hours                 float64
	ShiftCount            int
	HasAdjacentAssignment bool
}

// Aggregate 在一份已有排班的快照上计算周内工时、班次数量和相邻日排班。
// 纯函数：快照由调用方提供，这里不做任何查询，传入空快照时返回零值。
// 快照需要覆盖 [周一前一天, 下周一后一天)，以便同时覆盖周窗口和相邻日检查
func Aggregate(date time.Time, assignments []*domain.ShiftAssignment) WeeklyAggregate {
	target := NormalizeDate(date)
	weekStart, weekEnd := WeekWindow(target)
	prevDay := target.AddDate(0, 0, -1)
	nextDay := target.AddDate(0, 0, 1)

	agg := WeeklyAggregate{}
	for _, sa := range assignments {
		d := NormalizeDate(sa.WorkDate)

		if !d.Before(weekStart) && d.Before(weekEnd) {
			agg.ShiftCount++
			if sa.Shift != nil {
				// 时刻格式错误的历史记录按零工时处理，不阻塞校验
				if hours, err := ShiftDurationHours(sa.Shift); err == nil {
					agg.Hours += hours
				}
			}
		}

		if d.Equal(prevDay) || d.Equal(nextDay) {
			agg.HasAdjacentAssignment = true
		}
	}

	return agg
}

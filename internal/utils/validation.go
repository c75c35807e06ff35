package utils

import (
	"fmt"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

// ValidateShiftTime 检查班次模板的时刻格式。
// 结束时刻早于开始时刻表示班次跨越午夜（例如 22:00:00 到 06:00:00 的夜班），这是允许的，
// 但开始和结束时刻不能相同
func ValidateShiftTime(shift *domain.Shift) error {
	startTime, err := time.Parse("15:04:05", shift.StartTime)
	if err != nil {
		return fmt.Errorf("班次的开始时间格式错误，应为 15:04:05")
	}
	endTime, err := time.Parse("15:04:05", shift.EndTime)
	if err != nil {
		return fmt.Errorf("班次的结束时间格式错误，应为 15:04:05")
	}
	if startTime.Equal(endTime) {
		return fmt.Errorf("班次的开始时间和结束时间不能相同")
	}
	return nil
}

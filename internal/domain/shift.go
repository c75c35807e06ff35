package domain

import "time"

type ShiftType string

const (
	ShiftTypeMorning ShiftType = "早班"
	ShiftTypeMiddle  ShiftType = "中班"
	ShiftTypeEvening ShiftType = "晚班"
	ShiftTypeNight   ShiftType = "夜班"
)

type ShiftStatus string

const (
	ShiftStatusActive   ShiftStatus = "启用"
	ShiftStatusDisabled ShiftStatus = "停用"
)

// Shift 是可复用的班次模板，StartTime 和 EndTime 只保存一天内的时刻（格式 15:04:05），
// 具体的工作日期由排班记录决定
type Shift struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime"`
	Type      ShiftType   `json:"type"`
	Status    ShiftStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	Version   int32       `json:"-"`
}

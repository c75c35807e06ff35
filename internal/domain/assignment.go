package domain

import "time"

// ShiftAssignment 表示某个用户在某一天被安排了某个班次。
// (UserID, ShiftID, WorkDate) 三元组在数据库中有唯一约束，
// 同一个用户不能在同一天被重复安排同一个班次
type ShiftAssignment struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userID"`
	ShiftID     int64     `json:"shiftID"`
	WorkDate    time.Time `json:"workDate"`
	CreatedByID int64     `json:"createdByID"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`

	// 查询时通过 JOIN 填充，插入时不使用
	Shift *Shift `json:"shift,omitempty"`
}

// ValidationResult 是一次校验的结果，只在内存中存在，不会持久化
type ValidationResult struct {
	IsValid    bool     `json:"isValid"`
	Violations []string `json:"violations"`
	Warnings   []string `json:"warnings"`
}

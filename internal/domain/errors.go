package domain

import "errors"

// 排班工作流的错误分类，调用方通过 errors.Is 区分不同的失败原因
var (
	// ErrDuplicateAssignment 表示 (用户, 班次, 日期) 已经存在排班记录，
	// 由 repository 在捕获到唯一约束冲突时返回，数据库层的唯一索引是最终保障
	ErrDuplicateAssignment = errors.New("该用户在这一天已经被安排了相同的班次")

	// ErrInactiveUser 表示目标用户已离职，不允许为其排班
	ErrInactiveUser = errors.New("该用户已离职")

	// ErrShiftDisabled 表示班次模板已停用，不允许再用于排班
	ErrShiftDisabled = errors.New("该班次已停用")

	// ErrDuplicateUserConvention 表示用户已经关联了这条约定
	ErrDuplicateUserConvention = errors.New("该用户已关联这条约定")
)

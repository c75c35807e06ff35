package domain

import "time"

type ConventionType string

const (
	ConventionTypeAvailability ConventionType = "AVAILABILITY"
	ConventionTypeRestriction  ConventionType = "RESTRICTION"
	ConventionTypeLegal        ConventionType = "LEGAL"
	ConventionTypeMedical      ConventionType = "MEDICAL"
	ConventionTypeCustom       ConventionType = "CUSTOM"
)

// Convention 是一条自由文本的排班约定（法律限制、医疗限制、空闲时间、个人偏好等），
// 校验引擎通过关键词匹配从 Title 和 Description 中提取可执行的规则
type Convention struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        ConventionType `json:"type"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	Version     int32          `json:"-"`
}

type SelectionType string

const (
	SelectionTypeAdminAssigned SelectionType = "ADMIN_ASSIGNED"
	SelectionTypeUserSelected  SelectionType = "USER_SELECTED"
)

// UserConvention 表示用户和约定之间的关联，每对 (UserID, ConventionID) 至多存在一条
type UserConvention struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"userID"`
	ConventionID  int64         `json:"conventionID"`
	SelectionType SelectionType `json:"selectionType"`
	AssignedAt    time.Time     `json:"assignedAt"`

	Convention *Convention `json:"convention,omitempty"`
}

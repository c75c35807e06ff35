package domain

import "time"

// Message 是管理员发布的广播消息，发布后会通过邮件队列通知所有在职员工
type Message struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedByID int64     `json:"createdByID"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}

package domain

import "time"

// Teacher: 任课教师档案（工号形如 AB01）
type Teacher struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	FullName       string    `json:"fullName"`
	PreferredSlots []int32   `json:"preferredSlots"` // 偏好的时间段编号（1~7）
	DutyDays       []string  `json:"dutyDays"`       // 可以排课的工作日
	WeeklyWorkload int32     `json:"weeklyWorkload"` // 每周最多排课节数
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

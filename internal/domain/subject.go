package domain

import "time"

// Subject: 科目（编号形如 TCS-531），带每周配额和任课教师列表
type Subject struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	WeeklyQuota  int32     `json:"weeklyQuota"` // 每个班级每周最多出现的次数
	IsLab        bool      `json:"isLab"`       // 实验课：占连续两个时间段，且只能在 1/3/5 开始
	IsSpecial    bool      `json:"isSpecial"`   // 特殊课（如就业指导课），时间段限制与实验课相同
	TeacherCodes []string  `json:"teacherCodes"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

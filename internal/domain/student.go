package domain

import "time"

// Student: 学生档案，用于按属性分数分班
type Student struct {
	ID        int64     `json:"id"`
	RollNo    string    `json:"rollNo"`
	FullName  string    `json:"fullName"`
	CGPA      float64   `json:"cgpa"`
	IsHostler bool      `json:"isHostler"` // 是否住校
	Section   string    `json:"section"`   // 分班结果，未分班时为空
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

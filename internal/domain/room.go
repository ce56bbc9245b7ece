package domain

import "time"

// Room: 教室（R1、R2...）或实验室（L1、L2...）
type Room struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Capacity  int32     `json:"capacity"`
	IsLab     bool      `json:"isLab"` // 实验室属于共享池，普通教室和班级一一绑定
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

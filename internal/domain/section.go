package domain

import "time"

// Section: 班级（名称形如 A、B、C...），人数决定它需要多大的教室
type Section struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Strength  int32     `json:"strength"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

package domain

import "time"

// Assignment: 课表中的一个单元格，表示某个班级在某个时间段的一节课
type Assignment struct {
	TeacherID   string `json:"teacher_id"`
	SubjectID   string `json:"subject_id"`
	ClassroomID string `json:"classroom_id"`
	TimeSlot    int    `json:"time_slot"` // 时间段编号（1~7）
}

// SectionSchedule: 某个班级一天内按顺序排列的课
type SectionSchedule []Assignment

// DaySchedule: 班级名 -> 该班级当天的课
type DaySchedule map[string]SectionSchedule

// WeekSchedule: 工作日名 -> 当天的课表，即遗传算法中的一条染色体
type WeekSchedule map[string]DaySchedule

// Schedule: 染色体标识（"Week 1" 等）-> 周课表
type Schedule map[string]WeekSchedule

// Clone 深拷贝一条染色体，防止交叉和变异时修改原课表
func (ws WeekSchedule) Clone() WeekSchedule {
	cloned := make(WeekSchedule, len(ws))
	for day, daySchedule := range ws {
		cloned[day] = make(DaySchedule, len(daySchedule))
		for section, assignments := range daySchedule {
			copied := make(SectionSchedule, len(assignments))
			copy(copied, assignments)
			cloned[day][section] = copied
		}
	}
	return cloned
}

// AvailabilityMatrix: 实体（教师或实验室）-> 天 -> 时间段 -> 是否空闲
type AvailabilityMatrix map[string][][]bool

// NewAvailabilityMatrix 创建一个全空闲的矩阵
func NewAvailabilityMatrix(ids []string, days int, slots int) AvailabilityMatrix {
	matrix := make(AvailabilityMatrix, len(ids))
	for _, id := range ids {
		rows := make([][]bool, days)
		for i := range rows {
			rows[i] = make([]bool, slots)
			for j := range rows[i] {
				rows[i][j] = true
			}
		}
		matrix[id] = rows
	}
	return matrix
}

// Clone 深拷贝矩阵，每条染色体的生成都要在私有副本上进行
func (m AvailabilityMatrix) Clone() AvailabilityMatrix {
	cloned := make(AvailabilityMatrix, len(m))
	for id, rows := range m {
		clonedRows := make([][]bool, len(rows))
		for i, row := range rows {
			clonedRows[i] = make([]bool, len(row))
			copy(clonedRows[i], row)
		}
		cloned[id] = clonedRows
	}
	return cloned
}

// IsFree 越界一律视为不空闲
func (m AvailabilityMatrix) IsFree(id string, day int, slot int) bool {
	rows, exists := m[id]
	if !exists {
		return false
	}
	if day < 0 || day >= len(rows) {
		return false
	}
	if slot < 0 || slot >= len(rows[day]) {
		return false
	}
	return rows[day][slot]
}

// Occupy 将某个实体的某个时间段标记为已占用
func (m AvailabilityMatrix) Occupy(id string, day int, slot int) {
	rows, exists := m[id]
	if !exists {
		return
	}
	if day < 0 || day >= len(rows) {
		return
	}
	if slot < 0 || slot >= len(rows[day]) {
		return
	}
	rows[day][slot] = false
}

// Timetable: 持久化的课表记录
// 每个（院系, 学期）同一时间只有一份现行课表，旧课表在新课表入库时转为历史
type Timetable struct {
	ID         int64        `json:"id"`
	Department string       `json:"department"`
	Semester   int32        `json:"semester"`
	Best       WeekSchedule `json:"best"`
	BestScore  int          `json:"bestScore"`
	IsCurrent  bool         `json:"isCurrent"`
	CreatedAt  time.Time    `json:"createdAt"`
	Version    int32        `json:"-"`
}

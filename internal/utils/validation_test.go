package utils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/scheduler"
)

func validWeek() domain.WeekSchedule {
	return domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 1},
				{TeacherID: "SS03", SubjectID: "TMA-502", ClassroomID: "R1", TimeSlot: 2},
			},
			"B": {
				{TeacherID: "PK02", SubjectID: "TCS-531", ClassroomID: "R2", TimeSlot: 1},
				{TeacherID: scheduler.FallbackTeacher, SubjectID: scheduler.FallbackSubject, ClassroomID: "R2", TimeSlot: 2},
			},
		},
	}
}

func TestValidateWeekPasses(t *testing.T) {
	err := ValidateWeek(
		validWeek(),
		[]string{"Monday"},
		map[string]int{"A": 2, "B": 2},
		map[string]int{"TCS-531": 3, "TMA-502": 2},
		nil,
	)
	require.NoError(t, err)
}

func TestValidateWeekCompleteness(t *testing.T) {
	week := validWeek()
	budgets := map[string]int{"A": 2, "B": 2}

	require.Error(t, ValidateWeekCompleteness(week, []string{"Monday", "Tuesday"}, budgets))

	week["Monday"]["A"] = week["Monday"]["A"][:1]
	err := ValidateWeekCompleteness(week, []string{"Monday"}, budgets)
	require.Error(t, err)
	require.Contains(t, err.Error(), "A")

	week = validWeek()
	week["Monday"]["A"][1].TimeSlot = 1 // 重复时间段
	require.Error(t, ValidateWeekCompleteness(week, []string{"Monday"}, budgets))

	week = validWeek()
	week["Monday"]["A"][1].TimeSlot = 3 // 越过预算
	require.Error(t, ValidateWeekCompleteness(week, []string{"Monday"}, budgets))
}

func TestValidateWeekQuota(t *testing.T) {
	week := validWeek()
	require.NoError(t, ValidateWeekQuota(week, map[string]int{"TCS-531": 1, "TMA-502": 1}))

	// 配额作用域是（班级, 科目），A 和 B 各有一次 TCS-531 不算超
	err := ValidateWeekQuota(week, map[string]int{"TCS-531": 0, "TMA-502": 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "TCS-531")

	err = ValidateWeekQuota(week, map[string]int{"TCS-531": 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "TMA-502")
}

func TestValidateLabSlots(t *testing.T) {
	doubleSlot := map[string]bool{"PCS-506": true}

	week := domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "PCS-506", ClassroomID: "L1", TimeSlot: 3},
				{TeacherID: "AB01", SubjectID: "PCS-506", ClassroomID: "L1", TimeSlot: 4},
			},
		},
	}
	require.NoError(t, ValidateLabSlots(week, doubleSlot))

	// 第二节没有对应的起始节
	week["Monday"]["A"] = domain.SectionSchedule{
		{TeacherID: "AB01", SubjectID: "PCS-506", ClassroomID: "L1", TimeSlot: 4},
	}
	require.Error(t, ValidateLabSlots(week, doubleSlot))

	// 从 2 开始不合法
	week["Monday"]["A"] = domain.SectionSchedule{
		{TeacherID: "AB01", SubjectID: "PCS-506", ClassroomID: "L1", TimeSlot: 2},
	}
	require.Error(t, ValidateLabSlots(week, doubleSlot))
}

func TestValidateNoTeacherConflicts(t *testing.T) {
	week := validWeek()
	require.NoError(t, ValidateNoTeacherConflicts(week))

	week["Monday"]["B"][0].TeacherID = "AB01" // 和 A 班第 1 节同一教师
	err := ValidateNoTeacherConflicts(week)
	require.Error(t, err)
	require.Contains(t, err.Error(), "AB01")

	// 占位教师不算冲突
	week = validWeek()
	week["Monday"]["A"][1].TeacherID = scheduler.FallbackTeacher
	week["Monday"]["B"][1].TimeSlot = 2
	require.NoError(t, ValidateNoTeacherConflicts(week))
}

func TestGenerateTeacherCode(t *testing.T) {
	code := GenerateTeacherCode("张伟", 1)
	require.Equal(t, "ZW01", code)

	// 单字名补 X
	require.Equal(t, "ZX02", GenerateTeacherCode("张", 2))
}

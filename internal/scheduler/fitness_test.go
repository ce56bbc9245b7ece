package scheduler

import (
	"math/rand"
	"testing"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

// 固定课表和固定配置下评分必须是纯函数
func TestEvaluateDeterministic(t *testing.T) {
	s := newTestScheduler(t, testConfig())
	week := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(9)))
	schedule := domain.Schedule{"Week 1": week}

	report1 := s.Evaluate(schedule)
	report2 := s.Evaluate(schedule)

	require.Equal(t, report1, report2)
}

// 同一班级同一天内教师在同一时间段出现两次，只扣一次教师冲突分
func TestEvaluateTeacherDoubleBookingPenalty(t *testing.T) {
	s := newTestScheduler(t, testConfig())

	week := domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 1},
				{TeacherID: "AB01", SubjectID: "TMA-502", ClassroomID: "R2", TimeSlot: 1},
			},
		},
	}

	scores, _ := s.evaluateWeek(week)

	// 教室不同所以没有教室冲突；教师偏好覆盖全部时间段；容量足够；
	// AB01 两节课没有超过工作量上限，因此只有一次教师冲突扣分
	expected := BaseSectionFitness - s.penalties.TeacherDoubleBooked
	require.Equal(t, expected, scores["Monday"]["A"])
}

// 教室在同一时间段出现两次，只扣一次教室冲突分
func TestEvaluateClassroomDoubleBookingPenalty(t *testing.T) {
	s := newTestScheduler(t, testConfig())

	week := domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 2},
				{TeacherID: "PK02", SubjectID: "TMA-502", ClassroomID: "R1", TimeSlot: 2},
			},
		},
	}

	scores, _ := s.evaluateWeek(week)

	expected := BaseSectionFitness - s.penalties.ClassroomDoubleBooked
	require.Equal(t, expected, scores["Monday"]["A"])
}

// 班级人数超过教室容量时，每一节占用该教室的课都要扣一次容量分
func TestEvaluateOverCapacityPenalty(t *testing.T) {
	cfg := testConfig()
	cfg.SectionStrength["A"] = 250
	cfg.ClassroomCapacity = map[string]int{"R1": 250, "R2": 200}

	s, err := New(cfg, testParameters(), nil, nil)
	require.NoError(t, err)

	week := domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R2", TimeSlot: 1},
				{TeacherID: "PK02", SubjectID: "TMA-502", ClassroomID: "R2", TimeSlot: 2},
			},
		},
	}

	scores, _ := s.evaluateWeek(week)

	expected := BaseSectionFitness - 2*s.penalties.OverCapacity
	require.Equal(t, expected, scores["Monday"]["A"])
}

// 不偏好的时间段和超工作量的扣分
func TestEvaluatePreferenceAndOverloadPenalties(t *testing.T) {
	cfg := testConfig()
	cfg.TeacherPreferences["AB01"] = []int{1} // 只偏好第 1 节
	cfg.TeacherWorkload["AB01"] = 1

	s, err := New(cfg, testParameters(), nil, nil)
	require.NoError(t, err)

	week := domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 1},
				{TeacherID: "AB01", SubjectID: "TMA-502", ClassroomID: "R2", TimeSlot: 2},
			},
		},
	}

	scores, _ := s.evaluateWeek(week)

	// 第 2 节不在偏好里扣一次偏好分；两节课超过上限 1，对该教师扣一次超载分
	expected := BaseSectionFitness - s.penalties.UnpreferredSlot - s.penalties.TeacherOverload
	require.Equal(t, expected, scores["Monday"]["A"])
}

// 周总分是每天每个班级分数的累加
func TestEvaluateWeekAggregation(t *testing.T) {
	s := newTestScheduler(t, testConfig())
	week := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(13)))

	sectionScores, weekScore := s.evaluateWeek(week)

	sum := 0
	for _, day := range sectionScores {
		for _, score := range day {
			sum += score
		}
	}
	require.Equal(t, sum, weekScore)
}

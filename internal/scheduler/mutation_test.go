package scheduler

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

// 变异只改变时间段的配对关系，科目/教师/教室的组合保持不变
func TestMutateNonCorruption(t *testing.T) {
	s := newTestScheduler(t, testConfig())
	week := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(41)))
	backup := week.Clone()

	mutated := s.mutate(week, rand.New(rand.NewSource(42)))

	// 原课表不受影响
	require.Equal(t, backup, week)

	for day, daySchedule := range week {
		for section, assignments := range daySchedule {
			mutatedAssignments := mutated[day][section]
			require.Len(t, mutatedAssignments, len(assignments))

			// {教师, 科目, 教室} 组合的多重集不变
			require.ElementsMatch(t, contentTuples(assignments), contentTuples(mutatedAssignments))

			// 时间段的多重集也不变，只是配对关系可能被洗牌
			require.Equal(t, sortedSlots(assignments), sortedSlots(mutatedAssignments))
		}
	}
}

// 只有一节课的班级没有可洗牌的内容，必须原样保留
func TestMutateSkipsTinySections(t *testing.T) {
	cfg := testConfig()
	params := testParameters()
	params.MutationRate = 1.0

	s, err := New(cfg, params, nil, nil)
	require.NoError(t, err)

	week := domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 1}},
		},
		"Tuesday": domain.DaySchedule{
			"A": {{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 2}},
		},
	}

	mutated := s.mutate(week, rand.New(rand.NewSource(43)))
	require.Equal(t, week, mutated)
}

type contentTuple struct {
	teacher string
	subject string
	room    string
}

func contentTuples(assignments domain.SectionSchedule) []contentTuple {
	tuples := make([]contentTuple, len(assignments))
	for i, assignment := range assignments {
		tuples[i] = contentTuple{
			teacher: assignment.TeacherID,
			subject: assignment.SubjectID,
			room:    assignment.ClassroomID,
		}
	}
	return tuples
}

func sortedSlots(assignments domain.SectionSchedule) []int {
	slots := make([]int, len(assignments))
	for i, assignment := range assignments {
		slots[i] = assignment.TimeSlot
	}
	sort.Ints(slots)
	return slots
}

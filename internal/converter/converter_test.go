package converter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/scheduler"
)

func testWeek() domain.WeekSchedule {
	return domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 1},
				{TeacherID: "SS03", SubjectID: "TMA-502", ClassroomID: "R1", TimeSlot: 2},
			},
			"B": {
				{TeacherID: "PK02", SubjectID: "TCS-531", ClassroomID: "R2", TimeSlot: 1},
			},
		},
		"Tuesday": domain.DaySchedule{
			"A": {
				{TeacherID: scheduler.FallbackTeacher, SubjectID: scheduler.FallbackSubject, ClassroomID: "R1", TimeSlot: 1},
			},
		},
	}
}

func TestWeekToCSVRoundTrip(t *testing.T) {
	week := testWeek()
	workingDays := []string{"Monday", "Tuesday"}
	timeSlots := scheduler.DefaultTimeSlots()

	var buf bytes.Buffer
	require.NoError(t, WeekToCSV(week, workingDays, timeSlots, &buf))

	out := buf.String()
	require.Contains(t, out, "day,section,time_slot,subject_id,teacher_id,classroom_id")
	require.Contains(t, out, "Monday,A,9:00 - 9:55,TCS-531,AB01,R1")

	restored, err := CSVToWeek(strings.NewReader(out), timeSlots)
	require.NoError(t, err)
	require.Equal(t, week, restored)
}

func TestWeekToCSVUnknownSlot(t *testing.T) {
	week := domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 99}},
		},
	}

	var buf bytes.Buffer
	err := WeekToCSV(week, []string{"Monday"}, scheduler.DefaultTimeSlots(), &buf)
	require.Error(t, err)
}

func TestCSVToWeekUnknownInterval(t *testing.T) {
	csv := "day,section,time_slot,subject_id,teacher_id,classroom_id\nMonday,A,8:00 - 8:55,TCS-531,AB01,R1\n"
	_, err := CSVToWeek(strings.NewReader(csv), scheduler.DefaultTimeSlots())
	require.Error(t, err)
}

func TestTeacherViewSkipsConflictsAndFallback(t *testing.T) {
	schedule := domain.Schedule{
		"Week 1": testWeek(),
		"Week 2": domain.WeekSchedule{
			"Monday": domain.DaySchedule{
				// AB01 周一第 1 节已被 Week 1 占用，这一节应当被跳过
				"B": {{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R2", TimeSlot: 1}},
			},
		},
	}

	view := TeacherView(schedule, []string{"Monday", "Tuesday"})

	// 占位教师不出现在任何视角里
	require.NotContains(t, view, scheduler.FallbackTeacher)

	require.Len(t, view["AB01"]["Monday"], 1)
	entry := view["AB01"]["Monday"][0]
	require.Equal(t, "Week 1", entry.Week)
	require.Equal(t, "A", entry.Section)
	require.Equal(t, "TCS-531", entry.SubjectID)
	require.Equal(t, "R1", entry.Classroom)

	// 不冲突的课都保留
	require.Len(t, view["PK02"]["Monday"], 1)
	require.Len(t, view["SS03"]["Monday"], 1)
}

func TestClassroomViewSkipsConflicts(t *testing.T) {
	schedule := domain.Schedule{"Week 1": testWeek()}
	view := ClassroomView(schedule, []string{"Monday", "Tuesday"})

	// R1 周一有两节课在不同时间段，都保留并带上教师信息
	require.Len(t, view["R1"]["Monday"], 2)
	require.Equal(t, "AB01", view["R1"]["Monday"][0].TeacherID)

	// 占位课也占用教室，所以 Tuesday 的 R1 有一条记录
	require.Len(t, view["R1"]["Tuesday"], 1)
}

func TestViewToCSVLayout(t *testing.T) {
	schedule := domain.Schedule{"Week 1": testWeek()}
	view := TeacherView(schedule, []string{"Monday", "Tuesday"})

	var buf bytes.Buffer
	require.NoError(t, ViewToCSV(view["AB01"], []string{"Monday", "Tuesday"}, scheduler.DefaultTimeSlots(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2) // 表头 + 周一一行，周二没课不出现
	require.Equal(t, "DAY,9:00 - 9:55", lines[0])
	require.Equal(t, "Monday,\"TCS-531 (A, R1)\"", lines[1])
}

// Package converter 负责课表和 CSV 之间的互转，以及教师/教室视角课表的推导
package converter

import (
	"fmt"
	"io"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/scheduler"
)

// Row: 导出 CSV 时的一行，一行对应一节课
type Row struct {
	Day       string `csv:"day"`
	Section   string `csv:"section"`
	TimeSlot  string `csv:"time_slot"` // 时间区间，例如 "9:00 - 9:55"
	SubjectID string `csv:"subject_id"`
	TeacherID string `csv:"teacher_id"`
	Classroom string `csv:"classroom_id"`
}

// ViewEntry: 教师或教室视角课表里的一节课
type ViewEntry struct {
	Week      string `json:"course"` // 来源周，例如 "Week 1"
	Section   string `json:"section"`
	SubjectID string `json:"subject_id"`
	TimeSlot  int    `json:"time_slot"`
	Classroom string `json:"classroom_id,omitempty"`
	TeacherID string `json:"teacher_id,omitempty"`
}

// View: 教师编号或教室编号 -> 工作日 -> 当天的课
type View map[string]map[string][]ViewEntry

// WeekToCSV 把一周课表展开成扁平的 CSV 行
// 行顺序按工作日、班级名、时间段排列，保证相同输入的导出结果一致
func WeekToCSV(week domain.WeekSchedule, workingDays []string, timeSlots map[int]string, w io.Writer) error {
	rows := make([]*Row, 0)
	for _, day := range workingDays {
		sections := make([]string, 0, len(week[day]))
		for section := range week[day] {
			sections = append(sections, section)
		}
		sort.Strings(sections)

		for _, section := range sections {
			assignments := append(domain.SectionSchedule(nil), week[day][section]...)
			sort.Slice(assignments, func(i, j int) bool {
				return assignments[i].TimeSlot < assignments[j].TimeSlot
			})

			for _, assignment := range assignments {
				interval, exists := scheduler.SlotInterval(timeSlots, assignment.TimeSlot)
				if !exists {
					return fmt.Errorf("时间段 %d 没有对应的时间区间", assignment.TimeSlot)
				}
				rows = append(rows, &Row{
					Day:       day,
					Section:   section,
					TimeSlot:  interval,
					SubjectID: assignment.SubjectID,
					TeacherID: assignment.TeacherID,
					Classroom: assignment.ClassroomID,
				})
			}
		}
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("导出 CSV 失败: %w", err)
	}
	return nil
}

// CSVToWeek 把扁平 CSV 行还原成一周课表，是 WeekToCSV 的逆操作
func CSVToWeek(r io.Reader, timeSlots map[int]string) (domain.WeekSchedule, error) {
	var rows []*Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("解析 CSV 失败: %w", err)
	}

	week := make(domain.WeekSchedule)
	for _, row := range rows {
		slot, exists := scheduler.SlotNumber(timeSlots, row.TimeSlot)
		if !exists {
			return nil, fmt.Errorf("未知的时间区间 %q", row.TimeSlot)
		}
		if week[row.Day] == nil {
			week[row.Day] = make(domain.DaySchedule)
		}
		week[row.Day][row.Section] = append(week[row.Day][row.Section], domain.Assignment{
			TeacherID:   row.TeacherID,
			SubjectID:   row.SubjectID,
			ClassroomID: row.Classroom,
			TimeSlot:    slot,
		})
	}
	return week, nil
}

// TeacherView 从多周课表推导每位教师自己的课表
// 同一教师在同一天同一时间段只保留最先遇到的那节课，占位教师不会出现在结果里
func TeacherView(schedule domain.Schedule, workingDays []string) View {
	view := make(View)
	occupied := make(map[string]map[string]map[int]bool) // 教师 -> 工作日 -> 时间段

	for _, week := range sortedWeeks(schedule) {
		for _, day := range workingDays {
			for _, section := range sortedSections(schedule[week][day]) {
				for _, assignment := range schedule[week][day][section] {
					teacher := assignment.TeacherID
					if teacher == scheduler.FallbackTeacher {
						continue
					}

					if occupied[teacher] == nil {
						occupied[teacher] = make(map[string]map[int]bool)
					}
					if occupied[teacher][day] == nil {
						occupied[teacher][day] = make(map[int]bool)
					}
					if occupied[teacher][day][assignment.TimeSlot] {
						continue
					}
					occupied[teacher][day][assignment.TimeSlot] = true

					if view[teacher] == nil {
						view[teacher] = make(map[string][]ViewEntry)
					}
					view[teacher][day] = append(view[teacher][day], ViewEntry{
						Week:      week,
						Section:   section,
						SubjectID: assignment.SubjectID,
						TimeSlot:  assignment.TimeSlot,
						Classroom: assignment.ClassroomID,
					})
				}
			}
		}
	}
	return view
}

// ClassroomView 从多周课表推导每间教室的使用表，冲突处理和 TeacherView 一致
func ClassroomView(schedule domain.Schedule, workingDays []string) View {
	view := make(View)
	occupied := make(map[string]map[string]map[int]bool)

	for _, week := range sortedWeeks(schedule) {
		for _, day := range workingDays {
			for _, section := range sortedSections(schedule[week][day]) {
				for _, assignment := range schedule[week][day][section] {
					classroom := assignment.ClassroomID
					if classroom == "" {
						continue
					}

					if occupied[classroom] == nil {
						occupied[classroom] = make(map[string]map[int]bool)
					}
					if occupied[classroom][day] == nil {
						occupied[classroom][day] = make(map[int]bool)
					}
					if occupied[classroom][day][assignment.TimeSlot] {
						continue
					}
					occupied[classroom][day][assignment.TimeSlot] = true

					if view[classroom] == nil {
						view[classroom] = make(map[string][]ViewEntry)
					}
					view[classroom][day] = append(view[classroom][day], ViewEntry{
						Week:      week,
						Section:   section,
						SubjectID: assignment.SubjectID,
						TimeSlot:  assignment.TimeSlot,
						TeacherID: assignment.TeacherID,
					})
				}
			}
		}
	}
	return view
}

// ViewToCSV 把单个教师/教室视角的课表写成一张表格：
// 第一列是工作日，其余列按时间区间排列，单元格形如 "TCS-531 (A, R1)"
func ViewToCSV(dayEntries map[string][]ViewEntry, workingDays []string, timeSlots map[int]string, w io.Writer) error {
	type cell struct {
		day  string
		slot int
	}

	cells := make(map[cell]string)
	usedSlots := make(map[int]bool)
	for day, entries := range dayEntries {
		for _, entry := range entries {
			detail := entry.Classroom
			if detail == "" {
				detail = entry.TeacherID
			}
			cells[cell{day, entry.TimeSlot}] = fmt.Sprintf("%s (%s, %s)", entry.SubjectID, entry.Section, detail)
			usedSlots[entry.TimeSlot] = true
		}
	}

	slots := make([]int, 0, len(usedSlots))
	for slot := range usedSlots {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	header := []string{"DAY"}
	for _, slot := range slots {
		interval, exists := scheduler.SlotInterval(timeSlots, slot)
		if !exists {
			return fmt.Errorf("时间段 %d 没有对应的时间区间", slot)
		}
		header = append(header, interval)
	}

	records := [][]string{header}
	for _, day := range workingDays {
		if _, exists := dayEntries[day]; !exists {
			continue
		}
		record := []string{day}
		for _, slot := range slots {
			record = append(record, cells[cell{day, slot}])
		}
		records = append(records, record)
	}

	writer := gocsv.DefaultCSVWriter(w)
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("写入 CSV 失败: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func sortedWeeks(schedule domain.Schedule) []string {
	weeks := make([]string, 0, len(schedule))
	for week := range schedule {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)
	return weeks
}

func sortedSections(daySchedule domain.DaySchedule) []string {
	sections := make([]string, 0, len(daySchedule))
	for section := range daySchedule {
		sections = append(sections, section)
	}
	sort.Strings(sections)
	return sections
}

package utils

import (
	"fmt"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/scheduler"
)

// ValidateWeekCompleteness 检查每个班级在每个工作日的预算时间段是否都排满且不重复
func ValidateWeekCompleteness(week domain.WeekSchedule, workingDays []string, sectionBudgets map[string]int) error {
	for _, day := range workingDays {
		daySchedule, exists := week[day]
		if !exists {
			return fmt.Errorf("课表缺少工作日 %s", day)
		}

		for section, budget := range sectionBudgets {
			assignments := daySchedule[section]
			if len(assignments) != budget {
				return fmt.Errorf("班级 %s 在 %s 应有 %d 节课，实际有 %d 节", section, day, budget, len(assignments))
			}

			seen := make(map[int]bool, budget)
			for _, assignment := range assignments {
				if assignment.TimeSlot < 1 || assignment.TimeSlot > budget {
					return fmt.Errorf("班级 %s 在 %s 出现越界时间段 %d", section, day, assignment.TimeSlot)
				}
				if seen[assignment.TimeSlot] {
					return fmt.Errorf("班级 %s 在 %s 的时间段 %d 被排了多节课", section, day, assignment.TimeSlot)
				}
				seen[assignment.TimeSlot] = true
			}
		}
	}
	return nil
}

// ValidateWeekQuota 检查每个班级每个科目的周出现次数是否超过配额，占位课不计入
func ValidateWeekQuota(week domain.WeekSchedule, quotas map[string]int) error {
	usage := make(map[string]map[string]int)
	for _, daySchedule := range week {
		for section, assignments := range daySchedule {
			if usage[section] == nil {
				usage[section] = make(map[string]int)
			}
			for _, assignment := range assignments {
				if assignment.SubjectID == scheduler.FallbackSubject {
					continue
				}
				usage[section][assignment.SubjectID]++
			}
		}
	}

	for section, subjects := range usage {
		for subject, count := range subjects {
			quota, exists := quotas[subject]
			if !exists {
				return fmt.Errorf("班级 %s 的课表里出现了未知科目 %s", section, subject)
			}
			if count > quota {
				return fmt.Errorf("班级 %s 的科目 %s 每周出现 %d 次，超过配额 %d", section, subject, count, quota)
			}
		}
	}
	return nil
}

// ValidateLabSlots 检查实验课/特殊课是否只从允许的起始时间段开始
// 出现在非起始节的实验课必须是连堂的第二节，也就是前一节排了同一科目
func ValidateLabSlots(week domain.WeekSchedule, doubleSlotSubjects map[string]bool) error {
	for day, daySchedule := range week {
		for section, assignments := range daySchedule {
			subjectAt := make(map[int]string, len(assignments))
			for _, assignment := range assignments {
				subjectAt[assignment.TimeSlot] = assignment.SubjectID
			}

			for _, assignment := range assignments {
				if !doubleSlotSubjects[assignment.SubjectID] {
					continue
				}
				if scheduler.IsLabStartSlot(assignment.TimeSlot) {
					continue
				}
				if scheduler.IsLabStartSlot(assignment.TimeSlot-1) && subjectAt[assignment.TimeSlot-1] == assignment.SubjectID {
					continue
				}
				return fmt.Errorf("班级 %s 在 %s 的实验课 %s 出现在非法时间段 %d", section, day, assignment.SubjectID, assignment.TimeSlot)
			}
		}
	}
	return nil
}

// ValidateNoTeacherConflicts 检查同一教师是否在同一天的同一时间段被排进了多个班级
func ValidateNoTeacherConflicts(week domain.WeekSchedule) error {
	type slotKey struct {
		teacher string
		slot    int
	}

	for day, daySchedule := range week {
		seen := make(map[slotKey]string)
		for section, assignments := range daySchedule {
			for _, assignment := range assignments {
				if assignment.TeacherID == scheduler.FallbackTeacher {
					continue
				}
				key := slotKey{assignment.TeacherID, assignment.TimeSlot}
				if other, exists := seen[key]; exists && other != section {
					return fmt.Errorf("教师 %s 在 %s 的时间段 %d 同时被排进班级 %s 和 %s",
						assignment.TeacherID, day, assignment.TimeSlot, other, section)
				}
				seen[key] = section
			}
		}
	}
	return nil
}

// ValidateWeek 汇总所有检查，排课结果入库前必须全部通过
func ValidateWeek(
	week domain.WeekSchedule,
	workingDays []string,
	sectionBudgets map[string]int,
	quotas map[string]int,
	doubleSlotSubjects map[string]bool,
) error {
	if err := ValidateWeekCompleteness(week, workingDays, sectionBudgets); err != nil {
		return err
	}
	if err := ValidateWeekQuota(week, quotas); err != nil {
		return err
	}
	if err := ValidateLabSlots(week, doubleSlotSubjects); err != nil {
		return err
	}
	return ValidateNoTeacherConflicts(week)
}

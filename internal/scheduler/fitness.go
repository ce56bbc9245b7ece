package scheduler

import (
	"slices"
	"sort"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

// FitnessReport: 逐级汇总的适应度分数
type FitnessReport struct {
	SectionScores map[string]map[string]map[string]int `json:"section_fitness_scores"` // 周 -> 天 -> 班级
	WeekScores    map[string]int                       `json:"weekly_fitness_scores"`
}

// slotKey: 用于检测同一时间段重复占用的键
type slotKey struct {
	id   string
	slot int
}

// Evaluate 对整张课表评分
// 纯函数：相同的课表和配置必然得到相同的分数，分数不做下限截断
func (s *Scheduler) Evaluate(schedule domain.Schedule) *FitnessReport {
	report := &FitnessReport{
		SectionScores: make(map[string]map[string]map[string]int, len(schedule)),
		WeekScores:    make(map[string]int, len(schedule)),
	}

	for key, week := range schedule {
		sectionScores, weekScore := s.evaluateWeek(week)
		report.SectionScores[key] = sectionScores
		report.WeekScores[key] = weekScore
	}

	return report
}

// evaluateWeek 对一条染色体评分，返回每天每个班级的分数和周总分
func (s *Scheduler) evaluateWeek(week domain.WeekSchedule) (map[string]map[string]int, int) {
	sectionScores := make(map[string]map[string]int, len(week))
	weekScore := 0

	for _, day := range s.cfg.WorkingDays {
		daySchedule, exists := week[day]
		if !exists {
			continue
		}

		sectionScores[day] = make(map[string]int, len(daySchedule))

		sections := make([]string, 0, len(daySchedule))
		for section := range daySchedule {
			sections = append(sections, section)
		}
		sort.Strings(sections)

		for _, section := range sections {
			score := s.evaluateSectionDay(section, daySchedule[section])
			sectionScores[day][section] = score
			weekScore += score
		}
	}

	return sectionScores, weekScore
}

// evaluateSectionDay 从起始分逐项扣分
// 重复占用的检测范围是单个班级的一天，这是评估器的两条核心一致性约束
func (s *Scheduler) evaluateSectionDay(section string, assignments domain.SectionSchedule) int {
	score := BaseSectionFitness
	strength := s.cfg.SectionStrength[section]

	teacherSeen := make(map[slotKey]bool, len(assignments))
	roomSeen := make(map[slotKey]bool, len(assignments))
	teacherLoad := make(map[string]int, len(assignments))

	for _, assignment := range assignments {
		teacherKey := slotKey{id: assignment.TeacherID, slot: assignment.TimeSlot}
		if teacherSeen[teacherKey] {
			score -= s.penalties.TeacherDoubleBooked
		} else {
			teacherSeen[teacherKey] = true
		}

		roomKey := slotKey{id: assignment.ClassroomID, slot: assignment.TimeSlot}
		if roomSeen[roomKey] {
			score -= s.penalties.ClassroomDoubleBooked
		} else {
			roomSeen[roomKey] = true
		}

		if capacity, exists := s.roomCapacity[assignment.ClassroomID]; exists && strength > capacity {
			score -= s.penalties.OverCapacity
		}

		// 占位教师不在偏好表里，同样会被扣不偏好时间段的分
		if !slices.Contains(s.cfg.TeacherPreferences[assignment.TeacherID], assignment.TimeSlot) {
			score -= s.penalties.UnpreferredSlot
		}

		teacherLoad[assignment.TeacherID]++
	}

	// 超工作量的扣分对每位教师只扣一次，而不是每节课都扣
	for teacher, load := range teacherLoad {
		limit, exists := s.cfg.TeacherWorkload[teacher]
		if exists && load > limit {
			score -= s.penalties.TeacherOverload
		}
	}

	return score
}

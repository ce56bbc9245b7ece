package scheduler

import (
	"math/rand"
	"slices"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

// generateWeek 生成一条染色体（一张完整的周课表）
// 配额计数和工作量计数都是周级别的，每条染色体都从零开始
func (s *Scheduler) generateWeek(teacherMatrix domain.AvailabilityMatrix, labMatrix domain.AvailabilityMatrix, rng *rand.Rand) domain.WeekSchedule {
	usage := make(map[string]map[string]int, len(s.sections)) // 班级 -> 科目 -> 本周已排次数
	for _, section := range s.sections {
		usage[section] = make(map[string]int, len(s.subjects))
	}
	workload := make(map[string]int, len(s.cfg.TeacherWorkload)) // 教师 -> 本周已排节数
	cursors := make(map[string]int, len(s.subjects))             // 科目 -> 教师轮询游标

	week := make(domain.WeekSchedule, len(s.cfg.WorkingDays))
	for dayIndex, day := range s.cfg.WorkingDays {
		week[day] = s.generateDay(dayIndex, day, usage, workload, cursors, teacherMatrix, labMatrix, rng)
	}
	return week
}

// generateDay 生成某一天所有班级的课
// 前一半班级只上半天（4 个时间段），其余班级上全天（7 个时间段）
func (s *Scheduler) generateDay(
	dayIndex int,
	day string,
	usage map[string]map[string]int,
	workload map[string]int,
	cursors map[string]int,
	teacherMatrix domain.AvailabilityMatrix,
	labMatrix domain.AvailabilityMatrix,
	rng *rand.Rand,
) domain.DaySchedule {
	halfDayCount := len(s.sections) / 2

	daySchedule := make(domain.DaySchedule, len(s.sections))
	for i, section := range s.sections {
		budget := FullDaySlots
		if i < halfDayCount {
			budget = HalfDaySlots
		}
		daySchedule[section] = s.generateSectionDay(
			dayIndex, day, section, budget,
			usage[section], workload, cursors,
			teacherMatrix, labMatrix, rng,
		)
	}
	return daySchedule
}

// generateSectionDay 逐个时间段为单个班级排一天的课
// 任何时间段都不会排课失败：找不到可行组合时使用占位科目兜底
func (s *Scheduler) generateSectionDay(
	dayIndex int,
	day string,
	section string,
	budget int,
	sectionUsage map[string]int,
	workload map[string]int,
	cursors map[string]int,
	teacherMatrix domain.AvailabilityMatrix,
	labMatrix domain.AvailabilityMatrix,
	rng *rand.Rand,
) domain.SectionSchedule {
	assignments := make(domain.SectionSchedule, 0, budget)
	occupied := make(map[int]bool, budget)
	scheduledToday := make(map[string]bool, budget) // 同一班级一天内不重复同一科目
	classroom := s.sectionClassroom[section]

	for slot := 1; slot <= budget; slot++ {
		if occupied[slot] {
			// 被前面的连堂课占用
			continue
		}

		// 候选科目：本周配额还没用完的科目，随机顺序逐个尝试
		candidates := make([]string, 0, len(s.subjects))
		for _, subject := range s.subjects {
			if sectionUsage[subject] >= s.cfg.SubjectQuota[subject] {
				continue
			}
			candidates = append(candidates, subject)
		}
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})

		var chosenSubject, chosenTeacher string
		isDoubleSlot := false
		pairSlot := 0
		for _, subject := range candidates {
			restricted := s.labSubjects[subject] || s.specialSubjects[subject]
			if restricted && !IsLabStartSlot(slot) {
				continue
			}
			if scheduledToday[subject] {
				continue
			}

			// 连堂占两次配额，配额只剩一次时退化为单节
			needPair := restricted && slot+1 <= budget && !occupied[slot+1]
			if needPair && sectionUsage[subject]+2 > s.cfg.SubjectQuota[subject] {
				needPair = false
			}
			teacher := s.pickTeacher(subject, day, dayIndex, slot, needPair, workload, cursors, teacherMatrix)
			if teacher == "" {
				// 没有可用教师，换下一个候选科目
				continue
			}

			chosenSubject = subject
			chosenTeacher = teacher
			isDoubleSlot = restricted
			if needPair {
				pairSlot = slot + 1
			}
			break
		}

		if chosenSubject == "" {
			// 兜底：占位课不消耗配额和工作量
			assignments = append(assignments, domain.Assignment{
				TeacherID:   FallbackTeacher,
				SubjectID:   FallbackSubject,
				ClassroomID: classroom,
				TimeSlot:    slot,
			})
			occupied[slot] = true
			continue
		}

		room := classroom
		if isDoubleSlot {
			room = s.pickLabRoom(dayIndex, slot, pairSlot, labMatrix, rng)
		}

		assignments = append(assignments, domain.Assignment{
			TeacherID:   chosenTeacher,
			SubjectID:   chosenSubject,
			ClassroomID: room,
			TimeSlot:    slot,
		})
		occupied[slot] = true
		sectionUsage[chosenSubject]++
		workload[chosenTeacher]++
		teacherMatrix.Occupy(chosenTeacher, dayIndex, slot-1)
		if s.labSubjects[chosenSubject] || s.specialSubjects[chosenSubject] {
			labMatrix.Occupy(room, dayIndex, slot-1)
		}

		if pairSlot > 0 {
			assignments = append(assignments, domain.Assignment{
				TeacherID:   chosenTeacher,
				SubjectID:   chosenSubject,
				ClassroomID: room,
				TimeSlot:    pairSlot,
			})
			occupied[pairSlot] = true
			sectionUsage[chosenSubject]++
			workload[chosenTeacher]++
			teacherMatrix.Occupy(chosenTeacher, dayIndex, pairSlot-1)
			labMatrix.Occupy(room, dayIndex, pairSlot-1)
		}

		scheduledToday[chosenSubject] = true
	}

	return assignments
}

// pickTeacher 在科目的任课教师中轮询挑选一位可用的教师
// 轮询游标替代了旧系统中基于迭代器异常的循环写法，找不到教师是正常分支
func (s *Scheduler) pickTeacher(
	subject string,
	day string,
	dayIndex int,
	slot int,
	needPair bool,
	workload map[string]int,
	cursors map[string]int,
	teacherMatrix domain.AvailabilityMatrix,
) string {
	teachers := s.cfg.SubjectTeacherMapping[subject]
	total := len(teachers)
	start := cursors[subject]

	for i := 0; i < total; i++ {
		teacher := teachers[(start+i)%total]

		// 值班日没有包含当天的教师不能排
		if !slices.Contains(s.cfg.TeacherDutyDays[teacher], day) {
			continue
		}
		if workload[teacher] >= s.cfg.TeacherWorkload[teacher] {
			continue
		}
		if !teacherMatrix.IsFree(teacher, dayIndex, slot-1) {
			continue
		}
		if needPair && !teacherMatrix.IsFree(teacher, dayIndex, slot) {
			continue
		}

		cursors[subject] = (start + i + 1) % total
		return teacher
	}

	return ""
}

// pickLabRoom 从实验室池中随机选择一间空闲实验室
// 没有空闲实验室时退化为完全随机，产生的冲突交给适应度扣分
func (s *Scheduler) pickLabRoom(dayIndex int, slot int, pairSlot int, labMatrix domain.AvailabilityMatrix, rng *rand.Rand) string {
	free := make([]string, 0, len(s.labs))
	for _, lab := range s.labs {
		if !labMatrix.IsFree(lab, dayIndex, slot-1) {
			continue
		}
		if pairSlot > 0 && !labMatrix.IsFree(lab, dayIndex, pairSlot-1) {
			continue
		}
		free = append(free, lab)
	}

	if len(free) > 0 {
		return free[rng.Intn(len(free))]
	}
	return s.labs[rng.Intn(len(s.labs))]
}

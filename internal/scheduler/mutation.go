package scheduler

import (
	"math"
	"math/rand"
	"sort"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

// mutate 结构性扰动：每天随机挑一部分班级，把它们当天各节课占用的
// 时间段重新洗牌。科目/教师/教室保持不变，只改变时间段的配对关系。
// 洗牌可能重新引入冲突，这是有意的，交给下一轮评分去淘汰
func (s *Scheduler) mutate(week domain.WeekSchedule, rng *rand.Rand) domain.WeekSchedule {
	mutated := week.Clone()

	for _, day := range s.cfg.WorkingDays {
		daySchedule, exists := mutated[day]
		if !exists {
			continue
		}

		sections := make([]string, 0, len(daySchedule))
		for section := range daySchedule {
			sections = append(sections, section)
		}
		sort.Strings(sections)

		numToMutate := int(math.Round(s.params.MutationRate * float64(len(sections))))
		if numToMutate < 1 {
			numToMutate = 1
		}
		if numToMutate > len(sections) {
			numToMutate = len(sections)
		}

		// 不放回地随机挑选要变异的班级
		for _, index := range rng.Perm(len(sections))[:numToMutate] {
			shuffleTimeSlots(daySchedule[sections[index]], rng)
		}
	}

	return mutated
}

// shuffleTimeSlots 把一个班级一天内各节课的时间段洗牌后重新赋回
func shuffleTimeSlots(assignments domain.SectionSchedule, rng *rand.Rand) {
	if len(assignments) < 2 {
		// 只有一节课没得洗
		return
	}

	slots := make([]int, len(assignments))
	for i, assignment := range assignments {
		slots[i] = assignment.TimeSlot
	}
	rng.Shuffle(len(slots), func(i, j int) {
		slots[i], slots[j] = slots[j], slots[i]
	})
	for i := range assignments {
		assignments[i].TimeSlot = slots[i]
	}
}

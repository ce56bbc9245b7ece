package scheduler

import (
	"math/rand"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

// crossover 单点交叉：随机选一个切点，切点之前的天保留在原父本，
// 切点及其之后的天在两个父本之间整天交换
// 两个输出都是深拷贝，父本保持不变；每一天的内容都原样来自某个父本
func (s *Scheduler) crossover(parent1 domain.WeekSchedule, parent2 domain.WeekSchedule, rng *rand.Rand) (domain.WeekSchedule, domain.WeekSchedule) {
	child1 := parent1.Clone()
	child2 := parent2.Clone()

	days := s.cfg.WorkingDays
	if len(days) < 2 {
		return child1, child2
	}

	point := rng.Intn(len(days))
	for _, day := range days[point:] {
		child1[day], child2[day] = child2[day], child1[day]
	}

	return child1, child2
}

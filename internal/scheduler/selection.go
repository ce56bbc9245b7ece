package scheduler

import (
	"math/rand"
)

// selectChromosomes 组合精英选择和轮盘赌选择出一个繁殖池
// 精英部分无条件保留分数最高的 TopRate，剩余染色体按分数比例抽 RouletteRate
func (s *Scheduler) selectChromosomes(scores map[string]int, rng *rand.Rand) map[string]int {
	selected := make(map[string]int)
	if len(scores) == 0 {
		return selected
	}

	keys := sortKeysByScore(scores)

	numTop := int(float64(len(keys)) * s.params.TopRate)
	numRoulette := int(float64(len(keys)) * s.params.RouletteRate)

	for _, key := range keys[:numTop] {
		selected[key] = scores[key]
	}

	remainder := keys[numTop:]
	for drawn := 0; drawn < numRoulette && len(remainder) > 0; drawn++ {
		index := rouletteDraw(remainder, scores, rng)
		key := remainder[index]
		selected[key] = scores[key]
		// 不放回抽样：选中的染色体从剩余池中移除
		remainder = append(remainder[:index], remainder[index+1:]...)
	}

	return selected
}

// rouletteDraw 在剩余染色体中做一次按分数比例的抽取
// 负分按零权重处理；总权重为零时退化为等概率随机，避免除零
func rouletteDraw(remainder []string, scores map[string]int, rng *rand.Rand) int {
	total := 0
	for _, key := range remainder {
		if scores[key] > 0 {
			total += scores[key]
		}
	}

	if total <= 0 {
		return rng.Intn(len(remainder))
	}

	pick := rng.Float64() * float64(total)
	cumulative := 0.0
	for i, key := range remainder {
		if scores[key] > 0 {
			cumulative += float64(scores[key])
		}
		if pick < cumulative {
			return i
		}
	}

	// 浮点误差兜底
	return len(remainder) - 1
}

package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectChromosomesSizeAndElitism(t *testing.T) {
	cfg := testConfig()
	params := testParameters()
	params.TopRate = 0.2
	params.RouletteRate = 0.1

	s, err := New(cfg, params, nil, nil)
	require.NoError(t, err)

	scores := map[string]int{
		"Week 1": 100, "Week 2": 90, "Week 3": 80, "Week 4": 70, "Week 5": 60,
		"Week 6": 50, "Week 7": 40, "Week 8": 30, "Week 9": 20, "Week 10": 10,
	}

	selected := s.selectChromosomes(scores, rand.New(rand.NewSource(1)))

	// floor(10*0.2) + floor(10*0.1) = 3
	require.Len(t, selected, 3)

	// 精英部分必须包含分数最高的两条
	require.Contains(t, selected, "Week 1")
	require.Contains(t, selected, "Week 2")

	// 每个精英的分数不低于任何未被选中的染色体
	for key, score := range scores {
		if _, picked := selected[key]; picked {
			continue
		}
		require.GreaterOrEqual(t, selected["Week 1"], score)
		require.GreaterOrEqual(t, selected["Week 2"], score)
	}
}

// 剩余池全部是非正分时退化为等概率随机，不能除零
func TestSelectChromosomesDegenerateRoulette(t *testing.T) {
	cfg := testConfig()
	params := testParameters()
	params.TopRate = 0.2
	params.RouletteRate = 0.2

	s, err := New(cfg, params, nil, nil)
	require.NoError(t, err)

	scores := map[string]int{
		"Week 1": 0, "Week 2": -10, "Week 3": -20, "Week 4": -30, "Week 5": -40,
	}

	selected := s.selectChromosomes(scores, rand.New(rand.NewSource(2)))

	// floor(5*0.2) + floor(5*0.2) = 2
	require.Len(t, selected, 2)
	require.Contains(t, selected, "Week 1")
}

func TestSelectChromosomesEmpty(t *testing.T) {
	s := newTestScheduler(t, testConfig())

	selected := s.selectChromosomes(map[string]int{}, rand.New(rand.NewSource(3)))
	require.Empty(t, selected)
}

// 不放回抽样：选中的染色体不会在轮盘赌中被再次选中
func TestSelectChromosomesNoDuplicates(t *testing.T) {
	cfg := testConfig()
	params := testParameters()
	params.TopRate = 0.5
	params.RouletteRate = 0.5

	s, err := New(cfg, params, nil, nil)
	require.NoError(t, err)

	scores := map[string]int{
		"Week 1": 40, "Week 2": 30, "Week 3": 20, "Week 4": 10,
	}

	selected := s.selectChromosomes(scores, rand.New(rand.NewSource(4)))

	// 2 条精英 + 2 条轮盘赌，恰好取完且互不重复
	require.Len(t, selected, 4)
}

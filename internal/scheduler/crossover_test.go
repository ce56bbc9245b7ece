package scheduler

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// 交叉的封闭性：子代的天集合和父代一致，每一天的内容原样来自某个父本
func TestCrossoverClosure(t *testing.T) {
	s := newTestScheduler(t, testConfig())

	parent1 := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(21)))
	parent2 := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(22)))

	backup1 := parent1.Clone()
	backup2 := parent2.Clone()

	child1, child2 := s.crossover(parent1, parent2, rand.New(rand.NewSource(23)))

	// 父本保持不变
	require.Equal(t, backup1, parent1)
	require.Equal(t, backup2, parent2)

	require.Len(t, child1, len(parent1))
	require.Len(t, child2, len(parent2))

	for _, day := range s.cfg.WorkingDays {
		require.Contains(t, child1, day)
		require.Contains(t, child2, day)

		// 每一天要么来自父本 1，要么来自父本 2，不允许凭空构造
		fromParent1 := reflect.DeepEqual(child1[day], parent1[day])
		fromParent2 := reflect.DeepEqual(child1[day], parent2[day])
		require.True(t, fromParent1 || fromParent2, "子代的 %s 不来自任何父本", day)

		// 两个子代在同一天上持有互补的父本内容
		if fromParent1 {
			require.True(t, reflect.DeepEqual(child2[day], parent2[day]))
		} else {
			require.True(t, reflect.DeepEqual(child2[day], parent1[day]))
		}
	}
}

// 切点之后的天必须真正交换，不允许旧系统中自己换自己的写法
func TestCrossoverActuallyExchanges(t *testing.T) {
	s := newTestScheduler(t, testConfig())

	parent1 := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(31)))
	parent2 := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(32)))
	require.NotEqual(t, parent1, parent2)

	// 两天的配置下切点只能是 0 或 1，两种情况下最后一天都会交换
	child1, child2 := s.crossover(parent1, parent2, rand.New(rand.NewSource(33)))

	lastDay := s.cfg.WorkingDays[len(s.cfg.WorkingDays)-1]
	require.True(t, reflect.DeepEqual(child1[lastDay], parent2[lastDay]))
	require.True(t, reflect.DeepEqual(child2[lastDay], parent1[lastDay]))
}

// Package allocation 按属性分数把学生划分到各个班级
// 分数由二进制权重叠加而成，相同分数的学生会被尽量放进同一个班级
package allocation

import (
	"fmt"
	"sort"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

// 各属性的权重取 2 的幂，保证任意组合的总分互不相同
const (
	GoodCGPAWeight = 1 // 2^0
	HostlerWeight  = 2 // 2^1
)

const (
	// DefaultTopPercentage: 绩点排名前多少百分比算作高绩点
	DefaultTopPercentage = 30
	// DefaultClassStrength: 单个班级的最大人数
	DefaultClassStrength = 250
)

// Allocator 负责一批学生的分班
type Allocator struct {
	topPercentage int
	classStrength int
}

// Option 调整分班参数
type Option func(*Allocator)

func WithTopPercentage(percentage int) Option {
	return func(a *Allocator) {
		a.topPercentage = percentage
	}
}

func WithClassStrength(strength int) Option {
	return func(a *Allocator) {
		a.classStrength = strength
	}
}

func New(opts ...Option) *Allocator {
	a := &Allocator{
		topPercentage: DefaultTopPercentage,
		classStrength: DefaultClassStrength,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CGPAThreshold 计算高绩点的动态门槛：绩点降序排列后，排名前 topPercentage% 的最后一名的绩点
func (a *Allocator) CGPAThreshold(students []domain.Student) float64 {
	if len(students) == 0 {
		return 0
	}

	cgpas := make([]float64, len(students))
	for i, student := range students {
		cgpas[i] = student.CGPA
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(cgpas)))

	index := len(cgpas) * a.topPercentage / 100
	if index < 1 {
		index = 1
	}
	return cgpas[index-1]
}

// Score 计算单个学生的属性分数
func (a *Allocator) Score(student domain.Student, cgpaThreshold float64) int {
	score := 0
	if student.CGPA >= cgpaThreshold {
		score += GoodCGPAWeight
	}
	if student.IsHostler {
		score += HostlerWeight
	}
	return score
}

// Divide 把学生分进班级并填写 Section 字段，返回每个班级的名称和人数
// 分数相同的学生优先进同一个班级，装满后换下一个；班级名称按 A、B、C... 顺序生成
func (a *Allocator) Divide(students []domain.Student) ([]domain.Section, error) {
	if len(students) == 0 {
		return nil, fmt.Errorf("没有任何学生，无法分班")
	}
	if a.classStrength <= 0 {
		return nil, fmt.Errorf("班级容量必须为正数")
	}

	threshold := a.CGPAThreshold(students)

	// 按分数分组，组内保持输入顺序
	scores := make([]int, len(students))
	groups := make(map[int][]int)
	for i, student := range students {
		scores[i] = a.Score(student, threshold)
		groups[scores[i]] = append(groups[scores[i]], i)
	}

	groupKeys := make([]int, 0, len(groups))
	for score := range groups {
		groupKeys = append(groupKeys, score)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(groupKeys)))

	sections := make([]domain.Section, 0, len(students)/a.classStrength+1)
	current := 0
	sectionIndex := 0
	for _, score := range groupKeys {
		for _, i := range groups[score] {
			if current == a.classStrength {
				sections = append(sections, domain.Section{
					Name:     sectionName(sectionIndex),
					Strength: int32(current),
				})
				sectionIndex++
				current = 0
			}
			students[i].Section = sectionName(sectionIndex)
			current++
		}
	}
	if current > 0 {
		sections = append(sections, domain.Section{
			Name:     sectionName(sectionIndex),
			Strength: int32(current),
		})
	}

	return sections, nil
}

// sectionName: 0 -> A, 1 -> B, ... 超过 26 个班级时用 AA、AB 续命名
func sectionName(index int) string {
	name := ""
	for {
		name = string(rune('A'+index%26)) + name
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return name
}

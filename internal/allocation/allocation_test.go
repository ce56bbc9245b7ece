package allocation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func TestCGPAThreshold(t *testing.T) {
	students := []domain.Student{
		{RollNo: "S1", CGPA: 9.8},
		{RollNo: "S2", CGPA: 9.5},
		{RollNo: "S3", CGPA: 8.0},
		{RollNo: "S4", CGPA: 7.5},
		{RollNo: "S5", CGPA: 6.0},
		{RollNo: "S6", CGPA: 5.5},
		{RollNo: "S7", CGPA: 5.0},
		{RollNo: "S8", CGPA: 4.5},
		{RollNo: "S9", CGPA: 4.0},
		{RollNo: "S10", CGPA: 3.5},
	}

	// 前 30% 是 3 个人，门槛取其中最后一名的绩点
	a := New()
	require.InDelta(t, 8.0, a.CGPAThreshold(students), 1e-9)

	// 人数太少时至少取第一名，不会越界
	require.InDelta(t, 9.8, a.CGPAThreshold(students[:1]), 1e-9)
	require.Zero(t, a.CGPAThreshold(nil))
}

func TestScoreWeights(t *testing.T) {
	a := New()

	// 权重取 2 的幂，四种属性组合的分数互不相同
	seen := make(map[int]bool)
	for _, student := range []domain.Student{
		{CGPA: 9.5, IsHostler: true},
		{CGPA: 9.5, IsHostler: false},
		{CGPA: 6.0, IsHostler: true},
		{CGPA: 6.0, IsHostler: false},
	} {
		score := a.Score(student, 9.0)
		require.False(t, seen[score])
		seen[score] = true
	}

	require.Equal(t, GoodCGPAWeight+HostlerWeight, a.Score(domain.Student{CGPA: 9.0, IsHostler: true}, 9.0))
	require.Equal(t, 0, a.Score(domain.Student{CGPA: 5.0}, 9.0))
}

func TestDivideGroupsBySectionStrength(t *testing.T) {
	students := make([]domain.Student, 0, 10)
	for i := 0; i < 10; i++ {
		students = append(students, domain.Student{
			RollNo:    fmt.Sprintf("S%02d", i+1),
			CGPA:      5.0 + float64(i)*0.5,
			IsHostler: i%2 == 0,
		})
	}

	a := New(WithClassStrength(4))
	sections, err := a.Divide(students)
	require.NoError(t, err)

	// 10 个学生按容量 4 切分成 3 个班级
	require.Len(t, sections, 3)
	require.Equal(t, "A", sections[0].Name)
	require.Equal(t, "B", sections[1].Name)
	require.Equal(t, "C", sections[2].Name)

	total := int32(0)
	for _, section := range sections {
		require.LessOrEqual(t, section.Strength, int32(4))
		total += section.Strength
	}
	require.Equal(t, int32(10), total)

	// 每个学生都被写上了分班结果
	counts := make(map[string]int32)
	for _, student := range students {
		require.NotEmpty(t, student.Section)
		counts[student.Section]++
	}
	for _, section := range sections {
		require.Equal(t, section.Strength, counts[section.Name])
	}
}

// 分数相同的学生尽量进同一个班级
func TestDivideKeepsScoreGroupsTogether(t *testing.T) {
	students := []domain.Student{
		{RollNo: "S1", CGPA: 9.5, IsHostler: true},
		{RollNo: "S2", CGPA: 9.5, IsHostler: true},
		{RollNo: "S3", CGPA: 5.0, IsHostler: false},
		{RollNo: "S4", CGPA: 5.0, IsHostler: false},
	}

	a := New(WithClassStrength(2))
	sections, err := a.Divide(students)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	require.Equal(t, students[0].Section, students[1].Section)
	require.Equal(t, students[2].Section, students[3].Section)
	require.NotEqual(t, students[0].Section, students[2].Section)
}

func TestDivideErrors(t *testing.T) {
	a := New()
	_, err := a.Divide(nil)
	require.Error(t, err)

	a = New(WithClassStrength(0))
	_, err = a.Divide([]domain.Student{{RollNo: "S1"}})
	require.Error(t, err)
}

func TestSectionNameOverflow(t *testing.T) {
	require.Equal(t, "A", sectionName(0))
	require.Equal(t, "Z", sectionName(25))
	require.Equal(t, "AA", sectionName(26))
	require.Equal(t, "AB", sectionName(27))
}

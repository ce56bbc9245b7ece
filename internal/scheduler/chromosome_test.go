package scheduler

import (
	"math/rand"
	"testing"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		WorkingDays: []string{"Monday", "Tuesday"},
		SubjectTeacherMapping: map[string][]string{
			"TCS-531": {"AB01", "PK02"},
			"TMA-502": {"SS03"},
		},
		SubjectQuota: map[string]int{
			"TCS-531": 3,
			"TMA-502": 2,
		},
		TeacherWorkload: map[string]int{
			"AB01": 10,
			"PK02": 10,
			"SS03": 10,
		},
		TeacherPreferences: map[string][]int{
			"AB01": {1, 2, 3, 4, 5, 6, 7},
			"PK02": {1, 2, 3, 4, 5, 6, 7},
			"SS03": {1, 2, 3, 4, 5, 6, 7},
		},
		TeacherDutyDays: map[string][]string{
			"AB01": {"Monday", "Tuesday"},
			"PK02": {"Monday", "Tuesday"},
			"SS03": {"Monday", "Tuesday"},
		},
		ClassroomCapacity: map[string]int{
			"R1": 60,
			"R2": 60,
		},
		SectionStrength: map[string]int{
			"A": 50,
			"B": 40,
		},
	}
}

func testParameters() *Parameters {
	return &Parameters{
		PopulationSize: 4,
		MaxGenerations: 2,
		MutationRate:   0.5,
		TopRate:        0.25,
		RouletteRate:   0.25,
		Seed:           42,
	}
}

func newTestScheduler(t *testing.T, cfg *Config) *Scheduler {
	t.Helper()
	s, err := New(cfg, testParameters(), nil, nil)
	require.NoError(t, err)
	return s
}

// 每个班级每天预算内的每个时间段都必须有课，找不到组合时用占位课兜底
func TestGenerateWeekFallbackTotality(t *testing.T) {
	s := newTestScheduler(t, testConfig())
	week := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(1)))

	require.Len(t, week, 2)
	for _, day := range s.cfg.WorkingDays {
		daySchedule := week[day]
		require.Len(t, daySchedule, len(s.sections))

		for i, section := range s.sections {
			budget := FullDaySlots
			if i < len(s.sections)/2 {
				budget = HalfDaySlots
			}

			assignments := daySchedule[section]
			require.Len(t, assignments, budget)

			seen := make(map[int]bool)
			for _, assignment := range assignments {
				require.GreaterOrEqual(t, assignment.TimeSlot, 1)
				require.LessOrEqual(t, assignment.TimeSlot, budget)
				require.False(t, seen[assignment.TimeSlot], "同一班级同一天的时间段不能重复")
				seen[assignment.TimeSlot] = true
				require.NotEmpty(t, assignment.SubjectID)
				require.NotEmpty(t, assignment.ClassroomID)
			}
		}
	}
}

// 非占位课在每个班级每周内的出现次数不能超过科目配额
func TestGenerateWeekQuotaInvariant(t *testing.T) {
	s := newTestScheduler(t, testConfig())
	week := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(7)))

	usage := make(map[string]map[string]int)
	for _, daySchedule := range week {
		for section, assignments := range daySchedule {
			if usage[section] == nil {
				usage[section] = make(map[string]int)
			}
			for _, assignment := range assignments {
				if assignment.SubjectID == FallbackSubject {
					continue
				}
				usage[section][assignment.SubjectID]++
			}
		}
	}

	for section, subjects := range usage {
		for subject, count := range subjects {
			require.LessOrEqual(t, count, s.cfg.SubjectQuota[subject],
				"班级 %s 的科目 %s 超出配额", section, subject)
		}
	}
}

// 实验课只能从 1/3/5 开始，连堂的第二节紧跟在起始时间段之后
func TestGenerateWeekLabSlotValidity(t *testing.T) {
	cfg := testConfig()
	cfg.SubjectTeacherMapping["PCS-506"] = []string{"AB01"}
	cfg.SubjectQuota["PCS-506"] = 2
	cfg.LabSubjects = []string{"PCS-506"}
	cfg.LabCapacity = map[string]int{"L1": 60, "L2": 60}

	s := newTestScheduler(t, cfg)
	week := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(3)))

	for _, daySchedule := range week {
		for _, assignments := range daySchedule {
			starts := make(map[int]bool)
			for _, assignment := range assignments {
				if assignment.SubjectID != "PCS-506" {
					continue
				}
				require.Contains(t, []string{"L1", "L2"}, assignment.ClassroomID, "实验课必须使用实验室")
				if IsLabStartSlot(assignment.TimeSlot) {
					starts[assignment.TimeSlot] = true
				} else {
					// 非起始时间段只能是连堂的第二节
					require.True(t, IsLabStartSlot(assignment.TimeSlot-1),
						"实验课出现在非法时间段 %d", assignment.TimeSlot)
					require.True(t, starts[assignment.TimeSlot-1],
						"连堂第二节缺少对应的起始节")
				}
			}
		}
	}
}

// 配额作用域是（班级, 科目），不是全局；教师工作量上限则是全周共享的
func TestGenerateWeekQuotaScopedPerSection(t *testing.T) {
	cfg := &Config{
		WorkingDays: []string{"Monday", "Tuesday"},
		SubjectTeacherMapping: map[string][]string{
			"TCS-531": {"AB01"},
		},
		SubjectQuota:    map[string]int{"TCS-531": 2},
		TeacherWorkload: map[string]int{"AB01": 2},
		TeacherPreferences: map[string][]int{
			"AB01": {1, 2, 3, 4, 5, 6, 7},
		},
		TeacherDutyDays: map[string][]string{
			"AB01": {"Monday", "Tuesday"},
		},
		ClassroomCapacity: map[string]int{"R1": 60, "R2": 60},
		SectionStrength:   map[string]int{"A": 50, "B": 40},
	}

	s := newTestScheduler(t, cfg)
	week := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(11)))

	total := 0
	perSection := make(map[string]int)
	for _, daySchedule := range week {
		for section, assignments := range daySchedule {
			for _, assignment := range assignments {
				if assignment.SubjectID == "TCS-531" {
					total++
					perSection[section]++
				}
			}
		}
	}

	// 唯一教师的周工作量上限是 2，所以全周最多出现 2 次
	require.Equal(t, 2, total)
	for section, count := range perSection {
		require.LessOrEqual(t, count, 2, "班级 %s 超出配额", section)
	}
}

// 相同种子生成的染色体必须完全一致
func TestGenerateWeekDeterministic(t *testing.T) {
	s := newTestScheduler(t, testConfig())

	week1 := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(5)))
	week2 := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(5)))

	require.Equal(t, week1, week2)
}

// 教师在可用性矩阵中被占用的时间段不能再被排课
func TestGenerateWeekRespectsTeacherMatrix(t *testing.T) {
	cfg := &Config{
		WorkingDays: []string{"Monday"},
		SubjectTeacherMapping: map[string][]string{
			"TCS-531": {"AB01"},
		},
		SubjectQuota:    map[string]int{"TCS-531": 7},
		TeacherWorkload: map[string]int{"AB01": 7},
		TeacherPreferences: map[string][]int{
			"AB01": {1, 2, 3, 4, 5, 6, 7},
		},
		TeacherDutyDays: map[string][]string{
			"AB01": {"Monday"},
		},
		ClassroomCapacity: map[string]int{"R1": 60},
		SectionStrength:   map[string]int{"A": 50},
	}

	s := newTestScheduler(t, cfg)

	teacherMatrix := s.teacherMatrix.Clone()
	teacherMatrix.Occupy("AB01", 0, 0) // 周一第 1 节不可用

	week := s.generateWeek(teacherMatrix, s.labMatrix.Clone(), rand.New(rand.NewSource(2)))

	for _, assignment := range week["Monday"]["A"] {
		if assignment.TimeSlot == 1 {
			require.Equal(t, FallbackSubject, assignment.SubjectID)
			require.Equal(t, FallbackTeacher, assignment.TeacherID)
		}
	}

	var schedule domain.SectionSchedule = week["Monday"]["A"]
	require.NotEmpty(t, schedule)
}

package scheduler

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

// 带实验课的配置：PCS-506 配额为奇数，连堂排课时最容易触碰配额边界
func testLabConfig() *Config {
	cfg := testConfig()
	cfg.SubjectTeacherMapping["PCS-506"] = []string{"AB01", "PK02"}
	cfg.SubjectQuota["PCS-506"] = 3
	cfg.LabSubjects = []string{"PCS-506"}
	cfg.LabCapacity = map[string]int{"L1": 90, "L2": 90}
	return cfg
}

// requireHardConstraints 独立于 isFeasible 逐条检查硬性约束
func requireHardConstraints(t *testing.T, cfg *Config, week domain.WeekSchedule) {
	t.Helper()

	labSubjects := make(map[string]bool)
	for _, subject := range cfg.LabSubjects {
		labSubjects[subject] = true
	}
	for _, subject := range cfg.SpecialSubjects {
		labSubjects[subject] = true
	}

	usage := make(map[string]map[string]int)
	for day, daySchedule := range week {
		type slotKey struct {
			teacher string
			slot    int
		}
		seen := make(map[slotKey]string)

		for section, assignments := range daySchedule {
			if usage[section] == nil {
				usage[section] = make(map[string]int)
			}
			subjectAt := make(map[int]string)
			for _, assignment := range assignments {
				subjectAt[assignment.TimeSlot] = assignment.SubjectID
			}

			for _, assignment := range assignments {
				if assignment.SubjectID != FallbackSubject {
					usage[section][assignment.SubjectID]++
				}

				if labSubjects[assignment.SubjectID] {
					legal := IsLabStartSlot(assignment.TimeSlot) ||
						(IsLabStartSlot(assignment.TimeSlot-1) && subjectAt[assignment.TimeSlot-1] == assignment.SubjectID)
					require.True(t, legal,
						"班级 %s 在 %s 的实验课 %s 出现在时间段 %d", section, day, assignment.SubjectID, assignment.TimeSlot)
				}

				if assignment.TeacherID != FallbackTeacher {
					key := slotKey{assignment.TeacherID, assignment.TimeSlot}
					other, exists := seen[key]
					require.False(t, exists && other != section,
						"教师 %s 在 %s 的时间段 %d 被排进班级 %s 和 %s", assignment.TeacherID, day, assignment.TimeSlot, other, section)
					seen[key] = section
				}
			}
		}
	}

	for section, subjects := range usage {
		for subject, count := range subjects {
			require.LessOrEqual(t, count, cfg.SubjectQuota[subject],
				"班级 %s 的科目 %s 每周出现 %d 次，超过配额 %d", section, subject, count, cfg.SubjectQuota[subject])
		}
	}
}

// 班级人数超过所有教室容量是致命配置错误，必须在迭代开始前返回
func TestNewFatalWhenNoRoomFitsSection(t *testing.T) {
	cfg := testConfig()
	cfg.SectionStrength["A"] = 250 // 所有教室容量都是 60

	_, err := New(cfg, testParameters(), nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "A")
	require.Contains(t, err.Error(), "250")
}

func TestNewFatalWhenNotEnoughClassrooms(t *testing.T) {
	cfg := testConfig()
	cfg.ClassroomCapacity = map[string]int{"R1": 60} // 两个班级只有一间教室

	_, err := New(cfg, testParameters(), nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "教室数量不足")
}

// 没有任课教师的科目和缺少工作量上限的教师同样是致命配置错误
func TestNewFatalOnMissingMappings(t *testing.T) {
	cfg := testConfig()
	cfg.SubjectTeacherMapping["XCS-501"] = []string{}

	_, err := New(cfg, testParameters(), nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "XCS-501")

	cfg = testConfig()
	cfg.SubjectTeacherMapping["TCS-531"] = []string{"ZZ99"} // 没有工作量配置的教师

	_, err = New(cfg, testParameters(), nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ZZ99")
}

func TestNewFatalWhenLabSubjectsWithoutLabs(t *testing.T) {
	cfg := testConfig()
	cfg.LabSubjects = []string{"TCS-531"}
	cfg.LabCapacity = nil

	_, err := New(cfg, testParameters(), nil, nil)
	require.Error(t, err)
}

// 完整跑一轮：返回最优染色体和重放后的可用性矩阵
func TestRunReturnsBestAndMatrices(t *testing.T) {
	cfg := testConfig()
	params := &Parameters{
		PopulationSize: 6,
		MaxGenerations: 3,
		MutationRate:   0.5,
		TopRate:        0.34,
		RouletteRate:   0.2,
		Seed:           42,
	}

	s, err := New(cfg, params, nil, nil)
	require.NoError(t, err)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	// 最优染色体覆盖全部工作日
	for _, day := range cfg.WorkingDays {
		require.Contains(t, result.Best, day)
		require.Len(t, result.Best[day], len(cfg.SectionStrength))
	}

	// 最优染色体的占用必须被重放到返回的矩阵上
	occupiedFound := false
	for _, rows := range result.TeacherMatrix {
		for _, row := range rows {
			for _, free := range row {
				if !free {
					occupiedFound = true
				}
			}
		}
	}
	require.True(t, occupiedFound, "矩阵上没有任何被占用的时间段")
}

// 相同种子的两次运行结果一致
func TestRunDeterministicWithSeed(t *testing.T) {
	params := &Parameters{
		PopulationSize: 4,
		MaxGenerations: 2,
		MutationRate:   0.5,
		TopRate:        0.5,
		RouletteRate:   0.25,
		Seed:           7,
	}

	s1, err := New(testConfig(), params, nil, nil)
	require.NoError(t, err)
	result1, err := s1.Run(context.Background())
	require.NoError(t, err)

	s2, err := New(testConfig(), params, nil, nil)
	require.NoError(t, err)
	result2, err := s2.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, result1.BestScore, result2.BestScore)
	require.Equal(t, result1.Best, result2.Best)
}

func TestRunCancelled(t *testing.T) {
	s, err := New(testConfig(), testParameters(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// 奇数配额的实验课在配额只剩一次时必须退化为单节，不能连堂排成配额+1 次
func TestGenerateWeekLabQuotaNotExceeded(t *testing.T) {
	cfg := testLabConfig()
	s, err := New(cfg, testParameters(), nil, nil)
	require.NoError(t, err)

	for seed := int64(1); seed <= 20; seed++ {
		week := s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rand.New(rand.NewSource(seed)))
		requireHardConstraints(t, cfg, week)
	}
}

// 交叉和变异可能产生违反硬性约束的后代，它们不允许成为 Run 返回的最优解
func TestRunBestSatisfiesHardConstraints(t *testing.T) {
	cfg := testLabConfig()

	for seed := int64(1); seed <= 5; seed++ {
		s, err := New(cfg, &Parameters{
			PopulationSize: 8,
			MaxGenerations: 6,
			MutationRate:   1.0,
			TopRate:        0.5,
			RouletteRate:   0.25,
			Seed:           seed,
		}, nil, nil)
		require.NoError(t, err)

		result, err := s.Run(context.Background())
		require.NoError(t, err)
		requireHardConstraints(t, cfg, result.Best)
	}
}

func TestIsFeasibleDetectsViolations(t *testing.T) {
	s, err := New(testLabConfig(), testParameters(), nil, nil)
	require.NoError(t, err)

	// 合法的连堂实验课
	require.True(t, s.isFeasible(domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "PCS-506", ClassroomID: "L1", TimeSlot: 1},
				{TeacherID: "AB01", SubjectID: "PCS-506", ClassroomID: "L1", TimeSlot: 2},
			},
		},
	}))

	// 实验课从非法时间段开始
	require.False(t, s.isFeasible(domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {{TeacherID: "AB01", SubjectID: "PCS-506", ClassroomID: "L1", TimeSlot: 2}},
		},
	}))

	// 科目超出每周配额（TCS-531 配额为 3）
	require.False(t, s.isFeasible(domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 1},
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 2},
			},
		},
		"Tuesday": domain.DaySchedule{
			"A": {
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 1},
				{TeacherID: "AB01", SubjectID: "TCS-531", ClassroomID: "R1", TimeSlot: 2},
			},
		},
	}))

	// 同一教师同一时间段被排进两个班级
	require.False(t, s.isFeasible(domain.WeekSchedule{
		"Monday": domain.DaySchedule{
			"A": {{TeacherID: "SS03", SubjectID: "TMA-502", ClassroomID: "R1", TimeSlot: 1}},
			"B": {{TeacherID: "SS03", SubjectID: "TMA-502", ClassroomID: "R2", TimeSlot: 1}},
		},
	}))
}

func TestRunHonorsDeadline(t *testing.T) {
	s, err := New(testConfig(), &Parameters{
		PopulationSize: 4,
		MaxGenerations: 100000,
		MutationRate:   0.5,
		TopRate:        0.5,
		RouletteRate:   0.25,
		Seed:           1,
	}, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = s.Run(ctx)
	require.Error(t, err)
	require.Less(t, time.Since(start), 10*time.Second)
}

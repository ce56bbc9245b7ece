package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

type Scheduler struct {
	cfg       *Config
	params    *Parameters
	penalties Penalties

	sections         []string          // 按人数降序排列的班级
	sectionClassroom map[string]string // 班级 -> 绑定的普通教室
	labs             []string          // 实验室池，按编号排序
	roomCapacity     map[string]int    // 普通教室和实验室合并后的容量表
	subjects         []string          // 排序后的科目列表，保证遍历顺序确定
	labSubjects      map[string]bool
	specialSubjects  map[string]bool

	// 跨调用状态：上一次排课消耗后的可用性矩阵
	// 生成过程只读取它们的副本，最终由 Run 提交最优染色体的消耗结果
	teacherMatrix domain.AvailabilityMatrix
	labMatrix     domain.AvailabilityMatrix

	rng *rand.Rand
}

// Result: 一次排课运行的产出
// 可用性矩阵由调用方负责持久化，供下一次排课继续消耗
type Result struct {
	Best          domain.WeekSchedule       `json:"best"`
	BestScore     int                       `json:"bestScore"`
	TeacherMatrix domain.AvailabilityMatrix `json:"teacherMatrix"`
	LabMatrix     domain.AvailabilityMatrix `json:"labMatrix"`
}

// New 校验配置并完成班级和教室的绑定
// 致命的配置错误（教室容量不足、科目没有教师等）在这里立即返回，不会进入迭代
func New(cfg *Config, params *Parameters, teacherMatrix domain.AvailabilityMatrix, labMatrix domain.AvailabilityMatrix) (*Scheduler, error) {
	if params == nil {
		params = DefaultParameters()
	}
	if len(cfg.WorkingDays) == 0 {
		cfg.WorkingDays = DefaultWorkingDays()
	}
	if cfg.TimeSlots == nil {
		cfg.TimeSlots = DefaultTimeSlots()
	}
	if params.PopulationSize <= 0 || params.MaxGenerations <= 0 {
		return nil, fmt.Errorf("种群大小和迭代次数必须为正数")
	}
	if len(cfg.SectionStrength) == 0 {
		return nil, fmt.Errorf("没有任何班级，无法排课")
	}
	if len(cfg.SubjectTeacherMapping) == 0 {
		return nil, fmt.Errorf("没有任何科目，无法排课")
	}

	s := &Scheduler{
		cfg:              cfg,
		params:           params,
		penalties:        DefaultPenalties(),
		sectionClassroom: make(map[string]string),
		roomCapacity:     make(map[string]int),
		labSubjects:      make(map[string]bool),
		specialSubjects:  make(map[string]bool),
	}

	// 每个科目必须至少有一位任课教师，并且每位教师都要有工作量上限
	for subject, teachers := range cfg.SubjectTeacherMapping {
		if len(teachers) == 0 {
			return nil, fmt.Errorf("科目 %s 没有任何任课教师", subject)
		}
		for _, teacher := range teachers {
			if _, exists := cfg.TeacherWorkload[teacher]; !exists {
				return nil, fmt.Errorf("教师 %s 缺少每周工作量上限", teacher)
			}
		}
		s.subjects = append(s.subjects, subject)
	}
	sort.Strings(s.subjects)

	for _, subject := range cfg.LabSubjects {
		s.labSubjects[subject] = true
	}
	for _, subject := range cfg.SpecialSubjects {
		s.specialSubjects[subject] = true
	}
	if (len(cfg.LabSubjects) > 0 || len(cfg.SpecialSubjects) > 0) && len(cfg.LabCapacity) == 0 {
		return nil, fmt.Errorf("存在实验课或特殊课，但没有配置任何实验室")
	}

	// 按人数降序排列班级，按容量降序排列教室，然后逐一绑定
	// 人数相同或容量相同时按名称排序，保证绑定结果确定
	for section := range cfg.SectionStrength {
		s.sections = append(s.sections, section)
	}
	sort.Slice(s.sections, func(i, j int) bool {
		si, sj := s.sections[i], s.sections[j]
		if cfg.SectionStrength[si] != cfg.SectionStrength[sj] {
			return cfg.SectionStrength[si] > cfg.SectionStrength[sj]
		}
		return si < sj
	})

	classrooms := make([]string, 0, len(cfg.ClassroomCapacity))
	for room, capacity := range cfg.ClassroomCapacity {
		classrooms = append(classrooms, room)
		s.roomCapacity[room] = capacity
	}
	sort.Slice(classrooms, func(i, j int) bool {
		ri, rj := classrooms[i], classrooms[j]
		if cfg.ClassroomCapacity[ri] != cfg.ClassroomCapacity[rj] {
			return cfg.ClassroomCapacity[ri] > cfg.ClassroomCapacity[rj]
		}
		return ri < rj
	})

	for i, section := range s.sections {
		strength := cfg.SectionStrength[section]
		if i >= len(classrooms) {
			return nil, fmt.Errorf("教室数量不足：班级 %s（%d 人）没有可分配的教室", section, strength)
		}
		classroom := classrooms[i]
		if strength > cfg.ClassroomCapacity[classroom] {
			return nil, fmt.Errorf(
				"班级 %s 无法分配教室：需要容量 %d，剩余最大教室 %s 的容量只有 %d",
				section, strength, classroom, cfg.ClassroomCapacity[classroom],
			)
		}
		s.sectionClassroom[section] = classroom
	}

	for lab, capacity := range cfg.LabCapacity {
		s.labs = append(s.labs, lab)
		s.roomCapacity[lab] = capacity
	}
	sort.Strings(s.labs)

	// 可用性矩阵为空时默认为全空闲
	if teacherMatrix == nil {
		teacherCodes := make([]string, 0, len(cfg.TeacherWorkload))
		for teacher := range cfg.TeacherWorkload {
			teacherCodes = append(teacherCodes, teacher)
		}
		teacherMatrix = domain.NewAvailabilityMatrix(teacherCodes, len(cfg.WorkingDays), SlotsPerDay)
	}
	if labMatrix == nil {
		labMatrix = domain.NewAvailabilityMatrix(s.labs, len(cfg.WorkingDays), SlotsPerDay)
	}
	s.teacherMatrix = teacherMatrix
	s.labMatrix = labMatrix

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed))

	return s, nil
}

// Run 驱动整个迭代：生成 -> 评分 -> 选择 -> 交叉 -> 变异 -> 记录最优
// 软性冲突全部体现在适应度分数里，这里不会因为冲突而返回错误
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	var bestWeek domain.WeekSchedule
	bestScore := 0
	hasBest := false

	for gen := 0; gen < s.params.MaxGenerations; gen++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		// 并行生成本代的所有染色体
		// 每条染色体拿到矩阵的私有副本，避免相互污染对方的可用性视图
		population := make([]domain.WeekSchedule, s.params.PopulationSize)
		seeds := make([]int64, s.params.PopulationSize)
		for i := range seeds {
			seeds[i] = s.rng.Int63()
		}

		var wg sync.WaitGroup
		for i := 0; i < s.params.PopulationSize; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(seeds[i]))
				population[i] = s.generateWeek(s.teacherMatrix.Clone(), s.labMatrix.Clone(), rng)
			}(i)
		}
		wg.Wait()

		// 并行评分，选择需要完整的分数表，所以要先 join
		schedule := make(domain.Schedule, s.params.PopulationSize)
		keys := make([]string, s.params.PopulationSize)
		scores := make([]int, s.params.PopulationSize)
		for i := range population {
			keys[i] = fmt.Sprintf("Week %d", i+1)
			schedule[keys[i]] = population[i]
		}
		for i := range population {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, scores[i] = s.evaluateWeek(population[i])
			}(i)
		}
		wg.Wait()

		weekScores := make(map[string]int, len(keys))
		for i, key := range keys {
			weekScores[key] = scores[i]
		}

		// 记录本代生成的最优染色体
		// 生成阶段产出的染色体天然满足硬性约束，这里不需要再检查
		for i, score := range scores {
			if !hasBest || score > bestScore {
				bestWeek = population[i].Clone()
				bestScore = score
				hasBest = true
			}
		}

		// 选择繁殖池，按分数降序两两配对，落单的直接丢弃
		selected := s.selectChromosomes(weekScores, s.rng)
		selectedKeys := sortKeysByScore(selected)

		children := make([]domain.WeekSchedule, 0, len(selectedKeys))
		for i := 0; i+1 < len(selectedKeys); i += 2 {
			child1, child2 := s.crossover(schedule[selectedKeys[i]], schedule[selectedKeys[i+1]], s.rng)
			children = append(children, child1, child2)
		}

		// 变异所有后代并评分，后代同样是本代的候选最优
		childScores := make([]int, len(children))
		childSeeds := make([]int64, len(children))
		for i := range children {
			childSeeds[i] = s.rng.Int63()
		}
		for i := range children {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(childSeeds[i]))
				children[i] = s.mutate(children[i], rng)
				_, childScores[i] = s.evaluateWeek(children[i])
			}(i)
		}
		wg.Wait()

		// 交叉和变异可能重新引入配额超额、连堂错位或教师冲突，
		// 这类后代继续参与繁殖，但不允许成为最终返回的最优解
		for i, score := range childScores {
			if score > bestScore && s.isFeasible(children[i]) {
				bestWeek = children[i].Clone()
				bestScore = score
			}
		}
	}

	// 只有最终胜出的染色体才允许消耗共享的可用性矩阵：
	// 把最优周课表重放到本次运行初始的矩阵上，得到应当持久化的状态
	teacherMatrix := s.teacherMatrix.Clone()
	labMatrix := s.labMatrix.Clone()
	s.applyWeek(bestWeek, teacherMatrix, labMatrix)
	s.teacherMatrix = teacherMatrix
	s.labMatrix = labMatrix

	return &Result{
		Best:          bestWeek,
		BestScore:     bestScore,
		TeacherMatrix: teacherMatrix,
		LabMatrix:     labMatrix,
	}, nil
}

// SectionBudgets 返回每个班级每天的时间段预算
// 人数较多的前一半班级只上半天，其余班级上全天
func (s *Scheduler) SectionBudgets() map[string]int {
	budgets := make(map[string]int, len(s.sections))
	halfDayCount := len(s.sections) / 2
	for i, section := range s.sections {
		if i < halfDayCount {
			budgets[section] = HalfDaySlots
		} else {
			budgets[section] = FullDaySlots
		}
	}
	return budgets
}

// isFeasible 检查一条染色体是否满足所有硬性约束：
// 科目不超配额、实验课落在合法时间段、教师不跨班级冲突。
// 完整性（预算内的时间段排满且不重复）被交叉和变异天然保持，不用检查
func (s *Scheduler) isFeasible(week domain.WeekSchedule) bool {
	type slotKey struct {
		teacher string
		slot    int
	}

	usage := make(map[string]map[string]int, len(s.sections))
	for _, daySchedule := range week {
		seen := make(map[slotKey]string, len(s.sections)*FullDaySlots)
		for section, assignments := range daySchedule {
			if usage[section] == nil {
				usage[section] = make(map[string]int, len(s.subjects))
			}
			subjectAt := make(map[int]string, len(assignments))
			for _, assignment := range assignments {
				subjectAt[assignment.TimeSlot] = assignment.SubjectID
			}

			for _, assignment := range assignments {
				if assignment.SubjectID != FallbackSubject {
					usage[section][assignment.SubjectID]++
					if usage[section][assignment.SubjectID] > s.cfg.SubjectQuota[assignment.SubjectID] {
						return false
					}
				}

				if s.labSubjects[assignment.SubjectID] || s.specialSubjects[assignment.SubjectID] {
					if !IsLabStartSlot(assignment.TimeSlot) {
						// 非起始节的实验课只能是连堂的第二节
						if !IsLabStartSlot(assignment.TimeSlot-1) || subjectAt[assignment.TimeSlot-1] != assignment.SubjectID {
							return false
						}
					}
				}

				if assignment.TeacherID != FallbackTeacher {
					key := slotKey{assignment.TeacherID, assignment.TimeSlot}
					if other, exists := seen[key]; exists && other != section {
						return false
					}
					seen[key] = section
				}
			}
		}
	}
	return true
}

// applyWeek 把一张周课表的占用情况标记到矩阵上
func (s *Scheduler) applyWeek(week domain.WeekSchedule, teacherMatrix domain.AvailabilityMatrix, labMatrix domain.AvailabilityMatrix) {
	for dayIndex, day := range s.cfg.WorkingDays {
		for _, assignments := range week[day] {
			for _, assignment := range assignments {
				if assignment.TeacherID != FallbackTeacher {
					teacherMatrix.Occupy(assignment.TeacherID, dayIndex, assignment.TimeSlot-1)
				}
				if _, isLab := s.cfg.LabCapacity[assignment.ClassroomID]; isLab {
					labMatrix.Occupy(assignment.ClassroomID, dayIndex, assignment.TimeSlot-1)
				}
			}
		}
	}
}

// sortKeysByScore 按分数降序返回键，分数相同时按键名排序保证确定性
func sortKeysByScore(scores map[string]int) []string {
	keys := make([]string, 0, len(scores))
	for key := range scores {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] > scores[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

package scheduler

const (
	// FallbackSubject: 某个时间段找不到任何可行的科目/教师组合时使用的占位科目
	FallbackSubject = "Library"
	// FallbackTeacher: 占位科目对应的占位教师
	FallbackTeacher = "None"

	// HalfDaySlots: 半天班级一天占用的时间段数
	HalfDaySlots = 4
	// FullDaySlots: 全天班级一天占用的时间段数
	FullDaySlots = 7
)

// Config: 排课所需的全部领域数据
// 由外部 CRUD 层组装后显式传入，核心不依赖任何全局状态
type Config struct {
	WorkingDays           []string            // 工作日，按顺序
	TimeSlots             map[int]string      // 时间段编号 -> 时间区间字符串，为空时使用默认表
	SubjectTeacherMapping map[string][]string // 科目 -> 任课教师列表（有序）
	SubjectQuota          map[string]int      // 科目 -> 每个班级每周最多出现次数
	TeacherWorkload       map[string]int      // 教师 -> 每周最多排课节数
	TeacherPreferences    map[string][]int    // 教师 -> 偏好的时间段编号
	TeacherDutyDays       map[string][]string // 教师 -> 可以排课的工作日
	LabSubjects           []string            // 实验课科目
	SpecialSubjects       []string            // 特殊课科目，时间段规则与实验课一致
	ClassroomCapacity     map[string]int      // 普通教室 -> 容量
	LabCapacity           map[string]int      // 实验室 -> 容量
	SectionStrength       map[string]int      // 班级 -> 人数
}

// Parameters: 遗传算法参数
type Parameters struct {
	PopulationSize int     // 种群大小，即每代生成的周课表数量
	MaxGenerations int     // 最大迭代次数
	MutationRate   float64 // 变异比例（每天被变异班级的占比）
	TopRate        float64 // 精英选择比例
	RouletteRate   float64 // 轮盘赌选择比例
	Seed           int64   // 随机数种子，为 0 时使用当前时间
}

// Penalties: 适应度评估中各项冲突的扣分
type Penalties struct {
	TeacherDoubleBooked   int // 教师在同一时间段被排了两节课
	ClassroomDoubleBooked int // 教室在同一时间段被排了两节课
	OverCapacity          int // 班级人数超过教室容量
	UnpreferredSlot       int // 教师被排在不偏好的时间段
	TeacherOverload       int // 教师超出工作量上限
}

// DefaultPenalties 的数值沿用教务处多年使用的扣分标准
func DefaultPenalties() Penalties {
	return Penalties{
		TeacherDoubleBooked:   30,
		ClassroomDoubleBooked: 20,
		OverCapacity:          25,
		UnpreferredSlot:       5,
		TeacherOverload:       10,
	}
}

// BaseSectionFitness: 每个班级每天的起始分
const BaseSectionFitness = 100

func DefaultWorkingDays() []string {
	return []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize: 10,
		MaxGenerations: 20,
		MutationRate:   0.3,
		TopRate:        0.2,
		RouletteRate:   0.1,
	}
}

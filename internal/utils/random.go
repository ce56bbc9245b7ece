package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/scheduler"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleTeacher,
	domain.RoleAcademicOffice,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

// GenerateTeacherCode 从姓名的拼音首字母生成形如 AB01 的教师工号
// seq 是序号，保证首字母相同的教师工号不重复
func GenerateTeacherCode(chineseName string, seq int) string {
	initials := ""
	for _, syllable := range pinyin.LazyConvert(chineseName, nil) {
		initials += strings.ToUpper(syllable[:1])
		if len(initials) == 2 {
			break
		}
	}
	for len(initials) < 2 {
		initials += "X"
	}
	return fmt.Sprintf("%s%02d", initials, seq)
}

var subjectPrefixes = []string{"TCS", "TMA", "PCS", "XCS", "CHP"}

// GenerateSubjectCode 生成形如 TCS-531 的科目编号
func GenerateSubjectCode() string {
	prefix := subjectPrefixes[rand.Intn(len(subjectPrefixes))]
	return fmt.Sprintf("%s-%d", prefix, rand.Intn(500)+500)
}

// 用 Fisher-Yates 洗牌算法随机选出教师偏好的时间段
func GenerateRandomPreferredSlots() []int32 {
	slots := make([]int32, scheduler.SlotsPerDay)
	for i := range slots {
		slots[i] = int32(i + 1)
	}

	for i := len(slots) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		slots[i], slots[j] = slots[j], slots[i]
	}

	n := rand.Intn(len(slots)) + 1
	return slots[:n]
}

// GenerateRandomDutyDays 随机选出教师可以排课的工作日子集，至少一天
func GenerateRandomDutyDays(workingDays []string) []string {
	days := append([]string{}, workingDays...)

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(len(days)) + 1
	return days[:n]
}

func GenerateRandomTeacher(seq int, workingDays []string) *domain.Teacher {
	fullName := GenerateRandomChineseName()
	return &domain.Teacher{
		Code:           GenerateTeacherCode(fullName, seq),
		FullName:       fullName,
		PreferredSlots: GenerateRandomPreferredSlots(),
		DutyDays:       GenerateRandomDutyDays(workingDays),
		WeeklyWorkload: int32(rand.Intn(8) + 5), // 每周 5~12 节
	}
}

func GenerateRandomSubject(teacherCodes []string) *domain.Subject {
	n := rand.Intn(2) + 1
	if n > len(teacherCodes) {
		n = len(teacherCodes)
	}
	assigned := make([]string, 0, n)
	for _, i := range rand.Perm(len(teacherCodes))[:n] {
		assigned = append(assigned, teacherCodes[i])
	}

	return &domain.Subject{
		Code:         GenerateSubjectCode(),
		Name:         "科目" + GenerateRandomChineseName(),
		WeeklyQuota:  int32(rand.Intn(4) + 2), // 每个班级每周 2~5 节
		IsLab:        rand.Intn(4) == 0,       // 约四分之一是实验课
		TeacherCodes: assigned,
	}
}

// GenerateRandomRoom 生成教室：普通教室编号 R 开头，实验室 L 开头
func GenerateRandomRoom(seq int, isLab bool) *domain.Room {
	prefix := "R"
	if isLab {
		prefix = "L"
	}
	return &domain.Room{
		Code:     fmt.Sprintf("%s%d", prefix, seq),
		Capacity: int32(rand.Intn(4)*30 + 60), // 60/90/120/150
		IsLab:    isLab,
	}
}

func GenerateRandomStudent(seq int) *domain.Student {
	return &domain.Student{
		RollNo:    fmt.Sprintf("2023%04d", seq),
		FullName:  GenerateRandomChineseName(),
		CGPA:      float64(rand.Intn(48)+50) / 10, // 5.0~9.7
		IsHostler: rand.Intn(2) == 0,
	}
}

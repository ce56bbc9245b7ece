package seed

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/campus-dev/timetable-manager/backend/internal/allocation"
	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/repository"
	"github.com/campus-dev/timetable-manager/backend/internal/scheduler"
	"github.com/campus-dev/timetable-manager/backend/internal/utils"
)

// SeedDemoData 生成一套自洽的演示数据：教师、科目、教室、学生，
// 并按默认参数完成一次分班，使得插入后可以立即排课
func SeedDemoData(r *repository.Repository, teacherCount int, subjectCount int, studentCount int) {
	if teacherCount <= 0 || subjectCount <= 0 || studentCount <= 0 {
		slog.Error("数量必须为正数")
		return
	}

	workingDays := scheduler.DefaultWorkingDays()

	// 教师
	teacherCodes := make([]string, 0, teacherCount)
	for i := 0; i < teacherCount; i++ {
		teacher := utils.GenerateRandomTeacher(i+1, workingDays)
		if err := r.CreateTeacher(teacher); err != nil {
			slog.Error("插入教师失败", "code", teacher.Code, "error", err)
			continue
		}
		teacherCodes = append(teacherCodes, teacher.Code)
	}
	if len(teacherCodes) == 0 {
		slog.Error("没有插入任何教师，终止")
		return
	}
	slog.Info("插入教师完成", "count", len(teacherCodes))

	// 科目
	subjectCnt := 0
	for i := 0; i < subjectCount; i++ {
		subject := utils.GenerateRandomSubject(teacherCodes)
		if err := r.CreateSubject(subject); err != nil {
			slog.Error("插入科目失败", "code", subject.Code, "error", err)
			continue
		}
		subjectCnt++
	}
	slog.Info("插入科目完成", "count", subjectCnt)

	// 学生
	students := make([]*domain.Student, 0, studentCount)
	for i := 0; i < studentCount; i++ {
		students = append(students, utils.GenerateRandomStudent(i+1))
	}
	if err := r.CreateStudents(students); err != nil {
		slog.Error("插入学生失败", "error", err)
		return
	}
	slog.Info("插入学生完成", "count", len(students))

	// 分班
	values := make([]domain.Student, len(students))
	for i, student := range students {
		values[i] = *student
	}
	sections, err := allocation.New().Divide(values)
	if err != nil {
		slog.Error("分班失败", "error", err)
		return
	}
	if err := r.ReplaceSections(sections, values); err != nil {
		slog.Error("保存分班结果失败", "error", err)
		return
	}
	slog.Info("分班完成", "sections", len(sections))

	// 教室：每个班级一间普通教室，外加两间共享实验室
	// 容量要放得下最大的班级，否则排课会直接失败
	roomCnt := 0
	for i := range sections {
		room := utils.GenerateRandomRoom(i+1, false)
		for room.Capacity < sections[i].Strength {
			room.Capacity += 50
		}
		if err := r.CreateRoom(room); err != nil {
			slog.Error("插入教室失败", "code", room.Code, "error", err)
			continue
		}
		roomCnt++
	}
	for i := 0; i < 2; i++ {
		lab := utils.GenerateRandomRoom(i+1, true)
		if err := r.CreateRoom(lab); err != nil {
			slog.Error("插入实验室失败", "code", lab.Code, "error", err)
			continue
		}
		roomCnt++
	}
	slog.Info("插入教室完成", "count", roomCnt)
}

type studentRow struct {
	RollNo    string  `csv:"roll_no"`
	FullName  string  `csv:"full_name"`
	CGPA      float64 `csv:"cgpa"`
	IsHostler bool    `csv:"is_hostler"`
}

// SeedStudentsFromCSV 从 CSV 文件批量导入学生
// 列格式与 /students/import 接口一致：roll_no,full_name,cgpa,is_hostler
func SeedStudentsFromCSV(r *repository.Repository, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "path", path, "error", err)
		return
	}
	defer file.Close()

	var rows []*studentRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		slog.Error("解析 CSV 失败", "error", err)
		return
	}
	if len(rows) == 0 {
		slog.Error("文件中没有任何学生")
		return
	}

	students := make([]*domain.Student, 0, len(rows))
	for _, row := range rows {
		if row.RollNo == "" {
			slog.Error("跳过没有学号的行", "fullName", row.FullName)
			continue
		}
		students = append(students, &domain.Student{
			RollNo:    row.RollNo,
			FullName:  row.FullName,
			CGPA:      row.CGPA,
			IsHostler: row.IsHostler,
		})
	}

	if err := r.CreateStudents(students); err != nil {
		slog.Error("插入学生失败", "error", err)
		return
	}

	slog.Info("导入学生完成", "count", len(students))
}

// ExportStudentsCSV 随机生成一份学生 CSV 文件，方便演示导入流程
func ExportStudentsCSV(path string, count int) error {
	rows := make([]*studentRow, 0, count)
	for i := 0; i < count; i++ {
		student := utils.GenerateRandomStudent(i + 1)
		rows = append(rows, &studentRow{
			RollNo:    student.RollNo,
			FullName:  student.FullName,
			CGPA:      student.CGPA,
			IsHostler: student.IsHostler,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("写入 CSV 失败: %w", err)
	}

	return nil
}

package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/campus-dev/timetable-manager/backend/internal/converter"
	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/repository"
	"github.com/campus-dev/timetable-manager/backend/internal/scheduler"
	"github.com/campus-dev/timetable-manager/backend/internal/utils"
)

func (h *Handler) readSemesterParam(r *http.Request) (int32, error) {
	semester, err := strconv.ParseInt(r.URL.Query().Get("semester"), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(semester), nil
}

func currentTimetableCacheKey(department string, semester int32) string {
	return "timetable_current_" + department + "_" + strconv.FormatInt(int64(semester), 10)
}

func (h *Handler) GetCurrentTimetable(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	semester, err := h.readSemesterParam(r)
	if err != nil {
		h.errorResponse(w, r, "学期无效")
		return
	}

	// 现行课表是高频只读数据，优先读缓存
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	cached, err := h.redisClient.Get(ctx, currentTimetableCacheKey(department, semester)).Result()
	if err == nil {
		timetable := &domain.Timetable{}
		if err := json.Unmarshal([]byte(cached), timetable); err == nil {
			h.successResponse(w, r, "获取现行课表成功", timetable)
			return
		}
	} else if !errors.Is(err, redis.Nil) {
		h.internalServerError(w, r, err)
		return
	}

	timetable, err := h.repository.GetCurrentTimetable(department, semester)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "还没有现行课表")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.cacheCurrentTimetable(timetable)
	h.successResponse(w, r, "获取现行课表成功", timetable)
}

func (h *Handler) cacheCurrentTimetable(timetable *domain.Timetable) {
	data, err := json.Marshal(timetable)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	// 缓存失败不影响主流程
	_ = h.redisClient.Set(ctx, currentTimetableCacheKey(timetable.Department, timetable.Semester), data, time.Hour).Err()
}

func (h *Handler) GetTimetableHistory(w http.ResponseWriter, r *http.Request) {
	department := r.URL.Query().Get("department")
	semester, err := h.readSemesterParam(r)
	if err != nil {
		h.errorResponse(w, r, "学期无效")
		return
	}

	timetables, err := h.repository.GetTimetableHistory(department, semester)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取历史课表成功", timetables)
}

func (h *Handler) GetTimetable(w http.ResponseWriter, r *http.Request) {
	timetable := r.Context().Value(TimetableCtx).(*domain.Timetable)
	h.successResponse(w, r, "获取课表成功", timetable)
}

// ExportTimetable 把课表导出成扁平的 CSV 文件
func (h *Handler) ExportTimetable(w http.ResponseWriter, r *http.Request) {
	timetable := r.Context().Value(TimetableCtx).(*domain.Timetable)

	var buf bytes.Buffer
	if err := converter.WeekToCSV(timetable.Best, scheduler.DefaultWorkingDays(), scheduler.DefaultTimeSlots(), &buf); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.csvAttachment(w, "timetable_"+strconv.FormatInt(timetable.ID, 10)+".csv", buf.Bytes())
}

// ImportTimetable 从导出格式的 CSV 文件恢复一张课表并设为现行课表
// 导入的课表不经过遗传算法，评分记为 0
func (h *Handler) ImportTimetable(w http.ResponseWriter, r *http.Request) {
	department := r.FormValue("department")
	if department == "" {
		h.errorResponse(w, r, "院系不能为空")
		return
	}
	semester, err := strconv.ParseInt(r.FormValue("semester"), 10, 32)
	if err != nil {
		h.errorResponse(w, r, "学期无效")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.errorResponse(w, r, "请上传 CSV 文件")
		return
	}
	defer file.Close()

	week, err := converter.CSVToWeek(file, scheduler.DefaultTimeSlots())
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 手工编辑过的课表同样不允许违反硬性约束
	subjects, err := h.repository.GetAllSubjects()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	quotas := make(map[string]int, len(subjects))
	doubleSlot := make(map[string]bool)
	for _, subject := range subjects {
		quotas[subject.Code] = int(subject.WeeklyQuota)
		if subject.IsLab || subject.IsSpecial {
			doubleSlot[subject.Code] = true
		}
	}
	if err := utils.ValidateWeekQuota(week, quotas); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateLabSlots(week, doubleSlot); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateNoTeacherConflicts(week); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	timetable := &domain.Timetable{
		Department: department,
		Semester:   int32(semester),
		Best:       week,
		BestScore:  0,
	}
	if err := h.repository.InsertTimetable(timetable); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.cacheCurrentTimetable(timetable)
	h.successResponse(w, r, "课表导入成功", timetable)
}

// GetTimetableClassroomView 按教室视角展开一张课表
// 查询参数 room 加 format=csv 时返回单间教室的 CSV 表格
func (h *Handler) GetTimetableClassroomView(w http.ResponseWriter, r *http.Request) {
	timetable := r.Context().Value(TimetableCtx).(*domain.Timetable)

	schedule := domain.Schedule{"Week 1": timetable.Best}
	view := converter.ClassroomView(schedule, scheduler.DefaultWorkingDays())

	room := r.URL.Query().Get("room")
	if room == "" {
		h.successResponse(w, r, "获取教室使用表成功", view)
		return
	}

	dayEntries, exists := view[room]
	if !exists {
		h.errorResponse(w, r, "该教室在这张课表中没有被使用")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		var buf bytes.Buffer
		if err := converter.ViewToCSV(dayEntries, scheduler.DefaultWorkingDays(), scheduler.DefaultTimeSlots(), &buf); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		h.csvAttachment(w, room+".csv", buf.Bytes())
		return
	}

	h.successResponse(w, r, "获取教室使用表成功", dayEntries)
}

// GenerateTimetable 组装领域数据并运行遗传算法，结果校验通过后设为现行课表
func (h *Handler) GenerateTimetable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Department     string   `json:"department" validate:"required"`
		Semester       int32    `json:"semester" validate:"required,min=1"`
		PopulationSize *int     `json:"populationSize" validate:"omitempty,min=1"`
		MaxGenerations *int     `json:"maxGenerations" validate:"omitempty,min=1"`
		MutationRate   *float64 `json:"mutationRate" validate:"omitempty,min=0,max=1"`
		Seed           int64    `json:"seed"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 组装排课配置
	cfg, err := h.buildSchedulerConfig()
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	params := &scheduler.Parameters{
		PopulationSize: h.config.Scheduler.PopulationSize,
		MaxGenerations: h.config.Scheduler.MaxGenerations,
		MutationRate:   h.config.Scheduler.MutationRate,
		TopRate:        h.config.Scheduler.TopRate,
		RouletteRate:   h.config.Scheduler.RouletteRate,
		Seed:           req.Seed,
	}
	if req.PopulationSize != nil {
		params.PopulationSize = *req.PopulationSize
	}
	if req.MaxGenerations != nil {
		params.MaxGenerations = *req.MaxGenerations
	}
	if req.MutationRate != nil {
		params.MutationRate = *req.MutationRate
	}

	// 上一次排课消耗后的可用性矩阵是本次排课的起点
	teacherMatrix, err := h.repository.GetAvailabilityMatrix(req.Department, req.Semester, repository.MatrixKindTeacher)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	labMatrix, err := h.repository.GetAvailabilityMatrix(req.Department, req.Semester, repository.MatrixKindLab)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	s, err := scheduler.New(cfg, params, teacherMatrix, labMatrix)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Scheduler.RunTimeout)*time.Second)
	defer cancel()

	result, err := s.Run(ctx)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 入库前先校验生成结果
	doubleSlot := make(map[string]bool)
	for _, subject := range cfg.LabSubjects {
		doubleSlot[subject] = true
	}
	for _, subject := range cfg.SpecialSubjects {
		doubleSlot[subject] = true
	}
	if err := utils.ValidateWeek(result.Best, cfg.WorkingDays, s.SectionBudgets(), cfg.SubjectQuota, doubleSlot); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	timetable := &domain.Timetable{
		Department: req.Department,
		Semester:   req.Semester,
		Best:       result.Best,
		BestScore:  result.BestScore,
	}
	if err := h.repository.InsertTimetable(timetable); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 持久化消耗后的矩阵，供下一次排课继续使用
	if err := h.repository.SaveAvailabilityMatrix(req.Department, req.Semester, repository.MatrixKindTeacher, result.TeacherMatrix); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := h.repository.SaveAvailabilityMatrix(req.Department, req.Semester, repository.MatrixKindLab, result.LabMatrix); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.cacheCurrentTimetable(timetable)
	h.notifyTimetablePublished(timetable)

	h.successResponse(w, r, "排课成功", timetable)
}

// buildSchedulerConfig 把数据库里的教师/科目/教室/班级组装成排课配置
func (h *Handler) buildSchedulerConfig() (*scheduler.Config, error) {
	teachers, err := h.repository.GetAllTeachers()
	if err != nil {
		return nil, err
	}
	subjects, err := h.repository.GetAllSubjects()
	if err != nil {
		return nil, err
	}
	rooms, err := h.repository.GetAllRooms()
	if err != nil {
		return nil, err
	}
	sections, err := h.repository.GetAllSections()
	if err != nil {
		return nil, err
	}

	cfg := &scheduler.Config{
		WorkingDays:           scheduler.DefaultWorkingDays(),
		TimeSlots:             scheduler.DefaultTimeSlots(),
		SubjectTeacherMapping: make(map[string][]string, len(subjects)),
		SubjectQuota:          make(map[string]int, len(subjects)),
		TeacherWorkload:       make(map[string]int, len(teachers)),
		TeacherPreferences:    make(map[string][]int, len(teachers)),
		TeacherDutyDays:       make(map[string][]string, len(teachers)),
		ClassroomCapacity:     make(map[string]int),
		LabCapacity:           make(map[string]int),
		SectionStrength:       make(map[string]int, len(sections)),
	}

	for _, teacher := range teachers {
		cfg.TeacherWorkload[teacher.Code] = int(teacher.WeeklyWorkload)
		preferences := make([]int, 0, len(teacher.PreferredSlots))
		for _, slot := range teacher.PreferredSlots {
			preferences = append(preferences, int(slot))
		}
		cfg.TeacherPreferences[teacher.Code] = preferences
		cfg.TeacherDutyDays[teacher.Code] = teacher.DutyDays
	}

	for _, subject := range subjects {
		cfg.SubjectTeacherMapping[subject.Code] = subject.TeacherCodes
		cfg.SubjectQuota[subject.Code] = int(subject.WeeklyQuota)
		if subject.IsLab {
			cfg.LabSubjects = append(cfg.LabSubjects, subject.Code)
		}
		if subject.IsSpecial {
			cfg.SpecialSubjects = append(cfg.SpecialSubjects, subject.Code)
		}
	}

	for _, room := range rooms {
		if room.IsLab {
			cfg.LabCapacity[room.Code] = int(room.Capacity)
		} else {
			cfg.ClassroomCapacity[room.Code] = int(room.Capacity)
		}
	}

	for _, section := range sections {
		cfg.SectionStrength[section.Name] = int(section.Strength)
	}

	return cfg, nil
}

// notifyTimetablePublished 给教务和管理员发送课表发布通知
// 通知失败只记录日志，不影响排课结果的返回
func (h *Handler) notifyTimetablePublished(timetable *domain.Timetable) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		slog.Error("发送课表发布通知失败", "error", err)
		return
	}

	for _, user := range users {
		if user.Role != domain.RoleAcademicOffice && user.Role != domain.RoleAdmin {
			continue
		}

		mailMessage := domain.MailMessage{
			Type: "timetable_published",
			To:   user.Email,
			Data: domain.TimetablePublishedMailData{
				FullName:   user.FullName,
				Department: timetable.Department,
				Semester:   timetable.Semester,
				BestScore:  timetable.BestScore,
			},
		}

		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			slog.Error("发送课表发布通知失败", "to", user.Email, "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		err = h.mailChannel.PublishWithContext(
			ctx,
			"",
			"email_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		)
		cancel()
		if err != nil {
			slog.Error("发送课表发布通知失败", "to", user.Email, "error", err)
		}
	}
}

// ResetAvailability 清空可用性矩阵，下一次排课从全空闲状态开始
func (h *Handler) ResetAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Department string `json:"department" validate:"required"`
		Semester   int32  `json:"semester" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.ResetAvailabilityMatrices(req.Department, req.Semester); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "可用性矩阵已重置", nil)
}

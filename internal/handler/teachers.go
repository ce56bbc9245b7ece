package handler

import (
	"bytes"
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campus-dev/timetable-manager/backend/internal/converter"
	"github.com/campus-dev/timetable-manager/backend/internal/domain"
	"github.com/campus-dev/timetable-manager/backend/internal/scheduler"
)

func (h *Handler) GetAllTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.repository.GetAllTeachers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取教师列表成功", teachers)
}

func (h *Handler) GetTeacher(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherCtx).(*domain.Teacher)
	h.successResponse(w, r, "获取教师信息成功", teacher)
}

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code           string   `json:"code" validate:"required"`
		FullName       string   `json:"fullName" validate:"required"`
		PreferredSlots []int32  `json:"preferredSlots" validate:"dive,min=1,max=7"`
		DutyDays       []string `json:"dutyDays"`
		WeeklyWorkload int32    `json:"weeklyWorkload" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teacher := &domain.Teacher{
		Code:           req.Code,
		FullName:       req.FullName,
		PreferredSlots: req.PreferredSlots,
		DutyDays:       req.DutyDays,
		WeeklyWorkload: req.WeeklyWorkload,
	}

	if err := h.repository.CreateTeacher(teacher); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "teachers_code_key":
				h.badRequest(w, r, errors.New("教师工号已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "教师创建成功", teacher)
}

func (h *Handler) UpdateTeacher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName       *string  `json:"fullName"`
		PreferredSlots []int32  `json:"preferredSlots" validate:"omitempty,dive,min=1,max=7"`
		DutyDays       []string `json:"dutyDays"`
		WeeklyWorkload *int32   `json:"weeklyWorkload" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	teacher := r.Context().Value(TeacherCtx).(*domain.Teacher)

	if req.FullName != nil {
		teacher.FullName = *req.FullName
	}
	if req.PreferredSlots != nil {
		teacher.PreferredSlots = req.PreferredSlots
	}
	if req.DutyDays != nil {
		teacher.DutyDays = req.DutyDays
	}
	if req.WeeklyWorkload != nil {
		teacher.WeeklyWorkload = *req.WeeklyWorkload
	}

	if err := h.repository.UpdateTeacher(teacher); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新教师信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新教师信息成功", teacher)
}

func (h *Handler) DeleteTeacher(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherCtx).(*domain.Teacher)

	if err := h.repository.DeleteTeacher(teacher.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除教师成功", nil)
}

// GetTeacherTimetable 从现行课表推导某位教师自己的课表
// 查询参数 format=csv 时直接返回 CSV 文件
func (h *Handler) GetTeacherTimetable(w http.ResponseWriter, r *http.Request) {
	teacher := r.Context().Value(TeacherCtx).(*domain.Teacher)

	department := r.URL.Query().Get("department")
	semester, err := h.readSemesterParam(r)
	if err != nil {
		h.errorResponse(w, r, "学期无效")
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

	schedule := domain.Schedule{"Week 1": timetable.Best}
	view := converter.TeacherView(schedule, scheduler.DefaultWorkingDays())

	dayEntries, exists := view[teacher.Code]
	if !exists {
		h.successResponse(w, r, "该教师在现行课表中没有任何课", nil)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		var buf bytes.Buffer
		if err := converter.ViewToCSV(dayEntries, scheduler.DefaultWorkingDays(), scheduler.DefaultTimeSlots(), &buf); err != nil {
			h.internalServerError(w, r, err)
			return
		}

		h.csvAttachment(w, teacher.Code+".csv", buf.Bytes())
		return
	}

	h.successResponse(w, r, "获取教师课表成功", dayEntries)
}

package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func (h *Handler) GetAllSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.repository.GetAllSubjects()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取科目列表成功", subjects)
}

func (h *Handler) GetSubject(w http.ResponseWriter, r *http.Request) {
	subject := r.Context().Value(SubjectCtx).(*domain.Subject)
	h.successResponse(w, r, "获取科目信息成功", subject)
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code         string   `json:"code" validate:"required"`
		Name         string   `json:"name" validate:"required"`
		WeeklyQuota  int32    `json:"weeklyQuota" validate:"required,min=1"`
		IsLab        bool     `json:"isLab"`
		IsSpecial    bool     `json:"isSpecial"`
		TeacherCodes []string `json:"teacherCodes" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	subject := &domain.Subject{
		Code:         req.Code,
		Name:         req.Name,
		WeeklyQuota:  req.WeeklyQuota,
		IsLab:        req.IsLab,
		IsSpecial:    req.IsSpecial,
		TeacherCodes: req.TeacherCodes,
	}

	if err := h.repository.CreateSubject(subject); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "subjects_code_key":
				h.badRequest(w, r, errors.New("科目编号已存在"))
			case pgErr.ConstraintName == "subject_teachers_teacher_code_fkey":
				h.badRequest(w, r, errors.New("任课教师不存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "科目创建成功", subject)
}

func (h *Handler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         *string  `json:"name"`
		WeeklyQuota  *int32   `json:"weeklyQuota" validate:"omitempty,min=1"`
		IsLab        *bool    `json:"isLab"`
		IsSpecial    *bool    `json:"isSpecial"`
		TeacherCodes []string `json:"teacherCodes" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	subject := r.Context().Value(SubjectCtx).(*domain.Subject)

	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.WeeklyQuota != nil {
		subject.WeeklyQuota = *req.WeeklyQuota
	}
	if req.IsLab != nil {
		subject.IsLab = *req.IsLab
	}
	if req.IsSpecial != nil {
		subject.IsSpecial = *req.IsSpecial
	}
	if req.TeacherCodes != nil {
		subject.TeacherCodes = req.TeacherCodes
	}

	if err := h.repository.UpdateSubject(subject); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新科目失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新科目成功", subject)
}

func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	subject := r.Context().Value(SubjectCtx).(*domain.Subject)

	if err := h.repository.DeleteSubject(subject.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除科目成功", nil)
}

package handler

import (
	"net/http"

	"github.com/campus-dev/timetable-manager/backend/internal/allocation"
	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func (h *Handler) GetAllSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.repository.GetAllSections()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班级列表成功", sections)
}

// AllocateSections 按属性分数把全体学生重新分班
func (h *Handler) AllocateSections(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClassStrength int `json:"classStrength" validate:"required,min=1"`
		TopPercentage int `json:"topPercentage" validate:"omitempty,min=1,max=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	studentPtrs, err := h.repository.GetAllStudents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(studentPtrs) == 0 {
		h.errorResponse(w, r, "还没有任何学生，无法分班")
		return
	}

	students := make([]domain.Student, len(studentPtrs))
	for i, student := range studentPtrs {
		students[i] = *student
	}

	opts := []allocation.Option{allocation.WithClassStrength(req.ClassStrength)}
	if req.TopPercentage != 0 {
		opts = append(opts, allocation.WithTopPercentage(req.TopPercentage))
	}

	sections, err := allocation.New(opts...).Divide(students)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.ReplaceSections(sections, students); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "分班成功", sections)
}

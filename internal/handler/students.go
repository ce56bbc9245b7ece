package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gocarina/gocsv"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.repository.GetAllStudents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取学生列表成功", students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student := r.Context().Value(StudentCtx).(*domain.Student)
	h.successResponse(w, r, "获取学生信息成功", student)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RollNo    string  `json:"rollNo" validate:"required"`
		FullName  string  `json:"fullName" validate:"required"`
		CGPA      float64 `json:"cgpa" validate:"min=0,max=10"`
		IsHostler bool    `json:"isHostler"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	student := &domain.Student{
		RollNo:    req.RollNo,
		FullName:  req.FullName,
		CGPA:      req.CGPA,
		IsHostler: req.IsHostler,
	}

	if err := h.repository.CreateStudent(student); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "students_roll_no_key":
				h.badRequest(w, r, errors.New("学号已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "学生创建成功", student)
}

// ImportStudents 从上传的 CSV 文件批量导入学生
// 列名：roll_no, full_name, cgpa, is_hostler
func (h *Handler) ImportStudents(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		h.errorResponse(w, r, "缺少上传文件")
		return
	}
	defer file.Close()

	var rows []*struct {
		RollNo    string  `csv:"roll_no"`
		FullName  string  `csv:"full_name"`
		CGPA      float64 `csv:"cgpa"`
		IsHostler bool    `csv:"is_hostler"`
	}
	if err := gocsv.Unmarshal(file, &rows); err != nil {
		h.errorResponse(w, r, "CSV 文件解析失败")
		return
	}
	if len(rows) == 0 {
		h.errorResponse(w, r, "上传的文件中没有任何学生")
		return
	}

	students := make([]*domain.Student, 0, len(rows))
	for _, row := range rows {
		if row.RollNo == "" || row.FullName == "" {
			h.errorResponse(w, r, "存在缺少学号或姓名的行")
			return
		}
		students = append(students, &domain.Student{
			RollNo:    row.RollNo,
			FullName:  row.FullName,
			CGPA:      row.CGPA,
			IsHostler: row.IsHostler,
		})
	}

	if err := h.repository.CreateStudents(students); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "students_roll_no_key":
				h.badRequest(w, r, errors.New("存在重复的学号"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "学生导入成功", students)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName  *string  `json:"fullName"`
		CGPA      *float64 `json:"cgpa" validate:"omitempty,min=0,max=10"`
		IsHostler *bool    `json:"isHostler"`
		Section   *string  `json:"section"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	student := r.Context().Value(StudentCtx).(*domain.Student)

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.CGPA != nil {
		student.CGPA = *req.CGPA
	}
	if req.IsHostler != nil {
		student.IsHostler = *req.IsHostler
	}
	if req.Section != nil {
		student.Section = *req.Section
	}

	if err := h.repository.UpdateStudent(student); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新学生信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新学生信息成功", student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	student := r.Context().Value(StudentCtx).(*domain.Student)

	if err := h.repository.DeleteStudent(student.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除学生成功", nil)
}

package repository

import (
	"context"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) GetAllStudents() ([]*domain.Student, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, roll_no, full_name, cgpa, is_hostler, section, created_at, version
		FROM students ORDER BY roll_no
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]*domain.Student, 0)
	for rows.Next() {
		student := &domain.Student{}
		dst := []any{&student.ID, &student.RollNo, &student.FullName, &student.CGPA, &student.IsHostler, &student.Section, &student.CreatedAt, &student.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

func (r *Repository) GetStudentByID(id int64) (*domain.Student, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT roll_no, full_name, cgpa, is_hostler, section, created_at, version
		FROM students WHERE id = $1
	`

	student := &domain.Student{
		ID: id,
	}

	dst := []any{&student.RollNo, &student.FullName, &student.CGPA, &student.IsHostler, &student.Section, &student.CreatedAt, &student.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return student, nil
}

func (r *Repository) CreateStudent(student *domain.Student) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO students (roll_no, full_name, cgpa, is_hostler, section)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{student.RollNo, student.FullName, student.CGPA, student.IsHostler, student.Section}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&student.ID, &student.CreatedAt, &student.Version); err != nil {
		return err
	}

	return nil
}

// CreateStudents 批量导入学生，单个事务内全部成功或全部失败
func (r *Repository) CreateStudents(students []*domain.Student) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, student := range students {
		query := `
			INSERT INTO students (roll_no, full_name, cgpa, is_hostler, section)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, version
		`
		args := []any{student.RollNo, student.FullName, student.CGPA, student.IsHostler, student.Section}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&student.ID, &student.CreatedAt, &student.Version); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) UpdateStudent(student *domain.Student) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE students
		SET
			full_name = $1,
			cgpa = $2,
			is_hostler = $3,
			section = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING roll_no, created_at, version
	`

	args := []any{student.FullName, student.CGPA, student.IsHostler, student.Section, student.ID, student.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&student.RollNo, &student.CreatedAt, &student.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteStudent(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM students WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

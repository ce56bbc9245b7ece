package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) GetAllSubjects() ([]*domain.Subject, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.code,
			s.name,
			s.weekly_quota,
			s.is_lab,
			s.is_special,
			s.created_at,
			s.version,
			st.teacher_code
		FROM subjects s
		LEFT JOIN subject_teachers st ON s.id = st.subject_id
		ORDER BY s.id, st.teacher_code
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjectsMap := make(map[int64]*domain.Subject)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID          int64
			Code        string
			Name        string
			WeeklyQuota int32
			IsLab       bool
			IsSpecial   bool
			CreatedAt   time.Time
			Version     int32

			TeacherCode sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.Code,
			&row.Name,
			&row.WeeklyQuota,
			&row.IsLab,
			&row.IsSpecial,
			&row.CreatedAt,
			&row.Version,
			&row.TeacherCode,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		subject, exists := subjectsMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个科目，需要在 map 中初始化
			subject = &domain.Subject{
				ID:           row.ID,
				Code:         row.Code,
				Name:         row.Name,
				WeeklyQuota:  row.WeeklyQuota,
				IsLab:        row.IsLab,
				IsSpecial:    row.IsSpecial,
				CreatedAt:    row.CreatedAt,
				Version:      row.Version,
				TeacherCodes: make([]string, 0),
			}
			subjectsMap[row.ID] = subject
			order = append(order, row.ID)
		}

		if row.TeacherCode.Valid {
			subject.TeacherCodes = append(subject.TeacherCodes, row.TeacherCode.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	subjects := make([]*domain.Subject, 0, len(order))
	for _, id := range order {
		subjects = append(subjects, subjectsMap[id])
	}

	return subjects, nil
}

func (r *Repository) GetSubjectByID(id int64) (*domain.Subject, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.code,
			s.name,
			s.weekly_quota,
			s.is_lab,
			s.is_special,
			s.created_at,
			s.version,
			st.teacher_code
		FROM subjects s
		LEFT JOIN subject_teachers st ON s.id = st.subject_id
		WHERE s.id = $1
		ORDER BY st.teacher_code
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subject := &domain.Subject{
		ID:           id,
		TeacherCodes: make([]string, 0),
	}
	found := false

	for rows.Next() {
		var row struct {
			Code        string
			Name        string
			WeeklyQuota int32
			IsLab       bool
			IsSpecial   bool
			CreatedAt   time.Time
			Version     int32

			TeacherCode sql.NullString
		}

		dst := []any{&row.Code, &row.Name, &row.WeeklyQuota, &row.IsLab, &row.IsSpecial, &row.CreatedAt, &row.Version, &row.TeacherCode}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			subject.Code = row.Code
			subject.Name = row.Name
			subject.WeeklyQuota = row.WeeklyQuota
			subject.IsLab = row.IsLab
			subject.IsSpecial = row.IsSpecial
			subject.CreatedAt = row.CreatedAt
			subject.Version = row.Version
			found = true
		}

		if row.TeacherCode.Valid {
			subject.TeacherCodes = append(subject.TeacherCodes, row.TeacherCode.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, sql.ErrNoRows
	}

	return subject, nil
}

func (r *Repository) CreateSubject(subject *domain.Subject) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO subjects (code, name, weekly_quota, is_lab, is_special)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	params := []any{subject.Code, subject.Name, subject.WeeklyQuota, subject.IsLab, subject.IsSpecial}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&subject.ID, &subject.CreatedAt, &subject.Version); err != nil {
		return err
	}

	for _, code := range subject.TeacherCodes {
		query = `
			INSERT INTO subject_teachers (subject_id, teacher_code)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, subject.ID, code); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) UpdateSubject(subject *domain.Subject) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE subjects
		SET
			name = $1,
			weekly_quota = $2,
			is_lab = $3,
			is_special = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING code, created_at, version
	`
	params := []any{subject.Name, subject.WeeklyQuota, subject.IsLab, subject.IsSpecial, subject.ID, subject.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&subject.Code, &subject.CreatedAt, &subject.Version); err != nil {
		return err
	}

	// 任课教师列表整体重建
	if _, err := tx.ExecContext(ctx, `DELETE FROM subject_teachers WHERE subject_id = $1`, subject.ID); err != nil {
		return err
	}
	for _, code := range subject.TeacherCodes {
		query = `
			INSERT INTO subject_teachers (subject_id, teacher_code)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, subject.ID, code); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) DeleteSubject(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM subjects WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) GetAllTeachers() ([]*domain.Teacher, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			t.id,
			t.code,
			t.full_name,
			t.weekly_workload,
			t.created_at,
			t.version,
			tps.slot,
			tdd.day
		FROM teachers t
		LEFT JOIN teacher_preferred_slots tps ON t.id = tps.teacher_id
		LEFT JOIN teacher_duty_days tdd ON t.id = tdd.teacher_id
		ORDER BY t.id, tps.slot, tdd.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teachersMap := make(map[int64]*domain.Teacher)
	order := make([]int64, 0)
	seenSlots := make(map[int64]map[int32]bool)
	seenDays := make(map[int64]map[string]bool)

	for rows.Next() {
		var row struct {
			ID             int64
			Code           string
			FullName       string
			WeeklyWorkload int32
			CreatedAt      time.Time
			Version        int32

			Slot sql.NullInt32
			Day  sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.Code,
			&row.FullName,
			&row.WeeklyWorkload,
			&row.CreatedAt,
			&row.Version,
			&row.Slot,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		teacher, exists := teachersMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这位教师，需要在 map 中初始化
			teacher = &domain.Teacher{
				ID:             row.ID,
				Code:           row.Code,
				FullName:       row.FullName,
				WeeklyWorkload: row.WeeklyWorkload,
				CreatedAt:      row.CreatedAt,
				Version:        row.Version,
				PreferredSlots: make([]int32, 0),
				DutyDays:       make([]string, 0),
			}
			teachersMap[row.ID] = teacher
			order = append(order, row.ID)
			seenSlots[row.ID] = make(map[int32]bool)
			seenDays[row.ID] = make(map[string]bool)
		}

		// JOIN 会产生笛卡尔积，slot 和 day 都要去重
		if row.Slot.Valid && !seenSlots[row.ID][row.Slot.Int32] {
			seenSlots[row.ID][row.Slot.Int32] = true
			teacher.PreferredSlots = append(teacher.PreferredSlots, row.Slot.Int32)
		}
		if row.Day.Valid && !seenDays[row.ID][row.Day.String] {
			seenDays[row.ID][row.Day.String] = true
			teacher.DutyDays = append(teacher.DutyDays, row.Day.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	teachers := make([]*domain.Teacher, 0, len(order))
	for _, id := range order {
		teachers = append(teachers, teachersMap[id])
	}

	return teachers, nil
}

func (r *Repository) GetTeacherByID(id int64) (*domain.Teacher, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			t.code,
			t.full_name,
			t.weekly_workload,
			t.created_at,
			t.version,
			tps.slot,
			tdd.day
		FROM teachers t
		LEFT JOIN teacher_preferred_slots tps ON t.id = tps.teacher_id
		LEFT JOIN teacher_duty_days tdd ON t.id = tdd.teacher_id
		WHERE t.id = $1
		ORDER BY tps.slot, tdd.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teacher := &domain.Teacher{
		ID:             id,
		PreferredSlots: make([]int32, 0),
		DutyDays:       make([]string, 0),
	}
	seenSlots := make(map[int32]bool)
	seenDays := make(map[string]bool)
	found := false

	for rows.Next() {
		var row struct {
			Code           string
			FullName       string
			WeeklyWorkload int32
			CreatedAt      time.Time
			Version        int32

			Slot sql.NullInt32
			Day  sql.NullString
		}

		dst := []any{&row.Code, &row.FullName, &row.WeeklyWorkload, &row.CreatedAt, &row.Version, &row.Slot, &row.Day}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			teacher.Code = row.Code
			teacher.FullName = row.FullName
			teacher.WeeklyWorkload = row.WeeklyWorkload
			teacher.CreatedAt = row.CreatedAt
			teacher.Version = row.Version
			found = true
		}

		if row.Slot.Valid && !seenSlots[row.Slot.Int32] {
			seenSlots[row.Slot.Int32] = true
			teacher.PreferredSlots = append(teacher.PreferredSlots, row.Slot.Int32)
		}
		if row.Day.Valid && !seenDays[row.Day.String] {
			seenDays[row.Day.String] = true
			teacher.DutyDays = append(teacher.DutyDays, row.Day.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, sql.ErrNoRows
	}

	return teacher, nil
}

func (r *Repository) CreateTeacher(teacher *domain.Teacher) error {
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
		INSERT INTO teachers (code, full_name, weekly_workload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`
	params := []any{teacher.Code, teacher.FullName, teacher.WeeklyWorkload}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&teacher.ID, &teacher.CreatedAt, &teacher.Version); err != nil {
		return err
	}

	if err := insertTeacherChildren(ctx, tx, teacher); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) UpdateTeacher(teacher *domain.Teacher) error {
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
		UPDATE teachers
		SET
			full_name = $1,
			weekly_workload = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING code, created_at, version
	`
	params := []any{teacher.FullName, teacher.WeeklyWorkload, teacher.ID, teacher.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&teacher.Code, &teacher.CreatedAt, &teacher.Version); err != nil {
		return err
	}

	// 偏好时间段和可排课工作日整体重建
	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_preferred_slots WHERE teacher_id = $1`, teacher.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_duty_days WHERE teacher_id = $1`, teacher.ID); err != nil {
		return err
	}
	if err := insertTeacherChildren(ctx, tx, teacher); err != nil {
		return err
	}

	return tx.Commit()
}

func insertTeacherChildren(ctx context.Context, tx *sql.Tx, teacher *domain.Teacher) error {
	for _, slot := range teacher.PreferredSlots {
		query := `
			INSERT INTO teacher_preferred_slots (teacher_id, slot)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, teacher.ID, slot); err != nil {
			return err
		}
	}

	for _, day := range teacher.DutyDays {
		query := `
			INSERT INTO teacher_duty_days (teacher_id, day)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, teacher.ID, day); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) DeleteTeacher(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM teachers WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

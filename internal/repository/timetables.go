package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

// InsertTimetable 保存一份新生成的课表并将它设为现行课表
// 同一（院系, 学期）之前的现行课表在同一个事务里转为历史
func (r *Repository) InsertTimetable(timetable *domain.Timetable) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	best, err := json.Marshal(timetable.Best)
	if err != nil {
		return err
	}

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先归档旧的现行课表
	query := `
		UPDATE timetables
		SET
			is_current = FALSE,
			version = version + 1
		WHERE department = $1 AND semester = $2 AND is_current = TRUE
	`
	if _, err := tx.ExecContext(ctx, query, timetable.Department, timetable.Semester); err != nil {
		return err
	}

	query = `
		INSERT INTO timetables (department, semester, best, best_score, is_current)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at, version
	`
	params := []any{timetable.Department, timetable.Semester, best, timetable.BestScore}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&timetable.ID, &timetable.CreatedAt, &timetable.Version); err != nil {
		return err
	}
	timetable.IsCurrent = true

	return tx.Commit()
}

func (r *Repository) GetCurrentTimetable(department string, semester int32) (*domain.Timetable, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, best, best_score, created_at, version
		FROM timetables
		WHERE department = $1 AND semester = $2 AND is_current = TRUE
	`

	timetable := &domain.Timetable{
		Department: department,
		Semester:   semester,
		IsCurrent:  true,
	}

	var best []byte
	dst := []any{&timetable.ID, &best, &timetable.BestScore, &timetable.CreatedAt, &timetable.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, department, semester).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(best, &timetable.Best); err != nil {
		return nil, err
	}

	return timetable, nil
}

// GetTimetableHistory 返回某个（院系, 学期）的历史课表，新的在前
func (r *Repository) GetTimetableHistory(department string, semester int32) ([]*domain.Timetable, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, best, best_score, is_current, created_at, version
		FROM timetables
		WHERE department = $1 AND semester = $2
		ORDER BY created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, department, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timetables := make([]*domain.Timetable, 0)
	for rows.Next() {
		timetable := &domain.Timetable{
			Department: department,
			Semester:   semester,
		}

		var best []byte
		dst := []any{&timetable.ID, &best, &timetable.BestScore, &timetable.IsCurrent, &timetable.CreatedAt, &timetable.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(best, &timetable.Best); err != nil {
			return nil, err
		}

		timetables = append(timetables, timetable)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return timetables, nil
}

func (r *Repository) GetTimetableByID(id int64) (*domain.Timetable, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT department, semester, best, best_score, is_current, created_at, version
		FROM timetables WHERE id = $1
	`

	timetable := &domain.Timetable{
		ID: id,
	}

	var best []byte
	dst := []any{&timetable.Department, &timetable.Semester, &best, &timetable.BestScore, &timetable.IsCurrent, &timetable.CreatedAt, &timetable.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(best, &timetable.Best); err != nil {
		return nil, err
	}

	return timetable, nil
}

package repository

import (
	"context"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) GetAllSections() ([]*domain.Section, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, strength, created_at, version FROM sections ORDER BY name
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := make([]*domain.Section, 0)
	for rows.Next() {
		section := &domain.Section{}
		dst := []any{&section.ID, &section.Name, &section.Strength, &section.CreatedAt, &section.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}

// ReplaceSections 用一次分班的结果整体替换班级表，并同步每个学生的分班字段
// 分班是对全体学生的重新划分，旧班级保留下来没有意义
func (r *Repository) ReplaceSections(sections []domain.Section, students []domain.Student) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sections`); err != nil {
		return err
	}

	for i := range sections {
		query := `
			INSERT INTO sections (name, strength)
			VALUES ($1, $2)
			RETURNING id, created_at, version
		`
		if err := tx.QueryRowContext(ctx, query, sections[i].Name, sections[i].Strength).Scan(&sections[i].ID, &sections[i].CreatedAt, &sections[i].Version); err != nil {
			return err
		}
	}

	for _, student := range students {
		query := `
			UPDATE students
			SET
				section = $1,
				version = version + 1
			WHERE roll_no = $2
		`
		if _, err := tx.ExecContext(ctx, query, student.Section, student.RollNo); err != nil {
			return err
		}
	}

	return tx.Commit()
}

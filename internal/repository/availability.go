package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

// 可用性矩阵的种类：教师矩阵和实验室矩阵各存一份
const (
	MatrixKindTeacher = "teacher"
	MatrixKindLab     = "lab"
)

// GetAvailabilityMatrix 读取某个（院系, 学期）持久化的可用性矩阵
// 还没有保存过时返回 nil，调用方按全空闲处理
func (r *Repository) GetAvailabilityMatrix(department string, semester int32, kind string) (domain.AvailabilityMatrix, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT data FROM availability_matrices
		WHERE department = $1 AND semester = $2 AND kind = $3
	`

	var data []byte
	if err := r.dbpool.QueryRowContext(ctx, query, department, semester, kind).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var matrix domain.AvailabilityMatrix
	if err := json.Unmarshal(data, &matrix); err != nil {
		return nil, err
	}

	return matrix, nil
}

// SaveAvailabilityMatrix 保存排课运行后的可用性矩阵，存在则覆盖
func (r *Repository) SaveAvailabilityMatrix(department string, semester int32, kind string, matrix domain.AvailabilityMatrix) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	data, err := json.Marshal(matrix)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO availability_matrices (department, semester, kind, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (department, semester, kind)
		DO UPDATE SET data = EXCLUDED.data, version = availability_matrices.version + 1
	`

	_, err = r.dbpool.ExecContext(ctx, query, department, semester, kind, data)
	return err
}

// ResetAvailabilityMatrices 清空某个（院系, 学期）的矩阵，下一次排课从全空闲开始
func (r *Repository) ResetAvailabilityMatrices(department string, semester int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM availability_matrices WHERE department = $1 AND semester = $2
	`

	_, err := r.dbpool.ExecContext(ctx, query, department, semester)
	return err
}

package repository

import (
	"context"
	"time"

	"github.com/campus-dev/timetable-manager/backend/internal/domain"
)

func (r *Repository) GetAllRooms() ([]*domain.Room, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, code, capacity, is_lab, created_at, version FROM rooms ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*domain.Room, 0)
	for rows.Next() {
		room := &domain.Room{}
		dst := []any{&room.ID, &room.Code, &room.Capacity, &room.IsLab, &room.CreatedAt, &room.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *Repository) GetRoomByID(id int64) (*domain.Room, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT code, capacity, is_lab, created_at, version FROM rooms WHERE id = $1
	`

	room := &domain.Room{
		ID: id,
	}

	dst := []any{&room.Code, &room.Capacity, &room.IsLab, &room.CreatedAt, &room.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return room, nil
}

func (r *Repository) CreateRoom(room *domain.Room) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO rooms (code, capacity, is_lab)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	args := []any{room.Code, room.Capacity, room.IsLab}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&room.ID, &room.CreatedAt, &room.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateRoom(room *domain.Room) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE rooms
		SET
			capacity = $1,
			is_lab = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING code, created_at, version
	`

	args := []any{room.Capacity, room.IsLab, room.ID, room.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&room.Code, &room.CreatedAt, &room.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRoom(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM rooms WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

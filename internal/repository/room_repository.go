package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/siakad-go/room-booking-api/internal/models"
)

const roomColumns = `id, name, building_id, modulation_key, created_at`

// RoomRepository reads the room directory. The directory is owned by the
// facilities module; this engine never writes to it.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms with optional filtering and pagination.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	base := "FROM rooms WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BuildingID != nil {
		conditions = append(conditions, fmt.Sprintf("building_id = $%d", len(args)+1))
		args = append(args, *filter.BuildingID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"id":         true,
		"name":       true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "id"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", roomColumns, base, sortBy, order, size, offset)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}

	return rooms, total, nil
}

// FindByID loads a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE id = $1", roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListIDs returns all room ids ordered ascending. The scheduler falls back
// to this ordering when a request carries no explicit candidate set.
func (r *RoomRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM rooms ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list room ids: %w", err)
	}
	return ids, nil
}

// FilterExisting returns the subset of the given ids that exist in the
// directory, ordered ascending.
func (r *RoomRepository) FilterExisting(ctx context.Context, ids []int64) ([]int64, error) {
	var existing []int64
	if err := r.db.SelectContext(ctx, &existing, `SELECT id FROM rooms WHERE id = ANY($1) ORDER BY id ASC`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("filter room ids: %w", err)
	}
	return existing, nil
}

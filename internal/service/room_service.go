package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/siakad-go/room-booking-api/internal/models"
	appErrors "github.com/siakad-go/room-booking-api/pkg/errors"
)

type roomReader interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, id int64) (*models.Room, error)
}

type roomCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cachedRoomList struct {
	Rooms []models.Room `json:"rooms"`
	Total int           `json:"total"`
}

// RoomService serves the read-only room directory, caching list and lookup
// results in Redis. The directory changes rarely, so a short TTL is enough;
// booking correctness never depends on cache freshness.
type RoomService struct {
	repo   roomReader
	cache  roomCache
	logger *zap.Logger
	ttl    time.Duration
}

// NewRoomService wires room directory dependencies. cache may be nil.
func NewRoomService(repo roomReader, cache roomCache, logger *zap.Logger, ttl time.Duration) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RoomService{repo: repo, cache: cache, logger: logger, ttl: ttl}
}

// List returns rooms with pagination metadata, serving from cache when possible.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	key := roomListCacheKey(filter)
	if s.cache != nil {
		var cached cachedRoomList
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Rooms, paginationFor(filter, cached.Total), nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("room list cache read failed", zap.Error(err))
		}
	}

	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to list rooms")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedRoomList{Rooms: rooms, Total: total}, s.ttl); err != nil {
			s.logger.Warn("room list cache write failed", zap.Error(err))
		}
	}
	return rooms, paginationFor(filter, total), nil
}

// Get loads a single room.
func (s *RoomService) Get(ctx context.Context, id int64) (*models.Room, error) {
	key := fmt.Sprintf("rooms:id:%d", id)
	if s.cache != nil {
		var cached models.Room
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("room cache read failed", zap.Error(err))
		}
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("room %d not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageUnavailable.Code, appErrors.ErrStorageUnavailable.Status, "failed to load room")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, room, s.ttl); err != nil {
			s.logger.Warn("room cache write failed", zap.Error(err))
		}
	}
	return room, nil
}

func roomListCacheKey(filter models.RoomFilter) string {
	building := int64(0)
	if filter.BuildingID != nil {
		building = *filter.BuildingID
	}
	return fmt.Sprintf("rooms:list:%d:%s:%d:%d:%s:%s",
		building, filter.Search, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}

func paginationFor(filter models.RoomFilter, total int) *models.Pagination {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

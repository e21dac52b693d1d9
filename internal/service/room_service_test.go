package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siakad-go/room-booking-api/internal/models"
	appErrors "github.com/siakad-go/room-booking-api/pkg/errors"
)

type roomReaderStub struct {
	rooms     []models.Room
	listCalls int
	getCalls  int
}

func (s *roomReaderStub) List(_ context.Context, _ models.RoomFilter) ([]models.Room, int, error) {
	s.listCalls++
	return s.rooms, len(s.rooms), nil
}

func (s *roomReaderStub) FindByID(_ context.Context, id int64) (*models.Room, error) {
	s.getCalls++
	for _, room := range s.rooms {
		if room.ID == id {
			clone := room
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

type cacheStub struct {
	entries map[string][]byte
}

func newCacheStub() *cacheStub {
	return &cacheStub{entries: make(map[string][]byte)}
}

func (s *cacheStub) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.entries[key] = raw
	return nil
}

func TestRoomServiceListCaches(t *testing.T) {
	reader := &roomReaderStub{rooms: []models.Room{{ID: 1, Name: "Lab A"}}}
	svc := NewRoomService(reader, newCacheStub(), nil, time.Minute)

	rooms, pagination, err := svc.List(context.Background(), models.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, 1, pagination.TotalCount)

	rooms, _, err = svc.List(context.Background(), models.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, 1, reader.listCalls, "second identical list is served from cache")
}

func TestRoomServiceListCacheKeyVariesByFilter(t *testing.T) {
	reader := &roomReaderStub{rooms: []models.Room{{ID: 1, Name: "Lab A"}}}
	svc := NewRoomService(reader, newCacheStub(), nil, time.Minute)

	_, _, err := svc.List(context.Background(), models.RoomFilter{Search: "lab"})
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), models.RoomFilter{Search: "aula"})
	require.NoError(t, err)
	assert.Equal(t, 2, reader.listCalls, "different filters miss each other's cache entries")
}

func TestRoomServiceGet(t *testing.T) {
	reader := &roomReaderStub{rooms: []models.Room{{ID: 1, Name: "Lab A"}}}
	svc := NewRoomService(reader, newCacheStub(), nil, time.Minute)

	room, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Lab A", room.Name)

	room, err = svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Lab A", room.Name)
	assert.Equal(t, 1, reader.getCalls, "repeat lookups hit the cache")

	_, err = svc.Get(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRoomServiceWorksWithoutCache(t *testing.T) {
	reader := &roomReaderStub{rooms: []models.Room{{ID: 1, Name: "Lab A"}}}
	svc := NewRoomService(reader, nil, nil, 0)

	rooms, _, err := svc.List(context.Background(), models.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

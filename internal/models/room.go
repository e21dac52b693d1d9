package models

import "time"

// Room is a bookable physical room from the directory.
// ModulationKey is an access-control token consumed by the check-in
// collaborator; the scheduling engine carries it through untouched.
type Room struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	BuildingID    *int64    `db:"building_id" json:"building_id,omitempty"`
	ModulationKey *string   `db:"modulation_key" json:"modulation_key,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// RoomFilter describes query params for listing rooms.
type RoomFilter struct {
	BuildingID *int64
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

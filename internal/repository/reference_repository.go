package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReferenceRepository answers existence checks for foreign references owned
// by the academic module (courses, terms, sections, groups).
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new reference repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var found bool
	if err := r.db.GetContext(ctx, &found, query, id); err != nil {
		return false, err
	}
	return found, nil
}

// CourseExists reports whether a course row exists.
func (r *ReferenceRepository) CourseExists(ctx context.Context, id int64) (bool, error) {
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check course exists: %w", err)
	}
	return found, nil
}

// TermExists reports whether a term row exists.
func (r *ReferenceRepository) TermExists(ctx context.Context, id int64) (bool, error) {
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM terms WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check term exists: %w", err)
	}
	return found, nil
}

// SectionExists reports whether a section row exists.
func (r *ReferenceRepository) SectionExists(ctx context.Context, id int64) (bool, error) {
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM sections WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check section exists: %w", err)
	}
	return found, nil
}

// GroupExists reports whether a group row exists.
func (r *ReferenceRepository) GroupExists(ctx context.Context, id int64) (bool, error) {
	found, err := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check group exists: %w", err)
	}
	return found, nil
}

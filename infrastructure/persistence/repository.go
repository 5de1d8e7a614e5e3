package persistence

import (
	"context"
	"errors"
	"time"

	"storeassist/domain/model"
	"storeassist/domain/shared"

	"gorm.io/gorm"
)

// EntityPtr constrains PT to "pointer to T implementing model.Entity".
// The compiler infers PT at every RepoFor call site, so repositories are
// built without any runtime type lookup.
type EntityPtr[T any] interface {
	*T
	model.Entity
}

// Repository is a type-scoped facade over the unit of work's session.
// Mutations are staged in memory and written out by SaveChanges; reads
// always exclude soft-deleted rows. Instances are cached per unit of
// work, so every holder of the same type shares the same pending set.
type Repository[T any, PT EntityPtr[T]] struct {
	uow      *UnitOfWork
	adds     []PT
	updates  []PT
	removals []PT
}

func (r *Repository[T, PT]) conn(ctx context.Context) *gorm.DB {
	return r.uow.conn().WithContext(ctx)
}

// ByID looks up one live row. A missing or soft-deleted row yields a
// shared.ErrNotFound domain error.
func (r *Repository[T, PT]) ByID(ctx context.Context, id uint) (PT, error) {
	var e T
	err := r.conn(ctx).Where("id = ? AND deleted = ?", id, false).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(PT(&e).TableName())
		}
		return nil, err
	}
	return &e, nil
}

// First returns the newest row matching the condition, or nil without
// error when nothing matches.
func (r *Repository[T, PT]) First(ctx context.Context, query any, args ...any) (PT, error) {
	var e T
	err := r.conn(ctx).Where("deleted = ?", false).Where(query, args...).
		Order("id DESC").First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// All returns every live row, newest first. Listing newest-first is the
// module-wide convention for read endpoints.
func (r *Repository[T, PT]) All(ctx context.Context) ([]PT, error) {
	return r.Where(ctx, "1 = 1")
}

// Where returns live rows matching the condition, newest first.
func (r *Repository[T, PT]) Where(ctx context.Context, query any, args ...any) ([]PT, error) {
	var rows []T
	err := r.conn(ctx).Where("deleted = ?", false).Where(query, args...).
		Order("created_at DESC, id DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]PT, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

// Count counts live rows matching the condition.
func (r *Repository[T, PT]) Count(ctx context.Context, query any, args ...any) (int64, error) {
	var e T
	var n int64
	err := r.conn(ctx).Model(PT(&e)).Where("deleted = ?", false).
		Where(query, args...).Count(&n).Error
	return n, err
}

// Add stages an insert. The entity's ID is assigned when SaveChanges
// flushes the pending set.
func (r *Repository[T, PT]) Add(e PT) {
	r.adds = append(r.adds, e)
}

// Update stages a write of the entity's current state.
func (r *Repository[T, PT]) Update(e PT) {
	r.updates = append(r.updates, e)
}

// Remove stages a soft delete. The row stays in storage but disappears
// from every repository read.
func (r *Repository[T, PT]) Remove(e PT) {
	r.removals = append(r.removals, e)
}

// flush writes staged mutations in order: inserts, updates, removals.
func (r *Repository[T, PT]) flush(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	for _, e := range r.adds {
		if err := db.Create(e).Error; err != nil {
			return err
		}
	}
	for _, e := range r.updates {
		if err := db.Save(e).Error; err != nil {
			return err
		}
	}
	for _, e := range r.removals {
		e.Meta().Deleted = true
		e.Meta().UpdatedAt = time.Now()
		if err := db.Model(e).Updates(map[string]any{
			"deleted":    true,
			"updated_at": e.Meta().UpdatedAt,
		}).Error; err != nil {
			return err
		}
	}
	r.discard()
	return nil
}

// discard drops staged mutations without writing them.
func (r *Repository[T, PT]) discard() {
	r.adds = nil
	r.updates = nil
	r.removals = nil
}

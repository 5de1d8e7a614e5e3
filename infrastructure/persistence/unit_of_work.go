package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrTransactionOpen is returned by Begin when a transaction is already
// active on this unit of work. That is a caller bug, not a retryable
// condition.
var ErrTransactionOpen = errors.New("transaction already open")

// ErrDisposed is returned by every operation after Dispose.
var ErrDisposed = errors.New("unit of work disposed")

// UnitOfWork groups repository mutations into one atomic flush/commit
// cycle over a single GORM session. One instance serves exactly one
// logical caller at a time; there is no internal locking.
type UnitOfWork struct {
	session  *gorm.DB
	tx       *gorm.DB
	repos    map[string]repository
	ordered  []repository
	disposed bool
}

// repository is the non-generic view the unit of work keeps of its
// cached repositories.
type repository interface {
	flush(ctx context.Context, db *gorm.DB) error
	discard()
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{
		session: db,
		repos:   make(map[string]repository),
	}
}

// RepoFor returns the repository for T, creating it on first use. The
// same T on the same unit of work always yields the identical cached
// instance, so separate holders share staged mutations.
func RepoFor[T any, PT EntityPtr[T]](u *UnitOfWork) *Repository[T, PT] {
	var probe T
	key := PT(&probe).TableName()
	if r, ok := u.repos[key]; ok {
		return r.(*Repository[T, PT])
	}
	r := &Repository[T, PT]{uow: u}
	u.repos[key] = r
	u.ordered = append(u.ordered, r)
	return r
}

// conn returns the active transaction, or the base session when no
// transaction is open.
func (u *UnitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.session
}

// Begin opens the transaction boundary.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.disposed {
		return ErrDisposed
	}
	if u.tx != nil {
		return ErrTransactionOpen
	}
	tx := u.session.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	u.tx = tx
	return nil
}

// SaveChanges flushes staged mutations from every cached repository, in
// repository creation order. It works with or without an open
// transaction; freshly generated identities are visible on the staged
// entities as soon as it returns, so dependent writes can follow within
// the same transaction.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	if u.disposed {
		return ErrDisposed
	}
	for _, r := range u.ordered {
		if err := r.flush(ctx, u.conn()); err != nil {
			return fmt.Errorf("save changes: %w", err)
		}
	}
	return nil
}

// Commit persists the open transaction. When the underlying commit
// fails the driver has already aborted the transaction, so no rows
// become visible; staged mutations are dropped and the unit of work is
// ready for a fresh Begin.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.disposed {
		return ErrDisposed
	}
	if u.tx == nil {
		return errors.New("no open transaction to commit")
	}
	if err := u.tx.WithContext(ctx).Commit().Error; err != nil {
		// database/sql marks the tx done on a failed commit; sending
		// Rollback here would be a silent ErrTxDone no-op.
		for _, r := range u.ordered {
			r.discard()
		}
		u.tx = nil
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.tx = nil
	return nil
}

// Rollback aborts the open transaction and drops staged mutations. With
// no transaction open it is a no-op.
func (u *UnitOfWork) Rollback() {
	for _, r := range u.ordered {
		r.discard()
	}
	if u.tx == nil {
		return
	}
	// Best effort: if rollback itself fails the session state is
	// undefined and the error is not recoverable here.
	u.tx.Rollback()
	u.tx = nil
}

// Dispose releases the unit of work, rolling back any open transaction.
// Safe to call repeatedly.
func (u *UnitOfWork) Dispose() {
	if u.disposed {
		return
	}
	u.Rollback()
	u.repos = nil
	u.ordered = nil
	u.disposed = true
}

// Factory hands out one unit of work per logical business call.
type Factory struct {
	db *gorm.DB
}

func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

func (f *Factory) New() *UnitOfWork {
	return NewUnitOfWork(f.db)
}

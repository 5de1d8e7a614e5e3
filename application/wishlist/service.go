/*
Package wishlist manages saved items and their escalation into fitting
room requests. Operations surface missing or ineligible targets as a
boolean false rather than an error; only storage failures error out.
*/
package wishlist

import (
	"context"
	"errors"
	"time"

	"storeassist/domain/model"
	"storeassist/domain/shared"
	"storeassist/infrastructure/persistence"
	"storeassist/pkg/logger"
	"storeassist/pkg/metrics"

	"go.uber.org/zap"
)

type Service struct {
	uow *persistence.Factory
}

func NewService(uow *persistence.Factory) *Service {
	return &Service{uow: uow}
}

// Add saves an item for the user. Missing or inactive items yield
// false. Adding an item already on the wishlist is a success and leaves
// the single existing entry untouched.
func (s *Service) Add(ctx context.Context, userID, itemID uint) (bool, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	items := persistence.RepoFor[model.Item](uow)
	item, err := items.ByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !item.Active {
		return false, nil
	}

	entries := persistence.RepoFor[model.WishlistEntry](uow)
	existing, err := entries.First(ctx, "user_id = ? AND item_id = ?", userID, itemID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return true, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	entries.Add(&model.WishlistEntry{
		UserID:  userID,
		ItemID:  itemID,
		AddedAt: time.Now(),
	})
	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Remove soft-deletes the entry; false when no live entry exists.
func (s *Service) Remove(ctx context.Context, userID, itemID uint) (bool, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	entries := persistence.RepoFor[model.WishlistEntry](uow)
	entry, err := entries.First(ctx, "user_id = ? AND item_id = ?", userID, itemID)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	entries.Remove(entry)
	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// IsInWishlist is a pure read.
func (s *Service) IsInWishlist(ctx context.Context, userID, itemID uint) (bool, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	entries := persistence.RepoFor[model.WishlistEntry](uow)
	entry, err := entries.First(ctx, "user_id = ? AND item_id = ?", userID, itemID)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// List returns the user's saved entries, newest first.
func (s *Service) List(ctx context.Context, userID uint) ([]*model.WishlistEntry, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	entries := persistence.RepoFor[model.WishlistEntry](uow)
	return entries.Where(ctx, "user_id = ?", userID)
}

// RequestFromWishlist converts the user's saved entries for the given
// item ids into fitting room requests, one per matching entry, in a
// single transaction. Requested ids absent from the wishlist are
// silently skipped; the result does not distinguish a partial match
// from a full one. An empty id list or an empty match yields false with
// zero writes.
func (s *Service) RequestFromWishlist(ctx context.Context, userID uint, itemIDs []uint, notes string) (bool, error) {
	if len(itemIDs) == 0 {
		return false, nil
	}

	uow := s.uow.New()
	defer uow.Dispose()

	entries := persistence.RepoFor[model.WishlistEntry](uow)
	saved, err := entries.Where(ctx, "user_id = ?", userID)
	if err != nil {
		return false, err
	}

	wanted := make(map[uint]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}
	var matched []*model.WishlistEntry
	for _, entry := range saved {
		if wanted[entry.ItemID] {
			matched = append(matched, entry)
		}
	}
	if len(matched) == 0 {
		return false, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	requests := persistence.RepoFor[model.FittingRoomRequest](uow)
	for _, entry := range matched {
		req := &model.FittingRoomRequest{
			UserID: userID,
			ItemID: entry.ItemID,
			Status: model.StatusNewRequest,
		}
		if notes != "" {
			note := notes
			req.CustomerNote = &note
		}
		requests.Add(req)
	}

	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.Commit(ctx); err != nil {
		return false, err
	}

	metrics.WishlistEscalations.Inc()
	logger.Info("wishlist entries escalated to fitting room requests",
		zap.Uint("user_id", userID),
		zap.Int("requests", len(matched)))
	return true, nil
}

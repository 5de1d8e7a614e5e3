// Package notification is the read side of persisted notifications:
// listing and read-state bookkeeping for a user's inbox.
package notification

import (
	"context"
	"time"

	"storeassist/domain/model"
	"storeassist/infrastructure/persistence"
)

type Service struct {
	uow *persistence.Factory
}

func NewService(uow *persistence.Factory) *Service {
	return &Service{uow: uow}
}

// ListForUser returns the user's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]*model.Notification, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	notifications := persistence.RepoFor[model.Notification](uow)
	return notifications.Where(ctx, "user_id = ?", userID)
}

// ListUnread returns the user's unread notifications, newest first.
func (s *Service) ListUnread(ctx context.Context, userID uint) ([]*model.Notification, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	notifications := persistence.RepoFor[model.Notification](uow)
	return notifications.Where(ctx, "user_id = ? AND is_read = ?", userID, false)
}

// MarkRead flags one of the user's notifications as read and stamps
// ReadAt. False when no such notification exists for this user.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID uint) (bool, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	notifications := persistence.RepoFor[model.Notification](uow)
	n, err := notifications.First(ctx, "id = ? AND user_id = ?", notificationID, userID)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}
	if n.IsRead {
		return true, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	notifications.Update(n)
	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// MarkAllRead flags every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uint) error {
	uow := s.uow.New()
	defer uow.Dispose()

	notifications := persistence.RepoFor[model.Notification](uow)
	unread, err := notifications.Where(ctx, "user_id = ? AND is_read = ?", userID, false)
	if err != nil {
		return err
	}
	if len(unread) == 0 {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	now := time.Now()
	for _, n := range unread {
		n.IsRead = true
		n.ReadAt = &now
		notifications.Update(n)
	}
	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit(ctx)
}

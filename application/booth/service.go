// Package booth manages physical fitting room booths. Booth
// reservations are a separate subsystem from fitting room assistance
// requests and the two never interact.
package booth

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

// ListAvailable returns booths open for reservation, counting booths
// whose reservation has lapsed.
func (s *Service) ListAvailable(ctx context.Context) ([]*model.FittingRoom, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	booths := persistence.RepoFor[model.FittingRoom](uow)
	return booths.Where(ctx, "available = ? OR reserved_until < ?", true, time.Now())
}

// Reserve claims a booth for a user until the given time. False when
// the booth does not exist or is held by an unexpired reservation.
func (s *Service) Reserve(ctx context.Context, roomNumber int, userID uint, until time.Time) (bool, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	booths := persistence.RepoFor[model.FittingRoom](uow)
	room, err := booths.First(ctx, "room_number = ?", roomNumber)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, nil
	}
	if !room.Available && room.ReservedUntil != nil && room.ReservedUntil.After(time.Now()) {
		return false, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	room.Available = false
	room.ReservedUntil = &until
	room.ReservedForUserID = &userID
	booths.Update(room)
	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Release frees a booth. False when the booth does not exist.
func (s *Service) Release(ctx context.Context, roomNumber int) (bool, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	booths := persistence.RepoFor[model.FittingRoom](uow)
	room, err := booths.First(ctx, "room_number = ?", roomNumber)
	if err != nil {
		return false, err
	}
	if room == nil {
		return false, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	room.Available = true
	room.ReservedUntil = nil
	room.ReservedForUserID = nil
	booths.Update(room)
	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

/*
Package fittingroom coordinates the fitting room request lifecycle:
NewRequest on creation, and the terminal Completed/Cancelled statuses
set by a separate staff action. Staff are notified of new requests only
after the transaction that persisted them committed, via the outbound
event queue.
*/
package fittingroom

import (
	"context"
	"fmt"
	"time"

	"storeassist/domain/model"
	"storeassist/domain/shared"
	"storeassist/infrastructure/persistence"
	"storeassist/infrastructure/realtime"
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

// Create persists a fitting room request for an existing user and an
// active item, together with the staff notification and the queued
// "NewFittingRoomRequest" staff group event, in one transaction. The
// event leaves the building only after commit, so staff never hear of a
// request that failed to persist.
func (s *Service) Create(ctx context.Context, userID, itemID uint) (*model.FittingRoomRequest, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	users := persistence.RepoFor[model.User](uow)
	items := persistence.RepoFor[model.Item](uow)

	u, err := users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := items.ByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, shared.NewValidationError("item", "active", "item is not available for fitting room requests")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	requests := persistence.RepoFor[model.FittingRoomRequest](uow)
	req := &model.FittingRoomRequest{
		UserID: userID,
		ItemID: itemID,
		Status: model.StatusNewRequest,
	}
	requests.Add(req)
	// Flush now so the generated request id is available to the
	// notification and the outbound event within the same transaction.
	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return nil, err
	}

	message := fmt.Sprintf("%s requested a fitting room for %s", u.DisplayName, item.Name)

	notifications := persistence.RepoFor[model.Notification](uow)
	notifications.Add(&model.Notification{
		Type:                 model.NotificationFittingRoom,
		Title:                "New fitting room request",
		Message:              message,
		UserID:               &u.ID,
		ItemID:               &item.ID,
		FittingRoomRequestID: &req.ID,
	})

	event, err := model.NewGroupEvent(realtime.GroupStaff, realtime.EventNewFittingRoomRequest,
		req.ID, message, u.DisplayName, item.Name)
	if err != nil {
		uow.Rollback()
		return nil, err
	}
	persistence.RepoFor[model.OutboundEvent](uow).Add(event)

	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.FittingRoomRequestsCreated.Inc()
	logger.Info("fitting room request created",
		zap.Uint("request_id", req.ID),
		zap.Uint("user_id", userID),
		zap.Uint("item_id", itemID))
	return req, nil
}

// Respond overwrites the staff response on a notification and stamps
// RespondedAt; a previous response is replaced, no history is kept. When
// the notification carries a user id, exactly one "AdminResponse" user
// cast is queued; otherwise none. A missing notification yields
// (false, nil). The related request's status is deliberately untouched:
// completing or cancelling is a separate staff action with no
// cross-operation atomicity (see SetStatus).
func (s *Service) Respond(ctx context.Context, notificationID uint, responseText string) (bool, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	notifications := persistence.RepoFor[model.Notification](uow)
	n, err := notifications.First(ctx, "id = ?", notificationID)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	now := time.Now()
	n.AdminResponse = &responseText
	n.RespondedAt = &now
	notifications.Update(n)

	if n.UserID != nil {
		event, err := model.NewUserEvent(*n.UserID, realtime.EventAdminResponse, responseText)
		if err != nil {
			uow.Rollback()
			return false, err
		}
		persistence.RepoFor[model.OutboundEvent](uow).Add(event)
	}

	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return false, err
	}
	if err := uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ListOpen returns requests still awaiting staff, newest first.
func (s *Service) ListOpen(ctx context.Context) ([]*model.FittingRoomRequest, error) {
	uow := s.uow.New()
	defer uow.Dispose()

	requests := persistence.RepoFor[model.FittingRoomRequest](uow)
	return requests.Where(ctx, "status = ?", model.StatusNewRequest)
}

// SetStatus moves a request to a terminal status. Terminal states have
// no outgoing transition, so a second call on the same request fails
// with a conflict.
func (s *Service) SetStatus(ctx context.Context, requestID, staffID uint, status model.RequestStatus, staffMessage string) error {
	if !status.Terminal() {
		return shared.NewValidationError("fitting_room_request", "status",
			fmt.Sprintf("cannot transition to %s", status))
	}

	uow := s.uow.New()
	defer uow.Dispose()

	requests := persistence.RepoFor[model.FittingRoomRequest](uow)
	req, err := requests.ByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status.Terminal() {
		return shared.NewConflictError("fitting_room_request",
			fmt.Sprintf("request already %s", req.Status))
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}

	now := time.Now()
	req.Status = status
	req.HandledByStaffID = &staffID
	req.HandledAt = &now
	if staffMessage != "" {
		req.StaffMessage = &staffMessage
	}
	requests.Update(req)

	if err := uow.SaveChanges(ctx); err != nil {
		uow.Rollback()
		return err
	}
	return uow.Commit(ctx)
}

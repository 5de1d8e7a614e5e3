package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"storeassist/application/fittingroom"
	"storeassist/domain/model"
	"storeassist/infrastructure/persistence"
	"storeassist/infrastructure/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingDispatcher captures casts, failing them all when err is set.
type recordingDispatcher struct {
	err        error
	groupCasts []recordedCast
	userCasts  []recordedCast
}

type recordedCast struct {
	target string
	userID uint
	event  string
	args   []any
}

func (d *recordingDispatcher) GroupCast(_ context.Context, group, event string, args ...any) error {
	if d.err != nil {
		return d.err
	}
	d.groupCasts = append(d.groupCasts, recordedCast{target: group, event: event, args: args})
	return nil
}

func (d *recordingDispatcher) UserCast(_ context.Context, userID uint, event string, args ...any) error {
	if d.err != nil {
		return d.err
	}
	d.userCasts = append(d.userCasts, recordedCast{userID: userID, event: event, args: args})
	return nil
}

func newWorker(t *testing.T, db *gorm.DB, dispatcher realtime.Dispatcher, maxRetries int) *Worker {
	t.Helper()
	w, err := NewWorker(db, dispatcher, 10*time.Millisecond, 50, maxRetries)
	require.NoError(t, err)
	return w
}

func enqueueGroupEvent(t *testing.T, db *gorm.DB, group, event string, args ...any) *model.OutboundEvent {
	t.Helper()
	ev, err := model.NewGroupEvent(group, event, args...)
	require.NoError(t, err)
	require.NoError(t, db.Create(ev).Error)
	return ev
}

func eventStatus(t *testing.T, db *gorm.DB, id uint) string {
	t.Helper()
	var ev model.OutboundEvent
	require.NoError(t, db.First(&ev, id).Error)
	return ev.Status
}

func TestNewWorkerValidatesArguments(t *testing.T) {
	db := persistence.NewTestDB(t)
	dispatcher := &recordingDispatcher{}

	_, err := NewWorker(nil, dispatcher, time.Second, 10, 3)
	assert.Error(t, err)
	_, err = NewWorker(db, nil, time.Second, 10, 3)
	assert.Error(t, err)
	_, err = NewWorker(db, dispatcher, 0, 10, 3)
	assert.Error(t, err)
	_, err = NewWorker(db, dispatcher, time.Second, 0, 3)
	assert.Error(t, err)
	_, err = NewWorker(db, dispatcher, time.Second, 10, 0)
	assert.Error(t, err)
}

func TestProcessBatchPublishesPendingEvents(t *testing.T) {
	db := persistence.NewTestDB(t)
	dispatcher := &recordingDispatcher{}
	w := newWorker(t, db, dispatcher, 3)
	ctx := context.Background()

	groupEv := enqueueGroupEvent(t, db, realtime.GroupStaff, realtime.EventNewFittingRoomRequest,
		float64(7), "Mia requested a fitting room for Trench Coat", "Mia", "Trench Coat")

	userEv, err := model.NewUserEvent(42, realtime.EventAdminResponse, "On my way")
	require.NoError(t, err)
	require.NoError(t, db.Create(userEv).Error)

	require.NoError(t, w.ProcessBatch(ctx))

	require.Len(t, dispatcher.groupCasts, 1)
	assert.Equal(t, realtime.GroupStaff, dispatcher.groupCasts[0].target)
	assert.Equal(t, realtime.EventNewFittingRoomRequest, dispatcher.groupCasts[0].event)
	assert.Equal(t, "Mia", dispatcher.groupCasts[0].args[2])

	require.Len(t, dispatcher.userCasts, 1)
	assert.EqualValues(t, 42, dispatcher.userCasts[0].userID)
	assert.Equal(t, []any{"On my way"}, dispatcher.userCasts[0].args)

	assert.Equal(t, model.EventStatusPublished, eventStatus(t, db, groupEv.ID))
	assert.Equal(t, model.EventStatusPublished, eventStatus(t, db, userEv.ID))
}

func TestProcessBatchIsIdempotentOncePublished(t *testing.T) {
	db := persistence.NewTestDB(t)
	dispatcher := &recordingDispatcher{}
	w := newWorker(t, db, dispatcher, 3)
	ctx := context.Background()

	enqueueGroupEvent(t, db, realtime.GroupStaff, realtime.EventNewFittingRoomRequest, float64(1), "m", "u", "i")

	require.NoError(t, w.ProcessBatch(ctx))
	require.NoError(t, w.ProcessBatch(ctx))

	assert.Len(t, dispatcher.groupCasts, 1, "published events must not be dispatched twice")
}

func TestProcessBatchRetriesThenParksAsFailed(t *testing.T) {
	db := persistence.NewTestDB(t)
	dispatcher := &recordingDispatcher{err: errors.New("broker down")}
	w := newWorker(t, db, dispatcher, 2)
	ctx := context.Background()

	ev := enqueueGroupEvent(t, db, realtime.GroupStaff, realtime.EventNewFittingRoomRequest, float64(1), "m", "u", "i")

	// First failure re-queues the event with an incremented retry count.
	require.NoError(t, w.ProcessBatch(ctx))
	var got model.OutboundEvent
	require.NoError(t, db.First(&got, ev.ID).Error)
	assert.Equal(t, model.EventStatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)

	// Second failure exhausts maxRetries and parks the event.
	require.NoError(t, w.ProcessBatch(ctx))
	require.NoError(t, db.First(&got, ev.ID).Error)
	assert.Equal(t, model.EventStatusFailed, got.Status)
	assert.Equal(t, 2, got.RetryCount)

	// A parked event never dispatches again.
	dispatcher.err = nil
	require.NoError(t, w.ProcessBatch(ctx))
	assert.Empty(t, dispatcher.groupCasts)
}

func TestProcessBatchRequeuesStaleClaims(t *testing.T) {
	db := persistence.NewTestDB(t)
	dispatcher := &recordingDispatcher{}
	w := newWorker(t, db, dispatcher, 3)
	ctx := context.Background()

	ev, err := model.NewGroupEvent(realtime.GroupStaff, realtime.EventNewFittingRoomRequest, float64(1), "m", "u", "i")
	require.NoError(t, err)
	ev.Status = model.EventStatusProcessing
	require.NoError(t, db.Create(ev).Error)

	// Age the claim past the stale threshold, as if the worker that
	// took it died before publishing.
	stale := time.Now().Add(-2 * staleClaimAfter)
	require.NoError(t, db.Model(ev).UpdateColumn("updated_at", stale).Error)

	require.NoError(t, w.ProcessBatch(ctx))

	require.Len(t, dispatcher.groupCasts, 1)
	assert.Equal(t, model.EventStatusPublished, eventStatus(t, db, ev.ID))
}

func TestProcessBatchLeavesFreshClaimsAlone(t *testing.T) {
	db := persistence.NewTestDB(t)
	dispatcher := &recordingDispatcher{}
	w := newWorker(t, db, dispatcher, 3)
	ctx := context.Background()

	ev, err := model.NewGroupEvent(realtime.GroupStaff, realtime.EventNewFittingRoomRequest, float64(1), "m", "u", "i")
	require.NoError(t, err)
	ev.Status = model.EventStatusProcessing
	require.NoError(t, db.Create(ev).Error)

	require.NoError(t, w.ProcessBatch(ctx))

	assert.Empty(t, dispatcher.groupCasts, "a live claim belongs to another worker")
	assert.Equal(t, model.EventStatusProcessing, eventStatus(t, db, ev.ID))
}

func TestProcessBatchSkipsMalformedUserTarget(t *testing.T) {
	db := persistence.NewTestDB(t)
	dispatcher := &recordingDispatcher{}
	w := newWorker(t, db, dispatcher, 1)
	ctx := context.Background()

	ev := &model.OutboundEvent{
		Audience:  model.AudienceUser,
		Target:    "not-a-number",
		EventName: realtime.EventAdminResponse,
		Payload:   `["hello"]`,
		Status:    model.EventStatusPending,
	}
	require.NoError(t, db.Create(ev).Error)

	require.NoError(t, w.ProcessBatch(ctx))
	assert.Empty(t, dispatcher.userCasts)
	assert.Equal(t, model.EventStatusFailed, eventStatus(t, db, ev.ID))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	db := persistence.NewTestDB(t)
	w := newWorker(t, db, &recordingDispatcher{}, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreateRequestThenDrainReachesStaffGroup(t *testing.T) {
	db := persistence.NewTestDB(t)
	dispatcher := &recordingDispatcher{}
	w := newWorker(t, db, dispatcher, 3)
	ctx := context.Background()

	user := &model.User{DisplayName: "Mia", Role: model.RoleCustomer}
	require.NoError(t, db.Create(user).Error)
	item := &model.Item{Name: "Trench Coat", Active: true}
	require.NoError(t, db.Create(item).Error)

	svc := fittingroom.NewService(persistence.NewFactory(db))
	req, err := svc.Create(ctx, user.ID, item.ID)
	require.NoError(t, err)

	require.NoError(t, w.ProcessBatch(ctx))

	require.Len(t, dispatcher.groupCasts, 1)
	cast := dispatcher.groupCasts[0]
	assert.Equal(t, realtime.GroupStaff, cast.target)
	assert.Equal(t, realtime.EventNewFittingRoomRequest, cast.event)
	require.Len(t, cast.args, 4)
	assert.EqualValues(t, req.ID, cast.args[0])
}

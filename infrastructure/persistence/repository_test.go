package persistence

import (
	"context"
	"errors"
	"testing"

	"storeassist/domain/model"
	"storeassist/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItems(t *testing.T, uow *UnitOfWork, items ...*model.Item) {
	t.Helper()
	ctx := context.Background()
	repo := RepoFor[model.Item](uow)
	for _, it := range items {
		repo.Add(it)
	}
	require.NoError(t, uow.SaveChanges(ctx))
}

func TestByIDMissingRowIsNotFound(t *testing.T) {
	uow := NewUnitOfWork(NewTestDB(t))
	defer uow.Dispose()

	_, err := RepoFor[model.Item](uow).ByID(context.Background(), 12345)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFirstMissingRowIsNilWithoutError(t *testing.T) {
	uow := NewUnitOfWork(NewTestDB(t))
	defer uow.Dispose()

	got, err := RepoFor[model.Item](uow).First(context.Background(), "name = ?", "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRemoveSoftDeletesAndReadsFilter(t *testing.T) {
	uow := NewUnitOfWork(NewTestDB(t))
	defer uow.Dispose()
	ctx := context.Background()

	kept := &model.Item{Name: "Chinos", Active: true}
	gone := &model.Item{Name: "Cardigan", Active: true}
	seedItems(t, uow, kept, gone)

	repo := RepoFor[model.Item](uow)
	repo.Remove(gone)
	require.NoError(t, uow.SaveChanges(ctx))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)

	_, err = repo.ByID(ctx, gone.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	first, err := repo.First(ctx, "id = ?", gone.ID)
	require.NoError(t, err)
	assert.Nil(t, first)

	n, err := repo.Count(ctx, "1 = 1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// The row itself survives in storage.
	var raw int64
	require.NoError(t, uow.conn().Table("items").Where("id = ?", gone.ID).Count(&raw).Error)
	assert.EqualValues(t, 1, raw)
}

func TestAddStoresFalseFlags(t *testing.T) {
	uow := NewUnitOfWork(NewTestDB(t))
	defer uow.Dispose()
	ctx := context.Background()

	// Inactive items and unavailable booths must survive the insert
	// as-is; a column default must never override an explicit false.
	item := &model.Item{Name: "Archived Parka", Active: false}
	seedItems(t, uow, item)

	got, err := RepoFor[model.Item](uow).ByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	booths := RepoFor[model.FittingRoom](uow)
	booths.Add(&model.FittingRoom{RoomNumber: 9, Available: false})
	require.NoError(t, uow.SaveChanges(ctx))

	room, err := booths.First(ctx, "room_number = ?", 9)
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.False(t, room.Available)
}

func TestWhereListsNewestFirst(t *testing.T) {
	uow := NewUnitOfWork(NewTestDB(t))
	defer uow.Dispose()
	ctx := context.Background()

	a := &model.Item{Name: "First", Active: true}
	b := &model.Item{Name: "Second", Active: true}
	c := &model.Item{Name: "Third", Active: true}
	seedItems(t, uow, a, b, c)

	rows, err := RepoFor[model.Item](uow).All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, c.ID, rows[0].ID)
	assert.Equal(t, b.ID, rows[1].ID)
	assert.Equal(t, a.ID, rows[2].ID)
}

func TestUpdateWritesCurrentState(t *testing.T) {
	uow := NewUnitOfWork(NewTestDB(t))
	defer uow.Dispose()
	ctx := context.Background()

	item := &model.Item{Name: "Blazer", Active: true}
	seedItems(t, uow, item)

	repo := RepoFor[model.Item](uow)
	item.Active = false
	repo.Update(item)
	require.NoError(t, uow.SaveChanges(ctx))

	got, err := repo.ByID(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestNotFoundErrorCarriesEntityName(t *testing.T) {
	uow := NewUnitOfWork(NewTestDB(t))
	defer uow.Dispose()

	_, err := RepoFor[model.User](uow).ByID(context.Background(), 999)
	require.Error(t, err)

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "users", de.Entity)
}

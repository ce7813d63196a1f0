package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-registry/internal/model"
)

func newFlatRepo(t *testing.T) *FlatRepository {
	t.Helper()
	return NewFlatRepository(filepath.Join(t.TempDir(), "plates.json"))
}

func TestFlatRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newFlatRepo(t)

	rec := &model.PlateRecord{Plate: "ABC-123", Company: "Acme"}
	require.NoError(t, repo.Insert(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.RegisteredAt.IsZero())
	assert.Equal(t, model.DefaultActor, rec.RegisteredBy)

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", got.Plate)

	exact, err := repo.FindExact(ctx, "ABC-123")
	require.NoError(t, err)
	require.NotNil(t, exact)
	assert.Equal(t, rec.ID, exact.ID)

	miss, err := repo.FindExact(ctx, "ABC123")
	require.NoError(t, err)
	assert.Nil(t, miss, "exact lookup matches the stored spelling only")

	rec.Company = "Acme Transport"
	rec.Plate = "ABC-124"
	require.NoError(t, repo.Update(ctx, rec))
	got, err = repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC-124", got.Plate)
	assert.Equal(t, "Acme Transport", got.Company)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.Delete(ctx, rec.ID))
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID), ErrNotFound)

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestFlatRepositoryUpdateMissing(t *testing.T) {
	repo := newFlatRepo(t)
	err := repo.Update(context.Background(), &model.PlateRecord{ID: uuid.New(), Plate: "XY-99"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlatRepositoryPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plates.json")

	first := NewFlatRepository(path)
	require.NoError(t, first.Insert(ctx, &model.PlateRecord{Plate: "1234-ABC"}))
	require.NoError(t, first.Insert(ctx, &model.PlateRecord{Plate: "5678-DEF"}))

	second := NewFlatRepository(path)
	records, err := second.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// FetchAll orders by plate.
	assert.Equal(t, "1234-ABC", records[0].Plate)
	assert.Equal(t, "5678-DEF", records[1].Plate)
}

func TestFlatRepositorySearch(t *testing.T) {
	ctx := context.Background()
	repo := newFlatRepo(t)

	require.NoError(t, repo.Insert(ctx, &model.PlateRecord{Plate: "ABC-123", Company: "Acme"}))
	require.NoError(t, repo.Insert(ctx, &model.PlateRecord{Plate: "XYZ-999", Association: "Norte"}))

	byCanonicalPlate, err := repo.Search(ctx, "abc123")
	require.NoError(t, err)
	require.Len(t, byCanonicalPlate, 1)
	assert.Equal(t, "ABC-123", byCanonicalPlate[0].Plate)

	byCompany, err := repo.Search(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, byCompany, 1)

	byAssociation, err := repo.Search(ctx, "NORTE")
	require.NoError(t, err)
	require.Len(t, byAssociation, 1)
	assert.Equal(t, "XYZ-999", byAssociation[0].Plate)

	all, err := repo.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := repo.Search(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFlatRepositoryDeleteAllAndReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := newFlatRepo(t)

	require.NoError(t, repo.Insert(ctx, &model.PlateRecord{Plate: "AA-11"}))
	require.NoError(t, repo.DeleteAll(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	snapshot := []model.PlateRecord{
		{ID: uuid.New(), Plate: "BB-22"},
		{ID: uuid.New(), Plate: "CC-33"},
	}
	require.NoError(t, repo.ReplaceAll(ctx, snapshot))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

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

func newEmbeddedRepo(t *testing.T) *EmbeddedRepository {
	t.Helper()
	repo, err := NewEmbeddedRepository(filepath.Join(t.TempDir(), "plates.db"))
	require.NoError(t, err)
	return repo
}

func TestEmbeddedRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newEmbeddedRepo(t)

	rec := &model.PlateRecord{Plate: "ABC-123", Company: "Acme"}
	require.NoError(t, repo.Insert(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", got.Plate)
	assert.Equal(t, "Acme", got.Company)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	exact, err := repo.FindExact(ctx, "ABC-123")
	require.NoError(t, err)
	require.NotNil(t, exact)

	miss, err := repo.FindExact(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, miss)

	rec.Plate = "ABC-777"
	require.NoError(t, repo.Update(ctx, rec))
	got, err = repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC-777", got.Plate)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.Delete(ctx, rec.ID))
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID), ErrNotFound)
}

func TestEmbeddedRepositoryUniquePlateConstraint(t *testing.T) {
	ctx := context.Background()
	repo := newEmbeddedRepo(t)

	require.NoError(t, repo.Insert(ctx, &model.PlateRecord{Plate: "ABC-123"}))

	err := repo.Insert(ctx, &model.PlateRecord{Plate: "ABC-123"})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	// A different raw spelling passes the native constraint; catching
	// identity-equal spellings is the record store's pre-check.
	require.NoError(t, repo.Insert(ctx, &model.PlateRecord{Plate: "ABC123"}))
}

func TestEmbeddedRepositoryUpdateToTakenPlate(t *testing.T) {
	ctx := context.Background()
	repo := newEmbeddedRepo(t)

	first := &model.PlateRecord{Plate: "AA-11"}
	second := &model.PlateRecord{Plate: "BB-22"}
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	second.Plate = "AA-11"
	assert.ErrorIs(t, repo.Update(ctx, second), ErrUniqueViolation)
}

func TestEmbeddedRepositorySearchAndFetchAll(t *testing.T) {
	ctx := context.Background()
	repo := newEmbeddedRepo(t)

	require.NoError(t, repo.Insert(ctx, &model.PlateRecord{Plate: "ZZ-99", Company: "Beta"}))
	require.NoError(t, repo.Insert(ctx, &model.PlateRecord{Plate: "AA-11", Company: "Acme"}))

	all, err := repo.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "AA-11", all[0].Plate, "ordered by plate")

	matched, err := repo.Search(ctx, "zz99")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "ZZ-99", matched[0].Plate)

	require.NoError(t, repo.DeleteAll(ctx))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

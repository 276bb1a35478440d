package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/shopcore-backend/pkg/db/models"
	"github.com/shopcore/shopcore-backend/pkg/pagination"
)

func seedProduct(t *testing.T, repo *Repository, title string, active bool, createdAt time.Time) *models.Product {
	t.Helper()
	record := &models.Product{
		ID:        uuid.New(),
		SKU:       "SKU-" + uuid.NewString(),
		Title:     title,
		IsActive:  active,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), record), "seed product")
	return record
}

func TestListPagination(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	var seeded []*models.Product
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedProduct(t, repo, "Product", true, base.Add(time.Duration(i)*time.Minute)))
	}

	firstPage, cursor, err := repo.List(ctx, false, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.NotEmpty(t, cursor, "expected a cursor after a full page")
	assert.Equal(t, seeded[4].ID, firstPage[0].ID, "newest first")
	assert.Equal(t, seeded[3].ID, firstPage[1].ID)

	secondPage, cursor, err := repo.List(ctx, false, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	require.NotEmpty(t, cursor)
	assert.Equal(t, seeded[2].ID, secondPage[0].ID)
	assert.Equal(t, seeded[1].ID, secondPage[1].ID)

	lastPage, cursor, err := repo.List(ctx, false, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, lastPage, 1)
	assert.Empty(t, cursor, "final page must not hand out a cursor")
	assert.Equal(t, seeded[0].ID, lastPage[0].ID)
}

func TestListOnlyActive(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	active := seedProduct(t, repo, "Active", true, base)
	seedProduct(t, repo, "Hidden", false, base.Add(time.Minute))

	rows, _, err := repo.List(ctx, true, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, active.ID, rows[0].ID)
}

func TestListRejectsBadCursor(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	_, _, err := repo.List(context.Background(), false, pagination.Params{Cursor: "not-base64!"})
	require.Error(t, err)
}

func TestExistsAndFindBySKU(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	record := seedProduct(t, repo, "Lookup", true, time.Now().UTC())

	ok, err := repo.ExistsByID(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindBySKU(ctx, record.SKU)
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
}

package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{})
	require.NoError(t, err)

	return db
}

func createCatalogProduct(t *testing.T, name string, cents int64) *catalog.Product {
	product, err := catalog.NewProduct(name, "", decimal.NewFromInt(cents), 10)
	require.NoError(t, err)
	return product
}

func TestGormProductRepository_SaveAndFindByID(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("round-trips a product", func(t *testing.T) {
		product := createCatalogProduct(t, "Laptop", 100000)

		err := repo.Save(ctx, product)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
		assert.Equal(t, "Laptop", found.Name)
		assert.True(t, found.Price.Equal(decimal.NewFromInt(100000)))
		assert.Equal(t, catalog.ProductStatusActive, found.Status)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())

		assert.Nil(t, found)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestGormProductRepository_FindAll(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	laptop := createCatalogProduct(t, "Gaming Laptop", 150000)
	mouse := createCatalogProduct(t, "Wireless Mouse", 3000)
	mouse.Status = catalog.ProductStatusInactive
	require.NoError(t, repo.Save(ctx, laptop))
	require.NoError(t, repo.Save(ctx, mouse))

	t.Run("search matches names case-insensitively", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "laptop"

		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, laptop.ID, products[0].ID)
	})

	t.Run("status filter narrows results", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]any{"status": "inactive"}

		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, mouse.ID, products[0].ID)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormProductRepository_UpdateAverageRating(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("writes only the rating column", func(t *testing.T) {
		product := createCatalogProduct(t, "Keyboard", 5000)
		require.NoError(t, repo.Save(ctx, product))

		err := repo.UpdateAverageRating(ctx, product.ID, 4.5)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 4.5, found.AverageRating)
		assert.Equal(t, "Keyboard", found.Name)
	})

	t.Run("reports not found for unknown product", func(t *testing.T) {
		err := repo.UpdateAverageRating(ctx, uuid.New(), 3.0)

		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestGormProductRepository_Delete(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("deletes an existing product", func(t *testing.T) {
		product := createCatalogProduct(t, "Monitor", 30000)
		require.NoError(t, repo.Save(ctx, product))

		err := repo.Delete(ctx, product.ID)
		require.NoError(t, err)

		_, err = repo.FindByID(ctx, product.ID)
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("reports not found when nothing was deleted", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())

		assert.Equal(t, shared.ErrNotFound, err)
	})
}

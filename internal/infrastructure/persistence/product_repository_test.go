package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/grocerypos/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupProductRepo(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return NewGormProductRepository(db), db
}

func saveProduct(t *testing.T, repo *GormProductRepository, name, price, category, barcode string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, decimal.RequireFromString(price), category)
	require.NoError(t, err)
	require.NoError(t, product.SetBarcode(barcode))
	require.NoError(t, repo.Save(context.Background(), product))
	return product
}

func TestGormProductRepository_SaveAssignsIDs(t *testing.T) {
	repo, _ := setupProductRepo(t)
	ctx := context.Background()

	first := saveProduct(t, repo, "Jasmine Rice", "189", "Food", "8850001")
	second := saveProduct(t, repo, "Soda", "15", "Drinks", "")

	assert.Greater(t, first.ID, int64(0))
	assert.Greater(t, second.ID, first.ID)

	found, err := repo.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soda", found.Name)
	assert.Nil(t, found.Barcode)
	assert.Nil(t, found.Image)
	assert.Equal(t, "15", found.Price.String())
}

func TestGormProductRepository_FindByID_NotFound(t *testing.T) {
	repo, _ := setupProductRepo(t)

	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindByBarcode(t *testing.T) {
	repo, _ := setupProductRepo(t)
	ctx := context.Background()
	saved := saveProduct(t, repo, "Fish Sauce", "32.50", "Condiments", "8850123")

	found, err := repo.FindByBarcode(ctx, "8850123")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, found.ID)

	_, err = repo.FindByBarcode(ctx, "000")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByBarcode(ctx, "")
	require.Error(t, err)
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_BARCODE", de.Code)
}

func TestGormProductRepository_DuplicateBarcode(t *testing.T) {
	repo, _ := setupProductRepo(t)
	saveProduct(t, repo, "Milk", "25", "Drinks", "111")

	dup, err := catalog.NewProduct("Other Milk", decimal.NewFromInt(26), "Drinks")
	require.NoError(t, err)
	require.NoError(t, dup.SetBarcode("111"))

	err = repo.Save(context.Background(), dup)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.True(t, dup.IsNew())
}

func TestGormProductRepository_ManyProductsWithoutBarcode(t *testing.T) {
	repo, _ := setupProductRepo(t)
	saveProduct(t, repo, "Banana", "5", "Food", "")
	saveProduct(t, repo, "Mango", "20", "Food", "")

	products, err := repo.FindAll(context.Background(), shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestGormProductRepository_FindAll(t *testing.T) {
	repo, _ := setupProductRepo(t)
	ctx := context.Background()
	rice := saveProduct(t, repo, "Jasmine Rice", "189", "Food", "8850001")
	soda := saveProduct(t, repo, "Cola", "15", "Drinks", "8850002")
	chili := saveProduct(t, repo, "Dried Chili", "12.50", "Food", "")

	t.Run("newest first", func(t *testing.T) {
		products, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, []int64{chili.ID, soda.ID, rice.ID},
			[]int64{products[0].ID, products[1].ID, products[2].ID})
	})

	t.Run("category filter", func(t *testing.T) {
		products, err := repo.FindAll(ctx, shared.DefaultFilter().WithFilter("category", "Food"))
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, chili.ID, products[0].ID)
	})

	t.Run("search matches name case-insensitively", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "RICE"
		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, rice.ID, products[0].ID)
	})

	t.Run("search matches barcode substring", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "0002"
		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, soda.ID, products[0].ID)
	})

	t.Run("sort by price ascending", func(t *testing.T) {
		filter := shared.Filter{OrderBy: "price", OrderDir: "asc"}
		products, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, chili.ID, products[0].ID)
		assert.Equal(t, rice.ID, products[2].ID)
	})
}

func TestGormProductRepository_Update(t *testing.T) {
	repo, _ := setupProductRepo(t)
	ctx := context.Background()
	product := saveProduct(t, repo, "Milk", "25", "Drinks", "111")

	require.NoError(t, product.Update("Soy Milk", decimal.Zero, "Drinks", "", "/uploads/soy.png"))
	require.NoError(t, repo.Save(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Soy Milk", found.Name)
	assert.True(t, found.Price.IsZero())
	assert.Nil(t, found.Barcode)
	assert.Equal(t, "/uploads/soy.png", found.ImageValue())
}

func TestGormProductRepository_UpdateMissing(t *testing.T) {
	repo, _ := setupProductRepo(t)

	product, err := catalog.NewProduct("Ghost", decimal.NewFromInt(1), "Misc")
	require.NoError(t, err)
	product.ID = 404

	assert.ErrorIs(t, repo.Save(context.Background(), product), shared.ErrNotFound)
}

func TestGormProductRepository_Delete(t *testing.T) {
	repo, _ := setupProductRepo(t)
	ctx := context.Background()
	product := saveProduct(t, repo, "Milk", "25", "Drinks", "")

	require.NoError(t, repo.Delete(ctx, product.ID))

	_, err := repo.FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, product.ID), shared.ErrNotFound)
}

func TestGormProductRepository_ExistsByBarcode(t *testing.T) {
	repo, _ := setupProductRepo(t)
	ctx := context.Background()
	product := saveProduct(t, repo, "Milk", "25", "Drinks", "111")

	exists, err := repo.ExistsByBarcode(ctx, "111", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByBarcode(ctx, "111", product.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByBarcode(ctx, "", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormProductRepository_SQLShape(t *testing.T) {
	t.Run("insert returns generated id", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db.DB)

		mock.ExpectQuery(`INSERT INTO "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

		product, err := catalog.NewProduct("Milk", decimal.NewFromInt(25), "Drinks")
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), product))

		assert.Equal(t, int64(42), product.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list orders by id descending", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db.DB)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE category = \$1 ORDER BY id DESC`).
			WithArgs("Food").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "category"}).
				AddRow(2, "Chili", "12.50", "Food").
				AddRow(1, "Rice", "189.00", "Food"))

		products, err := repo.FindAll(context.Background(), shared.DefaultFilter().WithFilter("category", "Food"))
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "12.5", products[0].Price.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete of missing row", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db.DB)

		mock.ExpectExec(`DELETE FROM "products" WHERE id = \$1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 7), shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error passes through", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db.DB)

		mock.ExpectQuery(`SELECT \* FROM "products"`).WillReturnError(assert.AnError)

		_, err := repo.FindAll(context.Background(), shared.DefaultFilter())
		assert.ErrorIs(t, err, assert.AnError)
	})
}

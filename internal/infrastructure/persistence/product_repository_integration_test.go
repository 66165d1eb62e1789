//go:build integration

package persistence

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/grocerypos/backend/internal/domain/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"github.com/grocerypos/backend/internal/infrastructure/migration"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func migrationsDir(t *testing.T) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

func TestGormProductRepository_Postgres(t *testing.T) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		Host:         host,
		Port:         port.Int(),
		User:         "pos",
		Password:     "pos",
		DBName:       "pos_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 1,
	}

	migrator, err := migration.NewMigrator(cfg.DSN(), "file://"+migrationsDir(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	_ = migrator.Close()

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewGormProductRepository(db.DB)

	product, err := catalog.NewProduct("Jasmine Rice", decimal.RequireFromString("189.00"), "Food")
	require.NoError(t, err)
	require.NoError(t, product.SetBarcode("8850001"))
	require.NoError(t, repo.Save(ctx, product))
	assert.Greater(t, product.ID, int64(0))

	dup, err := catalog.NewProduct("Copy", decimal.NewFromInt(1), "Food")
	require.NoError(t, err)
	require.NoError(t, dup.SetBarcode("8850001"))
	assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)

	found, err := repo.FindByBarcode(ctx, "8850001")
	require.NoError(t, err)
	assert.Equal(t, "189", found.Price.String())

	require.NoError(t, repo.Delete(ctx, product.ID))
	assert.ErrorIs(t, repo.Delete(ctx, product.ID), shared.ErrNotFound)
}

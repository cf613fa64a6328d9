package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/accident-risk-go/internal/database"
	"github.com/jengzang/accident-risk-go/internal/models"
	"github.com/jengzang/accident-risk-go/internal/records"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accidents.db")
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: path})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrationManager(db, database.DriverSQLite).RunMigrations())
	return db
}

func TestAccidentRepository_RoundTripAndLoad(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewAccidentRepository(db, database.DriverSQLite, "test.db")

	rows := []models.RawRow{
		{SourceID: "1", City: "Beograd", DateTime: "01.03.2020,08:15", Longitude: "20.47", Latitude: "44.80", Category: "Sa povredjenim"},
		{SourceID: "2", City: "Beograd", DateTime: "garbage", Longitude: "20.47", Latitude: "44.80"},
		{SourceID: "3", City: "Nis", DateTime: "15.07.2020,17:40", Longitude: "21.89", Latitude: "43.32"},
	}
	n, err := repo.InsertRows(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// a second batch continues after the first
	n, err = repo.InsertRows(ctx, rows[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	got, err := repo.ReadRows(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, rows[0], got[0])
	assert.Equal(t, rows[2], got[2])

	store, err := records.Load(ctx, repo, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Count())
	assert.Equal(t, models.LoadSummary{Source: "test.db", Total: 4, Loaded: 3, Skipped: 1}, store.Summary())
}

func TestAccidentRepository_ClosedDB(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccidentRepository(db, database.DriverSQLite, "closed.db")
	require.NoError(t, db.Close())

	_, err := records.Load(context.Background(), repo, time.UTC)
	require.Error(t, err)
	assert.ErrorIs(t, err, records.ErrSourceUnavailable)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)
	mm := database.NewMigrationManager(db, database.DriverSQLite)

	require.NoError(t, mm.RunMigrations())
	applied, err := mm.GetAppliedMigrations()
	require.NoError(t, err)
	assert.True(t, applied[1])
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "SELECT $1, $2", database.Rebind(database.DriverPostgres, "SELECT ?, ?"))
	assert.Equal(t, "SELECT ?, ?", database.Rebind(database.DriverSQLite, "SELECT ?, ?"))
}

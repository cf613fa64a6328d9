package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/accident-risk-go/internal/config"
	"github.com/jengzang/accident-risk-go/internal/database"
	"github.com/jengzang/accident-risk-go/internal/engine"
	"github.com/jengzang/accident-risk-go/internal/models"
	"github.com/jengzang/accident-risk-go/internal/records"
	"github.com/jengzang/accident-risk-go/internal/repository"
	"github.com/jengzang/accident-risk-go/internal/risk"
)

const csvFixture = `1,Beograd,Vracar,"15.06.2023,14:00",20.4612,44.8125,Sa povredjenim,,
2,Beograd,Vracar,"20.06.2024,15:00",20.4612,44.8125,Sa materijalnom stetom,,
3,Novi Sad,Centar,"15.06.2024,14:00",19.8335,45.2671,Sa materijalnom stetom,,
4,Beograd,Vracar,bad,20.4612,44.8125,,,
`

func csvConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accidents.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvFixture), 0o644))

	cfg := config.Default()
	cfg.Source.Path = path
	cfg.Source.Timezone = "UTC"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRiskService_AssessFromCSV(t *testing.T) {
	svc, err := NewRiskService(context.Background(), NewBuilder(csvConfig(t)))
	require.NoError(t, err)

	res, err := svc.Assess(44.8125, 20.4612, time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Spatial)
	assert.Equal(t, risk.Severe, res.Level)

	st, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, st.Records)
	assert.Equal(t, 1, st.Summary.Skipped)

	rec, err := svc.GetRecord(2)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Novi Sad", rec.City)

	missing, err := svc.GetRecord(99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	near, err := svc.Nearby(44.8125, 20.4612)
	require.NoError(t, err)
	assert.Len(t, near, 2)
}

func TestRiskService_InvalidPoint(t *testing.T) {
	svc, err := NewRiskService(context.Background(), NewBuilder(csvConfig(t)))
	require.NoError(t, err)

	_, err = svc.Assess(123, 20, time.Time{})
	assert.ErrorIs(t, err, engine.ErrInvalidQueryPoint)
}

func TestRiskService_MissingSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Path = filepath.Join(t.TempDir(), "missing.csv")

	_, err := NewRiskService(context.Background(), NewBuilder(cfg))
	require.Error(t, err)
	assert.ErrorIs(t, err, records.ErrSourceUnavailable)
}

func TestRiskService_FailedReloadKeepsEngine(t *testing.T) {
	cfg := csvConfig(t)
	svc, err := NewRiskService(context.Background(), NewBuilder(cfg))
	require.NoError(t, err)
	before, err := svc.Engine()
	require.NoError(t, err)

	require.NoError(t, os.Remove(cfg.Source.Path))
	assert.Error(t, svc.Reload(context.Background()))

	after, err := svc.Engine()
	require.NoError(t, err)
	assert.Same(t, before, after)
}

func TestRiskService_ReloadSwapsEngine(t *testing.T) {
	cfg := csvConfig(t)
	svc, err := NewRiskService(context.Background(), NewBuilder(cfg))
	require.NoError(t, err)

	extra := csvFixture + `5,Beograd,Vracar,"01.01.2024,03:00",20.4612,44.8125,,,` + "\n"
	require.NoError(t, os.WriteFile(cfg.Source.Path, []byte(extra), 0o644))
	require.NoError(t, svc.Reload(context.Background()))

	st, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, 4, st.Records)
}

func TestRiskService_Unavailable(t *testing.T) {
	svc := &RiskService{}
	_, err := svc.Assess(44, 20, time.Time{})
	assert.True(t, errors.Is(err, ErrEngineUnavailable))
	_, err = svc.Summary()
	assert.ErrorIs(t, err, ErrEngineUnavailable)
	assert.Error(t, svc.Reload(context.Background()))
}

func TestOpenSource_CSVSeparator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accidents.csv")
	content := `id;grad;opstina;datumvreme;lon;lat;steta;opis1;opis2
1;Beograd;Vracar;"15.06.2023,14:00";20.4612;44.8125;Sa povredjenim;;
2;Beograd;Vracar;16.06.2024,15:00;20.4612;44.8125;Sa povredjenim;;
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := config.Default()
	cfg.Source.Path = path
	cfg.Source.Timezone = "UTC"
	cfg.Source.HasHeader = true
	cfg.Source.Comma = ";"
	require.NoError(t, cfg.Validate())

	svc, err := NewRiskService(context.Background(), NewBuilder(cfg))
	require.NoError(t, err)
	st, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Records)
	assert.Equal(t, 0, st.Summary.Skipped)

	cfg.Source.Comma = "::"
	_, _, err = OpenSource(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestOpenSource_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "accidents.db")
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: path})
	require.NoError(t, err)
	require.NoError(t, database.NewMigrationManager(db, database.DriverSQLite).RunMigrations())
	_, err = repository.NewAccidentRepository(db, database.DriverSQLite, path).InsertRows(ctx, []models.RawRow{
		{SourceID: "1", DateTime: "15.06.2023,14:00", Longitude: "20.4612", Latitude: "44.8125"},
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := config.Default()
	cfg.Source.Kind = config.SourceSQLite
	cfg.Source.Path = path
	cfg.Source.Timezone = "UTC"

	svc, err := NewRiskService(ctx, NewBuilder(cfg))
	require.NoError(t, err)
	st, err := svc.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Records)
}

func TestStartReloader(t *testing.T) {
	svc, err := NewRiskService(context.Background(), NewBuilder(csvConfig(t)))
	require.NoError(t, err)

	_, err = StartReloader(context.Background(), svc, "not a schedule")
	assert.Error(t, err)

	c, err := StartReloader(context.Background(), svc, "@every 1h")
	require.NoError(t, err)
	<-c.Stop().Done()
}

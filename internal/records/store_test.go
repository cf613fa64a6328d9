package records

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/accident-risk-go/internal/models"
)

func row(id, dt, lon, lat string) models.RawRow {
	return models.RawRow{SourceID: id, DateTime: dt, Longitude: lon, Latitude: lat, Category: "Sa materijalnom stetom"}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{"two digit fields", "24.12.2020,14:05", time.Date(2020, 12, 24, 14, 5, 0, 0, time.UTC), false},
		{"single digit fields", "3.1.2020,7:30", time.Date(2020, 1, 3, 7, 30, 0, 0, time.UTC), false},
		{"surrounding space", " 01.02.2020,00:00 ", time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{"empty", "", time.Time{}, true},
		{"iso format", "2020-12-24T14:05:00Z", time.Time{}, true},
		{"invalid day", "32.01.2020,10:00", time.Time{}, true},
		{"missing time", "24.12.2020", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value, time.UTC)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseRow_DerivedFields(t *testing.T) {
	rec, err := ParseRow(row("7", "31.12.2020,23:59", "20.4573", "44.8125"), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 23, rec.HourOfDay)
	assert.Equal(t, 366, rec.DayOfYear) // 2020 is a leap year
	assert.InDelta(t, 44.8125, rec.Latitude, 1e-9)
	assert.InDelta(t, 20.4573, rec.Longitude, 1e-9)
	assert.Equal(t, "Sa materijalnom stetom", rec.Category)
	assert.Equal(t, "7", rec.SourceID)
}

func TestParseRow_Rejects(t *testing.T) {
	tests := []struct {
		name string
		row  models.RawRow
	}{
		{"nan latitude", row("1", "01.01.2020,10:00", "20.1", "NaN")},
		{"inf longitude", row("1", "01.01.2020,10:00", "+Inf", "44.1")},
		{"latitude out of range", row("1", "01.01.2020,10:00", "20.1", "91")},
		{"longitude out of range", row("1", "01.01.2020,10:00", "-180.5", "44.1")},
		{"text coordinate", row("1", "01.01.2020,10:00", "abc", "44.1")},
		{"empty coordinate", row("1", "01.01.2020,10:00", "", "44.1")},
		{"bad timestamp", row("1", "2020/01/01 10:00", "20.1", "44.1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRow(tt.row, time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestFromRows_FiltersWithoutAborting(t *testing.T) {
	rows := []models.RawRow{
		row("a", "01.03.2020,08:00", "20.0", "44.0"),
		row("b", "not a date", "20.0", "44.0"),
		row("c", "02.03.2020,09:00", "20.1", "44.1"),
		row("d", "03.03.2020,10:00", "", "44.1"),
		row("e", "04.03.2020,11:00", "20.2", "44.2"),
	}

	s := FromRows("memory", rows, time.UTC)

	assert.Equal(t, 3, s.Count())
	assert.Equal(t, models.LoadSummary{Source: "memory", Total: 5, Loaded: 3, Skipped: 2}, s.Summary())

	// IDs are dense and assigned only to accepted rows
	for i, rec := range s.Records() {
		assert.Equal(t, models.RecordID(i), rec.ID)
	}
	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "c", got.SourceID)

	_, ok = s.Get(3)
	assert.False(t, ok)
	_, ok = s.Get(-1)
	assert.False(t, ok)
}

func TestStore_RecordsReturnsCopy(t *testing.T) {
	s := FromRows("memory", []models.RawRow{row("a", "01.03.2020,08:00", "20.0", "44.0")}, time.UTC)

	recs := s.Records()
	recs[0].Latitude = 0

	got, _ := s.Get(0)
	assert.InDelta(t, 44.0, got.Latitude, 1e-9)
}

func TestLoad_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accidents.csv")
	content := strings.Join([]string{
		`id,grad,opstina,datumvreme,lon,lat,steta,opis1,opis2`,
		`1,Beograd,Vracar,"01.03.2020,08:15",20.4700,44.8000,Sa povredjenim,opis,opis`,
		`2,Beograd,Vracar,"xx.03.2020,08:15",20.4700,44.8000,Sa povredjenim,opis,opis`,
		`3,Nis,Medijana,"15.07.2020,17:40",21.8958,43.3209,Sa materijalnom stetom,,`,
		`4,Nis,Medijana`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(context.Background(), &CSVSource{Path: path, HasHeader: true}, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Count())
	assert.Equal(t, 4, s.Summary().Total)
	assert.Equal(t, 2, s.Summary().Skipped)

	rec, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "3", rec.SourceID)
	assert.Equal(t, 17, rec.HourOfDay)
	assert.Equal(t, "Nis", rec.City)
}

func TestReadCSV_HeaderAndStrayQuotes(t *testing.T) {
	content := strings.Join([]string{
		`id;grad;opstina;datumvreme;lon;lat;steta;opis1;opis2`,
		`1;Beo"grad;Vracar;01.03.2020,08:15;20.4700;44.8000;Sa povredjenim;"opis; sa tackom";`,
		`2;Beograd;Vracar;02.03.2020,09:15;20.4700;44.8000;Sa povredjenim;;`,
	}, "\n")

	rows, err := ReadCSV(context.Background(), strings.NewReader(content), ';', true)
	require.NoError(t, err)

	// only the header is dropped
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].SourceID)
	assert.Equal(t, `Beo"grad`, rows[0].City)
	assert.Equal(t, "2", rows[1].SourceID)
	assert.Equal(t, "44.8000", rows[1].Latitude)
}

func TestReadCSV_ReadErrorAborts(t *testing.T) {
	boom := errors.New("disk gone")
	r := io.MultiReader(strings.NewReader("id,grad\n1,Beograd\n"), iotest.ErrReader(boom))

	_, err := ReadCSV(context.Background(), r, 0, true)
	assert.ErrorIs(t, err, boom)
}

func TestLoad_MissingSource(t *testing.T) {
	_, err := Load(context.Background(), &CSVSource{Path: filepath.Join(t.TempDir(), "missing.csv")}, time.UTC)
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrSourceUnavailable))
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Source, "missing.csv")
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) ReadRows(context.Context) ([]models.RawRow, error) {
	return nil, errors.New("connection refused")
}

func TestLoad_WrapsSourceErrors(t *testing.T) {
	_, err := Load(context.Background(), failingSource{}, time.UTC)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

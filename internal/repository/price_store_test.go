package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandleScan/internal/domain/models"
)

const yahooCSV = `Date,Open,High,Low,Close,Adj Close,Volume
2021-01-04,100,101.5,99.5,101,100.5,1200
2021-01-05,101,102,100,100.2,99.9,900
`

func TestFileStoreFilesSortedRegularOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "MSFT.csv", yahooCSV)
	writeFile(t, dir, "AAPL.csv", yahooCSV)
	writeFile(t, dir, ".AAPL.123.tmp", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	files, err := NewFileStore(dir).Files(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL.csv", "MSFT.csv"}, files)
}

func TestFileStoreFilesMissingDir(t *testing.T) {
	_, err := NewFileStore(filepath.Join(t.TempDir(), "none")).Files(context.Background())
	assert.Error(t, err)
}

func TestFileStoreRead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AAA.csv", yahooCSV)

	s, err := NewFileStore(dir).Read(context.Background(), "AAA.csv")
	require.NoError(t, err)

	assert.Equal(t, "AAA", s.Symbol)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), s.Bars[0].Date)
	assert.Equal(t, 100.5, s.Bars[0].AdjClose)
	assert.Equal(t, 101.0, s.Bars[0].Close)
	assert.Equal(t, 900.0, s.Bars[1].Volume)

	_, _, _, closes := s.Columns()
	assert.Equal(t, []float64{100.5, 99.9}, closes)
}

func TestFileStoreReadMatchesColumnsByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AAA.csv", "Adj Close,Low,High,Open\n10,9,11,9.5\n")

	s, err := NewFileStore(dir).Read(context.Background(), "AAA.csv")
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, models.Bar{Open: 9.5, High: 11, Low: 9, Close: 10, AdjClose: 10}, s.Bars[0])
}

func TestFileStoreReadTimestampedDates(t *testing.T) {
	dir := t.TempDir()
	est := time.FixedZone("", -5*60*60)
	day := time.Date(2021, 1, 4, 0, 0, 0, 0, est)
	body := "Date,Open,High,Low,Close,Adj Close,Volume\n"
	for i := 0; i < 20; i++ {
		body += day.AddDate(0, 0, i).Format("2006-01-02 15:04:05-07:00") + ",100,101.5,99.5,101,101,1000\n"
	}
	writeFile(t, dir, "AAA.csv", body)
	writeFile(t, dir, "BBB.csv", "Date,Open,High,Low,Close,Adj Close,Volume\n2021-01-04T00:00:00Z,1,2,0.5,1.5,1.5,10\nJan 5,1,2,0.5,1.5,1.5,10\n")
	store := NewFileStore(dir)

	s, err := store.Read(context.Background(), "AAA.csv")
	require.NoError(t, err)
	require.Equal(t, 20, s.Len())
	assert.True(t, s.Bars[0].Date.Equal(day), "got %s", s.Bars[0].Date)

	s, err = store.Read(context.Background(), "BBB.csv")
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), s.Bars[0].Date)
	assert.True(t, s.Bars[1].Date.IsZero())
	assert.Equal(t, 1.5, s.Bars[1].AdjClose)
}

func TestFileStoreReadErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "NOADJ.csv", "Date,Open,High,Low,Close,Volume\n2021-01-04,1,2,0.5,1.5,10\n")
	writeFile(t, dir, "BAD.csv", "Date,Open,High,Low,Close,Adj Close,Volume\n2021-01-04,abc,2,0.5,1.5,1.5,10\n")
	writeFile(t, dir, "GAP.csv", "Date,Open,High,Low,Close,Adj Close,Volume\n2021-01-04,,2,0.5,1.5,1.5,10\n")
	store := NewFileStore(dir)

	_, err := store.Read(context.Background(), "NOADJ.csv")
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = store.Read(context.Background(), "BAD.csv")
	assert.ErrorContains(t, err, "bad Open")

	_, err = store.Read(context.Background(), "GAP.csv")
	assert.ErrorContains(t, err, "empty Open")

	_, err = store.Read(context.Background(), "MISSING.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileStoreReadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AAA.csv", "")
	writeFile(t, dir, "BBB.csv", "Date,Open,High,Low,Close,Adj Close,Volume\n")

	store := NewFileStore(dir)
	s, err := store.Read(context.Background(), "AAA.csv")
	require.NoError(t, err)
	assert.Zero(t, s.Len())

	s, err = store.Read(context.Background(), "BBB.csv")
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestFileStoreSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Daily")
	store := NewFileStore(dir)
	in := models.Series{Symbol: "AAA", Bars: []models.Bar{
		{Date: time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), Open: 100, High: 101.5, Low: 99.5, Close: 101, AdjClose: 100.25, Volume: 1200},
	}}

	require.NoError(t, store.Save(context.Background(), in))

	raw, err := os.ReadFile(filepath.Join(dir, "AAA.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Date,Open,High,Low,Close,Adj Close,Volume\n2021-01-04,100,101.5,99.5,101,100.25,1200\n", string(raw))

	out, err := store.Read(context.Background(), "AAA.csv")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	files, err := store.Files(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA.csv"}, files, "no temp files left behind")
}

func TestFileStoreSaveReplaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AAA.csv", yahooCSV)
	store := NewFileStore(dir)

	require.NoError(t, store.Save(context.Background(), models.Series{Symbol: "AAA"}))

	s, err := store.Read(context.Background(), "AAA.csv")
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

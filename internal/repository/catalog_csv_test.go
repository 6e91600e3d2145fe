package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCSVCatalogLoad(t *testing.T) {
	p := writeFile(t, t.TempDir(), "sp500.csv",
		"AAA,Alpha Inc\n\nBBB,\"Beta, Corp\"\nCCC,Gamma,extra\n")

	cat, err := NewCSVCatalog(p).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, cat.Symbols())
	bbb, ok := cat.Get("BBB")
	require.True(t, ok)
	assert.Equal(t, "Beta, Corp", bbb.Company)
	assert.Empty(t, bbb.Signals)
}

func TestCSVCatalogDuplicateKeepsLastCompany(t *testing.T) {
	p := writeFile(t, t.TempDir(), "sp500.csv", "AAA,Old\nBBB,Beta\nAAA,New\n")

	cat, err := NewCSVCatalog(p).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "BBB"}, cat.Symbols())
	aaa, _ := cat.Get("AAA")
	assert.Equal(t, "New", aaa.Company)
}

func TestCSVCatalogMalformedRow(t *testing.T) {
	p := writeFile(t, t.TempDir(), "sp500.csv", "AAA,Alpha\nBBB\n")

	_, err := NewCSVCatalog(p).Load(context.Background())
	assert.ErrorIs(t, err, ErrMalformedCatalog)
}

func TestCSVCatalogMissingFile(t *testing.T) {
	_, err := NewCSVCatalog(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCSVCatalogEmptyFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "sp500.csv", "")

	cat, err := NewCSVCatalog(p).Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, cat.Len())
}

func TestCSVCatalogReloadIsFresh(t *testing.T) {
	p := writeFile(t, t.TempDir(), "sp500.csv", "AAA,Alpha\n")
	src := NewCSVCatalog(p)

	first, err := src.Load(context.Background())
	require.NoError(t, err)
	s, _ := first.Get("AAA")
	s.SetSignal("CDLDOJI", "bullish")

	second, err := src.Load(context.Background())
	require.NoError(t, err)
	s2, _ := second.Get("AAA")
	assert.Empty(t, s2.Signals)
}

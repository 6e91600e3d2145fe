package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"CandleScan/internal/domain/models"
	applogger "CandleScan/pkg/logger"
)

// ErrMalformedCatalog reports a catalog row without a company column.
var ErrMalformedCatalog = errors.New("malformed catalog row")

// CSVCatalog reads "symbol,company" rows without a header.
type CSVCatalog struct {
	path string
	l    *applogger.Logger
}

func NewCSVCatalog(path string) *CSVCatalog {
	return &CSVCatalog{path: path}
}

// SetLogger injects a structured logger.
func (c *CSVCatalog) SetLogger(l *applogger.Logger) { c.l = l }

// Load parses the whole file on every call. Blank rows are skipped, extra
// columns ignored, and a repeated symbol replaces the earlier company.
func (c *CSVCatalog) Load(ctx context.Context) (*models.Catalog, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer f.Close()

	cat, err := parseCatalog(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", c.path, err)
	}
	if c.l != nil {
		c.l.Debug("catalog loaded",
			applogger.String("path", c.path),
			applogger.Int("stocks", cat.Len()),
		)
	}
	return cat, nil
}

func parseCatalog(ctx context.Context, r io.Reader) (*models.Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	cat := models.NewCatalog()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if blank(rec) {
			continue
		}
		if len(rec) < 2 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w at line %d: %q", ErrMalformedCatalog, line, strings.Join(rec, ","))
		}
		cat.Put(strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]))
	}
	return cat, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"CandleScan/internal/domain/models"
	domrepo "CandleScan/internal/domain/repository"
	applogger "CandleScan/pkg/logger"
)

// ErrMissingColumn reports a price file lacking a required column.
var ErrMissingColumn = errors.New("missing column")

const dateLayout = "2006-01-02"

// dateLayouts are tried in order when reading; the first is what Save writes.
var dateLayouts = []string{dateLayout, "2006-01-02 15:04:05-07:00", time.RFC3339}

var priceHeader = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

// FileStore keeps one CSV per symbol in a flat directory.
type FileStore struct {
	dir string
	l   *applogger.Logger
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// SetLogger injects a structured logger.
func (s *FileStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *FileStore) Dir() string { return s.dir }

// Files lists regular files in the directory by name. Subdirectories and
// dot files are skipped.
func (s *FileStore) Files(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list price files: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Read parses one price file. Columns are matched by header name; Open,
// High, Low and Adj Close are required.
func (s *FileStore) Read(ctx context.Context, name string) (models.Series, error) {
	if err := ctx.Err(); err != nil {
		return models.Series{}, err
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return models.Series{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	series, err := parseSeries(f)
	if err != nil {
		return models.Series{}, fmt.Errorf("read %s: %w", name, err)
	}
	series.Symbol = domrepo.SymbolFromFile(name)
	return series, nil
}

type columnIndex struct {
	date, open, high, low, close, adjClose, volume int
}

func indexHeader(header []string) (columnIndex, error) {
	idx := columnIndex{-1, -1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case "Date":
			idx.date = i
		case "Open":
			idx.open = i
		case "High":
			idx.high = i
		case "Low":
			idx.low = i
		case "Close":
			idx.close = i
		case "Adj Close":
			idx.adjClose = i
		case "Volume":
			idx.volume = i
		}
	}
	required := []struct {
		name string
		pos  int
	}{{"Open", idx.open}, {"High", idx.high}, {"Low", idx.low}, {"Adj Close", idx.adjClose}}
	for _, r := range required {
		if r.pos < 0 {
			return idx, fmt.Errorf("%w %q", ErrMissingColumn, r.name)
		}
	}
	return idx, nil
}

func parseSeries(r io.Reader) (models.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return models.Series{}, nil
	}
	if err != nil {
		return models.Series{}, err
	}
	idx, err := indexHeader(header)
	if err != nil {
		return models.Series{}, err
	}

	var bars []models.Bar
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Series{}, err
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		b, err := parseBar(rec, idx)
		if err != nil {
			return models.Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	return models.Series{Bars: bars}, nil
}

func parseBar(rec []string, idx columnIndex) (models.Bar, error) {
	var b models.Bar
	var err error
	field := func(pos int) string {
		if pos < 0 || pos >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[pos])
	}
	number := func(name string, pos int, required bool) float64 {
		if err != nil {
			return 0
		}
		v := field(pos)
		if v == "" {
			if required {
				err = fmt.Errorf("empty %s", name)
			}
			return 0
		}
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			err = fmt.Errorf("bad %s %q: %w", name, v, perr)
		}
		return f
	}

	b.Open = number("Open", idx.open, true)
	b.High = number("High", idx.high, true)
	b.Low = number("Low", idx.low, true)
	b.AdjClose = number("Adj Close", idx.adjClose, true)
	b.Close = number("Close", idx.close, false)
	b.Volume = number("Volume", idx.volume, false)
	if err != nil {
		return b, err
	}
	b.Date = parseDate(field(idx.date))
	if idx.close < 0 {
		b.Close = b.AdjClose
	}
	return b, nil
}

// parseDate accepts the layouts seen in downloaded files. Date is not needed
// for classification, so an unrecognised value leaves it zero.
func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Save replaces the symbol's file atomically: rows go to a temporary file in
// the same directory which is then renamed over the target.
func (s *FileStore) Save(ctx context.Context, series models.Series) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	target := filepath.Join(s.dir, domrepo.FileForSymbol(series.Symbol))

	tmp, err := os.CreateTemp(s.dir, "."+series.Symbol+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", series.Symbol, err)
	}
	defer os.Remove(tmp.Name())

	if err := writeSeries(tmp, series); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", series.Symbol, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", series.Symbol, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("save %s: %w", series.Symbol, err)
	}
	if s.l != nil {
		s.l.Debug("price file written",
			applogger.String("symbol", series.Symbol),
			applogger.String("path", target),
			applogger.Int("rows", series.Len()),
		)
	}
	return nil
}

func writeSeries(w io.Writer, series models.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(priceHeader); err != nil {
		return err
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, b := range series.Bars {
		rec := []string{
			b.Date.Format(dateLayout),
			num(b.Open), num(b.High), num(b.Low), num(b.Close), num(b.AdjClose),
			strconv.FormatInt(int64(b.Volume), 10),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"CandleScan/internal/domain/models"
	pkghttp "CandleScan/pkg/http"
	applogger "CandleScan/pkg/logger"
)

// ErrNoData is returned when the chart API answers without bars.
var ErrNoData = errors.New("yahoo: no data returned")

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client downloads daily bars from the Yahoo Finance chart API.
type Client struct {
	http    *pkghttp.Client
	baseURL string
	now     func() time.Time
	l       *applogger.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithClock overrides the end of the requested range.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(httpClient *pkghttp.Client, l *applogger.Logger, opts ...Option) *Client {
	c := &Client{
		http:    httpClient,
		baseURL: DefaultBaseURL,
		now:     time.Now,
		l:       l,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return "yahoo" }

// Ticker maps a catalog symbol to Yahoo's spelling: share classes use a dash
// (BRK.B becomes BRK-B).
func Ticker(symbol string) string {
	return strings.ReplaceAll(strings.TrimSpace(symbol), ".", "-")
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily returns daily bars from start (inclusive) to now, oldest first.
// The result's Symbol is the catalog symbol, not the Yahoo ticker.
func (c *Client) FetchDaily(ctx context.Context, symbol string, start time.Time) (models.Series, error) {
	began := time.Now()
	ticker := Ticker(symbol)

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker),
		QueryParams: map[string][]string{
			"period1":              {strconv.FormatInt(start.Unix(), 10)},
			"period2":              {strconv.FormatInt(c.now().Unix(), 10)},
			"interval":             {"1d"},
			"events":               {"div,split"},
			"includeAdjustedClose": {"true"},
		},
	}, &resp)
	if err != nil {
		return models.Series{}, fmt.Errorf("yahoo %s: %w", ticker, err)
	}

	bars, err := resp.bars()
	if err != nil {
		return models.Series{}, fmt.Errorf("yahoo %s: %w", ticker, err)
	}

	c.l.Debug("yahoo chart fetched",
		applogger.String("symbol", symbol),
		applogger.String("ticker", ticker),
		applogger.Int("bars", len(bars)),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	return models.Series{Symbol: symbol, Bars: bars}, nil
}

func (r *chartResponse) bars() ([]models.Bar, error) {
	if e := r.Chart.Error; e != nil {
		return nil, fmt.Errorf("api error %s: %s", e.Code, e.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, ErrNoData
	}
	res := r.Chart.Result[0]
	if len(res.Timestamp) == 0 || len(res.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	q := res.Indicators.Quote[0]
	var adj []*float64
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}

	out := make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, h, l, cl := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if o == nil || h == nil || l == nil || cl == nil {
			// holidays and halted sessions come back as nulls
			continue
		}
		b := models.Bar{
			Date:     sessionDate(ts, res.Meta.GMTOffset),
			Open:     *o,
			High:     *h,
			Low:      *l,
			Close:    *cl,
			AdjClose: *cl,
		}
		if a := at(adj, i); a != nil {
			b.AdjClose = *a
		}
		if v := at(q.Volume, i); v != nil {
			b.Volume = *v
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return dedupeDates(out), nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

// sessionDate is the exchange-local calendar date of a bar, as a UTC midnight.
func sessionDate(ts, gmtOffset int64) time.Time {
	t := time.Unix(ts+gmtOffset, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dedupeDates keeps the last bar of each day; the live session can repeat
// the final date.
func dedupeDates(bars []models.Bar) []models.Bar {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

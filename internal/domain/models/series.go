package models

import "time"

// Bar is one trading day.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// Series is a daily price history ordered by date ascending.
type Series struct {
	Symbol string
	Bars   []Bar
}

func (s Series) Len() int { return len(s.Bars) }

// Columns splits the series into the inputs pattern functions take. The
// adjusted close stands in for the close.
func (s Series) Columns() (open, high, low, adjClose []float64) {
	n := len(s.Bars)
	open = make([]float64, n)
	high = make([]float64, n)
	low = make([]float64, n)
	adjClose = make([]float64, n)
	for i, b := range s.Bars {
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		adjClose[i] = b.AdjClose
	}
	return open, high, low, adjClose
}

// Span returns the oldest and newest dates, zero when empty.
func (s Series) Span() (from, to time.Time) {
	if len(s.Bars) == 0 {
		return time.Time{}, time.Time{}
	}
	return s.Bars[0].Date, s.Bars[len(s.Bars)-1].Date
}

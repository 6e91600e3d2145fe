package models

import (
	"math"
	"time"
)

type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// Classify maps the last pattern output to a signal by its sign. NaN is neutral.
func Classify(v float64) Signal {
	switch {
	case math.IsNaN(v):
		return SignalNeutral
	case v > 0:
		return SignalBullish
	case v < 0:
		return SignalBearish
	default:
		return SignalNeutral
	}
}

// Outcome is the evaluation of one price file. Exactly one of Signal and Err is set.
type Outcome struct {
	Symbol  string
	Pattern string
	Signal  Signal
	Value   float64
	Err     error
}

func (o Outcome) Failed() bool { return o.Err != nil }

// ScanResult is the catalog annotated by one pattern sweep.
type ScanResult struct {
	Pattern   string
	Catalog   *Catalog
	Outcomes  []Outcome
	ScannedAt time.Time
	Duration  time.Duration
}

// Tally counts outcomes by signal, failures under "failed".
func (r *ScanResult) Tally() map[string]int {
	out := make(map[string]int, 4)
	for _, o := range r.Outcomes {
		if o.Failed() {
			out["failed"]++
			continue
		}
		out[string(o.Signal)]++
	}
	return out
}

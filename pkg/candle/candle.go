// Package candle implements candlestick pattern recognition with TA-Lib
// compatible names and output convention: each function returns one value
// per input bar, +100 for a bullish match, -100 for a bearish match and 0
// otherwise. Values before the pattern's lookback are always 0.
package candle

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Func computes a pattern over open/high/low/close series of equal length.
type Func func(open, high, low, close []float64) []int

type rangeType int

const (
	realBody rangeType = iota
	highLow
	shadows
)

// setting mirrors TA-Lib's candle settings: which range is averaged,
// over how many preceding bars, and the multiplier applied.
type setting struct {
	rt     rangeType
	period int
	factor float64
}

// TA-Lib defaults.
var (
	bodyLong        = setting{realBody, 10, 1.0}
	bodyShort       = setting{realBody, 10, 1.0}
	bodyDoji        = setting{highLow, 10, 0.1}
	shadowLong      = setting{realBody, 0, 1.0}
	shadowVeryLong  = setting{realBody, 0, 2.0}
	shadowShort     = setting{shadows, 10, 1.0}
	shadowVeryShort = setting{highLow, 10, 0.1}
	near            = setting{highLow, 5, 0.2}
	far             = setting{highLow, 5, 0.6}
)

type avgKey struct {
	rt     rangeType
	period int
}

type ohlc struct {
	open, high, low, close []float64
	smas                   map[avgKey][]float64
}

func newOHLC(open, high, low, close []float64) *ohlc {
	return &ohlc{open: open, high: high, low: low, close: close, smas: make(map[avgKey][]float64)}
}

func (b *ohlc) len() int { return len(b.close) }

func (b *ohlc) realBody(i int) float64 { return math.Abs(b.close[i] - b.open[i]) }

func (b *ohlc) bodyTop(i int) float64 { return math.Max(b.open[i], b.close[i]) }

func (b *ohlc) bodyBottom(i int) float64 { return math.Min(b.open[i], b.close[i]) }

func (b *ohlc) upperShadow(i int) float64 { return b.high[i] - b.bodyTop(i) }

func (b *ohlc) lowerShadow(i int) float64 { return b.bodyBottom(i) - b.low[i] }

func (b *ohlc) highLowRange(i int) float64 { return b.high[i] - b.low[i] }

// color is 1 for a white (up) candle and -1 for a black one.
func (b *ohlc) color(i int) int {
	if b.close[i] >= b.open[i] {
		return 1
	}
	return -1
}

func (b *ohlc) white(i int) bool { return b.color(i) == 1 }

func (b *ohlc) black(i int) bool { return b.color(i) == -1 }

// bodyGapUp reports whether the real body of i sits entirely above the real body of j.
func (b *ohlc) bodyGapUp(i, j int) bool { return b.bodyBottom(i) > b.bodyTop(j) }

func (b *ohlc) bodyGapDown(i, j int) bool { return b.bodyTop(i) < b.bodyBottom(j) }

func (b *ohlc) candleGapUp(i, j int) bool { return b.low[i] > b.high[j] }

func (b *ohlc) candleGapDown(i, j int) bool { return b.high[i] < b.low[j] }

func (b *ohlc) rangeOf(rt rangeType, i int) float64 {
	switch rt {
	case realBody:
		return b.realBody(i)
	case highLow:
		return b.highLowRange(i)
	default:
		return b.upperShadow(i) + b.lowerShadow(i)
	}
}

// avg returns the reference length of setting s for bar i: the factor times
// the mean range of the s.period bars preceding i, or of bar i itself when
// the period is zero. Shadows are halved since a candle has two of them.
func (b *ohlc) avg(s setting, i int) float64 {
	var v float64
	if s.period == 0 {
		v = b.rangeOf(s.rt, i)
	} else {
		v = b.sma(s.rt, s.period)[i-1]
	}
	v *= s.factor
	if s.rt == shadows {
		v /= 2
	}
	return v
}

func (b *ohlc) sma(rt rangeType, period int) []float64 {
	key := avgKey{rt, period}
	if out, ok := b.smas[key]; ok {
		return out
	}
	ranges := make([]float64, b.len())
	for i := range ranges {
		ranges[i] = b.rangeOf(rt, i)
	}
	var out []float64
	if len(ranges) >= period {
		out = talib.Sma(ranges, period)
	} else {
		out = make([]float64, len(ranges))
	}
	b.smas[key] = out
	return out
}

// run evaluates at for every bar from lookback on. Shorter input yields all zeros.
func run(open, high, low, close []float64, lookback int, at func(b *ohlc, i int) int) []int {
	out := make([]int, len(close))
	if len(close) <= lookback {
		return out
	}
	b := newOHLC(open, high, low, close)
	for i := lookback; i < b.len(); i++ {
		out[i] = at(b, i)
	}
	return out
}

func maxPeriod(settings ...setting) int {
	m := 0
	for _, s := range settings {
		if s.period > m {
			m = s.period
		}
	}
	return m
}

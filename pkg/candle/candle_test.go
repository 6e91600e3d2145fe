package candle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bar struct{ o, h, l, c float64 }

// steady returns n identical white bars: body 1, range 2, shadows 0.5.
func steady(n int) []bar {
	out := make([]bar, n)
	for i := range out {
		out[i] = bar{o: 100, h: 101.5, l: 99.5, c: 101}
	}
	return out
}

func columns(bars []bar) (o, h, l, c []float64) {
	for _, b := range bars {
		o = append(o, b.o)
		h = append(h, b.h)
		l = append(l, b.l)
		c = append(c, b.c)
	}
	return
}

func lastOf(fn Func, bars []bar) int {
	out := fn(columns(bars))
	return out[len(out)-1]
}

func TestDoji(t *testing.T) {
	assert.Equal(t, 100, lastOf(Doji, append(steady(10), bar{100, 101, 99, 100.05})))
	assert.Equal(t, 0, lastOf(Doji, steady(11)))
}

func TestDragonflyAndGravestone(t *testing.T) {
	dragonfly := append(steady(10), bar{o: 101, h: 101.05, l: 99, c: 101.02})
	assert.Equal(t, 100, lastOf(DragonflyDoji, dragonfly))
	assert.Equal(t, 0, lastOf(GravestoneDoji, dragonfly))

	gravestone := append(steady(10), bar{o: 99, h: 101, l: 98.97, c: 99.02})
	assert.Equal(t, 100, lastOf(GravestoneDoji, gravestone))
	assert.Equal(t, 0, lastOf(DragonflyDoji, gravestone))
}

func TestHammerAndHangingMan(t *testing.T) {
	hammer := append(steady(11), bar{o: 99.6, h: 99.95, l: 98.5, c: 99.9})
	assert.Equal(t, 100, lastOf(Hammer, hammer))
	assert.Equal(t, 0, lastOf(HangingMan, hammer))

	hanging := append(steady(11), bar{o: 101.2, h: 101.55, l: 100, c: 101.5})
	assert.Equal(t, -100, lastOf(HangingMan, hanging))
	assert.Equal(t, 0, lastOf(Hammer, hanging))
}

func TestEngulfing(t *testing.T) {
	bullish := append(steady(10),
		bar{o: 101, h: 101.2, l: 99.8, c: 100},
		bar{o: 99.5, h: 101.6, l: 99.4, c: 101.5},
	)
	assert.Equal(t, 100, lastOf(Engulfing, bullish))

	bearish := append(steady(10),
		bar{o: 100, h: 101.2, l: 99.8, c: 101},
		bar{o: 101.5, h: 101.6, l: 99.4, c: 99.5},
	)
	assert.Equal(t, -100, lastOf(Engulfing, bearish))
}

func TestHarami(t *testing.T) {
	bars := append(steady(10),
		bar{o: 103, h: 103.1, l: 99.9, c: 100},
		bar{o: 101, h: 101.6, l: 100.9, c: 101.5},
	)
	assert.Equal(t, 100, lastOf(Harami, bars))
}

func TestMorningStar(t *testing.T) {
	bars := append(steady(10),
		bar{o: 104, h: 104.1, l: 99.9, c: 100},
		bar{o: 99.5, h: 99.6, l: 99.2, c: 99.3},
		bar{o: 99.6, h: 102.6, l: 99.5, c: 102.5},
	)
	assert.Equal(t, 100, lastOf(MorningStar, bars))
	assert.Equal(t, 0, lastOf(EveningStar, bars))
}

func TestThreeWhiteSoldiers(t *testing.T) {
	bars := append(steady(10),
		bar{o: 100, h: 102.05, l: 99.9, c: 102},
		bar{o: 101, h: 103.05, l: 100.9, c: 103},
		bar{o: 102, h: 104.05, l: 101.9, c: 104},
	)
	assert.Equal(t, 100, lastOf(ThreeWhiteSoldiers, bars))
}

func TestThreeBlackCrows(t *testing.T) {
	bars := append(steady(11),
		bar{o: 101, h: 101.05, l: 98.95, c: 99},
		bar{o: 100, h: 100.05, l: 97.95, c: 98},
		bar{o: 99, h: 99.05, l: 96.95, c: 97},
	)
	assert.Equal(t, -100, lastOf(ThreeBlackCrows, bars))
}

func TestMarubozu(t *testing.T) {
	assert.Equal(t, 100, lastOf(Marubozu, append(steady(10), bar{o: 100, h: 103.05, l: 99.95, c: 103})))
	assert.Equal(t, -100, lastOf(Marubozu, append(steady(10), bar{o: 103, h: 103.05, l: 99.95, c: 100})))
}

func TestShortInputYieldsZeros(t *testing.T) {
	o, h, l, c := columns(steady(5))
	for _, p := range All() {
		out, err := p.Compute(o, h, l, c)
		require.NoError(t, err, p.Name)
		assert.Equal(t, []int{0, 0, 0, 0, 0}, out, p.Name)
	}
}

func TestComputeLengthMismatch(t *testing.T) {
	p, err := Lookup("CDLDOJI")
	require.NoError(t, err)

	_, err = p.Compute([]float64{1, 2}, []float64{1, 2}, []float64{1}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestNoisySeriesStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bars := make([]bar, 250)
	price := 100.0
	for i := range bars {
		o := price
		c := o + rng.NormFloat64()
		h := max(o, c) + rng.Float64()
		l := min(o, c) - rng.Float64()
		bars[i] = bar{o: o, h: h, l: l, c: c}
		price = c
	}
	o, h, l, c := columns(bars)

	for _, p := range All() {
		out, err := p.Compute(o, h, l, c)
		require.NoError(t, err, p.Name)
		require.Len(t, out, len(bars), p.Name)
		for i, v := range out {
			assert.Contains(t, []int{-100, 0, 100}, v, "%s[%d]", p.Name, i)
			if i < p.Lookback {
				assert.Zero(t, v, "%s[%d] before lookback", p.Name, i)
			}
		}
	}
}

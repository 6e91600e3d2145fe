package candle

// Penetration defaults used by TA-Lib for star and cloud patterns.
const (
	starPenetration  = 0.3
	cloudPenetration = 0.5
)

var (
	engulfingLookback    = 2
	haramiLookback       = maxPeriod(bodyLong, bodyShort) + 1
	haramiCrossLookback  = maxPeriod(bodyLong, bodyDoji) + 1
	piercingLookback     = maxPeriod(bodyLong) + 1
	darkCloudLookback    = maxPeriod(bodyLong) + 1
	kickingLookback      = maxPeriod(bodyLong, shadowVeryShort) + 1
	morningStarLookback  = maxPeriod(bodyLong, bodyShort) + 2
	eveningStarLookback  = maxPeriod(bodyLong, bodyShort) + 2
	whiteSoldierLookback = maxPeriod(shadowVeryShort, bodyShort, near, far) + 2
	blackCrowsLookback   = maxPeriod(shadowVeryShort) + 3
	threeInsideLookback  = maxPeriod(bodyLong, bodyShort) + 2
	threeOutsideLookback = 3
)

// Engulfing flags a body that fully engulfs the opposite-colored body before it.
func Engulfing(open, high, low, close []float64) []int {
	return run(open, high, low, close, engulfingLookback, func(b *ohlc, i int) int {
		if engulfs(b, i) {
			return b.color(i) * 100
		}
		return 0
	})
}

func engulfs(b *ohlc, i int) bool {
	return (b.white(i) && b.black(i-1) && b.close[i] > b.open[i-1] && b.open[i] < b.close[i-1]) ||
		(b.black(i) && b.white(i-1) && b.open[i] > b.close[i-1] && b.close[i] < b.open[i-1])
}

func insideBody(b *ohlc, i, j int) bool {
	return b.bodyTop(i) < b.bodyTop(j) && b.bodyBottom(i) > b.bodyBottom(j)
}

// Harami flags a short body contained in the long body before it.
func Harami(open, high, low, close []float64) []int {
	return run(open, high, low, close, haramiLookback, func(b *ohlc, i int) int {
		if b.realBody(i-1) > b.avg(bodyLong, i-1) &&
			b.realBody(i) <= b.avg(bodyShort, i) &&
			insideBody(b, i, i-1) {
			return -b.color(i-1) * 100
		}
		return 0
	})
}

// HaramiCross is a harami whose second bar is a doji.
func HaramiCross(open, high, low, close []float64) []int {
	return run(open, high, low, close, haramiCrossLookback, func(b *ohlc, i int) int {
		if b.realBody(i-1) > b.avg(bodyLong, i-1) &&
			isDoji(b, i) &&
			insideBody(b, i, i-1) {
			return -b.color(i-1) * 100
		}
		return 0
	})
}

// Piercing is a long white bar opening below the prior low of a long black
// bar and closing past its midpoint.
func Piercing(open, high, low, close []float64) []int {
	return run(open, high, low, close, piercingLookback, func(b *ohlc, i int) int {
		if b.black(i-1) && b.realBody(i-1) > b.avg(bodyLong, i-1) &&
			b.white(i) && b.realBody(i) > b.avg(bodyLong, i) &&
			b.open[i] < b.low[i-1] &&
			b.close[i] < b.open[i-1] &&
			b.close[i] > b.close[i-1]+b.realBody(i-1)*cloudPenetration {
			return 100
		}
		return 0
	})
}

// DarkCloudCover is a black bar opening above the prior high of a long white
// bar and closing below its midpoint.
func DarkCloudCover(open, high, low, close []float64) []int {
	return run(open, high, low, close, darkCloudLookback, func(b *ohlc, i int) int {
		if b.white(i-1) && b.realBody(i-1) > b.avg(bodyLong, i-1) &&
			b.black(i) &&
			b.open[i] > b.high[i-1] &&
			b.close[i] > b.open[i-1] &&
			b.close[i] < b.close[i-1]-b.realBody(i-1)*cloudPenetration {
			return -100
		}
		return 0
	})
}

// Kicking is two opposite marubozu bars separated by a gap.
func Kicking(open, high, low, close []float64) []int {
	return run(open, high, low, close, kickingLookback, func(b *ohlc, i int) int {
		if b.color(i-1) != -b.color(i) || !marubozuShape(b, i-1) || !marubozuShape(b, i) {
			return 0
		}
		if (b.black(i-1) && b.candleGapUp(i, i-1)) || (b.white(i-1) && b.candleGapDown(i, i-1)) {
			return b.color(i) * 100
		}
		return 0
	})
}

// MorningStar is a long black bar, a short bar gapping down and a white bar
// closing well into the first body.
func MorningStar(open, high, low, close []float64) []int {
	return run(open, high, low, close, morningStarLookback, func(b *ohlc, i int) int {
		if b.realBody(i-2) > b.avg(bodyLong, i-2) && b.black(i-2) &&
			b.realBody(i-1) <= b.avg(bodyShort, i-1) && b.bodyGapDown(i-1, i-2) &&
			b.realBody(i) > b.avg(bodyShort, i) && b.white(i) &&
			b.close[i] > b.close[i-2]+b.realBody(i-2)*starPenetration {
			return 100
		}
		return 0
	})
}

// EveningStar mirrors MorningStar at a top.
func EveningStar(open, high, low, close []float64) []int {
	return run(open, high, low, close, eveningStarLookback, func(b *ohlc, i int) int {
		if b.realBody(i-2) > b.avg(bodyLong, i-2) && b.white(i-2) &&
			b.realBody(i-1) <= b.avg(bodyShort, i-1) && b.bodyGapUp(i-1, i-2) &&
			b.realBody(i) > b.avg(bodyShort, i) && b.black(i) &&
			b.close[i] < b.close[i-2]-b.realBody(i-2)*starPenetration {
			return -100
		}
		return 0
	})
}

// ThreeWhiteSoldiers is three rising white bars, each opening within the
// previous body and closing near its high.
func ThreeWhiteSoldiers(open, high, low, close []float64) []int {
	return run(open, high, low, close, whiteSoldierLookback, func(b *ohlc, i int) int {
		for k := i - 2; k <= i; k++ {
			if !b.white(k) || b.upperShadow(k) >= b.avg(shadowVeryShort, k) {
				return 0
			}
		}
		if b.close[i] > b.close[i-1] && b.close[i-1] > b.close[i-2] &&
			b.open[i-1] > b.open[i-2] && b.open[i-1] <= b.close[i-2]+b.avg(near, i-2) &&
			b.open[i] > b.open[i-1] && b.open[i] <= b.close[i-1]+b.avg(near, i-1) &&
			b.realBody(i-1) > b.realBody(i-2)-b.avg(far, i-2) &&
			b.realBody(i) > b.realBody(i-1)-b.avg(far, i-1) &&
			b.realBody(i) > b.avg(bodyShort, i) {
			return 100
		}
		return 0
	})
}

// ThreeBlackCrows is three falling black bars closing near their lows after a white bar.
func ThreeBlackCrows(open, high, low, close []float64) []int {
	return run(open, high, low, close, blackCrowsLookback, func(b *ohlc, i int) int {
		if !b.white(i - 3) {
			return 0
		}
		for k := i - 2; k <= i; k++ {
			if !b.black(k) || b.lowerShadow(k) >= b.avg(shadowVeryShort, k) {
				return 0
			}
		}
		if b.open[i-1] < b.open[i-2] && b.open[i-1] > b.close[i-2] &&
			b.open[i] < b.open[i-1] && b.open[i] > b.close[i-1] &&
			b.high[i-3] > b.close[i-2] &&
			b.close[i-2] > b.close[i-1] && b.close[i-1] > b.close[i] {
			return -100
		}
		return 0
	})
}

// ThreeInside is a harami confirmed by a third bar closing beyond the first open.
func ThreeInside(open, high, low, close []float64) []int {
	return run(open, high, low, close, threeInsideLookback, func(b *ohlc, i int) int {
		if b.realBody(i-2) <= b.avg(bodyLong, i-2) ||
			b.realBody(i-1) > b.avg(bodyShort, i-1) ||
			!insideBody(b, i-1, i-2) {
			return 0
		}
		if (b.white(i-2) && b.black(i) && b.close[i] < b.open[i-2]) ||
			(b.black(i-2) && b.white(i) && b.close[i] > b.open[i-2]) {
			return -b.color(i-2) * 100
		}
		return 0
	})
}

// ThreeOutside is an engulfing pair confirmed by a third bar in the same direction.
func ThreeOutside(open, high, low, close []float64) []int {
	return run(open, high, low, close, threeOutsideLookback, func(b *ohlc, i int) int {
		if !engulfs(b, i-1) {
			return 0
		}
		if (b.white(i-1) && b.close[i] > b.close[i-1]) || (b.black(i-1) && b.close[i] < b.close[i-1]) {
			return b.color(i-1) * 100
		}
		return 0
	})
}

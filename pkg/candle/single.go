package candle

var (
	dojiLookback          = maxPeriod(bodyDoji)
	dragonflyLookback     = maxPeriod(bodyDoji, shadowVeryShort)
	gravestoneLookback    = maxPeriod(bodyDoji, shadowVeryShort)
	longLeggedLookback    = maxPeriod(bodyDoji, shadowLong)
	takuriLookback        = maxPeriod(bodyDoji, shadowVeryShort, shadowVeryLong)
	rickshawLookback      = maxPeriod(bodyDoji, shadowLong, near)
	hammerLookback        = maxPeriod(bodyShort, shadowLong, shadowVeryShort, near) + 1
	hangingManLookback    = maxPeriod(bodyShort, shadowLong, shadowVeryShort, near) + 1
	invertedHammerLookbk  = maxPeriod(bodyShort, shadowLong, shadowVeryShort) + 1
	shootingStarLookback  = maxPeriod(bodyShort, shadowLong, shadowVeryShort) + 1
	spinningTopLookback   = maxPeriod(bodyShort)
	highWaveLookback      = maxPeriod(bodyShort, shadowVeryLong)
	longLineLookback      = maxPeriod(bodyLong, shadowShort)
	shortLineLookback     = maxPeriod(bodyShort, shadowShort)
	marubozuLookback      = maxPeriod(bodyLong, shadowVeryShort)
	closingMarubozuLookbk = maxPeriod(bodyLong, shadowVeryShort)
	beltHoldLookback      = maxPeriod(bodyLong, shadowVeryShort)
)

func isDoji(b *ohlc, i int) bool { return b.realBody(i) <= b.avg(bodyDoji, i) }

// Doji flags a bar whose real body is negligible against its range.
func Doji(open, high, low, close []float64) []int {
	return run(open, high, low, close, dojiLookback, func(b *ohlc, i int) int {
		if isDoji(b, i) {
			return 100
		}
		return 0
	})
}

// DragonflyDoji is a doji with no upper shadow and a visible lower one.
func DragonflyDoji(open, high, low, close []float64) []int {
	return run(open, high, low, close, dragonflyLookback, func(b *ohlc, i int) int {
		if isDoji(b, i) &&
			b.upperShadow(i) < b.avg(shadowVeryShort, i) &&
			b.lowerShadow(i) > b.avg(shadowVeryShort, i) {
			return 100
		}
		return 0
	})
}

// GravestoneDoji is a doji with no lower shadow and a visible upper one.
func GravestoneDoji(open, high, low, close []float64) []int {
	return run(open, high, low, close, gravestoneLookback, func(b *ohlc, i int) int {
		if isDoji(b, i) &&
			b.lowerShadow(i) < b.avg(shadowVeryShort, i) &&
			b.upperShadow(i) > b.avg(shadowVeryShort, i) {
			return 100
		}
		return 0
	})
}

// LongLeggedDoji is a doji with at least one long shadow.
func LongLeggedDoji(open, high, low, close []float64) []int {
	return run(open, high, low, close, longLeggedLookback, func(b *ohlc, i int) int {
		if isDoji(b, i) &&
			(b.lowerShadow(i) > b.avg(shadowLong, i) || b.upperShadow(i) > b.avg(shadowLong, i)) {
			return 100
		}
		return 0
	})
}

// Takuri is a dragonfly doji with a very long lower shadow.
func Takuri(open, high, low, close []float64) []int {
	return run(open, high, low, close, takuriLookback, func(b *ohlc, i int) int {
		if isDoji(b, i) &&
			b.upperShadow(i) < b.avg(shadowVeryShort, i) &&
			b.lowerShadow(i) > b.avg(shadowVeryLong, i) {
			return 100
		}
		return 0
	})
}

// RickshawMan is a long legged doji whose body sits near the middle of the range.
func RickshawMan(open, high, low, close []float64) []int {
	return run(open, high, low, close, rickshawLookback, func(b *ohlc, i int) int {
		mid := b.low[i] + b.highLowRange(i)/2
		if isDoji(b, i) &&
			b.lowerShadow(i) > b.avg(shadowLong, i) &&
			b.upperShadow(i) > b.avg(shadowLong, i) &&
			b.bodyBottom(i) <= mid+b.avg(near, i) &&
			b.bodyTop(i) >= mid-b.avg(near, i) {
			return 100
		}
		return 0
	})
}

func hammerShape(b *ohlc, i int) bool {
	return b.realBody(i) < b.avg(bodyShort, i) &&
		b.lowerShadow(i) > b.avg(shadowLong, i) &&
		b.upperShadow(i) < b.avg(shadowVeryShort, i)
}

// Hammer is a small body with a long lower shadow at or below the prior low.
func Hammer(open, high, low, close []float64) []int {
	return run(open, high, low, close, hammerLookback, func(b *ohlc, i int) int {
		if hammerShape(b, i) && b.bodyBottom(i) <= b.low[i-1]+b.avg(near, i-1) {
			return 100
		}
		return 0
	})
}

// HangingMan is the hammer shape printed at or above the prior high.
func HangingMan(open, high, low, close []float64) []int {
	return run(open, high, low, close, hangingManLookback, func(b *ohlc, i int) int {
		if hammerShape(b, i) && b.bodyBottom(i) >= b.high[i-1]-b.avg(near, i-1) {
			return -100
		}
		return 0
	})
}

func invertedShape(b *ohlc, i int) bool {
	return b.realBody(i) < b.avg(bodyShort, i) &&
		b.upperShadow(i) > b.avg(shadowLong, i) &&
		b.lowerShadow(i) < b.avg(shadowVeryShort, i)
}

// InvertedHammer is a small body with a long upper shadow gapping down.
func InvertedHammer(open, high, low, close []float64) []int {
	return run(open, high, low, close, invertedHammerLookbk, func(b *ohlc, i int) int {
		if invertedShape(b, i) && b.bodyGapDown(i, i-1) {
			return 100
		}
		return 0
	})
}

// ShootingStar is a small body with a long upper shadow gapping up.
func ShootingStar(open, high, low, close []float64) []int {
	return run(open, high, low, close, shootingStarLookback, func(b *ohlc, i int) int {
		if invertedShape(b, i) && b.bodyGapUp(i, i-1) {
			return -100
		}
		return 0
	})
}

// SpinningTop is a small body with shadows longer than the body.
func SpinningTop(open, high, low, close []float64) []int {
	return run(open, high, low, close, spinningTopLookback, func(b *ohlc, i int) int {
		rb := b.realBody(i)
		if rb < b.avg(bodyShort, i) && b.upperShadow(i) > rb && b.lowerShadow(i) > rb {
			return b.color(i) * 100
		}
		return 0
	})
}

// HighWave is a small body with very long shadows on both sides.
func HighWave(open, high, low, close []float64) []int {
	return run(open, high, low, close, highWaveLookback, func(b *ohlc, i int) int {
		if b.realBody(i) < b.avg(bodyShort, i) &&
			b.upperShadow(i) > b.avg(shadowVeryLong, i) &&
			b.lowerShadow(i) > b.avg(shadowVeryLong, i) {
			return b.color(i) * 100
		}
		return 0
	})
}

// LongLine is a long body with short shadows.
func LongLine(open, high, low, close []float64) []int {
	return run(open, high, low, close, longLineLookback, func(b *ohlc, i int) int {
		if b.realBody(i) > b.avg(bodyLong, i) &&
			b.upperShadow(i) < b.avg(shadowShort, i) &&
			b.lowerShadow(i) < b.avg(shadowShort, i) {
			return b.color(i) * 100
		}
		return 0
	})
}

// ShortLine is a short body with short shadows.
func ShortLine(open, high, low, close []float64) []int {
	return run(open, high, low, close, shortLineLookback, func(b *ohlc, i int) int {
		if b.realBody(i) < b.avg(bodyShort, i) &&
			b.upperShadow(i) < b.avg(shadowShort, i) &&
			b.lowerShadow(i) < b.avg(shadowShort, i) {
			return b.color(i) * 100
		}
		return 0
	})
}

func marubozuShape(b *ohlc, i int) bool {
	return b.realBody(i) > b.avg(bodyLong, i) &&
		b.upperShadow(i) < b.avg(shadowVeryShort, i) &&
		b.lowerShadow(i) < b.avg(shadowVeryShort, i)
}

// Marubozu is a long body with (almost) no shadows.
func Marubozu(open, high, low, close []float64) []int {
	return run(open, high, low, close, marubozuLookback, func(b *ohlc, i int) int {
		if marubozuShape(b, i) {
			return b.color(i) * 100
		}
		return 0
	})
}

// ClosingMarubozu is a long body with no shadow on the closing side.
func ClosingMarubozu(open, high, low, close []float64) []int {
	return run(open, high, low, close, closingMarubozuLookbk, func(b *ohlc, i int) int {
		if b.realBody(i) <= b.avg(bodyLong, i) {
			return 0
		}
		if (b.white(i) && b.upperShadow(i) < b.avg(shadowVeryShort, i)) ||
			(b.black(i) && b.lowerShadow(i) < b.avg(shadowVeryShort, i)) {
			return b.color(i) * 100
		}
		return 0
	})
}

// BeltHold is a long body with no shadow on the opening side.
func BeltHold(open, high, low, close []float64) []int {
	return run(open, high, low, close, beltHoldLookback, func(b *ohlc, i int) int {
		if b.realBody(i) <= b.avg(bodyLong, i) {
			return 0
		}
		if (b.white(i) && b.lowerShadow(i) < b.avg(shadowVeryShort, i)) ||
			(b.black(i) && b.upperShadow(i) < b.avg(shadowVeryShort, i)) {
			return b.color(i) * 100
		}
		return 0
	})
}

package candle

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownPattern = errors.New("candle: unknown pattern")
	ErrLengthMismatch = errors.New("candle: input series differ in length")
)

// Pattern is a named entry of the registry.
type Pattern struct {
	Name     string // TA-Lib identifier, e.g. CDLENGULFING
	Label    string // human readable name
	Lookback int    // bars consumed before the first non-zero output is possible
	fn       Func
}

// Compute runs the pattern after checking that the series line up.
func (p Pattern) Compute(open, high, low, close []float64) ([]int, error) {
	n := len(close)
	if len(open) != n || len(high) != n || len(low) != n {
		return nil, fmt.Errorf("%s: %w", p.Name, ErrLengthMismatch)
	}
	return p.fn(open, high, low, close), nil
}

var registry = map[string]Pattern{}

func register(name, label string, lookback int, fn Func) {
	registry[name] = Pattern{Name: name, Label: label, Lookback: lookback, fn: fn}
}

func init() {
	register("CDL3BLACKCROWS", "Three Black Crows", blackCrowsLookback, ThreeBlackCrows)
	register("CDL3INSIDE", "Three Inside Up/Down", threeInsideLookback, ThreeInside)
	register("CDL3OUTSIDE", "Three Outside Up/Down", threeOutsideLookback, ThreeOutside)
	register("CDL3WHITESOLDIERS", "Three Advancing White Soldiers", whiteSoldierLookback, ThreeWhiteSoldiers)
	register("CDLBELTHOLD", "Belt-hold", beltHoldLookback, BeltHold)
	register("CDLCLOSINGMARUBOZU", "Closing Marubozu", closingMarubozuLookbk, ClosingMarubozu)
	register("CDLDARKCLOUDCOVER", "Dark Cloud Cover", darkCloudLookback, DarkCloudCover)
	register("CDLDOJI", "Doji", dojiLookback, Doji)
	register("CDLDRAGONFLYDOJI", "Dragonfly Doji", dragonflyLookback, DragonflyDoji)
	register("CDLENGULFING", "Engulfing Pattern", engulfingLookback, Engulfing)
	register("CDLEVENINGSTAR", "Evening Star", eveningStarLookback, EveningStar)
	register("CDLGRAVESTONEDOJI", "Gravestone Doji", gravestoneLookback, GravestoneDoji)
	register("CDLHAMMER", "Hammer", hammerLookback, Hammer)
	register("CDLHANGINGMAN", "Hanging Man", hangingManLookback, HangingMan)
	register("CDLHARAMI", "Harami Pattern", haramiLookback, Harami)
	register("CDLHARAMICROSS", "Harami Cross Pattern", haramiCrossLookback, HaramiCross)
	register("CDLHIGHWAVE", "High-Wave Candle", highWaveLookback, HighWave)
	register("CDLINVERTEDHAMMER", "Inverted Hammer", invertedHammerLookbk, InvertedHammer)
	register("CDLKICKING", "Kicking", kickingLookback, Kicking)
	register("CDLLONGLEGGEDDOJI", "Long Legged Doji", longLeggedLookback, LongLeggedDoji)
	register("CDLLONGLINE", "Long Line Candle", longLineLookback, LongLine)
	register("CDLMARUBOZU", "Marubozu", marubozuLookback, Marubozu)
	register("CDLMORNINGSTAR", "Morning Star", morningStarLookback, MorningStar)
	register("CDLPIERCING", "Piercing Pattern", piercingLookback, Piercing)
	register("CDLRICKSHAWMAN", "Rickshaw Man", rickshawLookback, RickshawMan)
	register("CDLSHOOTINGSTAR", "Shooting Star", shootingStarLookback, ShootingStar)
	register("CDLSHORTLINE", "Short Line Candle", shortLineLookback, ShortLine)
	register("CDLSPINNINGTOP", "Spinning Top", spinningTopLookback, SpinningTop)
	register("CDLTAKURI", "Takuri (Dragonfly Doji with very long lower shadow)", takuriLookback, Takuri)
}

// Lookup resolves a pattern identifier. Names are case sensitive.
func Lookup(name string) (Pattern, error) {
	p, ok := registry[name]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	return p, nil
}

// IsKnown reports whether name is a registered pattern.
func IsKnown(name string) bool {
	_, ok := registry[name]
	return ok
}

// All returns every registered pattern sorted by name.
func All() []Pattern {
	out := make([]Pattern, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

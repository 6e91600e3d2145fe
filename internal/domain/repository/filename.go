package repository

import "strings"

// SymbolFromFile derives a symbol from a price file name: everything before
// the first dot, so "AAPL.csv" is AAPL and "BRK.B.csv" is BRK.
func SymbolFromFile(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// FileForSymbol is the price file name written for symbol.
func FileForSymbol(symbol string) string {
	return symbol + ".csv"
}

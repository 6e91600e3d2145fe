package models

// Stock is one catalog entry. Signals holds a classification per pattern
// for symbols that could be evaluated; Failures records why a symbol could
// not be, so "neutral" and "not evaluated" stay distinguishable.
type Stock struct {
	Symbol   string
	Company  string
	Signals  map[string]Signal
	Failures map[string]string
}

func NewStock(symbol, company string) *Stock {
	return &Stock{
		Symbol:   symbol,
		Company:  company,
		Signals:  make(map[string]Signal),
		Failures: make(map[string]string),
	}
}

// SetSignal stores the classification for pattern and clears any failure.
func (s *Stock) SetSignal(pattern string, sig Signal) {
	s.Signals[pattern] = sig
	delete(s.Failures, pattern)
}

// SetFailure records that pattern could not be evaluated for this stock.
func (s *Stock) SetFailure(pattern string, err error) {
	delete(s.Signals, pattern)
	s.Failures[pattern] = err.Error()
}

// Signal returns the classification for pattern, if any.
func (s *Stock) Signal(pattern string) (Signal, bool) {
	sig, ok := s.Signals[pattern]
	return sig, ok
}

// Catalog maps symbols to stocks and remembers the order they were listed in.
type Catalog struct {
	order  []string
	stocks map[string]*Stock
}

func NewCatalog() *Catalog {
	return &Catalog{stocks: make(map[string]*Stock)}
}

// Put adds or replaces a stock. A repeated symbol keeps its first position.
func (c *Catalog) Put(symbol, company string) {
	if _, ok := c.stocks[symbol]; !ok {
		c.order = append(c.order, symbol)
	}
	c.stocks[symbol] = NewStock(symbol, company)
}

func (c *Catalog) Get(symbol string) (*Stock, bool) {
	s, ok := c.stocks[symbol]
	return s, ok
}

func (c *Catalog) Len() int { return len(c.order) }

// Symbols returns the symbols in listing order.
func (c *Catalog) Symbols() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Stocks returns the stocks in listing order.
func (c *Catalog) Stocks() []*Stock {
	out := make([]*Stock, 0, len(c.order))
	for _, sym := range c.order {
		out = append(out, c.stocks[sym])
	}
	return out
}

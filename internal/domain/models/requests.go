package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type IndexRequest struct {
	Pattern string `query:"pattern" json:"pattern"`
}

type ScanRequest struct {
	Pattern  string `query:"pattern" json:"pattern" validate:"required,candle_pattern"`
	Signal   string `query:"signal" json:"signal" validate:"omitempty,oneof=bullish bearish neutral"`
	Failures bool   `query:"failures" json:"failures"`
}

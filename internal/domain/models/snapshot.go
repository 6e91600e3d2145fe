package models

import "time"

// SnapshotEvent announces that a symbol's daily file was rewritten.
type SnapshotEvent struct {
	RunID       string    `json:"run_id"`
	Symbol      string    `json:"symbol"`
	Rows        int       `json:"rows"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// SymbolFailure is a symbol the refresh could not update.
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// SnapshotReport summarises one refresh sweep.
type SnapshotReport struct {
	RunID     string          `json:"run_id"`
	Symbols   int             `json:"symbols"`
	Refreshed int             `json:"refreshed"`
	Rows      int             `json:"rows"`
	Failed    []SymbolFailure `json:"failed,omitempty"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"-"`
	TookMS    int64           `json:"duration_ms"`
}

// Finish stamps the elapsed time since StartedAt.
func (r *SnapshotReport) Finish(now time.Time) {
	r.Duration = now.Sub(r.StartedAt)
	r.TookMS = r.Duration.Milliseconds()
}

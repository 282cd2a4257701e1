package models

import "time"

// Sample is a single timestamped measurement. Timestamp is always UTC.
type Sample struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Metadata  string    `json:"metadata"`
}

// SampleRow is the caller-facing shape of a sample. Timestamp is RFC3339 text.
type SampleRow struct {
	ID        int64   `json:"id"`
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Metadata  string  `json:"metadata"`
}

// Row renders the sample for callers outside the data layer.
func (s Sample) Row() SampleRow {
	return SampleRow{
		ID:        s.ID,
		Timestamp: s.Timestamp.UTC().Format(time.RFC3339Nano),
		Value:     s.Value,
		Metadata:  s.Metadata,
	}
}

// Reading is one datum arriving at the background listener.
type Reading struct {
	Timestamp int64   `json:"timestamp"` // milliseconds since the Unix epoch
	Channel   string  `json:"channel"`
	Value     float64 `json:"value"`
}

// Label is the metadata a reading is stored under.
func (r Reading) Label() string {
	return "ch" + r.Channel
}

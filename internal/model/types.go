// Package model defines shared data structures.
package model

import "time"

// Config defines generation settings.
type Config struct {
	Window     int
	Length     int
	Initial    string
	Seeded     bool
	Seed       int64
	CorpusPath string
	Filter     string
	History    bool
	Wrap       bool
}

// HistoryConfig defines filters for the history report.
type HistoryConfig struct {
	Corpus string
	Since  *time.Time
	Last   int
}

// RunStats captures a completed generation run.
type RunStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	CorpusPath string
	Window     int
	Length     int
	Seeded     bool
	Seed       int64
	Initial    string
	Output     string
	Windows    int
	Fallbacks  int
	DurationMs int64
}

// CharCount stores how often a character appeared in generated output.
type CharCount struct {
	Char  string
	Count int
}

// CharAggregate aggregates output character counts across runs.
type CharAggregate struct {
	Char  string
	Count int
	Runs  int
}

// RunAggregate summarizes a run for reporting.
type RunAggregate struct {
	RunID      int64
	EndedAt    time.Time
	CorpusPath string
	Window     int
	Length     int
	Seeded     bool
	Windows    int
	Fallbacks  int
	DurationMs int64
	Output     string
}

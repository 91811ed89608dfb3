package models

import "time"

// RunStatus is the content of data/status.json.
type RunStatus struct {
	LastUpdated time.Time  `json:"last_updated"`
	LastRun     *RunReport `json:"last_run,omitempty"`
	TotalRuns   int64      `json:"total_runs"`
}

// RunReport summarizes a single pipeline run.
type RunReport struct {
	Trigger      string        `json:"trigger"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	Candidates   int           `json:"candidates"`
	Fresh        int           `json:"fresh"`
	MemorySize   int           `json:"memory_size"`
	Updated      int           `json:"updated"`
	Created      int           `json:"created"`
	Reclaimed    int           `json:"reclaimed"`
	Deregistered int           `json:"deregistered"`
	Failures     int           `json:"failures"`
	Error        string        `json:"error,omitempty"`
}

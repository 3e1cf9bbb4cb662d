package pipeline

import (
	"encoding/json"
	"os"
	"time"
)

// RunStatus is the finalized verdict of one pipeline run.
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusPartial RunStatus = "partial"
	StatusError   RunStatus = "error"
)

// StageError is one stage failure tagged with its origin.
type StageError struct {
	Stage   string `json:"stage"`
	Fatal   bool   `json:"fatal"`
	Message string `json:"message"`
}

// Stats are the run-level counters accumulated by stages.
type Stats map[string]int

// RunResult accumulates while stages execute and is finalized exactly once.
// Callers must branch on Status before trusting any other field: an error
// run carries zero-value outputs plus the error list.
type RunResult struct {
	RunID           string         `json:"run_id"`
	Status          RunStatus      `json:"status"`
	StageOutputs    map[string]any `json:"stage_outputs,omitempty"`
	Errors          []StageError   `json:"errors"`
	Stats           Stats          `json:"stats"`
	DurationSeconds float64        `json:"duration_seconds"`
	Degraded        bool           `json:"degraded"`

	finalized bool
}

func newRunResult(runID string) *RunResult {
	return &RunResult{
		RunID:        runID,
		StageOutputs: make(map[string]any),
		Errors:       []StageError{},
		Stats:        Stats{},
	}
}

// Output returns a named stage output, nil when absent or the run errored.
func (r *RunResult) Output(stage string) any {
	if r == nil || r.Status == StatusError {
		return nil
	}
	return r.StageOutputs[stage]
}

// HasFatalError reports whether any fatal stage failed.
func (r *RunResult) HasFatalError() bool {
	for _, e := range r.Errors {
		if e.Fatal {
			return true
		}
	}
	return false
}

// finalize derives the final status and freezes the result. Calling it a
// second time is a no-op so a deferred finalize cannot double-fire.
func (r *RunResult) finalize(started time.Time) {
	if r.finalized {
		return
	}
	r.finalized = true
	r.DurationSeconds = time.Since(started).Seconds()

	switch {
	case r.HasFatalError():
		r.Status = StatusError
		// Callers must not trust partial outputs of an aborted run.
		r.StageOutputs = map[string]any{}
		r.Stats = Stats{}
	case len(r.Errors) > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusSuccess
	}
}

// DumpToTmpFile writes the finalized result to a temporary JSON file.
func (r *RunResult) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "run_result_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

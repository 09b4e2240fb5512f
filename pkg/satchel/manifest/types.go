// Package manifest keeps a history of satchel runs on the filesystem, one
// JSON file per run.
package manifest

import "time"

// Status is the overall result of a run.
type Status string

const (
	// StatusSucceeded means every item was transformed.
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the run stopped early. Items before the failure
	// may still have produced output.
	StatusFailed Status = "failed"
)

// Entry is a recorded run.
type Entry struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Source       string        `json:"source"`
	Target       string        `json:"target"`
	Status       Status        `json:"status"`
	Error        string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration"`
	Items        []ItemRecord  `json:"items"`
	Intermediate []string      `json:"intermediate,omitempty"`
	Summary      Summary       `json:"summary"`
}

// ItemRecord is one transformed file.
type ItemRecord struct {
	Input      string `json:"input"`
	Category   string `json:"category"`
	Output     string `json:"output,omitempty"`
	InputSize  int64  `json:"input_size"`
	OutputSize int64  `json:"output_size"`
	Error      string `json:"error,omitempty"`
}

// Summary holds run totals.
type Summary struct {
	Items       int   `json:"items"`
	Succeeded   int   `json:"succeeded"`
	Failed      int   `json:"failed"`
	InputBytes  int64 `json:"input_bytes"`
	OutputBytes int64 `json:"output_bytes"`
}

// Run is what a caller records. ID, timestamp and summary are filled in.
type Run struct {
	Source       string
	Target       string
	Started      time.Time
	Err          error
	Items        []ItemRecord
	Intermediate []string
}

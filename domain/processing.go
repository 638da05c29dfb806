// SPDX-License-Identifier: GPL-3.0-or-later
package domain

type ProcessingStatus string

const (
	StatusPending    = ProcessingStatus("pending")
	StatusInProgress = ProcessingStatus("in_progress")
	StatusSuccess    = ProcessingStatus("success")
	StatusFailed     = ProcessingStatus("failed")
	StatusSkipped    = ProcessingStatus("skipped")
)

func (s ProcessingStatus) Final() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusSkipped
}

type BatchState string

const (
	BatchIdle      = BatchState("idle")
	BatchRunning   = BatchState("running")
	BatchCompleted = BatchState("completed")
	BatchStopped   = BatchState("stopped")
	BatchErrored   = BatchState("errored")
)

type LogLevel string

const (
	LevelDebug   = LogLevel("debug")
	LevelInfo    = LogLevel("info")
	LevelSuccess = LogLevel("success")
	LevelWarning = LogLevel("warning")
	LevelError   = LogLevel("error")
)

// ProcessingResult is the outcome of one message. ArtifactPath and
// ErrorMessage are empty when not applicable.
type ProcessingResult struct {
	Subject      string
	Sender       string
	Status       ProcessingStatus
	ArtifactPath string
	ErrorMessage string
}

type ProcessingStats struct {
	Total     int
	Processed int
	Success   int
	Failed    int
	Skipped   int
}

func (s ProcessingStats) ProgressPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.Total) * 100
}

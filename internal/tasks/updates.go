package tasks

import "fmt"

// ProgressUpdate represents a progress event during a housekeeping pass.
//
// Used to send updates to the CLI or server log for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current pass number
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data (a *SweepResult once a pass ends)
}

// Operation phase enumeration
type Phase int

const (
	SweepStarted Phase = iota
	SweepFinished
	SweepFailed
)

func (p Phase) String() string {
	switch p {
	case SweepStarted:
		return "sweep_started"
	case SweepFinished:
		return "sweep_finished"
	case SweepFailed:
		return "sweep_failed"
	default:
		return ""
	}
}

func sweepStartedUpdate(step int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SweepStarted,
		Step:    step,
		Message: "Removing expired sessions...",
	}
}

func sweepFinishedUpdate(step int, result *SweepResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SweepFinished,
		Step:    step,
		Message: fmt.Sprintf("✓ removed %d expired session(s)", result.Removed),
		Data:    result,
	}
}

func sweepFailedUpdate(step int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SweepFailed,
		Step:    step,
		Message: fmt.Sprintf("✗ session sweep failed: %v", err),
	}
}

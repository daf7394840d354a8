package domain

// Phase is the lifecycle state of an attempt.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseReady       Phase = "ready"
	PhaseInProgress  Phase = "in_progress"
	PhaseSubmitting  Phase = "submitting"
	PhaseCompleted   Phase = "completed"
	PhaseFailed      Phase = "failed"
	PhaseUnavailable Phase = "unavailable" // load failed; terminal
)

// Terminal reports whether no further transition can happen.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseUnavailable
}

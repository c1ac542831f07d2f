package domain

// ProgressSequence is the ordered subsequence of statuses considered forward
// progress for display. Cancelled and returned never appear on it.
var ProgressSequence = [5]OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// ProgressNotOnTimeline is returned by ProgressIndex for side-terminal statuses.
const ProgressNotOnTimeline = -1

// ProgressIndex maps a status to its position on the progress sequence, or
// ProgressNotOnTimeline for cancelled/returned (and unknown values).
func ProgressIndex(status OrderStatus) int {
	for i, s := range ProgressSequence {
		if s == status {
			return i
		}
	}
	return ProgressNotOnTimeline
}

// StepState describes how a single timeline step should be rendered.
type StepState string

const (
	// StepCompleted marks steps the order has already passed.
	StepCompleted StepState = "completed"
	// StepCurrent marks the step matching the order's current status.
	StepCurrent StepState = "current"
	// StepUpcoming marks steps the order has not reached.
	StepUpcoming StepState = "upcoming"
)

// TimelineStep pairs a progress status with its rendering state.
type TimelineStep struct {
	Status OrderStatus
	State  StepState
}

// Timeline derives the five progress steps for the given status. For statuses
// on the progress sequence, earlier steps are completed, the matching step is
// current, and later steps are upcoming. Side-terminal statuses produce a
// timeline with no highlighting: every step is upcoming.
func Timeline(status OrderStatus) []TimelineStep {
	current := ProgressIndex(status)
	steps := make([]TimelineStep, len(ProgressSequence))
	for i, s := range ProgressSequence {
		state := StepUpcoming
		if current != ProgressNotOnTimeline {
			switch {
			case i < current:
				state = StepCompleted
			case i == current:
				state = StepCurrent
			}
		}
		steps[i] = TimelineStep{Status: s, State: state}
	}
	return steps
}

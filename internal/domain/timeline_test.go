package domain

import "testing"

func TestProgressIndexStrictlyIncreasing(t *testing.T) {
	prev := -1
	for _, status := range ProgressSequence {
		idx := ProgressIndex(status)
		if idx <= prev {
			t.Fatalf("expected strictly increasing index, got %d after %d for %s", idx, prev, status)
		}
		prev = idx
	}
}

func TestProgressIndexSideTerminal(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusCancelled, OrderStatusReturned} {
		if idx := ProgressIndex(status); idx != ProgressNotOnTimeline {
			t.Fatalf("expected %s off the timeline, got index %d", status, idx)
		}
	}
	if idx := ProgressIndex(OrderStatus("bogus")); idx != ProgressNotOnTimeline {
		t.Fatalf("expected unknown status off the timeline, got index %d", idx)
	}
}

func TestTimelineStates(t *testing.T) {
	steps := Timeline(OrderStatusProcessing)
	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(steps))
	}

	want := []StepState{StepCompleted, StepCompleted, StepCurrent, StepUpcoming, StepUpcoming}
	for i, step := range steps {
		if step.State != want[i] {
			t.Fatalf("step %d (%s): expected %s, got %s", i, step.Status, want[i], step.State)
		}
	}
}

func TestTimelineDelivered(t *testing.T) {
	steps := Timeline(OrderStatusDelivered)
	for i, step := range steps[:4] {
		if step.State != StepCompleted {
			t.Fatalf("step %d: expected completed, got %s", i, step.State)
		}
	}
	if steps[4].State != StepCurrent {
		t.Fatalf("expected delivered step current, got %s", steps[4].State)
	}
}

func TestTimelineSideTerminalHasNoHighlight(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusCancelled, OrderStatusReturned} {
		for i, step := range Timeline(status) {
			if step.State != StepUpcoming {
				t.Fatalf("%s step %d: expected upcoming, got %s", status, i, step.State)
			}
		}
	}
}

package usecase

import (
	"testing"
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
)

func TestBuildTelemetryTreeDefaultProcesses(t *testing.T) {
	accepted := time.Date(2025, 10, 10, 8, 0, 0, 0, time.UTC)
	steps := BuildTelemetryTree(nil, accepted)
	if len(steps) != 4 {
		t.Fatalf("step count = %d, want 4", len(steps))
	}
	want := []string{"Order Placed", "Processing", "Quality Control", "Shipping"}
	for i, name := range want {
		if steps[i].Name != name {
			t.Fatalf("step[%d] = %q, want %q", i, steps[i].Name, name)
		}
	}
	if steps[0].Status != domain.StepStatusCompleted {
		t.Fatalf("Order Placed status = %q", steps[0].Status)
	}
}

func TestBuildTelemetryTreeStepIDsUnique(t *testing.T) {
	steps := BuildTelemetryTree([]string{"A", "B", "C"}, time.Now())
	seen := make(map[string]bool)
	for _, s := range steps {
		if s.StepID == "" || seen[s.StepID] {
			t.Fatalf("step id %q empty or duplicated", s.StepID)
		}
		seen[s.StepID] = true
	}
}

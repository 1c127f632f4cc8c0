package usecase

import (
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"

	"github.com/google/uuid"
)

// StepTimestampLayout renders step timestamps the way the dashboard displays
// them, e.g. "Oct 10, 08:00 AM".
const StepTimestampLayout = "Jan 2, 03:04 PM"

// EstTBD is the placeholder timestamp for steps that have not started.
const EstTBD = "Est. TBD"

const orderPlacedStep = "Order Placed"

var defaultProcesses = []string{"Processing", "Quality Control", "Shipping"}

// BuildTelemetryTree constructs the initial step tree for an accepted order:
// a synthetic completed "Order Placed" step followed by one pending step per
// declared supplier process. Suppliers that declared nothing get a fixed
// three-step default. Deterministic given its inputs, save the surrogate ids.
func BuildTelemetryTree(processes []string, acceptedAt time.Time) []domain.TelemetryStep {
	if len(processes) == 0 {
		processes = defaultProcesses
	}
	steps := make([]domain.TelemetryStep, 0, len(processes)+1)
	steps = append(steps, domain.TelemetryStep{
		StepID:    uuid.NewString(),
		Name:      orderPlacedStep,
		Status:    domain.StepStatusCompleted,
		Timestamp: acceptedAt.Format(StepTimestampLayout),
	})
	for _, name := range processes {
		steps = append(steps, domain.TelemetryStep{
			StepID:    uuid.NewString(),
			Name:      name,
			Status:    domain.StepStatusPending,
			Timestamp: EstTBD,
		})
	}
	return steps
}

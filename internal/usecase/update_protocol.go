package usecase

import (
	"context"
	"math"
	"strings"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"

	"github.com/google/uuid"
)

// Apply runs one external status update against a batch's telemetry tree:
// hydrate on miss, depth-first name match, set status and variance, then
// completion detection over the top-level steps. The durable COMPLETED write
// fires once per not-all-completed to all-completed transition; a failure
// there is logged and retried on the next completed apply, never surfaced,
// since the in-memory update already succeeded.
func (s *TrackerService) Apply(ctx context.Context, upd domain.StepUpdate) (domain.UpdateResult, error) {
	if upd.BatchID == "" || upd.StepName == "" {
		return domain.UpdateResult{}, domain.ErrInvalidUpdate
	}
	if _, err := s.Ensure(ctx, upd.BatchID); err != nil {
		return domain.UpdateResult{}, err
	}

	fuzzy := upd.Source == domain.SourceOCR
	now := s.Now().Format(StepTimestampLayout)

	var (
		matched  bool
		orderID  string
		allAfter bool
		needSync bool
	)
	mutated := s.Cache.Mutate(upd.BatchID, func(entry *domain.TrackerEntry) {
		step := findStep(entry.Telemetry, upd.StepName, fuzzy)
		if step == nil {
			return
		}
		matched = true
		step.Status = upd.Status
		step.VarianceHrs = upd.VarianceHrs
		step.Timestamp = now

		orderID = entry.Order.OrderID
		allAfter = allTopLevelCompleted(entry.Telemetry)
		needSync = allAfter && !entry.CompletionSynced
	})
	if !mutated {
		// The entry vanished between Ensure and Mutate; the batch, not the
		// step, is what could not be found.
		return domain.UpdateResult{}, domain.ErrBatchNotFound
	}
	if !matched {
		return domain.UpdateResult{}, domain.ErrStepNotFound
	}

	if needSync {
		if err := s.Orders.UpdateStatus(ctx, orderID, domain.OrderStatusCompleted); err != nil {
			s.Log.Error("completion sync to durable store failed",
				"batch_id", upd.BatchID, "order_id", orderID, "error", err)
		} else {
			s.Cache.Mutate(upd.BatchID, func(entry *domain.TrackerEntry) {
				entry.CompletionSynced = true
			})
		}
	}

	s.recordStepFact(ctx, upd)
	return domain.UpdateResult{Applied: true, AllCompleted: allAfter}, nil
}

// recordStepFact appends the update's variance to the fact log so supplier
// KPI and bottleneck queries see webhook-driven history. Best effort.
func (s *TrackerService) recordStepFact(ctx context.Context, upd domain.StepUpdate) {
	if s.Facts == nil {
		return
	}
	eventType := "ERP_Status"
	if upd.Source == domain.SourceOCR {
		eventType = "OCR_Scan"
	}
	fact := domain.TelemetryFact{
		EventID:       uuid.NewString(),
		LineageID:     upd.BatchID,
		ProcessType:   upd.StepName,
		RecordedAtUTC: s.Now().UTC(),
		ValueActual:   upd.VarianceHrs,
		Variance:      upd.VarianceHrs,
		FrictionFlag:  math.Abs(upd.VarianceHrs) > s.FrictionThreshold,
		EventType:     eventType,
	}
	if err := s.Facts.Append(ctx, fact); err != nil {
		s.Log.Warn("step fact append failed", "batch_id", upd.BatchID, "step", upd.StepName, "error", err)
	}
}

// findStep walks the tree pre-order, parents before children, siblings left
// to right, and returns the first match. Exact matching is byte equality;
// fuzzy matching is a case-insensitive substring test for OCR-derived names.
func findStep(steps []domain.TelemetryStep, name string, fuzzy bool) *domain.TelemetryStep {
	for i := range steps {
		if stepNameMatches(steps[i].Name, name, fuzzy) {
			return &steps[i]
		}
		if found := findStep(steps[i].SubTracks, name, fuzzy); found != nil {
			return found
		}
	}
	return nil
}

func stepNameMatches(stepName, query string, fuzzy bool) bool {
	if fuzzy {
		return strings.Contains(strings.ToLower(stepName), strings.ToLower(query))
	}
	return stepName == query
}

// allTopLevelCompleted checks only the top-level steps, not sub_tracks, and
// compares case-insensitively.
func allTopLevelCompleted(steps []domain.TelemetryStep) bool {
	for _, step := range steps {
		if !strings.EqualFold(string(step.Status), string(domain.StepStatusCompleted)) {
			return false
		}
	}
	return true
}

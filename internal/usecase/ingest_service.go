package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"

	"github.com/google/uuid"
)

// IngestService normalizes raw telemetry payloads from external feeds
// (IoT sensors, ERP status events, OCR scans) into immutable facts.
type IngestService struct {
	Facts FactRepository
	Nodes NodeRepository

	// ExpectedStandard stands in for a per-metric expected value until a
	// standards table exists.
	ExpectedStandard  float64
	FrictionThreshold float64
	Log               *slog.Logger
	Now               func() time.Time
}

func NewIngestService(facts FactRepository, nodes NodeRepository, expected, frictionThreshold float64) *IngestService {
	if expected == 0 {
		expected = 10.0
	}
	if frictionThreshold <= 0 {
		frictionThreshold = 5.0
	}
	return &IngestService{
		Facts:             facts,
		Nodes:             nodes,
		ExpectedStandard:  expected,
		FrictionThreshold: frictionThreshold,
		Log:               slog.Default(),
		Now:               time.Now,
	}
}

type IngestRequest struct {
	EventType  string
	SupplierID string
	MetricID   string
	Value      float64
	Timestamp  string
}

// Ingest resolves the payload against known nodes, derives variance and the
// friction flag, and appends the fact. Missing or unparseable timestamps fall
// back to now; an unknown supplier name leaves the fact unattributed rather
// than rejecting it.
func (s *IngestService) Ingest(ctx context.Context, req IngestRequest) (domain.TelemetryFact, error) {
	if req.MetricID == "" {
		return domain.TelemetryFact{}, errors.New("metric_id is required")
	}

	recordedAt := s.Now().UTC()
	if req.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			recordedAt = parsed.UTC()
		}
	}

	var nodeID *int64
	if req.SupplierID != "" && s.Nodes != nil {
		node, err := s.Nodes.GetByName(ctx, req.SupplierID)
		switch {
		case err == nil:
			nodeID = &node.ID
		case errors.Is(err, domain.ErrNotFound):
			// keep the fact unattributed
		default:
			return domain.TelemetryFact{}, err
		}
	}

	variance := req.Value - s.ExpectedStandard
	fact := domain.TelemetryFact{
		EventID:       uuid.NewString(),
		LineageID:     uuid.NewString(),
		MetricID:      req.MetricID,
		NodeID:        nodeID,
		RecordedAtUTC: recordedAt,
		ValueActual:   req.Value,
		ValueExpected: s.ExpectedStandard,
		Variance:      variance,
		FrictionFlag:  math.Abs(variance) > s.FrictionThreshold,
		EventType:     req.EventType,
	}
	if err := s.Facts.Append(ctx, fact); err != nil {
		return domain.TelemetryFact{}, err
	}
	s.Log.Debug("fact ingested", "metric_id", fact.MetricID, "value", fact.ValueActual)
	return fact, nil
}

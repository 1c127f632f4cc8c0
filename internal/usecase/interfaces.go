package usecase

import (
	"context"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
)

type OrderRepository interface {
	GetByBatch(ctx context.Context, batchID string) (*domain.Order, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	// UpdateStatus must be safe to call repeatedly with the same target status.
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	// AssignBatch claims the order for batchID only while no batch is
	// assigned yet. ErrNotFound covers both a missing order and a lost
	// assignment race; callers re-read the order to distinguish.
	AssignBatch(ctx context.Context, orderID, batchID string) error
	ListBySupplier(ctx context.Context, supplierID string) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus, retailerID string) ([]domain.Order, error)
}

type SupplierRepository interface {
	GetByID(ctx context.Context, supplierID string) (*domain.Supplier, error)
	Create(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error)
	List(ctx context.Context) ([]domain.Supplier, error)
}

type MetricRepository interface {
	List(ctx context.Context) ([]domain.Metric, error)
	GetByID(ctx context.Context, metricID string) (*domain.Metric, error)
}

type NodeRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Node, error)
	List(ctx context.Context) ([]domain.Node, error)
}

// VarianceSum is a per-(metric, node) aggregate of raw fact variances. Sums
// and counts are carried separately so callers can merge groups without
// re-weighting averages.
type VarianceSum struct {
	MetricID string
	NodeID   *int64
	Sum      float64
	Count    int64
}

type KPIStats struct {
	TotalEvents   int64
	TotalOrders   int64
	AvgVariance   float64
	FrictionCount int64
}

type NodeVariance struct {
	Node        domain.Node
	AvgVariance float64
}

type ProcessStat struct {
	NodeName    string
	ProcessType string
	AvgVariance float64
	TotalEvents int64
	FailCount   int64
}

type FactRepository interface {
	Append(ctx context.Context, fact domain.TelemetryFact) error
	VarianceSums(ctx context.Context, nodeID *int64) ([]VarianceSum, error)
	KPIs(ctx context.Context) (KPIStats, error)
	NodeAverages(ctx context.Context) ([]NodeVariance, error)
	// ProcessStats groups facts by node and process type, ordered by average
	// variance descending. A non-nil lineage filter restricts the report to
	// those batches.
	ProcessStats(ctx context.Context, lineageIDs []string, limit int) ([]ProcessStat, error)
	AvgVarianceForLineages(ctx context.Context, lineageIDs []string) (float64, error)
}

// NarrativeGenerator produces human-readable analysis text. Callers must
// treat any failure as soft and substitute locally computed fallback text.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TrackerCache is the live in-memory tracker surface. Get and Put work on
// copies; Mutate is the sole legal way to alter an entry in place and holds
// that batch's lock for the duration of fn. Ensure performs an atomic
// check-then-build-then-insert so concurrent misses hydrate exactly once.
type TrackerCache interface {
	Get(batchID string) (domain.TrackerEntry, bool)
	Put(batchID string, entry domain.TrackerEntry)
	Mutate(batchID string, fn func(*domain.TrackerEntry)) bool
	Ensure(ctx context.Context, batchID string, build func(context.Context) (domain.TrackerEntry, error)) (domain.TrackerEntry, error)
}

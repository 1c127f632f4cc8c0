package domain

import "time"

type MetricLevel string

const (
	LevelExec     MetricLevel = "L1_Exec"
	LevelCategory MetricLevel = "L2_Category"
	LevelLeaf     MetricLevel = "L3_Leaf"
)

// Metric is one node of the 3-level metric hierarchy. ParentID is empty for
// L1_Exec roots; Weight applies when rolling this node's contribution into
// its parent. Weights are not required to sum to 1 across siblings.
type Metric struct {
	ID       string
	ParentID string
	Name     string
	Level    MetricLevel
	Weight   float64
}

// Node is a physical supply-chain location (grower, processor, warehouse,
// carrier).
type Node struct {
	ID   int64
	Name string
	Type string
	Lat  float64
	Lng  float64
}

// TelemetryFact is an immutable observed metric value. Facts are append-only;
// aggregates are computed by query, never maintained incrementally.
type TelemetryFact struct {
	EventID       string
	LineageID     string
	MetricID      string
	NodeID        *int64
	ProcessType   string
	RecordedAtUTC time.Time
	ValueActual   float64
	ValueExpected float64
	Variance      float64
	FrictionFlag  bool
	EventType     string
}

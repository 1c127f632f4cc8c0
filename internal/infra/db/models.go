package db

import "time"

type OrderModel struct {
	OrderID      string    `gorm:"column:order_id;primaryKey"`
	RetailerID   string    `gorm:"index;not null"`
	SupplierID   string    `gorm:"index;not null"`
	Product      string    `gorm:"not null"`
	Quantity     int       `gorm:"not null"`
	RequiredDate string    `gorm:"not null"`
	Status       string    `gorm:"index;not null"`
	BatchID      string    `gorm:"index"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (OrderModel) TableName() string { return "orders" }

type SupplierModel struct {
	SupplierID   string    `gorm:"column:supplier_id;primaryKey"`
	CompanyName  string    `gorm:"not null"`
	Location     string
	Role         string
	SuppliedGood string
	Processes    []byte    `gorm:"type:jsonb"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (SupplierModel) TableName() string { return "suppliers" }

type NodeModel struct {
	NodeID   int64  `gorm:"column:node_id;primaryKey"`
	NodeName string `gorm:"not null"`
	NodeType string `gorm:"not null"`
	Lat      float64
	Lng      float64
}

func (NodeModel) TableName() string { return "dim_nodes" }

type MetricHierarchyModel struct {
	MetricID          string  `gorm:"column:metric_id;primaryKey"`
	ParentMetricID    *string `gorm:"index"`
	MetricName        string  `gorm:"not null"`
	Level             string  `gorm:"not null"`
	WeightCoefficient float64 `gorm:"default:1.0"`
}

func (MetricHierarchyModel) TableName() string { return "dim_metric_hierarchy" }

type TelemetryFactModel struct {
	EventID       string    `gorm:"column:event_id;primaryKey"`
	LineageID     string    `gorm:"index"`
	MetricID      string    `gorm:"index"`
	NodeID        *int64    `gorm:"index"`
	ProcessType   string    `gorm:"index"`
	RecordedAtUTC time.Time `gorm:"column:recorded_at_utc"`
	ValueActual   float64
	ValueExpected float64
	Variance      float64
	FrictionFlag  bool   `gorm:"default:false"`
	EventType     string
}

func (TelemetryFactModel) TableName() string { return "fact_event_telemetry" }

package db

import (
	"context"
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
	"github.com/vedant461/Eurekathon-ChainIQ/internal/usecase"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FactRepository struct {
	db *gorm.DB
}

func NewFactRepository(db *gorm.DB) *FactRepository {
	return &FactRepository{db: db}
}

func (r *FactRepository) Append(ctx context.Context, fact domain.TelemetryFact) error {
	if r.db == nil {
		return errDBUnavailable
	}
	if fact.EventID == "" {
		fact.EventID = uuid.NewString()
	}
	if fact.RecordedAtUTC.IsZero() {
		fact.RecordedAtUTC = time.Now().UTC()
	}
	model := TelemetryFactModel{
		EventID:       fact.EventID,
		LineageID:     fact.LineageID,
		MetricID:      fact.MetricID,
		NodeID:        fact.NodeID,
		ProcessType:   fact.ProcessType,
		RecordedAtUTC: fact.RecordedAtUTC,
		ValueActual:   fact.ValueActual,
		ValueExpected: fact.ValueExpected,
		Variance:      fact.Variance,
		FrictionFlag:  fact.FrictionFlag,
		EventType:     fact.EventType,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapStoreErr("append fact", err)
	}
	return nil
}

func (r *FactRepository) VarianceSums(ctx context.Context, nodeID *int64) ([]usecase.VarianceSum, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := `SELECT metric_id, node_id, SUM(variance) AS sum, COUNT(*) AS count
		 FROM fact_event_telemetry
		 WHERE metric_id <> ''`
	args := []any{}
	if nodeID != nil {
		query += ` AND node_id = ?`
		args = append(args, *nodeID)
	}
	query += ` GROUP BY metric_id, node_id`

	var rows []usecase.VarianceSum
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, wrapStoreErr("variance sums", err)
	}
	return rows, nil
}

func (r *FactRepository) KPIs(ctx context.Context) (usecase.KPIStats, error) {
	if r.db == nil {
		return usecase.KPIStats{}, errDBUnavailable
	}
	var stats usecase.KPIStats
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total_events,
			COUNT(DISTINCT lineage_id) AS total_orders,
			COALESCE(AVG(variance), 0) AS avg_variance,
			COALESCE(SUM(CASE WHEN friction_flag THEN 1 ELSE 0 END), 0) AS friction_count
		 FROM fact_event_telemetry`).
		Scan(&stats).Error
	if err != nil {
		return usecase.KPIStats{}, wrapStoreErr("kpi stats", err)
	}
	return stats, nil
}

func (r *FactRepository) NodeAverages(ctx context.Context) ([]usecase.NodeVariance, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	type row struct {
		NodeID      int64
		NodeName    string
		NodeType    string
		Lat         float64
		Lng         float64
		AvgVariance float64
	}
	var rows []row
	err := r.db.WithContext(ctx).Raw(
		`SELECT n.node_id, n.node_name, n.node_type, n.lat, n.lng,
			COALESCE(AVG(f.variance), 0) AS avg_variance
		 FROM dim_nodes n
		 LEFT JOIN fact_event_telemetry f ON f.node_id = n.node_id
		 GROUP BY n.node_id, n.node_name, n.node_type, n.lat, n.lng
		 ORDER BY n.node_id`).
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStoreErr("node averages", err)
	}
	out := make([]usecase.NodeVariance, len(rows))
	for i, r := range rows {
		out[i] = usecase.NodeVariance{
			Node: domain.Node{
				ID:   r.NodeID,
				Name: r.NodeName,
				Type: r.NodeType,
				Lat:  r.Lat,
				Lng:  r.Lng,
			},
			AvgVariance: r.AvgVariance,
		}
	}
	return out, nil
}

func (r *FactRepository) ProcessStats(ctx context.Context, lineageIDs []string, limit int) ([]usecase.ProcessStat, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	if limit <= 0 {
		limit = 5
	}
	query := `SELECT COALESCE(n.node_name, '') AS node_name,
			f.process_type,
			AVG(f.variance) AS avg_variance,
			COUNT(*) AS total_events,
			COALESCE(SUM(CASE WHEN f.friction_flag THEN 1 ELSE 0 END), 0) AS fail_count
		 FROM fact_event_telemetry f
		 LEFT JOIN dim_nodes n ON n.node_id = f.node_id
		 WHERE f.process_type <> ''`
	args := []any{}
	if len(lineageIDs) > 0 {
		query += ` AND f.lineage_id IN ?`
		args = append(args, lineageIDs)
	}
	query += ` GROUP BY n.node_name, f.process_type
		 ORDER BY avg_variance DESC
		 LIMIT ?`
	args = append(args, limit)

	var rows []usecase.ProcessStat
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, wrapStoreErr("process stats", err)
	}
	return rows, nil
}

func (r *FactRepository) AvgVarianceForLineages(ctx context.Context, lineageIDs []string) (float64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	if len(lineageIDs) == 0 {
		return 0, nil
	}
	var avg float64
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(AVG(variance), 0) FROM fact_event_telemetry WHERE lineage_id IN ?`,
		lineageIDs).
		Scan(&avg).Error
	if err != nil {
		return 0, wrapStoreErr("lineage variance", err)
	}
	return avg, nil
}

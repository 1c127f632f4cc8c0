package usecase

import (
	"context"
	"math"
	"sort"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
)

// RollupService aggregates leaf telemetry facts up the 3-level metric
// hierarchy. It reads raw facts by query, independent of the live tracker.
type RollupService struct {
	Metrics MetricRepository
	Facts   FactRepository

	// FrictionThreshold marks a metric's health in tree views.
	FrictionThreshold float64
}

func NewRollupService(metrics MetricRepository, facts FactRepository, frictionThreshold float64) *RollupService {
	if frictionThreshold <= 0 {
		frictionThreshold = 5.0
	}
	return &RollupService{Metrics: metrics, Facts: facts, FrictionThreshold: frictionThreshold}
}

// Rollup computes the weighted health score per L1 metric, optionally scoped
// to one physical node. Bottom-up in three passes: average raw L3 variances
// grouped by L2 parent and node, multiply each L2 group average by the L2
// weight, sum contributions per L1 parent. Leaves with no facts are simply
// absent from their group's average; they never dilute it with zeros. Weights
// are not required to sum to 1, so scores are relative indicators, not
// percentages.
func (s *RollupService) Rollup(ctx context.Context, nodeID *int64) (map[string]float64, error) {
	metrics, err := s.Metrics.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Metric, len(metrics))
	for _, m := range metrics {
		byID[m.ID] = m
	}

	sums, err := s.Facts.VarianceSums(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	// Pass 1: raw sums grouped by (L2 parent, node).
	type groupKey struct {
		l2   string
		node int64
	}
	type group struct {
		sum   float64
		count int64
	}
	l2Groups := make(map[groupKey]group)
	for _, row := range sums {
		leaf, ok := byID[row.MetricID]
		if !ok || leaf.Level != domain.LevelLeaf || row.Count == 0 {
			continue
		}
		var node int64 = -1
		if row.NodeID != nil {
			node = *row.NodeID
		}
		key := groupKey{l2: leaf.ParentID, node: node}
		g := l2Groups[key]
		g.sum += row.Sum
		g.count += row.Count
		l2Groups[key] = g
	}

	// Passes 2 and 3: weight each L2 group average, sum into its L1 parent.
	result := make(map[string]float64)
	for key, g := range l2Groups {
		l2, ok := byID[key.l2]
		if !ok || l2.Level != domain.LevelCategory {
			continue
		}
		avg := g.sum / float64(g.count)
		result[l2.ParentID] += avg * l2.Weight
	}

	// Roots with no contributing facts still appear with a zero score.
	for _, m := range metrics {
		if m.Level == domain.LevelExec {
			if _, ok := result[m.ID]; !ok {
				result[m.ID] = 0
			}
		}
	}
	return result, nil
}

type MetricTreeNode struct {
	MetricID    string  `json:"metric_id"`
	ParentID    string  `json:"parent_metric_id,omitempty"`
	Name        string  `json:"metric_name"`
	Level       string  `json:"level"`
	Weight      float64 `json:"weight_coefficient"`
	AvgVariance float64 `json:"avg_variance"`
	Health      string  `json:"health"`
}

// MetricTree returns the full hierarchy annotated with each metric's average
// observed variance and an ok/alert health flag.
func (s *RollupService) MetricTree(ctx context.Context) ([]MetricTreeNode, error) {
	metrics, err := s.Metrics.List(ctx)
	if err != nil {
		return nil, err
	}
	sums, err := s.Facts.VarianceSums(ctx, nil)
	if err != nil {
		return nil, err
	}
	type agg struct {
		sum   float64
		count int64
	}
	perMetric := make(map[string]agg)
	for _, row := range sums {
		a := perMetric[row.MetricID]
		a.sum += row.Sum
		a.count += row.Count
		perMetric[row.MetricID] = a
	}

	nodes := make([]MetricTreeNode, 0, len(metrics))
	for _, m := range metrics {
		node := MetricTreeNode{
			MetricID: m.ID,
			ParentID: m.ParentID,
			Name:     m.Name,
			Level:    string(m.Level),
			Weight:   m.Weight,
			Health:   "ok",
		}
		if a, ok := perMetric[m.ID]; ok && a.count > 0 {
			node.AvgVariance = round2(a.sum / float64(a.count))
		}
		if math.Abs(node.AvgVariance) >= s.FrictionThreshold {
			node.Health = "alert"
		}
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].MetricID < nodes[j].MetricID })
	return nodes, nil
}

type DashboardKPIs struct {
	TotalOrders    int64   `json:"total_orders"`
	AvgVarianceHrs float64 `json:"avg_variance_hrs"`
	OnTimePct      float64 `json:"on_time_pct"`
}

// KPIs aggregates the whole fact log into the dashboard headline numbers.
// On-time means the fact did not raise the friction flag.
func (s *RollupService) KPIs(ctx context.Context) (DashboardKPIs, error) {
	stats, err := s.Facts.KPIs(ctx)
	if err != nil {
		return DashboardKPIs{}, err
	}
	out := DashboardKPIs{TotalOrders: stats.TotalOrders}
	if stats.TotalEvents == 0 {
		return out, nil
	}
	out.AvgVarianceHrs = round2(stats.AvgVariance)
	out.OnTimePct = round1(float64(stats.TotalEvents-stats.FrictionCount) / float64(stats.TotalEvents) * 100)
	return out, nil
}

// NodePerformance returns the average variance per physical node.
func (s *RollupService) NodePerformance(ctx context.Context) ([]NodeVariance, error) {
	return s.Facts.NodeAverages(ctx)
}

// Bottlenecks ranks node and process-type combinations by average variance,
// worst first.
func (s *RollupService) Bottlenecks(ctx context.Context, limit int) ([]ProcessStat, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.Facts.ProcessStats(ctx, nil, limit)
}

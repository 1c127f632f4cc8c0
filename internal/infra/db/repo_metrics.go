package db

import (
	"context"
	"errors"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"

	"gorm.io/gorm"
)

type MetricRepository struct {
	db *gorm.DB
}

func NewMetricRepository(db *gorm.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) List(ctx context.Context) ([]domain.Metric, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []MetricHierarchyModel
	if err := r.db.WithContext(ctx).Order("metric_id").Find(&models).Error; err != nil {
		return nil, wrapStoreErr("list metrics", err)
	}
	metrics := make([]domain.Metric, len(models))
	for i, m := range models {
		metrics[i] = modelToMetric(m)
	}
	return metrics, nil
}

func (r *MetricRepository) GetByID(ctx context.Context, metricID string) (*domain.Metric, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model MetricHierarchyModel
	err := r.db.WithContext(ctx).First(&model, "metric_id = ?", metricID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStoreErr("fetch metric", err)
	}
	metric := modelToMetric(model)
	return &metric, nil
}

func modelToMetric(m MetricHierarchyModel) domain.Metric {
	metric := domain.Metric{
		ID:     m.MetricID,
		Name:   m.MetricName,
		Level:  domain.MetricLevel(m.Level),
		Weight: m.WeightCoefficient,
	}
	if m.ParentMetricID != nil {
		metric.ParentID = *m.ParentMetricID
	}
	return metric
}

type NodeRepository struct {
	db *gorm.DB
}

func NewNodeRepository(db *gorm.DB) *NodeRepository {
	return &NodeRepository{db: db}
}

func (r *NodeRepository) GetByName(ctx context.Context, name string) (*domain.Node, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model NodeModel
	err := r.db.WithContext(ctx).First(&model, "node_name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStoreErr("fetch node", err)
	}
	node := modelToNode(model)
	return &node, nil
}

func (r *NodeRepository) List(ctx context.Context) ([]domain.Node, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []NodeModel
	if err := r.db.WithContext(ctx).Order("node_id").Find(&models).Error; err != nil {
		return nil, wrapStoreErr("list nodes", err)
	}
	nodes := make([]domain.Node, len(models))
	for i, m := range models {
		nodes[i] = modelToNode(m)
	}
	return nodes, nil
}

func modelToNode(m NodeModel) domain.Node {
	return domain.Node{
		ID:   m.NodeID,
		Name: m.NodeName,
		Type: m.NodeType,
		Lat:  m.Lat,
		Lng:  m.Lng,
	}
}

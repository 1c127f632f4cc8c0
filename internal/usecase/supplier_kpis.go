package usecase

import (
	"context"
	"errors"
	"math"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
)

type SupplierKPIs struct {
	SupplierID     string  `json:"supplier_id"`
	TotalOrders    int     `json:"total_orders"`
	Completed      int     `json:"completed_orders"`
	InProgress     int     `json:"in_progress_orders"`
	Pending        int     `json:"pending_orders"`
	AvgVarianceHrs float64 `json:"avg_variance_hrs"`
	OnTimePct      float64 `json:"on_time_pct"`
}

// SupplierKPIs summarizes one supplier's order book plus the average step
// variance observed across that supplier's batches.
func (s *TrackerService) SupplierKPIs(ctx context.Context, supplierID string) (SupplierKPIs, error) {
	if _, err := s.Suppliers.GetByID(ctx, supplierID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return SupplierKPIs{}, domain.ErrSupplierNotFound
		}
		return SupplierKPIs{}, err
	}
	orders, err := s.Orders.ListBySupplier(ctx, supplierID)
	if err != nil {
		return SupplierKPIs{}, err
	}

	kpis := SupplierKPIs{SupplierID: supplierID, TotalOrders: len(orders)}
	lineages := make([]string, 0, len(orders))
	for _, o := range orders {
		switch o.Status {
		case domain.OrderStatusCompleted:
			kpis.Completed++
		case domain.OrderStatusInProgress:
			kpis.InProgress++
		default:
			kpis.Pending++
		}
		if o.BatchID != "" {
			lineages = append(lineages, o.BatchID)
		}
	}
	if kpis.TotalOrders > 0 {
		kpis.OnTimePct = round1(float64(kpis.Completed) / float64(kpis.TotalOrders) * 100)
	}
	if s.Facts != nil && len(lineages) > 0 {
		avg, err := s.Facts.AvgVarianceForLineages(ctx, lineages)
		if err != nil {
			s.Log.Warn("supplier variance query failed", "supplier_id", supplierID, "error", err)
		} else {
			kpis.AvgVarianceHrs = round2(avg)
		}
	}
	return kpis, nil
}

// SupplierBottlenecks ranks the supplier's process steps by accumulated
// variance, worst first. A flat alternative to the hierarchy rollup, used
// for ranking only.
func (s *TrackerService) SupplierBottlenecks(ctx context.Context, supplierID string, limit int) ([]ProcessStat, error) {
	if _, err := s.Suppliers.GetByID(ctx, supplierID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSupplierNotFound
		}
		return nil, err
	}
	orders, err := s.Orders.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	lineages := make([]string, 0, len(orders))
	for _, o := range orders {
		if o.BatchID != "" {
			lineages = append(lineages, o.BatchID)
		}
	}
	if len(lineages) == 0 || s.Facts == nil {
		return nil, nil
	}
	return s.Facts.ProcessStats(ctx, lineages, limit)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"

	"github.com/google/uuid"
)

// TrackerService owns the order fulfillment lifecycle: acceptance, the live
// telemetry tree, hydration after a cache miss, and the update protocol for
// external status events.
type TrackerService struct {
	Orders    OrderRepository
	Suppliers SupplierRepository
	Facts     FactRepository
	Cache     TrackerCache

	FrictionThreshold float64
	Log               *slog.Logger
	Now               func() time.Time
}

func NewTrackerService(orders OrderRepository, suppliers SupplierRepository, facts FactRepository, cache TrackerCache) *TrackerService {
	return &TrackerService{
		Orders:            orders,
		Suppliers:         suppliers,
		Facts:             facts,
		Cache:             cache,
		FrictionThreshold: 5.0,
		Log:               slog.Default(),
		Now:               time.Now,
	}
}

type PlaceOrderRequest struct {
	RetailerID   string
	SupplierID   string
	Product      string
	Quantity     int
	RequiredDate string
}

func (s *TrackerService) RegisterSupplier(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	if supplier.CompanyName == "" {
		return domain.Supplier{}, errors.New("company_name is required")
	}
	return s.Suppliers.Create(ctx, supplier)
}

func (s *TrackerService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	if req.SupplierID == "" {
		return domain.Order{}, errors.New("supplier_id is required")
	}
	if _, err := s.Suppliers.GetByID(ctx, req.SupplierID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, domain.ErrSupplierNotFound
		}
		return domain.Order{}, err
	}
	order := domain.Order{
		RetailerID:   req.RetailerID,
		SupplierID:   req.SupplierID,
		Product:      req.Product,
		Quantity:     req.Quantity,
		RequiredDate: req.RequiredDate,
		Status:       domain.OrderStatusPending,
		CreatedAt:    s.Now().UTC(),
	}
	return s.Orders.Create(ctx, order)
}

// Accept assigns a batch id to a pending order, moves it to IN_PROGRESS, and
// primes the live tracker with the initial telemetry tree. Accepting an
// already accepted order returns its existing batch entry.
func (s *TrackerService) Accept(ctx context.Context, orderID string) (domain.TrackerEntry, error) {
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TrackerEntry{}, domain.ErrOrderNotFound
		}
		return domain.TrackerEntry{}, err
	}
	if order.BatchID != "" {
		return s.Ensure(ctx, order.BatchID)
	}

	batchID := "BATCH-" + strings.ToUpper(uuid.NewString()[:8])
	if err := s.Orders.AssignBatch(ctx, orderID, batchID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost the assignment race, or the order vanished. Re-read to
			// tell the two apart; the winner's batch is the one to track.
			latest, lerr := s.Orders.GetByID(ctx, orderID)
			if lerr == nil && latest.BatchID != "" {
				return s.Ensure(ctx, latest.BatchID)
			}
			return domain.TrackerEntry{}, domain.ErrOrderNotFound
		}
		return domain.TrackerEntry{}, err
	}
	order.BatchID = batchID
	order.Status = domain.OrderStatusInProgress

	entry := s.buildEntry(ctx, *order, s.Now())
	s.Cache.Put(batchID, entry)
	return entry, nil
}

// Ensure returns the live entry for a batch, hydrating it from the durable
// store on a miss. Hydration rebuilds the tree in its initial state: variance
// detail accumulated only in memory is deliberately lost, step statuses other
// than "Order Placed" reset to Pending.
func (s *TrackerService) Ensure(ctx context.Context, batchID string) (domain.TrackerEntry, error) {
	return s.Cache.Ensure(ctx, batchID, func(ctx context.Context) (domain.TrackerEntry, error) {
		return s.hydrate(ctx, batchID)
	})
}

func (s *TrackerService) hydrate(ctx context.Context, batchID string) (domain.TrackerEntry, error) {
	order, err := s.Orders.GetByBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TrackerEntry{}, domain.ErrBatchNotFound
		}
		return domain.TrackerEntry{}, err
	}
	// The order existing at all implies it was placed; everything past
	// "Order Placed" starts over as Pending.
	return s.buildEntry(ctx, *order, order.CreatedAt), nil
}

func (s *TrackerService) buildEntry(ctx context.Context, order domain.Order, acceptedAt time.Time) domain.TrackerEntry {
	var processes []string
	supplierName := order.SupplierID
	if supplier, err := s.Suppliers.GetByID(ctx, order.SupplierID); err == nil {
		processes = supplier.Processes
		supplierName = supplier.CompanyName
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.Log.Warn("supplier lookup failed during tree build", "supplier_id", order.SupplierID, "error", err)
	}
	return domain.TrackerEntry{
		BatchID: order.BatchID,
		Order: domain.OrderSummary{
			OrderID:       order.ID,
			Product:       order.Product,
			Quantity:      order.Quantity,
			SupplierName:  supplierName,
			DatePromised:  order.RequiredDate,
			DateProjected: order.RequiredDate,
		},
		Telemetry:        BuildTelemetryTree(processes, acceptedAt),
		CompletionSynced: order.Status == domain.OrderStatusCompleted,
	}
}

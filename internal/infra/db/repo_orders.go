package db

import (
	"context"
	"errors"
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	if r.db == nil {
		return domain.Order{}, errDBUnavailable
	}
	if order.ID == "" {
		order.ID = "ORD-" + uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	model := orderToModel(order)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Order{}, wrapStoreErr("create order", err)
	}
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getOne(ctx, "order_id = ?", orderID)
}

func (r *OrderRepository) GetByBatch(ctx context.Context, batchID string) (*domain.Order, error) {
	return r.getOne(ctx, "batch_id = ?", batchID)
}

func (r *OrderRepository) getOne(ctx context.Context, query string, arg string) (*domain.Order, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model OrderModel
	err := r.db.WithContext(ctx).First(&model, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStoreErr("fetch order", err)
	}
	order := modelToOrder(model)
	return &order, nil
}

// UpdateStatus is idempotent: setting an order to its current status affects
// zero rows and is not an error.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("order_id = ?", orderID).
		Update("status", string(status))
	if result.Error != nil {
		return wrapStoreErr("update order status", result.Error)
	}
	return nil
}

// AssignBatch sets the batch id only while none is assigned, so two racing
// acceptances cannot both claim the order. Zero rows affected means the order
// is missing or already carries a batch; callers re-read to tell them apart.
func (r *OrderRepository) AssignBatch(ctx context.Context, orderID, batchID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	result := r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("order_id = ? AND (batch_id = '' OR batch_id IS NULL)", orderID).
		Updates(map[string]any{
			"batch_id": batchID,
			"status":   string(domain.OrderStatusInProgress),
		})
	if result.Error != nil {
		return wrapStoreErr("assign batch", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) ListBySupplier(ctx context.Context, supplierID string) ([]domain.Order, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	return r.list(ctx, r.db.WithContext(ctx).Where("supplier_id = ?", supplierID))
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus, retailerID string) ([]domain.Order, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).Where("status = ?", string(status))
	if retailerID != "" {
		query = query.Where("retailer_id = ?", retailerID)
	}
	return r.list(ctx, query)
}

func (r *OrderRepository) list(ctx context.Context, query *gorm.DB) ([]domain.Order, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []OrderModel
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, wrapStoreErr("list orders", err)
	}
	orders := make([]domain.Order, len(models))
	for i, m := range models {
		orders[i] = modelToOrder(m)
	}
	return orders, nil
}

func orderToModel(o domain.Order) OrderModel {
	return OrderModel{
		OrderID:      o.ID,
		RetailerID:   o.RetailerID,
		SupplierID:   o.SupplierID,
		Product:      o.Product,
		Quantity:     o.Quantity,
		RequiredDate: o.RequiredDate,
		Status:       string(o.Status),
		BatchID:      o.BatchID,
		CreatedAt:    o.CreatedAt,
	}
}

func modelToOrder(m OrderModel) domain.Order {
	return domain.Order{
		ID:           m.OrderID,
		RetailerID:   m.RetailerID,
		SupplierID:   m.SupplierID,
		Product:      m.Product,
		Quantity:     m.Quantity,
		RequiredDate: m.RequiredDate,
		Status:       domain.OrderStatus(m.Status),
		BatchID:      m.BatchID,
		CreatedAt:    m.CreatedAt,
	}
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	if r.db == nil {
		return domain.Supplier{}, errDBUnavailable
	}
	if supplier.ID == "" {
		supplier.ID = "sup-" + uuid.NewString()
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}
	model, err := supplierToModel(supplier)
	if err != nil {
		return domain.Supplier{}, err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Supplier{}, wrapStoreErr("create supplier", err)
	}
	return supplier, nil
}

func (r *SupplierRepository) GetByID(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model SupplierModel
	err := r.db.WithContext(ctx).First(&model, "supplier_id = ?", supplierID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStoreErr("fetch supplier", err)
	}
	supplier, err := modelToSupplier(model)
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) List(ctx context.Context) ([]domain.Supplier, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []SupplierModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, wrapStoreErr("list suppliers", err)
	}
	suppliers := make([]domain.Supplier, 0, len(models))
	for _, m := range models {
		supplier, err := modelToSupplier(m)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, nil
}

func supplierToModel(s domain.Supplier) (SupplierModel, error) {
	processes, err := json.Marshal(s.Processes)
	if err != nil {
		return SupplierModel{}, err
	}
	return SupplierModel{
		SupplierID:   s.ID,
		CompanyName:  s.CompanyName,
		Location:     s.Location,
		Role:         s.Role,
		SuppliedGood: s.SuppliedGood,
		Processes:    processes,
		CreatedAt:    s.CreatedAt,
	}, nil
}

func modelToSupplier(m SupplierModel) (domain.Supplier, error) {
	var processes []string
	if len(m.Processes) > 0 {
		if err := json.Unmarshal(m.Processes, &processes); err != nil {
			return domain.Supplier{}, err
		}
	}
	return domain.Supplier{
		ID:           m.SupplierID,
		CompanyName:  m.CompanyName,
		Location:     m.Location,
		Role:         m.Role,
		SuppliedGood: m.SuppliedGood,
		Processes:    processes,
		CreatedAt:    m.CreatedAt,
	}, nil
}

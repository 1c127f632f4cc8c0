package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

type Order struct {
	ID           string
	RetailerID   string
	SupplierID   string
	Product      string
	Quantity     int
	RequiredDate string
	Status       OrderStatus
	BatchID      string
	CreatedAt    time.Time
}

type Supplier struct {
	ID           string
	CompanyName  string
	Location     string
	Role         string
	SuppliedGood string
	Processes    []string
	CreatedAt    time.Time
}

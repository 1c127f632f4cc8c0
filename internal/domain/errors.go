package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrBatchNotFound    = errors.New("batch not found")
	ErrStepNotFound     = errors.New("step not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrMetricNotFound   = errors.New("metric not found")
	ErrStoreUnavailable = errors.New("durable store unavailable")
	ErrInvalidUpdate    = errors.New("invalid update")
)

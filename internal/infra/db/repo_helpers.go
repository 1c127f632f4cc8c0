package db

import (
	"errors"
	"fmt"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"
)

var errDBUnavailable = fmt.Errorf("%w: no database configured", domain.ErrStoreUnavailable)

// wrapStoreErr tags unexpected gorm failures as transient store errors so
// callers can distinguish retryable I/O from permanent not-found results.
func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

// Package procurement manages suppliers, raw materials and supply orders.
package procurement

import (
	"errors"
	"fmt"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/obs"
	"supplychainx.org/internal/store"
)

// Service runs procurement workflows, one transaction per call.
type Service struct {
	store store.Store
}

// NewService constructs a Service backed by st.
func NewService(st store.Store) (*Service, error) {
	if st == nil {
		return nil, errors.New("procurement: store is required")
	}
	return &Service{store: st}, nil
}

// reject builds a BusinessRule error and counts it under op.
func reject(op, format string, args ...any) error {
	obs.RecordBusinessRejection(op)
	return apperr.BusinessRulef(format, args...)
}

// guarded maps a constraint violation raised by the final write to the same
// BusinessRule the guard query would have produced.
func guarded(op string, err error, format string, args ...any) error {
	err = store.Guarded(err, fmt.Sprintf(format, args...))
	if apperr.KindOf(err) == apperr.BusinessRule {
		obs.RecordBusinessRejection(op)
	}
	return err
}

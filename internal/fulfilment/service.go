// Package fulfilment manages customers, sales orders and their deliveries.
// A delivery reaching LIVREE marks its order LIVREE in the same transaction.
package fulfilment

import (
	"errors"
	"fmt"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/obs"
	"supplychainx.org/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(st store.Store) (*Service, error) {
	if st == nil {
		return nil, errors.New("fulfilment: store is required")
	}
	return &Service{store: st}, nil
}

func reject(op, format string, args ...any) error {
	obs.RecordBusinessRejection(op)
	return apperr.BusinessRulef(format, args...)
}

func guarded(op string, err error, format string, args ...any) error {
	err = store.Guarded(err, fmt.Sprintf(format, args...))
	if apperr.KindOf(err) == apperr.BusinessRule {
		obs.RecordBusinessRejection(op)
	}
	return err
}

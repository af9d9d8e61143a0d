package store

import (
	"errors"

	"supplychainx.org/internal/apperr"
)

// NotFound turns ErrNotFound into an apperr NotFound naming the entity and id.
// Other errors pass through unchanged.
func NotFound(err error, entity string, id int64) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFoundf("%s not found with id: %d", entity, id)
	}
	return err
}

// Guarded turns constraint violations raised at write time into a
// BusinessRule carrying message. It backs the query-then-act deletion guards
// when a concurrent writer slips in between.
func Guarded(err error, message string) error {
	if errors.Is(err, ErrReferenced) || errors.Is(err, ErrConflict) {
		return apperr.Wrap(apperr.BusinessRule, err, message)
	}
	return err
}

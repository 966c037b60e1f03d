package postgres

import (
	"errors"
	"fmt"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation = "23505"
	pqInvalidTextRepr = "22P02"
	requestsActiveIdx = "ux_requests_active"
)

// mapErr turns driver errors the caller can act on into domain errors and
// wraps everything else with op.
func mapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			if pqErr.Constraint == requestsActiveIdx {
				return domain.ErrConflict("duplicate request")
			}
			return domain.ErrConflict("already exists")
		case pqInvalidTextRepr:
			// malformed uuid never matches a row
			return domain.ErrNotFound("not found")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

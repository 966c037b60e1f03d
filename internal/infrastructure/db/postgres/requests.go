package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/participation"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type RequestRepo struct {
	db *sql.DB
}

func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{db: db} }

func (r *RequestRepo) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return getEvent(ctx, r.db, getEventSQL, eventID)
}

func (r *RequestRepo) GetByID(ctx context.Context, requestID string) (*domain.ParticipationRequest, error) {
	return getRequest(ctx, r.db, getRequestSQL, requestID)
}

func (r *RequestRepo) ListByRequester(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	rows, err := r.db.QueryContext(ctx, listRequestsByRequesterSQL, requesterID)
	if err != nil {
		return nil, mapErr(err, "list requests by requester")
	}
	return scanRequests(rows)
}

func (r *RequestRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.ParticipationRequest, error) {
	rows, err := r.db.QueryContext(ctx, listRequestsByEventSQL, eventID)
	if err != nil {
		return nil, mapErr(err, "list requests by event")
	}
	return scanRequests(rows)
}

func (r *RequestRepo) WithTx(ctx context.Context, fn func(tr participation.TxRepo) error) error {
	return withTx(ctx, r.db, func(tr *txRepo) error { return fn(tr) })
}

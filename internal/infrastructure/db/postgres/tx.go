package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/event"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/participation"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/lib/pq"
)

var (
	_ event.TxEventRepo    = (*txRepo)(nil)
	_ participation.TxRepo = (*txRepo)(nil)
)

type txRepo struct {
	tx *sql.Tx
}

func withTx(ctx context.Context, db *sql.DB, fn func(tr *txRepo) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
		ReadOnly:  false,
	})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txRepo{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const insertOutboxSQL = `
INSERT INTO event_outbox (
  message_id, routing_key, body, created_at, status, next_retry_at
) VALUES ($1, $2, $3::jsonb, $4, 'pending', $4)
`

// GetEventForUpdate locks the event row until the transaction ends.
func (r *txRepo) GetEventForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return getEvent(ctx, r.tx, selectEventForUpdateSQL, id)
}

func (r *txRepo) UpdateEvent(ctx context.Context, e *domain.Event) error {
	_, err := r.tx.ExecContext(ctx, updateEventSQL,
		e.ID,
		e.CategoryID, e.Title, e.Annotation, e.Description,
		e.Location.Lat, e.Location.Lon, e.EventDate, e.Paid, e.ParticipantLimit,
		e.RequestModeration, string(e.State), e.PublishedOn, e.UpdatedAt,
	)
	return mapErr(err, "update event")
}

func (r *txRepo) InsertOutbox(ctx context.Context, msg messaging.OutboxMessage) error {
	// jsonb as text for lib/pq; next_retry_at = created_at makes the row due at once.
	_, err := r.tx.ExecContext(ctx, insertOutboxSQL,
		msg.MessageID,
		msg.RoutingKey,
		string(msg.Body),
		msg.CreatedAt.UTC(),
	)
	return mapErr(err, "insert outbox")
}

func (r *txRepo) CountConfirmed(ctx context.Context, eventID string) (int, error) {
	var n int
	if err := r.tx.QueryRowContext(ctx, countConfirmedSQL, eventID).Scan(&n); err != nil {
		return 0, mapErr(err, "count confirmed")
	}
	return n, nil
}

func (r *txRepo) ExistsActive(ctx context.Context, requesterID, eventID string) (bool, error) {
	var ok bool
	if err := r.tx.QueryRowContext(ctx, existsActiveSQL, requesterID, eventID).Scan(&ok); err != nil {
		return false, mapErr(err, "exists active request")
	}
	return ok, nil
}

func (r *txRepo) GetRequestsByIDs(ctx context.Context, eventID string, ids []string) ([]*domain.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []*domain.ParticipationRequest{}, nil
	}
	rows, err := r.tx.QueryContext(ctx, selectRequestsByIDsSQL, eventID, pq.Array(ids))
	if err != nil {
		return nil, mapErr(err, "get requests by ids")
	}
	return scanRequests(rows)
}

func (r *txRepo) GetRequestForUpdate(ctx context.Context, requestID string) (*domain.ParticipationRequest, error) {
	return getRequest(ctx, r.tx, selectRequestForUpdateSQL, requestID)
}

func (r *txRepo) InsertRequest(ctx context.Context, req *domain.ParticipationRequest) error {
	_, err := r.tx.ExecContext(ctx, insertRequestSQL,
		req.ID, req.EventID, req.RequesterID, string(req.Status), req.Created, req.UpdatedAt,
	)
	return mapErr(err, "insert request")
}

// UpdateStatuses persists the status of every request in one statement.
func (r *txRepo) UpdateStatuses(ctx context.Context, reqs []*domain.ParticipationRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(reqs))
	statuses := make([]string, 0, len(reqs))
	updatedAt := time.Time{}
	for _, req := range reqs {
		ids = append(ids, req.ID)
		statuses = append(statuses, string(req.Status))
		if req.UpdatedAt.After(updatedAt) {
			updatedAt = req.UpdatedAt
		}
	}
	res, err := r.tx.ExecContext(ctx, updateStatusesSQL, pq.Array(ids), pq.Array(statuses), updatedAt)
	if err != nil {
		return mapErr(err, "update request statuses")
	}
	if n, err := res.RowsAffected(); err == nil && n != int64(len(reqs)) {
		return fmt.Errorf("update request statuses: %d of %d rows updated", n, len(reqs))
	}
	return nil
}

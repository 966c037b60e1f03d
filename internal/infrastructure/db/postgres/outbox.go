package postgres

import (
	"context"
	"database/sql"
	"math"
	"math/rand"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/metrics"
	zlog "github.com/rs/zerolog/log"
)

type outboxRow struct {
	ID         int64
	MessageID  string
	RoutingKey string
	Body       []byte
	Attempts   int
}

// SKIP LOCKED lets several workers share the table.
const selectOutboxClaimsSQL = `
SELECT id, message_id, routing_key, body, attempts
FROM event_outbox
WHERE status = 'pending'
  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
ORDER BY next_retry_at ASC, created_at ASC
LIMIT $1
FOR UPDATE SKIP LOCKED
`

const updateOutboxClaimSQL = `
UPDATE event_outbox
SET next_retry_at = $2,
    status = 'processing'
WHERE id = $1
`

const markOutboxSentSQL = `
UPDATE event_outbox
SET status = 'sent',
    sent_at = $2,
    last_error = NULL
WHERE id = $1
`

const markOutboxFailedSQL = `
UPDATE event_outbox
SET status = 'pending',
    attempts = attempts + 1,
    next_retry_at = $2,
    last_error = $3
WHERE id = $1
`

const markOutboxDeadSQL = `
UPDATE event_outbox
SET status = 'dead',
    attempts = attempts + 1,
    last_error = $2
WHERE id = $1
`

// requeueStaleSQL returns rows whose worker died mid-publish to the pending pool.
const requeueStaleSQL = `
UPDATE event_outbox
SET status = 'pending'
WHERE status = 'processing' AND next_retry_at <= NOW()
`

const (
	maxOutboxAttempts  = 10
	defaultOutboxBatch = 20
	claimReservation   = 30 * time.Second
)

// OutboxWorker publishes committed outbox rows. Publishing happens outside the
// claim transaction so a slow broker never holds row locks.
type OutboxWorker struct {
	db       *sql.DB
	pub      messaging.Publisher
	interval time.Duration
	batch    int
}

func NewOutboxWorker(db *sql.DB, pub messaging.Publisher, interval time.Duration, batch int) *OutboxWorker {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if batch <= 0 {
		batch = defaultOutboxBatch
	}
	return &OutboxWorker{db: db, pub: pub, interval: interval, batch: batch}
}

// Start polls until ctx is canceled. The returned channel closes when the loop exits.
func (w *OutboxWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		// jitter so replicas started together do not poll in lockstep
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(rand.Intn(1000)) * time.Millisecond):
		}

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				zlog.Info().Msg("outbox worker stopped")
				return
			case <-ticker.C:
				if _, err := w.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
					zlog.Error().Err(err).Msg("outbox batch failed")
				}
			}
		}
	}()
	return done
}

// ProcessBatch claims up to batch due rows, publishes them and records each outcome.
// It returns the number of rows claimed.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (int, error) {
	batch, err := w.claim(ctx)
	if err != nil {
		return 0, err
	}
	for _, item := range batch {
		w.publishOne(ctx, item)
	}
	return len(batch), nil
}

func (w *OutboxWorker) claim(ctx context.Context) ([]outboxRow, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := w.db.ExecContext(claimCtx, requeueStaleSQL); err != nil {
		return nil, err
	}

	tx, err := w.db.BeginTx(claimCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(claimCtx, selectOutboxClaimsSQL, w.batch)
	if err != nil {
		return nil, err
	}
	var batch []outboxRow
	for rows.Next() {
		var item outboxRow
		if err := rows.Scan(&item.ID, &item.MessageID, &item.RoutingKey, &item.Body, &item.Attempts); err != nil {
			rows.Close()
			return nil, err
		}
		batch = append(batch, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, tx.Commit()
	}

	reservation := time.Now().UTC().Add(claimReservation)
	for _, item := range batch {
		if _, err := tx.ExecContext(claimCtx, updateOutboxClaimSQL, item.ID, reservation); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return batch, nil
}

func (w *OutboxWorker) publishOne(ctx context.Context, item outboxRow) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := w.pub.PublishEvent(pubCtx, item.RoutingKey, item.MessageID, item.Body)
	metrics.RecordOutboxPublish(err == nil)

	resCtx, cancelRes := context.WithTimeout(ctx, 3*time.Second)
	defer cancelRes()

	if err == nil {
		if _, dbErr := w.db.ExecContext(resCtx, markOutboxSentSQL, item.ID, time.Now().UTC()); dbErr != nil {
			zlog.Warn().Err(dbErr).Str("message_id", item.MessageID).Msg("outbox mark sent failed")
		}
		return
	}

	evt := zlog.Warn().Err(err).
		Str("message_id", item.MessageID).
		Str("routing_key", item.RoutingKey).
		Int("attempts", item.Attempts+1)

	if item.Attempts+1 >= maxOutboxAttempts {
		evt.Msg("outbox message dead-lettered")
		_, _ = w.db.ExecContext(resCtx, markOutboxDeadSQL, item.ID, err.Error())
		return
	}

	nextRetry := time.Now().UTC().Add(backoff(item.Attempts))
	evt.Time("next_retry_at", nextRetry).Msg("outbox publish failed")
	_, _ = w.db.ExecContext(resCtx, markOutboxFailedSQL, item.ID, nextRetry, err.Error())
}

// backoff is 2^attempts seconds plus up to one second of jitter.
func backoff(attempts int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempts))) * time.Second
	return d + time.Duration(rand.Intn(1000))*time.Millisecond
}

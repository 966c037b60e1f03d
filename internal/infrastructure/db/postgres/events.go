package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/event"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/lib/pq"
)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.ID, e.InitiatorID, e.CategoryID, e.Title, e.Annotation, e.Description,
		e.Location.Lat, e.Location.Lon, e.EventDate, e.Paid, e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.CreatedOn, e.PublishedOn, e.UpdatedAt,
	)
	return mapErr(err, "insert event")
}

func (r *EventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return getEvent(ctx, r.db, getEventSQL, id)
}

func (r *EventRepo) ListByInitiator(ctx context.Context, initiatorID string, p event.Page) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, listByInitiatorSQL, initiatorID, p.Size, p.From)
	if err != nil {
		return nil, mapErr(err, "list events by initiator")
	}
	return scanEvents(rows)
}

// whereBuilder collects AND-ed conditions with positional args.
type whereBuilder struct {
	where []string
	args  []any
}

func (b *whereBuilder) add(condFmt string, val any) {
	b.args = append(b.args, val)
	b.where = append(b.where, fmt.Sprintf(condFmt, len(b.args)))
}

func (b *whereBuilder) raw(cond string) {
	b.where = append(b.where, cond)
}

func (b *whereBuilder) sql() string {
	if len(b.where) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.where, " AND ")
}

func (b *whereBuilder) page(p event.Page) string {
	b.args = append(b.args, p.Size, p.From)
	n := len(b.args)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", n-1, n)
}

func (r *EventRepo) SearchAdmin(ctx context.Context, f event.AdminFilter) ([]*domain.Event, error) {
	b := &whereBuilder{}
	if len(f.Users) > 0 {
		b.add("initiator_id = ANY($%d::uuid[])", pq.Array(f.Users))
	}
	if len(f.States) > 0 {
		states := make([]string, 0, len(f.States))
		for _, s := range f.States {
			states = append(states, string(s))
		}
		b.add("state = ANY($%d::text[])", pq.Array(states))
	}
	if len(f.Categories) > 0 {
		b.add("category_id = ANY($%d::uuid[])", pq.Array(f.Categories))
	}
	if f.RangeStart != nil {
		b.add("event_date >= $%d", *f.RangeStart)
	}
	if f.RangeEnd != nil {
		b.add("event_date <= $%d", *f.RangeEnd)
	}

	q := `SELECT` + eventColumns + `
FROM events
` + b.sql() + `
ORDER BY created_on ASC, id ASC
` + b.page(f.Page)

	rows, err := r.db.QueryContext(ctx, q, b.args...)
	if err != nil {
		return nil, mapErr(err, "search events (admin)")
	}
	return scanEvents(rows)
}

func (r *EventRepo) SearchPublic(ctx context.Context, f event.PublicFilter) ([]*domain.Event, error) {
	b := &whereBuilder{}
	b.raw("state = 'PUBLISHED'")
	if f.Text != "" {
		b.add("(annotation ILIKE $%[1]d OR description ILIKE $%[1]d)", "%"+escapeLike(f.Text)+"%")
	}
	if len(f.Categories) > 0 {
		b.add("category_id = ANY($%d::uuid[])", pq.Array(f.Categories))
	}
	if f.Paid != nil {
		b.add("paid = $%d", *f.Paid)
	}
	if f.RangeStart != nil {
		b.add("event_date >= $%d", *f.RangeStart)
	}
	if f.RangeEnd != nil {
		b.add("event_date <= $%d", *f.RangeEnd)
	}
	if f.OnlyAvailable {
		b.raw("(participant_limit = 0 OR participant_limit > " + confirmedSubquery + ")")
	}

	// deterministic order; VIEWS is applied on the page by the caller
	q := `SELECT` + eventColumns + `
FROM events
` + b.sql() + `
ORDER BY event_date ASC, id ASC
` + b.page(f.Page)

	rows, err := r.db.QueryContext(ctx, q, b.args...)
	if err != nil {
		return nil, mapErr(err, "search events (public)")
	}
	return scanEvents(rows)
}

func (r *EventRepo) CountConfirmedByEvents(ctx context.Context, ids []string) (map[string]int, error) {
	out := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, countConfirmedByEventsSQL, pq.Array(ids))
	if err != nil {
		return nil, mapErr(err, "count confirmed")
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *EventRepo) WithTx(ctx context.Context, fn func(tr event.TxEventRepo) error) error {
	return withTx(ctx, r.db, func(tr *txRepo) error { return fn(tr) })
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

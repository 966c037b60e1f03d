package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*domain.Event, error) {
	var e domain.Event
	var state string
	var publishedOn sql.NullTime
	err := s.Scan(
		&e.ID, &e.InitiatorID, &e.CategoryID, &e.Title, &e.Annotation, &e.Description,
		&e.Location.Lat, &e.Location.Lon, &e.EventDate, &e.Paid, &e.ParticipantLimit, &e.RequestModeration,
		&state, &e.CreatedOn, &publishedOn, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.State = domain.EventState(state)
	if !e.State.Valid() {
		return nil, fmt.Errorf("event %s: invalid state %q in db", e.ID, state)
	}
	if publishedOn.Valid {
		t := publishedOn.Time.UTC()
		e.PublishedOn = &t
	}
	e.EventDate = e.EventDate.UTC()
	e.CreatedOn = e.CreatedOn.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	out := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRequest(s rowScanner) (*domain.ParticipationRequest, error) {
	var r domain.ParticipationRequest
	var status string
	if err := s.Scan(&r.ID, &r.EventID, &r.RequesterID, &status, &r.Created, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = domain.RequestStatus(status)
	if !r.Status.Valid() {
		return nil, fmt.Errorf("request %s: invalid status %q in db", r.ID, status)
	}
	r.Created = r.Created.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return &r, nil
}

func scanRequests(rows *sql.Rows) ([]*domain.ParticipationRequest, error) {
	defer rows.Close()
	out := []*domain.ParticipationRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func getEvent(ctx context.Context, q querier, query, id string) (*domain.Event, error) {
	e, err := scanEvent(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("event not found")
	}
	if err != nil {
		return nil, mapErr(err, "get event")
	}
	return e, nil
}

func getRequest(ctx context.Context, q querier, query, id string) (*domain.ParticipationRequest, error) {
	r, err := scanRequest(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("request not found")
	}
	if err != nil {
		return nil, mapErr(err, "get request")
	}
	return r, nil
}

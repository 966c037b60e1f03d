package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/stats"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/lib/pq"
)

type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

func (r *StatsRepo) SaveHit(ctx context.Context, h domain.Hit) error {
	_, err := r.db.ExecContext(ctx, insertHitSQL, h.App, h.URI, h.IP, h.Timestamp.UTC())
	return mapErr(err, "insert hit")
}

// CountViews answers all queries in one round trip per uniqueness mode.
func (r *StatsRepo) CountViews(ctx context.Context, qs []domain.ViewQuery) (map[string]int64, error) {
	out := make(map[string]int64, len(qs))
	var unique, all []domain.ViewQuery
	for _, q := range qs {
		if q.Unique {
			unique = append(unique, q)
		} else {
			all = append(all, q)
		}
	}
	if err := r.countViews(ctx, countViewsUniqueSQL, unique, out); err != nil {
		return nil, err
	}
	if err := r.countViews(ctx, countViewsAllSQL, all, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StatsRepo) countViews(ctx context.Context, query string, qs []domain.ViewQuery, out map[string]int64) error {
	if len(qs) == 0 {
		return nil
	}
	uris := make([]string, 0, len(qs))
	starts := make([]string, 0, len(qs))
	ends := make([]string, 0, len(qs))
	for _, q := range qs {
		uris = append(uris, q.URI)
		starts = append(starts, q.Start.UTC().Format(time.RFC3339Nano))
		ends = append(ends, q.End.UTC().Format(time.RFC3339Nano))
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(uris), pq.Array(starts), pq.Array(ends))
	if err != nil {
		return mapErr(err, "count views")
	}
	defer rows.Close()
	for rows.Next() {
		var uri string
		var n int64
		if err := rows.Scan(&uri, &n); err != nil {
			return err
		}
		out[uri] = n
	}
	return rows.Err()
}

// Stats aggregates hits per (app, uri) ordered by hits descending.
func (r *StatsRepo) Stats(ctx context.Context, f stats.Filter) ([]domain.ViewStat, error) {
	count := "COUNT(*)"
	if f.Unique {
		count = "COUNT(DISTINCT ip)"
	}
	b := &whereBuilder{}
	b.add("ts >= $%d", f.Start.UTC())
	b.add("ts <= $%d", f.End.UTC())
	if len(f.URIs) > 0 {
		b.add("uri = ANY($%d::text[])", pq.Array(f.URIs))
	}

	q := `
SELECT app, uri, ` + count + ` AS hits
FROM endpoint_hits
` + b.sql() + `
GROUP BY app, uri
ORDER BY hits DESC, uri ASC
`
	rows, err := r.db.QueryContext(ctx, q, b.args...)
	if err != nil {
		return nil, mapErr(err, "query stats")
	}
	defer rows.Close()

	out := []domain.ViewStat{}
	for rows.Next() {
		var s domain.ViewStat
		if err := rows.Scan(&s.App, &s.URI, &s.Hits); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

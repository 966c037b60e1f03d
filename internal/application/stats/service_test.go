package stats

import (
	"context"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type memRepo struct {
	hits    []domain.Hit
	queries []domain.ViewQuery
	filter  Filter
}

func (m *memRepo) SaveHit(ctx context.Context, h domain.Hit) error {
	m.hits = append(m.hits, h)
	return nil
}

func (m *memRepo) CountViews(ctx context.Context, qs []domain.ViewQuery) (map[string]int64, error) {
	m.queries = qs
	out := map[string]int64{}
	for _, q := range qs {
		seen := map[string]bool{}
		for _, h := range m.hits {
			if h.URI != q.URI || h.Timestamp.Before(q.Start) || h.Timestamp.After(q.End) {
				continue
			}
			if q.Unique && seen[h.IP] {
				continue
			}
			seen[h.IP] = true
			out[q.URI]++
		}
	}
	return out, nil
}

func (m *memRepo) Stats(ctx context.Context, f Filter) ([]domain.ViewStat, error) {
	m.filter = f
	return []domain.ViewStat{{App: "listing-service", URI: "/events", Hits: 3}}, nil
}

func TestService_RecordHit_And_Views(t *testing.T) {
	now := time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)
	repo := &memRepo{}
	svc := New(repo, fakeClock{t: now}, "")
	ctx := context.Background()

	require.NoError(t, svc.RecordHit(ctx, "/events/e1", "10.0.0.1"))
	require.NoError(t, svc.RecordHit(ctx, "/events/e1", "10.0.0.1"))
	require.NoError(t, svc.RecordHit(ctx, "/events/e1", "10.0.0.2"))
	assert.Equal(t, "listing-service", repo.hits[0].App)

	t.Run("unique_counts_distinct_ips", func(t *testing.T) {
		got, err := svc.Views(ctx, []domain.ViewQuery{{
			URI: "/events/e1", Start: now.Add(-time.Hour), End: now, Unique: true,
		}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), got["/events/e1"])
	})

	t.Run("empty_windows_are_skipped", func(t *testing.T) {
		got, err := svc.Views(ctx, []domain.ViewQuery{{URI: "/events/e1", Start: now, End: now.Add(-time.Hour)}})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("missing_ip_is_validation", func(t *testing.T) {
		err := svc.RecordHit(ctx, "/events/e1", "")
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	})
}

func TestService_Query(t *testing.T) {
	now := time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)
	repo := &memRepo{}
	svc := New(repo, fakeClock{t: now}, "listing-service")

	t.Run("start_after_end_is_validation", func(t *testing.T) {
		_, err := svc.Query(context.Background(), Filter{Start: now, End: now.Add(-time.Minute)})
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	})

	t.Run("missing_range_is_validation", func(t *testing.T) {
		_, err := svc.Query(context.Background(), Filter{End: now})
		assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
	})

	t.Run("blank_uris_are_dropped", func(t *testing.T) {
		out, err := svc.Query(context.Background(), Filter{
			Start: now.Add(-time.Hour), End: now, URIs: []string{" /events ", ""},
		})
		require.NoError(t, err)
		assert.Len(t, out, 1)
		assert.Equal(t, []string{"/events"}, repo.filter.URIs)
	})
}

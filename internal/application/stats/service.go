package stats

import (
	"context"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type Clock interface{ Now() time.Time }

type Repo interface {
	SaveHit(ctx context.Context, h domain.Hit) error
	CountViews(ctx context.Context, qs []domain.ViewQuery) (map[string]int64, error)
	Stats(ctx context.Context, f Filter) ([]domain.ViewStat, error)
}

// Filter selects hits in [Start, End], optionally restricted to URIs.
type Filter struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

// Service records page views and answers view-count queries.
type Service struct {
	repo  Repo
	clock Clock
	app   string
}

func New(repo Repo, clock Clock, app string) *Service {
	if strings.TrimSpace(app) == "" {
		app = "listing-service"
	}
	return &Service{repo: repo, clock: clock, app: app}
}

func (s *Service) RecordHit(ctx context.Context, uri, ip string) error {
	h, err := domain.NewHit(s.app, uri, ip, s.clock.Now())
	if err != nil {
		return err
	}
	return s.repo.SaveHit(ctx, h)
}

// Views returns hit counts keyed by URI. Queries with an empty window are skipped.
func (s *Service) Views(ctx context.Context, qs []domain.ViewQuery) (map[string]int64, error) {
	valid := make([]domain.ViewQuery, 0, len(qs))
	for _, q := range qs {
		if q.URI == "" || q.End.Before(q.Start) {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return map[string]int64{}, nil
	}
	return s.repo.CountViews(ctx, valid)
}

func (s *Service) Query(ctx context.Context, f Filter) ([]domain.ViewStat, error) {
	if f.Start.IsZero() || f.End.IsZero() {
		return nil, domain.ErrValidationMeta("invalid query param", map[string]string{
			"start": "start and end are required",
		})
	}
	if f.Start.After(f.End) {
		return nil, domain.ErrValidation("start must be <= end")
	}
	uris := f.URIs[:0:0]
	for _, u := range f.URIs {
		if u = strings.TrimSpace(u); u != "" {
			uris = append(uris, u)
		}
	}
	f.URIs = uris
	return s.repo.Stats(ctx, f)
}

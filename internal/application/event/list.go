package event

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page is offset pagination: skip From rows, return at most Size.
type Page struct {
	From int
	Size int
}

func (p *Page) Normalize() error {
	if p.From < 0 {
		return domain.ErrValidationMeta("invalid query param", map[string]string{"from": "must be >= 0"})
	}
	if p.Size < 0 {
		return domain.ErrValidationMeta("invalid query param", map[string]string{"size": "must be > 0"})
	}
	if p.Size == 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return nil
}

type AdminFilter struct {
	Users      []string
	States     []domain.EventState
	Categories []string
	RangeStart *time.Time
	RangeEnd   *time.Time
	Page
}

func (f *AdminFilter) Normalize() error {
	for _, st := range f.States {
		if !st.Valid() {
			return domain.ErrValidationMeta("invalid query param", map[string]string{
				"states": "must be any of: PENDING, PUBLISHED, CANCELED",
			})
		}
	}
	if f.RangeStart != nil && f.RangeEnd != nil && f.RangeStart.After(*f.RangeEnd) {
		return domain.ErrValidation("rangeStart must be <= rangeEnd")
	}
	f.Users = compact(f.Users)
	f.Categories = compact(f.Categories)
	return f.Page.Normalize()
}

type PublicSort string

const (
	SortEventDate PublicSort = "EVENT_DATE"
	SortViews     PublicSort = "VIEWS"
)

type PublicFilter struct {
	Text          string
	Categories    []string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          PublicSort
	Page
}

// Normalize defaults RangeStart to now so past events stay hidden unless asked for.
func (f *PublicFilter) Normalize(now time.Time) error {
	f.Text = strings.TrimSpace(f.Text)
	f.Categories = compact(f.Categories)

	if f.RangeStart == nil {
		t := now.UTC()
		f.RangeStart = &t
	}
	if f.RangeEnd != nil && f.RangeStart.After(*f.RangeEnd) {
		return domain.ErrValidation("rangeStart must be <= rangeEnd")
	}

	switch f.Sort {
	case "":
		f.Sort = SortEventDate
	case SortEventDate, SortViews:
	default:
		return domain.ErrValidationMeta("invalid query param", map[string]string{
			"sort": "must be one of: EVENT_DATE, VIEWS",
		})
	}
	return f.Page.Normalize()
}

func (s *Service) ListUserEvents(ctx context.Context, userID string, p Page) ([]EventView, error) {
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByInitiator(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, items)
}

func (s *Service) SearchAdmin(ctx context.Context, actorRole string, f AdminFilter) ([]EventView, error) {
	if !isAdmin(actorRole) {
		return nil, domain.ErrForbidden("admin role required")
	}
	if err := f.Normalize(); err != nil {
		return nil, err
	}
	items, err := s.repo.SearchAdmin(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, items)
}

// SearchPublic lists published events for anonymous visitors and records the visit from ip.
func (s *Service) SearchPublic(ctx context.Context, f PublicFilter, ip string) ([]EventView, error) {
	if err := f.Normalize(s.clock.Now()); err != nil {
		return nil, err
	}
	items, err := s.repo.SearchPublic(ctx, f)
	if err != nil {
		return nil, err
	}
	s.recordHit(ctx, "/events", ip)

	out, err := s.project(ctx, items)
	if err != nil {
		return nil, err
	}
	if f.Sort == SortViews {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	}
	return out, nil
}

func compact(in []string) []string {
	out := in[:0:0]
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/event"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/participation"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/stats"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// memDB backs every port the HTTP layer reaches. WithTx holds mu for the whole
// callback, so tx methods must not lock again.
type memDB struct {
	mu sync.Mutex

	users      map[string]bool
	categories map[string]bool

	events   map[string]*domain.Event
	requests map[string]*domain.ParticipationRequest
	order    []string
	hits     []domain.Hit
	outbox   []messaging.OutboxMessage
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[string]bool{},
		categories: map[string]bool{},
		events:     map[string]*domain.Event{},
		requests:   map[string]*domain.ParticipationRequest{},
	}
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

func cloneReq(r *domain.ParticipationRequest) *domain.ParticipationRequest {
	c := *r
	return &c
}

// directory
func (m *memDB) UserExists(_ context.Context, id string) (bool, error)     { return m.users[id], nil }
func (m *memDB) CategoryExists(_ context.Context, id string) (bool, error) { return m.categories[id], nil }

func (m *memDB) event(id string) (*domain.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	return cloneEvent(e), nil
}

func (m *memDB) confirmed(eventID string) int {
	n := 0
	for _, r := range m.requests {
		if r.EventID == eventID && r.Status == domain.RequestConfirmed {
			n++
		}
	}
	return n
}

func (m *memDB) requestsWhere(pred func(*domain.ParticipationRequest) bool) []*domain.ParticipationRequest {
	out := []*domain.ParticipationRequest{}
	for _, id := range m.order {
		if r := m.requests[id]; pred(r) {
			out = append(out, cloneReq(r))
		}
	}
	return out
}

func (m *memDB) sortedEvents(pred func(*domain.Event) bool) []*domain.Event {
	out := []*domain.Event{}
	for _, e := range m.events {
		if pred(e) {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out
}

// eventRepo adapts memDB to event.EventRepo.
type eventRepo struct{ *memDB }

func (r eventRepo) Create(_ context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = cloneEvent(e)
	return nil
}

func (r eventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.event(id)
}

func (r eventRepo) ListByInitiator(_ context.Context, initiatorID string, _ event.Page) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedEvents(func(e *domain.Event) bool { return e.InitiatorID == initiatorID }), nil
}

func (r eventRepo) SearchAdmin(_ context.Context, f event.AdminFilter) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedEvents(func(e *domain.Event) bool {
		if len(f.States) == 0 {
			return true
		}
		for _, s := range f.States {
			if e.State == s {
				return true
			}
		}
		return false
	}), nil
}

func (r eventRepo) SearchPublic(_ context.Context, _ event.PublicFilter) ([]*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sortedEvents(func(e *domain.Event) bool { return e.State == domain.StatePublished }), nil
}

func (r eventRepo) CountConfirmedByEvents(_ context.Context, ids []string) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, id := range ids {
		if n := r.confirmed(id); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (r eventRepo) WithTx(_ context.Context, fn func(event.TxEventRepo) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(memTx{r.memDB})
}

// requestRepo adapts memDB to participation.Repo.
type requestRepo struct{ *memDB }

func (r requestRepo) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.event(id)
}

func (r requestRepo) GetByID(_ context.Context, id string) (*domain.ParticipationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrNotFound("request not found")
	}
	return cloneReq(req), nil
}

func (r requestRepo) ListByRequester(_ context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requestsWhere(func(q *domain.ParticipationRequest) bool { return q.RequesterID == requesterID }), nil
}

func (r requestRepo) ListByEvent(_ context.Context, eventID string) ([]*domain.ParticipationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requestsWhere(func(q *domain.ParticipationRequest) bool { return q.EventID == eventID }), nil
}

func (r requestRepo) WithTx(_ context.Context, fn func(participation.TxRepo) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(memTx{r.memDB})
}

// memTx serves both transactional views.
type memTx struct{ *memDB }

func (t memTx) GetEventForUpdate(_ context.Context, id string) (*domain.Event, error) {
	return t.event(id)
}

func (t memTx) UpdateEvent(_ context.Context, e *domain.Event) error {
	t.events[e.ID] = cloneEvent(e)
	return nil
}

func (t memTx) InsertOutbox(_ context.Context, msg messaging.OutboxMessage) error {
	t.outbox = append(t.outbox, msg)
	return nil
}

func (t memTx) CountConfirmed(_ context.Context, eventID string) (int, error) {
	return t.confirmed(eventID), nil
}

func (t memTx) ExistsActive(_ context.Context, requesterID, eventID string) (bool, error) {
	for _, r := range t.requests {
		if r.RequesterID == requesterID && r.EventID == eventID && r.Status != domain.RequestCanceled {
			return true, nil
		}
	}
	return false, nil
}

func (t memTx) GetRequestsByIDs(_ context.Context, eventID string, ids []string) ([]*domain.ParticipationRequest, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return t.requestsWhere(func(q *domain.ParticipationRequest) bool { return want[q.ID] && q.EventID == eventID }), nil
}

func (t memTx) GetRequestForUpdate(_ context.Context, id string) (*domain.ParticipationRequest, error) {
	req, ok := t.requests[id]
	if !ok {
		return nil, domain.ErrNotFound("request not found")
	}
	return cloneReq(req), nil
}

func (t memTx) InsertRequest(_ context.Context, req *domain.ParticipationRequest) error {
	t.requests[req.ID] = cloneReq(req)
	t.order = append(t.order, req.ID)
	return nil
}

func (t memTx) UpdateStatuses(_ context.Context, reqs []*domain.ParticipationRequest) error {
	for _, r := range reqs {
		t.requests[r.ID] = cloneReq(r)
	}
	return nil
}

// statsRepo adapts memDB to stats.Repo.
type statsRepo struct{ *memDB }

func (s statsRepo) SaveHit(_ context.Context, h domain.Hit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits = append(s.hits, h)
	return nil
}

func (s statsRepo) CountViews(_ context.Context, qs []domain.ViewQuery) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]int64{}
	for _, q := range qs {
		seen := map[string]bool{}
		for _, h := range s.hits {
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

func (s statsRepo) Stats(_ context.Context, f stats.Filter) ([]domain.ViewStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type key struct{ app, uri string }
	uris := map[string]bool{}
	for _, u := range f.URIs {
		uris[u] = true
	}
	counts := map[key]map[string]int64{}
	for _, h := range s.hits {
		if h.Timestamp.Before(f.Start) || h.Timestamp.After(f.End) {
			continue
		}
		if len(uris) > 0 && !uris[h.URI] {
			continue
		}
		k := key{h.App, h.URI}
		if counts[k] == nil {
			counts[k] = map[string]int64{}
		}
		counts[k][h.IP]++
	}
	out := []domain.ViewStat{}
	for k, ips := range counts {
		var n int64
		for _, c := range ips {
			if f.Unique {
				n++
			} else {
				n += c
			}
		}
		out = append(out, domain.ViewStat{App: k.app, URI: k.uri, Hits: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hits != out[j].Hits {
			return out[i].Hits > out[j].Hits
		}
		return out[i].URI < out[j].URI
	})
	return out, nil
}

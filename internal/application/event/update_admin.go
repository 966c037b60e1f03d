package event

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/metrics"
)

type AdminUpdateCmd struct {
	ActorRole string
	EventID   string

	Patch       domain.EventPatch
	StateAction *domain.AdminStateAction
}

// UpdateAsAdmin edits any event and drives the moderation transitions.
func (s *Service) UpdateAsAdmin(ctx context.Context, cmd AdminUpdateCmd) (EventView, error) {
	if !isAdmin(cmd.ActorRole) {
		return EventView{}, domain.ErrForbidden("admin role required")
	}

	now := s.clock.Now().UTC()
	var out *domain.Event
	var changed bool

	err := s.repo.WithTx(ctx, func(r TxEventRepo) error {
		ev, err := r.GetEventForUpdate(ctx, cmd.EventID)
		if err != nil {
			return err
		}
		if cmd.Patch.EventDate != nil {
			if err := domain.CheckEventDate(*cmd.Patch.EventDate, now, domain.AdminLeadTime); err != nil {
				return err
			}
		}
		if err := s.ensureCategory(ctx, cmd.Patch.CategoryID); err != nil {
			return err
		}

		before := ev.State
		if err := ev.ApplyAdminAction(cmd.StateAction, now); err != nil {
			return err
		}
		if err := ev.ApplyPatch(cmd.Patch, now); err != nil {
			return err
		}
		if err := r.UpdateEvent(ctx, ev); err != nil {
			return err
		}

		rk := messaging.RKEventUpdated
		if ev.State != before {
			switch ev.State {
			case domain.StatePublished:
				rk = messaging.RKEventPublished
			case domain.StateCanceled:
				rk = messaging.RKEventRejected
			}
		}
		if err := writeOutbox(ctx, r, rk, ev, "admin", now); err != nil {
			return err
		}

		out, changed = ev, ev.State != before
		return nil
	})
	if err != nil {
		return EventView{}, err
	}

	if changed {
		metrics.RecordEventTransition(string(out.State))
	}
	s.invalidate(ctx, out.ID)
	return s.projectOne(ctx, out)
}

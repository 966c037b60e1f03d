package event

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/metrics"
)

type UserUpdateCmd struct {
	ActorID string
	EventID string

	Patch       domain.EventPatch
	StateAction *domain.UserStateAction
}

// UpdateAsInitiator edits a non-published event on behalf of its initiator.
func (s *Service) UpdateAsInitiator(ctx context.Context, cmd UserUpdateCmd) (EventView, error) {
	now := s.clock.Now().UTC()
	var out *domain.Event

	err := s.repo.WithTx(ctx, func(r TxEventRepo) error {
		ev, err := r.GetEventForUpdate(ctx, cmd.EventID)
		if err != nil {
			return err
		}
		if ev.InitiatorID != cmd.ActorID {
			return domain.ErrForbidden("only the initiator can edit the event")
		}
		if ev.State == domain.StatePublished {
			return domain.ErrConflict("published event cannot be changed")
		}
		if cmd.Patch.EventDate != nil {
			if err := domain.CheckEventDate(*cmd.Patch.EventDate, now, domain.InitiatorLeadTime); err != nil {
				return err
			}
		}
		if err := s.ensureCategory(ctx, cmd.Patch.CategoryID); err != nil {
			return err
		}

		if err := ev.ApplyPatch(cmd.Patch, now); err != nil {
			return err
		}
		if err := ev.ApplyUserAction(cmd.StateAction, now); err != nil {
			return err
		}
		if err := r.UpdateEvent(ctx, ev); err != nil {
			return err
		}

		rk := messaging.RKEventUpdated
		if cmd.StateAction != nil && *cmd.StateAction == domain.ActionCancelReview {
			rk = messaging.RKEventReviewCanceled
		}
		if err := writeOutbox(ctx, r, rk, ev, "user", now); err != nil {
			return err
		}

		out = ev
		return nil
	})
	if err != nil {
		return EventView{}, err
	}

	if cmd.StateAction != nil {
		metrics.RecordEventTransition(string(out.State))
	}
	s.invalidate(ctx, out.ID)
	return s.projectOne(ctx, out)
}

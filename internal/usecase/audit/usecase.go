package audit

import (
	"context"
	"fmt"
	"time"

	"pawn-lending-backend/internal/domain/access"
	"pawn-lending-backend/internal/domain/apperr"
	domain "pawn-lending-backend/internal/domain/audit"
	"pawn-lending-backend/internal/domain/uow"
)

var ErrUnknownEntity = apperr.Validation("entity type must be application, contract, loan or payment")

type EntryDTO struct {
	EntryID    string         `json:"entry_id"`
	Kind       string         `json:"kind"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	ActorID    string         `json:"actor_id"`
	Payload    domain.Payload `json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

// List returns the trail of one entity, oldest first. Staff only.
func (u *Usecase) List(ctx context.Context, caller access.Identity, entityType, entityID string) ([]EntryDTO, error) {
	if !caller.Staff() {
		return nil, access.ErrForbidden
	}
	et := domain.EntityType(entityType)
	if !et.Valid() {
		return nil, ErrUnknownEntity
	}

	var out []EntryDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		entries, err := r.Audit.ListByEntity(ctx, et, entityID)
		if err != nil {
			return fmt.Errorf("list audit entries: %w", err)
		}
		out = make([]EntryDTO, 0, len(entries))
		for i := range entries {
			e := &entries[i]
			p, err := e.Decode()
			if err != nil {
				return err
			}
			out = append(out, EntryDTO{
				EntryID:    e.EntryID,
				Kind:       string(e.Kind),
				EntityType: string(e.EntityType),
				EntityID:   e.EntityID,
				ActorID:    e.ActorID,
				Payload:    p,
				CreatedAt:  e.CreatedAt,
			})
		}
		return nil
	})
	return out, err
}

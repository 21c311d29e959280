package security

import (
	"context"
	"net/mail"
	"strconv"
	"strings"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/auditutil"
)

// ActorService manages the actor directory.
type ActorService struct {
	repo             domain.ActorRepository
	audit            domain.AuditRepository
	tx               domain.TxManager
	eval             *Evaluator
	defaultAllowance int
}

// NewActorService creates a new ActorService. A non-positive allowance means
// domain.DefaultGuestAllowance.
func NewActorService(repo domain.ActorRepository, audit domain.AuditRepository, tx domain.TxManager, eval *Evaluator, defaultAllowance int) *ActorService {
	if defaultAllowance <= 0 {
		defaultAllowance = domain.DefaultGuestAllowance
	}
	return &ActorService{repo: repo, audit: audit, tx: tx, eval: eval, defaultAllowance: defaultAllowance}
}

// Register creates an active member with the default guest allowance.
func (s *ActorService) Register(ctx context.Context, email, name string) (*domain.Actor, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrValidationField("email", "invalid email address")
	}
	if name == "" {
		return nil, domain.ErrValidationField("name", "name is required")
	}
	return s.repo.Create(ctx, &domain.Actor{
		Email:            email,
		Name:             name,
		Role:             domain.RoleMember,
		MembershipStatus: domain.MembershipActive,
		GuestAllowance:   s.defaultAllowance,
	})
}

// Resolve loads the identity triple for an authenticated subject.
func (s *ActorService) Resolve(ctx context.Context, id int64) (domain.ContextActor, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.ContextActor{}, err
	}
	return a.ContextActor(), nil
}

// Get returns an actor, scoped by User:read.
func (s *ActorService) Get(ctx context.Context, id int64) (*domain.Actor, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceUser, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	if err := access.Check(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// AdminUpdate changes role, membership status, guest allowance or name.
// Requires admin privileges. Audited as update_user.
func (s *ActorService) AdminUpdate(ctx context.Context, id int64, upd domain.ActorUpdate) (*domain.Actor, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return nil, domain.ErrValidationField("role", "unknown role %q", *upd.Role)
	}
	if upd.MembershipStatus != nil {
		if _, err := domain.ParseMembershipStatus(string(*upd.MembershipStatus)); err != nil {
			return nil, err
		}
	}
	if upd.GuestAllowance != nil && *upd.GuestAllowance < 0 {
		return nil, domain.ErrValidationField("guest_allowance", "must not be negative")
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, domain.ErrValidationField("name", "name is required")
	}

	var updated *domain.Actor
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		before, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated, err = s.repo.Update(ctx, id, upd)
		if err != nil {
			return err
		}
		return auditutil.Record(ctx, s.audit, auditutil.Event{
			ActorID:      admin.ID,
			Action:       domain.AuditUpdateUser,
			ResourceType: domain.ResourceUser,
			ResourceID:   strconv.FormatInt(id, 10),
			Before:       before,
			After:        updated,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

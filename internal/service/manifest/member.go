package manifest

import (
	"context"
	"encoding/json"
	"strings"

	"tablekeep/internal/domain"
	"tablekeep/internal/service/security"
)

// MemberService manages member profiles an actor can link into manifests.
type MemberService struct {
	repo domain.MemberRepository
	eval *security.Evaluator
}

// NewMemberService creates a new MemberService.
func NewMemberService(repo domain.MemberRepository, eval *security.Evaluator) *MemberService {
	return &MemberService{repo: repo, eval: eval}
}

// Create adds a profile owned by p.OwnerID; zero means the caller.
func (s *MemberService) Create(ctx context.Context, p *domain.MemberProfile) (*domain.MemberProfile, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceMember, domain.ActionWrite)
	if err != nil {
		return nil, err
	}
	if p.OwnerID == 0 {
		p.OwnerID = access.ActorID
	}
	if err := access.Check(p.OwnerID); err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, domain.ErrValidationField("name", "name is required")
	}
	if p.DietaryRestrictions != nil && !json.Valid(p.DietaryRestrictions) {
		return nil, domain.ErrValidationField("dietary_restrictions", "dietary_restrictions must be valid JSON")
	}
	if err := s.checkSiblings(ctx, p.OwnerID, 0, p.Name, p.Relation); err != nil {
		return nil, err
	}
	p.CreatedBy = &access.ActorID
	return s.repo.Create(ctx, p)
}

// Update edits a profile within the caller's write scope.
func (s *MemberService) Update(ctx context.Context, id int64, upd domain.MemberUpdate) (*domain.MemberProfile, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceMember, domain.ActionWrite)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(current.OwnerID); err != nil {
		return nil, err
	}
	name := current.Name
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, domain.ErrValidationField("name", "name is required")
		}
		upd.Name = &name
	}
	relation := current.Relation
	if upd.Relation != nil {
		relation = upd.Relation
	}
	if upd.DietaryRestrictions != nil && !json.Valid(upd.DietaryRestrictions) {
		return nil, domain.ErrValidationField("dietary_restrictions", "dietary_restrictions must be valid JSON")
	}
	if err := s.checkSiblings(ctx, current.OwnerID, id, name, relation); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, upd)
}

// Delete removes a profile. A profile still listed on a manifest is a
// conflict.
func (s *MemberService) Delete(ctx context.Context, id int64) error {
	access, err := s.eval.Authorize(ctx, domain.ResourceMember, domain.ActionDelete)
	if err != nil {
		return err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Check(p.OwnerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// checkSiblings enforces per-owner uniqueness: names are unique ignoring
// case and at most one profile has the self relation. selfID excludes the
// profile being edited.
func (s *MemberService) checkSiblings(ctx context.Context, ownerID, selfID int64, name string, relation *string) error {
	owner := ownerID
	siblings, err := s.repo.List(ctx, &owner)
	if err != nil {
		return err
	}
	for _, sib := range siblings {
		if sib.ID == selfID {
			continue
		}
		if strings.EqualFold(sib.Name, name) {
			return domain.ErrConflictField("name", "a profile named %q already exists", name)
		}
		if isSelf(relation) && isSelf(sib.Relation) {
			return domain.ErrConflictField("relation", "only one profile may have relation %q", RelationSelf)
		}
	}
	return nil
}

// RelationSelf marks the profile that describes the owner themselves.
const RelationSelf = "self"

func isSelf(relation *string) bool {
	return relation != nil && strings.EqualFold(strings.TrimSpace(*relation), RelationSelf)
}

// Get returns one profile.
func (s *MemberService) Get(ctx context.Context, id int64) (*domain.MemberProfile, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceMember, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Check(p.OwnerID); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the profiles visible to the caller.
func (s *MemberService) List(ctx context.Context) ([]domain.MemberProfile, error) {
	access, err := s.eval.Authorize(ctx, domain.ResourceMember, domain.ActionRead)
	if err != nil {
		return nil, err
	}
	owner, empty, err := access.OwnerFilter()
	if err != nil {
		return nil, err
	}
	if empty {
		return []domain.MemberProfile{}, nil
	}
	return s.repo.List(ctx, owner)
}

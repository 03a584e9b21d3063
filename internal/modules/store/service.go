package store

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/georgemunganga/pulse-backend/internal/modules/access"
	"github.com/georgemunganga/pulse-backend/internal/modules/user"
	"github.com/google/uuid"
)

// Service defines store business logic: stores, their teams, and the
// permission checks guarding every write.
type Service interface {
	// Store operations
	CreateStore(ctx context.Context, viewer *Viewer, req CreateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, id string) (*Store, error)
	GetDetails(ctx context.Context, id string, viewer *Viewer) (*Details, error)
	ListStores(ctx context.Context, viewerID string) ([]*Store, error)
	UpdateStore(ctx context.Context, actorID, id string, req UpdateStoreRequest) (*Store, error)
	DeleteStore(ctx context.Context, actorID, id string) error

	// Team operations
	ListTeam(ctx context.Context, storeID string, viewer *Viewer) ([]*TeamMember, error)
	AddTeamMember(ctx context.Context, actorID, storeID string, req AddMemberRequest) (*TeamMember, error)
	RemoveTeamMember(ctx context.Context, actorID, storeID, memberID string) error

	// Authorize loads the store and fails unless actorID belongs to it and
	// holds every one of perms.
	Authorize(ctx context.Context, storeID, actorID string, perms ...access.Permission) (*Store, error)
}

// Accounts resolves the accounts behind team members.
type Accounts interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// Notifier is told whenever a store or its team changes.
type Notifier interface {
	StoreChanged(ctx context.Context, storeID string)
}

// DecisionRecorder observes permission decisions made on the write path.
type DecisionRecorder interface {
	RecordDecision(role access.Role, perms []access.Permission, allowed bool)
}

// Option configures the store service.
type Option func(*service)

// WithNotifier sets the notifier called after every successful mutation.
func WithNotifier(n Notifier) Option { return func(s *service) { s.notifier = n } }

// WithRecorder sets the recorder for permission decisions.
func WithRecorder(r DecisionRecorder) Option { return func(s *service) { s.recorder = r } }

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option { return func(s *service) { s.logger = l } }

type service struct {
	repo     Repository
	team     TeamRepository
	accounts Accounts
	notifier Notifier
	recorder DecisionRecorder
	logger   *slog.Logger
}

// NewService creates a new store service.
func NewService(repo Repository, team TeamRepository, accounts Accounts, opts ...Option) Service {
	s := &service{
		repo:     repo,
		team:     team,
		accounts: accounts,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ViewerFromUser converts an account into the viewer the resolver works with.
func ViewerFromUser(u *user.User) *Viewer {
	return &Viewer{
		ID:          u.ID.String(),
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}
}

func (s *service) CreateStore(ctx context.Context, viewer *Viewer, req CreateStoreRequest) (*Store, error) {
	if viewer == nil || viewer.ID == "" {
		return nil, errInvalid("a signed-in owner is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errInvalid("store name is required")
	}
	now := time.Now().UTC()
	st := &Store{
		ID:      uuid.NewString(),
		Name:    name,
		About:   strings.TrimSpace(req.About),
		Address: req.Address,
		OwnerID: viewer.ID,
		Owner: OwnerSnapshot{
			ID:          viewer.ID,
			Name:        viewer.DisplayName,
			Email:       viewer.Email,
			PhoneNumber: viewer.PhoneNumber,
		},
		Admins:     []string{},
		Managers:   []string{},
		SharedWith: []string{viewer.ID},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateStore(ctx, st); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "store created", "store_id", st.ID, "owner_id", st.OwnerID)
	return st, nil
}

func (s *service) GetStore(ctx context.Context, id string) (*Store, error) {
	return s.repo.GetStoreByID(ctx, id)
}

func (s *service) GetDetails(ctx context.Context, id string, viewer *Viewer) (*Details, error) {
	st, err := s.visibleStore(ctx, id, viewer)
	if err != nil {
		return nil, err
	}
	team, err := s.team.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return Describe(st, team, viewer), nil
}

func (s *service) ListStores(ctx context.Context, viewerID string) ([]*Store, error) {
	if viewerID == "" {
		return []*Store{}, nil
	}
	return s.repo.ListStoresSharedWith(ctx, viewerID)
}

func (s *service) UpdateStore(ctx context.Context, actorID, id string, req UpdateStoreRequest) (*Store, error) {
	st, err := s.Authorize(ctx, id, actorID, access.PermUpdateStore)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errInvalid("store name is required")
		}
		st.Name = name
	}
	if req.About != nil {
		st.About = strings.TrimSpace(*req.About)
	}
	if req.Address != nil {
		st.Address = *req.Address
	}
	st.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStore(ctx, st); err != nil {
		return nil, err
	}
	s.notify(ctx, st.ID)
	return st, nil
}

func (s *service) DeleteStore(ctx context.Context, actorID, id string) error {
	if _, err := s.Authorize(ctx, id, actorID, access.PermDeleteStore); err != nil {
		return err
	}
	if err := s.repo.DeleteStore(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "store deleted", "store_id", id, "actor_id", actorID)
	s.notify(ctx, id)
	return nil
}

func (s *service) ListTeam(ctx context.Context, storeID string, viewer *Viewer) ([]*TeamMember, error) {
	if _, err := s.visibleStore(ctx, storeID, viewer); err != nil {
		return nil, err
	}
	team, err := s.team.ListMembers(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return ResolveTeamList(team, viewer), nil
}

func (s *service) AddTeamMember(ctx context.Context, actorID, storeID string, req AddMemberRequest) (*TeamMember, error) {
	role, err := access.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if role == access.RoleOwner {
		return nil, errInvalid("a store has exactly one owner; add members as admin or manager")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errInvalid("email is required")
	}

	st, err := s.memberStore(ctx, storeID, actorID)
	if err != nil {
		return nil, err
	}
	// Admins may only bring in managers.
	allowed := CanPerform(st, actorID, access.PermAddMember) ||
		(role == access.RoleManager && CanPerform(st, actorID, access.PermAddManagerOnly))
	s.record(st, actorID, []access.Permission{access.PermAddMember}, allowed)
	if !allowed {
		return nil, errForbidden(storeID, actorID, access.PermAddMember)
	}

	team, err := s.team.ListMembers(ctx, storeID)
	if err != nil {
		return nil, err
	}
	for _, m := range team {
		if strings.EqualFold(m.Email, email) {
			return nil, errMemberExists(storeID, email)
		}
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	accountID := account.ID.String()
	if accountID == st.OwnerID {
		return nil, errMemberExists(storeID, email)
	}

	now := time.Now().UTC()
	member := &TeamMember{
		ID:          accountID,
		Name:        account.DisplayName,
		Email:       account.Email,
		PhoneNumber: account.PhoneNumber,
		JoinedAt:    &now,
	}
	if err := s.team.AddMember(ctx, storeID, member, role); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "team member added",
		"store_id", storeID, "member_id", accountID, "role", role.String(), "actor_id", actorID)
	s.notify(ctx, storeID)
	return member, nil
}

func (s *service) RemoveTeamMember(ctx context.Context, actorID, storeID, memberID string) error {
	if memberID == "" {
		return errInvalid("member id is required")
	}
	if memberID == actorID {
		return errInvalid("you cannot remove yourself from the store")
	}
	st, err := s.Authorize(ctx, storeID, actorID, access.PermRemoveMember)
	if err != nil {
		return err
	}
	if memberID == st.OwnerID {
		return errOwnerImmutable(storeID)
	}

	if err := s.team.RemoveMember(ctx, storeID, memberID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "team member removed",
		"store_id", storeID, "member_id", memberID, "actor_id", actorID)
	s.notify(ctx, storeID)
	return nil
}

func (s *service) Authorize(ctx context.Context, storeID, actorID string, perms ...access.Permission) (*Store, error) {
	st, err := s.memberStore(ctx, storeID, actorID)
	if err != nil {
		return nil, err
	}
	allowed := CanPerform(st, actorID, perms...)
	s.record(st, actorID, perms, allowed)
	if !allowed {
		return nil, errForbidden(storeID, actorID, perms...)
	}
	return st, nil
}

// memberStore loads the store and hides it from anyone outside SharedWith.
// RoleOf treats strangers as managers, so this check has to come first.
func (s *service) memberStore(ctx context.Context, storeID, actorID string) (*Store, error) {
	st, err := s.repo.GetStoreByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if actorID == "" || (actorID != st.OwnerID && !contains(st.SharedWith, actorID)) {
		return nil, errStoreNotFound(storeID)
	}
	return st, nil
}

func (s *service) visibleStore(ctx context.Context, storeID string, viewer *Viewer) (*Store, error) {
	if viewer == nil {
		return nil, errStoreNotFound(storeID)
	}
	return s.memberStore(ctx, storeID, viewer.ID)
}

func (s *service) record(st *Store, actorID string, perms []access.Permission, allowed bool) {
	if s.recorder != nil {
		s.recorder.RecordDecision(RoleOf(st, actorID), perms, allowed)
	}
}

func (s *service) notify(ctx context.Context, storeID string) {
	if s.notifier != nil {
		s.notifier.StoreChanged(ctx, storeID)
	}
}

package store

import (
	"context"

	"github.com/georgemunganga/pulse-backend/internal/modules/access"
)

// Repository defines store data storage.
type Repository interface {
	CreateStore(ctx context.Context, s *Store) error
	GetStoreByID(ctx context.Context, id string) (*Store, error)
	ListStoresSharedWith(ctx context.Context, memberID string) ([]*Store, error)
	UpdateStore(ctx context.Context, s *Store) error
	DeleteStore(ctx context.Context, id string) error
}

// TeamRepository defines storage for a store's team records. Adding and
// removing a member also updates the store's role lists and SharedWith in
// place, against the current row rather than a copy the caller read earlier.
type TeamRepository interface {
	ListMembers(ctx context.Context, storeID string) ([]*TeamMember, error)
	AddMember(ctx context.Context, storeID string, m *TeamMember, role access.Role) error
	RemoveMember(ctx context.Context, storeID, memberID string) error
}

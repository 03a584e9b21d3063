package store

import (
	"time"

	"github.com/georgemunganga/pulse-backend/internal/modules/access"
)

// Store is the tenant aggregate root. The owner is never listed in Admins or
// Managers; SharedWith holds every member id ever granted access and is what
// "stores visible to me" queries filter on.
type Store struct {
	ID         string        `json:"uid"`
	Name       string        `json:"name"`
	About      string        `json:"about"`
	Address    Address       `json:"address"`
	OwnerID    string        `json:"owner_id"`
	Owner      OwnerSnapshot `json:"owner"`
	Admins     []string      `json:"admins"`
	Managers   []string      `json:"managers"`
	SharedWith []string      `json:"shared_with"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Address is the store's postal address.
type Address struct {
	AddressLine1 string `json:"address_line1"`
	CityAndState string `json:"city_and_state"`
	PinCode      string `json:"pin_code"`
}

// OwnerSnapshot is the owner's profile denormalized onto the store when it
// is created. It is not looked up from the team records.
type OwnerSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

// TeamMember is a per-store membership record. Its id equals the account id;
// deleting it removes the person from the store, not the account.
type TeamMember struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	JoinedAt    *time.Time `json:"joined_at,omitempty"`
}

// Viewer is the authenticated account looking at a store.
type Viewer struct {
	ID          string
	DisplayName string
	Email       string
	PhoneNumber string
	CreatedAt   time.Time
}

// TeamView buckets the team by role for display.
type TeamView struct {
	Owner    TeamMember    `json:"owner"`
	Admins   []*TeamMember `json:"admins"`
	Managers []*TeamMember `json:"managers"`
}

// Details is everything a store page needs for one viewer.
type Details struct {
	Store       *Store                     `json:"store"`
	Team        []*TeamMember              `json:"team"`
	TeamView    TeamView                   `json:"team_view"`
	Me          *TeamMember                `json:"me"`
	Role        access.Role                `json:"role"`
	Policy      access.RolePolicy          `json:"policy"`
	Permissions map[access.Permission]bool `json:"permissions"`
}

// CreateStoreRequest holds data for creating a store.
type CreateStoreRequest struct {
	Name    string  `json:"name"`
	About   string  `json:"about"`
	Address Address `json:"address"`
}

// UpdateStoreRequest holds the editable store fields. Nil fields are left as they are.
type UpdateStoreRequest struct {
	Name    *string  `json:"name"`
	About   *string  `json:"about"`
	Address *Address `json:"address"`
}

// AddMemberRequest names the account to add and the role it gets.
type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

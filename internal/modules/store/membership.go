package store

import "github.com/georgemunganga/pulse-backend/internal/modules/access"

// RoleOf derives memberID's role in s: owner first, then admin, and manager
// for everything else, including unknown and empty ids. It says nothing
// about whether memberID belongs to the store at all; SharedWith decides that.
func RoleOf(s *Store, memberID string) access.Role {
	switch {
	case memberID == "":
		return access.RoleManager
	case memberID == s.OwnerID:
		return access.RoleOwner
	case contains(s.Admins, memberID):
		return access.RoleAdmin
	default:
		return access.RoleManager
	}
}

// CanPerform reports whether memberID's role grants every one of perms.
// An empty memberID can never act, even though RoleOf maps it to manager.
func CanPerform(s *Store, memberID string, perms ...access.Permission) bool {
	if memberID == "" {
		return false
	}
	return access.Grants(RoleOf(s, memberID), perms...)
}

// DeriveTeamView buckets team by the store's role lists. The admin and
// manager checks are independent: an id present in both lists shows up in
// both buckets.
func DeriveTeamView(s *Store, team []*TeamMember) TeamView {
	view := TeamView{
		Owner: TeamMember{
			ID:          s.Owner.ID,
			Name:        s.Owner.Name,
			Email:       s.Owner.Email,
			PhoneNumber: s.Owner.PhoneNumber,
		},
		Admins:   []*TeamMember{},
		Managers: []*TeamMember{},
	}
	for _, m := range team {
		if contains(s.Admins, m.ID) {
			view.Admins = append(view.Admins, m)
		}
		if contains(s.Managers, m.ID) {
			view.Managers = append(view.Managers, m)
		}
	}
	return view
}

// ResolveTeamList returns the team as shown to viewer. A store without team
// records yet shows the viewer as its only member.
func ResolveTeamList(team []*TeamMember, viewer *Viewer) []*TeamMember {
	if viewer == nil {
		return []*TeamMember{}
	}
	if len(team) == 0 {
		return []*TeamMember{{
			ID:          viewer.ID,
			Name:        orDefault(viewer.DisplayName, "You"),
			Email:       viewer.Email,
			PhoneNumber: viewer.PhoneNumber,
		}}
	}
	return team
}

// ResolveActingMember finds viewer in team, or builds a record from the
// viewer's account when the store has no record for them.
func ResolveActingMember(team []*TeamMember, viewer *Viewer) *TeamMember {
	if viewer == nil {
		viewer = &Viewer{}
	}
	for _, m := range team {
		if m.ID == viewer.ID {
			return m
		}
	}
	fallback := &TeamMember{
		ID:          viewer.ID,
		Name:        orDefault(viewer.DisplayName, "User"),
		Email:       viewer.Email,
		PhoneNumber: viewer.PhoneNumber,
	}
	if !viewer.CreatedAt.IsZero() {
		joined := viewer.CreatedAt
		fallback.JoinedAt = &joined
	}
	return fallback
}

// Describe computes the viewer-specific view of s over the given team
// snapshot. It is a pure recomputation; nothing is cached between calls.
func Describe(s *Store, team []*TeamMember, viewer *Viewer) *Details {
	list := ResolveTeamList(team, viewer)
	me := ResolveActingMember(list, viewer)
	role := RoleOf(s, me.ID)

	perms := make(map[access.Permission]bool, len(access.AllPermissions()))
	for _, p := range access.AllPermissions() {
		perms[p] = CanPerform(s, me.ID, p)
	}

	return &Details{
		Store:       s,
		Team:        list,
		TeamView:    DeriveTeamView(s, team),
		Me:          me,
		Role:        role,
		Policy:      access.Policy(role),
		Permissions: perms,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

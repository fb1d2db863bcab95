package user

import "context"

// Role scopes which status transitions a user may request.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleSupervisor    Role = "supervisor"
	RoleOrganizer     Role = "organizer"
)

// ParseRole maps a claim string onto a known role. Unknown strings yield
// ok == false so callers can reject the credential outright.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "administrator", "admin":
		return RoleAdministrator, true
	case "supervisor":
		return RoleSupervisor, true
	case "organizer":
		return RoleOrganizer, true
	}
	return "", false
}

// User is the minimal directory record the transfer flow needs: identity for
// target validation and cities for takeover eligibility.
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   Role     `json:"role"`
	Cities []string `json:"cities,omitempty"`
}

// EligibleFor reports whether the user may claim a released slot in the
// given city. Slots without a city are open to everyone.
func (u *User) EligibleFor(city *string) bool {
	if city == nil || *city == "" {
		return true
	}
	for _, c := range u.Cities {
		if c == *city {
			return true
		}
	}
	return false
}

// Repository is the read-side directory contract.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// README: User, rider, and driver aggregates with the growable role set.
package identity

import (
	"time"

	"ridenow/internal/types"
)

type Role string

const (
	RoleRider  Role = "RIDER"
	RoleDriver Role = "DRIVER"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID           types.ID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

// HasRole reports whether the user holds the given role. Roles only grow;
// there is no removal path.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// Rider is the ride-requesting side of a user, created at signup.
type Rider struct {
	ID     types.ID
	UserID types.ID
	Rating float64
}

// Driver is created at onboarding. Available is false while the driver holds
// an active ride.
type Driver struct {
	ID        types.ID
	UserID    types.ID
	Rating    float64
	Available bool
	VehicleID string
	Location  types.Point
}

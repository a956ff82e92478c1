package shared

import "github.com/google/uuid"

// Role represents the role an authenticated user acts under
type Role string

const (
	RoleBuyer   Role = "buyer"
	RoleSales   Role = "sales"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSales, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// Actor is an already-authenticated user passed explicitly into every
// operation. Authentication itself happens outside this system; the domain
// only enforces what a given role may do.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// NewActor creates an actor for the given user and role
func NewActor(userID uuid.UUID, role Role) Actor {
	return Actor{UserID: userID, Role: role}
}

// IsPrivileged returns true for roles that may operate on records they do
// not own (payment verification, payouts, ledger-wide queries)
func (a Actor) IsPrivileged() bool {
	return a.Role == RoleManager || a.Role == RoleAdmin
}

// IsAdmin returns true for the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanVerifyPayments returns true if the actor may approve or reject payments
func (a Actor) CanVerifyPayments() bool {
	return a.IsPrivileged()
}

// CanProcessPayouts returns true if the actor may settle agent commissions
func (a Actor) CanProcessPayouts() bool {
	return a.IsPrivileged()
}

// CanManageCatalog returns true if the actor may approve products and adjust stock
func (a Actor) CanManageCatalog() bool {
	return a.IsPrivileged()
}

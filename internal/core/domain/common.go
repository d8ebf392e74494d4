package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"` // UserID Reference
}

// Role is the kind of party an authenticated user acts as.
type Role string

const (
	RoleFarmer Role = "farmer"
	RoleDealer Role = "dealer"
	RoleAdmin  Role = "admin"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleFarmer, RoleDealer, RoleAdmin:
		return true
	}
	return false
}

// Principal identifies the caller of a service operation.
type Principal struct {
	UserID string
	Role   Role
}

// SystemPrincipal is used by the repair job and the CLI.
var SystemPrincipal = Principal{UserID: "system", Role: RoleAdmin}

// CanAccess reports whether p may read or write the ledger of pair.
func (p Principal) CanAccess(pair Pair) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RoleFarmer:
		return p.UserID != "" && p.UserID == pair.FarmerID
	case RoleDealer:
		return p.UserID != "" && p.UserID == pair.DealerID
	}
	return false
}

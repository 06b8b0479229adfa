package access

import (
	"strings"

	"pawn-lending-backend/internal/domain/apperr"
)

type Role string

const (
	RoleApplicant        Role = "applicant"
	RoleEvaluator        Role = "evaluator"
	RoleCollectionsAgent Role = "collections_agent"
	RoleAdministrator    Role = "administrator"
)

type Capability uint8

const (
	CanEvaluate Capability = 1 << iota
	CanValidatePayment
	CanAdminister
)

var capabilities = map[Role]Capability{
	RoleApplicant:        0,
	RoleEvaluator:        CanEvaluate,
	RoleCollectionsAgent: CanValidatePayment,
	RoleAdministrator:    CanEvaluate | CanValidatePayment | CanAdminister,
}

var ErrForbidden = apperr.Forbidden("operation not permitted for role")

// ParseRole normalizes a role name coming from the identity gateway.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := capabilities[r]
	return r, ok
}

// Identity is the caller as asserted by the upstream gateway; it is trusted as-is.
type Identity struct {
	UserID string
	Role   Role
}

func (id Identity) Has(c Capability) bool {
	return capabilities[id.Role]&c == c
}

// Require returns ErrForbidden unless the identity holds capability c.
func (id Identity) Require(c Capability) error {
	if id.UserID == "" || !id.Has(c) {
		return ErrForbidden
	}
	return nil
}

// Owns reports whether the caller may act on a resource owned by ownerID.
// Administrators act on behalf of any owner.
func (id Identity) Owns(ownerID string) bool {
	return id.UserID != "" && (id.UserID == ownerID || id.Has(CanAdminister))
}

// Staff reports whether the caller holds any back-office capability.
func (id Identity) Staff() bool {
	return id.UserID != "" && capabilities[id.Role] != 0
}

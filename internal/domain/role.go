package domain

// Role is the closed set of user roles. Handlers never compare raw strings;
// access rules live on the methods below.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleAdvisor    Role = "advisor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleAdvisor, RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// IsAdmin reports whether the role may use the /admin surface.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanCreateRole reports whether a user with role r may create a user with
// role target. Nobody creates a super admin; plain admins only create
// customers and advisors.
func (r Role) CanCreateRole(target Role) bool {
	if target == RoleSuperAdmin {
		return false
	}
	switch r {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return target == RoleCustomer || target == RoleAdvisor
	}
	return false
}

// CanManage reports whether a user (id actorID, role r) may view, edit or
// delete the target user. Self-management through the admin surface is
// always blocked; admins cannot touch other admins or the super admin.
func (r Role) CanManage(actorID, targetID int64, target Role) bool {
	if !r.IsAdmin() {
		return false
	}
	if actorID == targetID {
		return false
	}
	if r == RoleAdmin && target.IsAdmin() {
		return false
	}
	return true
}

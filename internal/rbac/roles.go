package rbac

// Role names. Keep these stable; they are stored on users and carried in tokens.
const (
	RoleAdmin = "Admin"
	RoleStaff = "Staff"
)

// AnyStaff is every role allowed into the back office.
var AnyStaff = []string{RoleAdmin, RoleStaff}

func IsAdmin(role string) bool { return role == RoleAdmin }

package authz

const (
	RoleUser  = 10
	RoleAdmin = 50
)

func IsAdmin(roleID int) bool {
	return roleID == RoleAdmin
}

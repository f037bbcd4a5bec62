package enums

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStandard Role = "standard"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStandard:
		return true
	default:
		return false
	}
}

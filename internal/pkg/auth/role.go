package auth

// Role is a user's permission level. admin > foreman > worker.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleForeman Role = "foreman"
	RoleWorker  Role = "worker"
)

var roleRank = map[Role]int{
	RoleWorker:  1,
	RoleForeman: 2,
	RoleAdmin:   3,
}

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants
func (r Role) AtLeast(min Role) bool {
	return r.IsValid() && roleRank[r] >= roleRank[min]
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID uint
	Name   string
	Role   Role
}

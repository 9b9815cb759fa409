package models

type Role string

const (
	RoleWorker   Role = "worker"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleWorker, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID       int64  `json:"-" db:"id"`
	Login    string `json:"login" db:"login"`
	Password string `json:"password,omitempty" db:"password_hash"`
	Role     Role   `json:"role" db:"role"`
}

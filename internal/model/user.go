package model

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	Username       string
	HashedPassword string
	Role           string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

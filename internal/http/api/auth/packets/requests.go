package packets

// form body for the password grant
type TokenRequest struct {
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
	GrantType string `form:"grant_type"`
	Scope     string `form:"scope"`
}

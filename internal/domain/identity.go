package domain

// Caller is the resolved identity behind a request. Verification happens
// before it reaches the services, which trust it as given.
type Caller struct {
	UserID string
	Role   Role
}

func (c Caller) IsAdmin() bool     { return c.Role == RoleAdmin }
func (c Caller) IsNavigator() bool { return c.Role == RoleNavigator }

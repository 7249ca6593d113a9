package model

// Role codes as constants
const (
	RoleAdmin     = "admin"
	RoleTradesman = "tradesman" // store owner
	RoleCustomer  = "customer"
)

// ValidRoles lists every role a user record may carry.
var ValidRoles = []string{RoleAdmin, RoleTradesman, RoleCustomer}

// IsValidRole reports whether code is one of ValidRoles.
func IsValidRole(code string) bool {
	for _, r := range ValidRoles {
		if r == code {
			return true
		}
	}
	return false
}

package entity

// Role represents the kind of account a profile belongs to.
type Role string

const (
	// RoleUser indicates a regular employee account that browses and reserves offers.
	RoleUser Role = "user"
	// RoleCanteen indicates a canteen staff account that publishes offers.
	RoleCanteen Role = "canteen"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleCanteen:
		return true
	default:
		return false
	}
}

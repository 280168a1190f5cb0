package domain

// Role constants define the roles issued by the backend.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleUser    = "USER"
)

// IsStaffRole reports whether the role grants access to the management console.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// UserProfile is the identity attached to a credential set after login.
// The gateway never mutates it; it exists for role-gating policy and display.
type UserProfile struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Active      bool   `json:"active"`
}

// CredentialSet holds one session's credentials. The access and refresh
// tokens are issued together and must be replaced together; a set with an
// empty access token is treated as absent.
type CredentialSet struct {
	AccessToken  string
	RefreshToken string
	Profile      *UserProfile
}

// Present reports whether the set carries a usable access token.
func (c CredentialSet) Present() bool {
	return c.AccessToken != ""
}

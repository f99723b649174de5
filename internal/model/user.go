package model

// Roles stored on user profiles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a profile in the "users" collection, keyed by the identity
// subject.  Role may be missing on older documents; the access gate treats
// that as RoleUser.
type User struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Credential is a locally managed login in the "credentials" collection.
// Only the bcrypt hash of the password is stored.
type Credential struct {
	ID           string `json:"id,omitempty"` // identity subject
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    string `json:"created_at"`
}

// Principal is the authenticated caller as resolved by the access gate.
type Principal struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// IsAdmin reports whether the caller holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// DisplayName is the name written into timeline entries: name, then email,
// then "Admin".
func (p Principal) DisplayName() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Email != "":
		return p.Email
	}
	return "Admin"
}

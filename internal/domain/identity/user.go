package identity

import (
	"strings"

	"github.com/techsolutions/pos/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// AccessLevel is the ordinal privilege of an operator
type AccessLevel int

const (
	AccessLevelOperator      AccessLevel = 1
	AccessLevelSupervisor    AccessLevel = 2
	AccessLevelAdministrator AccessLevel = 3
)

// IsValid checks if the access level is a known value
func (l AccessLevel) IsValid() bool {
	return l >= AccessLevelOperator && l <= AccessLevelAdministrator
}

// String returns the role name of the level
func (l AccessLevel) String() string {
	switch l {
	case AccessLevelOperator:
		return "operator"
	case AccessLevelSupervisor:
		return "supervisor"
	case AccessLevelAdministrator:
		return "administrator"
	default:
		return "unknown"
	}
}

// Password cost for bcrypt
var bcryptCost = 12

// User is a point-of-sale operator. Sales reference the user for audit.
type User struct {
	shared.BaseEntity
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	AccessLevel  AccessLevel
	Active       bool
}

// NewUser creates a new active user with a hashed password
func NewUser(username, displayName, password string, level AccessLevel) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) > 50 {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 50 characters")
	}
	if !level.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCESS_LEVEL", "Access level must be between 1 and 3")
	}

	user := &User{
		BaseEntity:  shared.NewBaseEntity(),
		Username:    username,
		DisplayName: displayName,
		AccessLevel: level,
		Active:      true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPassword replaces the stored hash
func (u *User) SetPassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("INVALID_PASSWORD", "Password could not be hashed")
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CanAccess reports whether the user holds at least the required level
func (u *User) CanAccess(required AccessLevel) bool {
	return u.Active && u.AccessLevel >= required
}

// IsAdministrator reports whether the user is an administrator
func (u *User) IsAdministrator() bool {
	return u.AccessLevel == AccessLevelAdministrator
}

// IsSupervisor reports whether the user is a supervisor or above
func (u *User) IsSupervisor() bool {
	return u.AccessLevel >= AccessLevelSupervisor
}

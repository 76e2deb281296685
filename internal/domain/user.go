package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role determines what a user may access.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// AllowedEmailDomain is the only mailbox provider accepted at registration.
const AllowedEmailDomain = "gmail.com"

const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt ignores input beyond 72 bytes
	MinFullNameLength = 2
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// User represents a customer or administrator of the laundry service.
// One-shot tokens are stored alongside their expiry and cleared once used.
type User struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Phone          string
	Address        string
	Role           Role
	IsVerified     bool

	VerificationToken          string
	VerificationTokenExpiresAt *time.Time
	ResetToken                 string
	ResetTokenExpiresAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates an unverified customer. The password must already be hashed.
func NewUser(email, hashedPassword, fullName, phone, address string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Email:          NormalizeEmail(email),
		HashedPassword: hashedPassword,
		FullName:       strings.TrimSpace(fullName),
		Phone:          strings.TrimSpace(phone),
		Address:        strings.TrimSpace(address),
		Role:           RoleCustomer,
		IsVerified:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "hash cannot be empty", ErrValidation)
	}
	if err := ValidateFullName(u.FullName); err != nil {
		return err
	}
	if err := ValidatePhone(u.Phone); err != nil {
		return err
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "must be customer or admin", ErrInvalidRole)
	}
	return nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address is well formed.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "is required", ErrInvalidEmail)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return NewValidationError("email", "has invalid format", ErrInvalidEmail)
	}
	return nil
}

// ValidateSignupEmail applies the registration policy on top of ValidateEmail.
func ValidateSignupEmail(email string) error {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if !strings.HasSuffix(email, "@"+AllowedEmailDomain) {
		return NewValidationError("email", "must be a gmail address", ErrEmailDomain)
	}
	return nil
}

// ValidatePassword checks plaintext password length before hashing.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "is too short", ErrPasswordTooShort)
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password", "is too long", ErrPasswordTooLong)
	}
	return nil
}

// ValidatePhone accepts international numbers, ignoring spaces and dashes.
func ValidatePhone(phone string) error {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if !phonePattern.MatchString(cleaned) {
		return NewValidationError("phone", "is not a valid phone number", ErrInvalidPhone)
	}
	return nil
}

// ValidateFullName requires at least two visible characters.
func ValidateFullName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < MinFullNameLength {
		return NewValidationError("full_name", "is too short", ErrInvalidFullName)
	}
	return nil
}

// SetVerificationToken stores a pending email verification token.
func (u *User) SetVerificationToken(token string, expiresAt time.Time) {
	u.VerificationToken = token
	u.VerificationTokenExpiresAt = &expiresAt
	u.UpdatedAt = time.Now().UTC()
}

// MarkVerified flags the email as verified and clears the verification token.
func (u *User) MarkVerified() {
	u.IsVerified = true
	u.VerificationToken = ""
	u.VerificationTokenExpiresAt = nil
	u.UpdatedAt = time.Now().UTC()
}

// SetResetToken stores a pending password reset token.
func (u *User) SetResetToken(token string, expiresAt time.Time) {
	u.ResetToken = token
	u.ResetTokenExpiresAt = &expiresAt
	u.UpdatedAt = time.Now().UTC()
}

// ResetPassword swaps in a new hash and clears the reset token.
func (u *User) ResetPassword(hashedPassword string) {
	u.HashedPassword = hashedPassword
	u.ResetToken = ""
	u.ResetTokenExpiresAt = nil
	u.UpdatedAt = time.Now().UTC()
}

// TokenExpired reports whether a one-shot token has passed its expiry.
// A missing expiry counts as expired.
func TokenExpired(expiresAt *time.Time, now time.Time) bool {
	return expiresAt == nil || now.After(*expiresAt)
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

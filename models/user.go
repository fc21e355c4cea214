package models

import (
	"strings"
	"time"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

const (
	UserCollection = "users"

	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLength = 72
)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

// User is an account. Password holds the bcrypt hash, never the plain text.
type User struct {
	Base     `bson:",inline"`
	Name     string     `json:"name" bson:"name" validate:"required,max=100"`
	Email    string     `json:"email" bson:"email" validate:"required,email"`
	Password string     `json:"-" bson:"password" validate:"required"`
	LockedAt *time.Time `json:"locked_at,omitempty" bson:"locked_at,omitempty"`
}

// NewUser checks the plain password and returns an unsaved user with the
// hashed password and a normalized email.
func NewUser(name, email, password string) (*User, error) {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return nil, apperrors.ValidationFailed("Validation failed",
			"password must be between 8 and 72 characters")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &User{
		Name:     strings.TrimSpace(name),
		Email:    NormalizeEmail(email),
		Password: hash,
	}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ServerError, "Failed to hash password")
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// IsLocked reports whether the account has been locked.
func (u *User) IsLocked() bool {
	return u.LockedAt != nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (*User) CollectionName() string {
	return UserCollection
}

func (*User) Indexes() []store.Index {
	return []store.Index{
		{
			Name:   "email_1",
			Keys:   bson.D{{Key: "email", Value: 1}},
			Unique: true,
		},
	}
}

func (u *User) Validate() error {
	return validateStruct(u)
}

// UserByEmail selects the account registered under email.
func UserByEmail(email string) store.Filter {
	return store.Filter{"email": NormalizeEmail(email)}
}

// PublicUser is the response shape of a user.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) ToPublic() PublicUser {
	return PublicUser{
		ID:        u.ID.Hex(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

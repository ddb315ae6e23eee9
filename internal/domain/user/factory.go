package user

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds a persistable User from a validated create
// payload. passwordHash must already be hashed; the plaintext never reaches
// the store.
func NewFromCreateRequest(req CreateUserRequest, passwordHash string) User {
	now := time.Now().UTC()

	role := req.Role

	if role == "" {
		role = RoleUser
	}

	return User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

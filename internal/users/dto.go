package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/vallyhouse/vally-backend/pkg/db/models"
	"github.com/vallyhouse/vally-backend/pkg/enums"
)

// UserDTO is the public projection of a user. The password hash is never
// included.
type UserDTO struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      enums.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewUserDTO projects the model into its public shape.
func NewUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

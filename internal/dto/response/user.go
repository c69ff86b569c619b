package response

import "coffee-shop-api/internal/data/entity"

type UserResponse struct {
	ID         int64           `json:"id"`
	Email      string          `json:"email"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Role       entity.UserRole `json:"role"`
	IsVerified bool            `json:"is_verified"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		IsVerified: user.IsVerified,
	}
}

package dto

import (
	"time"

	"github.com/yukikurage/minitrello-api/internal/models"
	"github.com/yukikurage/minitrello-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	GitHubLogin string    `json:"githubLogin,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuthResponse is returned by every sign-in path
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// SendCodeResponse carries the code only in development without mail credentials
type SendCodeResponse struct {
	Code string `json:"code,omitempty"`
}

// GitHubTokenResponse is the stored GitHub token of the caller
type GitHubTokenResponse struct {
	AccessToken string `json:"accessToken"`
	GitHubLogin string `json:"githubLogin"`
}

// UserListResponse is one page of users
type UserListResponse struct {
	Users      []UserDTO      `json:"users"`
	Pagination utils.PageMeta `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		GitHubLogin: user.GitHubLogin,
		CreatedAt:   user.CreatedAt,
	}
}

func ToUserListResponse(users []models.User, pagination utils.PageMeta) UserListResponse {
	items := make([]UserDTO, len(users))
	for i, user := range users {
		items[i] = ToUserDTO(user)
	}
	return UserListResponse{Users: items, Pagination: pagination}
}

package dto

import (
	"strings"

	"clinic/infras/jwt"
	userModel "clinic/internal/domains/user/model"
	userDto "clinic/internal/domains/user/model/dto"
	"clinic/shared/constant"
	gModel "clinic/shared/model"
	"clinic/shared/timezone"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name"           validate:"required,max=100"`
	Email    string `json:"email"          validate:"required,email"`
	Password string `json:"password"       validate:"required,min=8,max=72"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=patient doctor staff"`
}

// ToUserModel builds an active account. An empty role registers a patient.
func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	role := r.Role
	if role == constant.Empty {
		role = constant.RolePatient
	}

	return userModel.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(r.Name),
		Email:    NormalizeEmail(r.Email),
		Password: hashedPassword,
		Role:     role,
		Active:   true,
		Metadata: gModel.NewMetadata(timezone.Now(), constant.ContextGuest),
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is optional on the wire; the refresh cookie wins when both are sent.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

type AuthResponse struct {
	User             userDto.UserResponse `json:"user"`
	AccessToken      string               `json:"access_token"`
	RefreshToken     string               `json:"refresh_token"`
	TokenType        string               `json:"token_type"`
	ExpiresIn        int64                `json:"expires_in"`
	RefreshExpiresIn int64                `json:"-"`
}

func (a *AuthResponse) FromTokenPair(user userModel.User, tokenPair *jwt.TokenPair) {
	a.User.FromModel(user)
	a.AccessToken = tokenPair.AccessToken
	a.RefreshToken = tokenPair.RefreshToken
	a.TokenType = tokenPair.TokenType
	a.ExpiresIn = tokenPair.ExpiresIn
	a.RefreshExpiresIn = tokenPair.RefreshExpiresIn
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

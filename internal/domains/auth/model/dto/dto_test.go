package dto_test

import (
	"testing"

	"clinic/infras/jwt"
	"clinic/internal/domains/auth/model/dto"
	userModel "clinic/internal/domains/user/model"
	"clinic/shared/constant"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequest_ToUserModel(t *testing.T) {
	t.Run("defaults to patient", func(t *testing.T) {
		req := dto.RegisterRequest{Name: " Ana Lima ", Email: " Ana@Clinic.Test ", Password: "secret123"}

		user := req.ToUserModel("hashed")

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "Ana Lima", user.Name)
		assert.Equal(t, "ana@clinic.test", user.Email)
		assert.Equal(t, "hashed", user.Password)
		assert.Equal(t, constant.RolePatient, user.Role)
		assert.True(t, user.Active)
		assert.Equal(t, constant.ContextGuest, user.CreatedBy)
	})

	t.Run("keeps requested role", func(t *testing.T) {
		req := dto.RegisterRequest{Name: "Dr. Rao", Email: "rao@clinic.test", Role: constant.RoleDoctor}

		assert.Equal(t, constant.RoleDoctor, req.ToUserModel("hashed").Role)
	})
}

func TestAuthResponse_FromTokenPair(t *testing.T) {
	pair := &jwt.TokenPair{
		AccessToken:      "access",
		RefreshToken:     "refresh",
		TokenType:        "Bearer",
		ExpiresIn:        900,
		RefreshExpiresIn: 3600,
	}

	var res dto.AuthResponse
	res.FromTokenPair(userModel.User{ID: "u-1", Email: "ana@clinic.test", Role: constant.RolePatient}, pair)

	assert.Equal(t, "u-1", res.User.ID)
	assert.Equal(t, "access", res.AccessToken)
	assert.Equal(t, "refresh", res.RefreshToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(900), res.ExpiresIn)
	assert.Equal(t, int64(3600), res.RefreshExpiresIn)
}

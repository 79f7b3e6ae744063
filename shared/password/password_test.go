package password_test

import (
	"strings"
	"testing"

	"clinic/shared/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		expectedErr error
	}{
		{name: "valid password", password: "s3cret-Passw0rd"},
		{name: "unicode password", password: "пароль123"},
		{name: "exactly max length", password: strings.Repeat("a", password.MaxLength)},
		{name: "empty password", password: "", expectedErr: password.ErrEmptyPassword},
		{name: "longer than bcrypt reads", password: strings.Repeat("a", 100), expectedErr: password.ErrHashingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.password)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2"))
			assert.NoError(t, password.Verify(tt.password, hash))
		})
	}
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("patient-password")
	require.NoError(t, err)

	tests := []struct {
		name        string
		password    string
		hash        string
		expectedErr error
	}{
		{name: "matching password", password: "patient-password", hash: hash},
		{name: "wrong password", password: "doctor-password", hash: hash, expectedErr: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hash, expectedErr: password.ErrInvalidPassword},
		{name: "empty hash", password: "patient-password", hash: "", expectedErr: password.ErrInvalidPassword},
		{name: "malformed hash", password: "patient-password", hash: "not-a-hash", expectedErr: password.ErrVerifyingPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := password.Hash("same-password")
	require.NoError(t, err)

	second, err := password.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, password.Verify("same-password", first))
	assert.NoError(t, password.Verify("same-password", second))
}

package model_test

import (
	"testing"
	"time"

	"clinic/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScan(t *testing.T) {
	tests := []struct {
		name     string
		src      any
		expected model.Date
	}{
		{name: "driver time", src: time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC), expected: "2030-01-07"},
		{name: "text", src: "2030-01-07", expected: "2030-01-07"},
		{name: "bytes with time part", src: []byte("2030-01-07T00:00:00Z"), expected: "2030-01-07"},
		{name: "null", src: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var date model.Date

			require.NoError(t, date.Scan(tt.src))
			assert.Equal(t, tt.expected, date)
		})
	}

	var date model.Date
	assert.Error(t, date.Scan(42))
}

func TestDateValue(t *testing.T) {
	value, err := model.Date("2030-01-07").Value()
	require.NoError(t, err)
	assert.Equal(t, "2030-01-07", value)

	value, err = model.Date("").Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestRequesterIs(t *testing.T) {
	staff := model.Requester{UserID: "u-1", Role: "staff"}

	assert.True(t, staff.Is("staff", "admin"))
	assert.False(t, staff.Is("doctor"))
	assert.False(t, staff.Is())
}

func TestNewMetadata(t *testing.T) {
	now := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	metadata := model.NewMetadata(now, "u-1")

	assert.Equal(t, now, metadata.CreatedAt)
	assert.Equal(t, now, metadata.ModifiedAt)
	assert.Equal(t, "u-1", metadata.CreatedBy)
	assert.Equal(t, "u-1", metadata.ModifiedBy)
}

package shared_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic/shared"
	"clinic/shared/cache/mocks"
	"clinic/shared/constant"
	"clinic/shared/dto"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	assert.Equal(t, 1, shared.CalculateTotalPage(0, 10))
	assert.Equal(t, 1, shared.CalculateTotalPage(5, 0))
	assert.Equal(t, 1, shared.CalculateTotalPage(10, 10))
	assert.Equal(t, 3, shared.CalculateTotalPage(21, 10))
}

func TestTransformFields(t *testing.T) {
	type update struct {
		Reason  string    `db:"reason"`
		Notes   string    `db:"notes"`
		Ignored string    `db:"-"`
		Date    time.Time `db:"appointment_date"`
		Plain   string
	}

	fields := shared.TransformFields(update{Notes: "bring x-ray", Ignored: "x", Plain: "y"}, "doctor@clinic.test")

	assert.Equal(t, "bring x-ray", fields["notes"])
	assert.Equal(t, "doctor@clinic.test", fields[constant.FieldModifiedBy])
	assert.Contains(t, fields, constant.FieldModifiedAt)
	assert.NotContains(t, fields, "reason")
	assert.NotContains(t, fields, "appointment_date")
	assert.NotContains(t, fields, "-")
	assert.Len(t, fields, 3)
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "appointment:slots:d-1:2030-01-07", shared.BuildCacheKey("appointment:slots", "d-1", "2030-01-07"))
	assert.Equal(t, "doctor", shared.BuildCacheKey("doctor"))
}

func TestBuildCacheKeyWithQuery(t *testing.T) {
	params := dto.QueryParams{Page: 2, Limit: 10}

	first := shared.BuildCacheKeyWithQuery("doctor:list", params, shared.FilterByField("Cardiology", "specialization", "doctors"))
	again := shared.BuildCacheKeyWithQuery("doctor:list", params, shared.FilterByField("Cardiology", "specialization", "doctors"))
	other := shared.BuildCacheKeyWithQuery("doctor:list", params, shared.FilterByField("Dermatology", "specialization", "doctors"))

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)
	assert.Contains(t, first, "doctor:list:2:10")
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisCache := mocks.NewMockRedisCache(ctrl)

	redisCache.EXPECT().Clear(gomock.Any(), "appointment:slots:d-1*").Return(nil)
	shared.InvalidateCaches(context.Background(), redisCache, "appointment:slots:d-1")

	redisCache.EXPECT().Clear(gomock.Any(), "doctor*").Return(errors.New("redis down"))
	shared.InvalidateCaches(context.Background(), redisCache, "doctor")
}

func TestRequesterFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "u-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, "doc@clinic.test")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleDoctor)

	requester := shared.RequesterFromContext(ctx)

	assert.Equal(t, "u-1", requester.UserID)
	assert.Equal(t, "doc@clinic.test", requester.Email)
	assert.Equal(t, constant.RoleDoctor, requester.Role)
	assert.Empty(t, shared.RequesterFromContext(context.Background()).UserID)
}

func TestWithModified(t *testing.T) {
	fields := shared.WithModified(map[string]any{"active": false}, "admin-1")

	assert.Equal(t, false, fields["active"])
	assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])
	assert.IsType(t, time.Time{}, fields[constant.FieldModifiedAt])
}

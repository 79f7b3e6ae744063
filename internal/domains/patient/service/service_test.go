package service_test

import (
	"context"
	"errors"
	"testing"

	"clinic/config"
	"clinic/infras/otel/mocks"
	patientMocks "clinic/internal/domains/patient/mocks"
	"clinic/internal/domains/patient/model"
	"clinic/internal/domains/patient/model/dto"
	"clinic/internal/domains/patient/service"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	"clinic/shared/failure"
	gModel "clinic/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var patientUser = gModel.Requester{UserID: "user-pat", Role: constant.RolePatient}

func newService(t *testing.T) (*patientMocks.MockPatient, service.Patient) {
	t.Helper()

	repo := patientMocks.NewMockPatient(gomock.NewController(t))

	return repo, service.New(repo, &config.Config{}, mocks.NewOtel())
}

func TestPatientService_Upsert(t *testing.T) {
	stored := model.Patient{ID: "pat-1", UserID: patientUser.UserID, Phone: "555-0101", IsActive: true, Name: "Ana"}

	t.Run("creates on first call", func(t *testing.T) {
		repo, svc := newService(t)

		req := dto.UpsertPatientRequest{Phone: "555-0101", DateOfBirth: "1990-04-12", Gender: "Female"}

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Patient{}, nil)
		repo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, patient model.Patient) error {
				assert.Equal(t, gModel.Date("1990-04-12"), patient.DateOfBirth)
				assert.True(t, patient.IsActive)

				return nil
			})
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)

		res, created, err := svc.Upsert(context.Background(), patientUser, req)

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "pat-1", res.ID)
	})

	t.Run("updates provided fields", func(t *testing.T) {
		repo, svc := newService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
		repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, "12 Elm St", fields[model.FieldAddress])
				assert.NotContains(t, fields, model.FieldPhone)

				return 1, nil
			})
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)

		_, created, err := svc.Upsert(context.Background(), patientUser, dto.UpsertPatientRequest{Address: "12 Elm St"})

		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("phone required on create", func(t *testing.T) {
		repo, svc := newService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Patient{}, nil)

		_, _, err := svc.Upsert(context.Background(), patientUser, dto.UpsertPatientRequest{})

		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("doctors cannot own a patient profile", func(t *testing.T) {
		_, svc := newService(t)

		_, _, err := svc.Upsert(context.Background(), gModel.Requester{UserID: "u", Role: constant.RoleDoctor}, dto.UpsertPatientRequest{Phone: "1"})

		assert.Equal(t, 403, failure.GetCode(err))
	})
}

func TestPatientService_Get(t *testing.T) {
	stored := model.Patient{ID: "pat-1", UserID: patientUser.UserID, IsActive: true}

	tests := []struct {
		name      string
		requester gModel.Requester
		found     bool
		wantCode  int
	}{
		{name: "owner", requester: patientUser, found: true},
		{name: "doctor", requester: gModel.Requester{UserID: "user-doc", Role: constant.RoleDoctor}, found: true},
		{name: "staff", requester: gModel.Requester{UserID: "user-staff", Role: constant.RoleStaff}, found: true},
		{name: "other patient", requester: gModel.Requester{UserID: "user-other", Role: constant.RolePatient}, found: true, wantCode: 403},
		{name: "missing", requester: patientUser, wantCode: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, svc := newService(t)

			if tt.found {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
			} else {
				repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Patient{}, nil)
			}

			res, err := svc.Get(context.Background(), tt.requester, "pat-1")

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
				assert.Empty(t, res.ID)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "pat-1", res.ID)
		})
	}
}

func TestPatientService_Deactivate(t *testing.T) {
	staff := gModel.Requester{UserID: "user-staff", Role: constant.RoleStaff}

	t.Run("deactivates", func(t *testing.T) {
		repo, svc := newService(t)

		repo.EXPECT().
			Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, false, fields[model.FieldIsActive])

				return 1, nil
			})

		assert.NoError(t, svc.Deactivate(context.Background(), staff, "pat-1"))
	})

	t.Run("missing", func(t *testing.T) {
		repo, svc := newService(t)

		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		assert.Equal(t, 404, failure.GetCode(svc.Deactivate(context.Background(), staff, "pat-404")))
	})

	t.Run("storage failure", func(t *testing.T) {
		repo, svc := newService(t)

		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection reset"))

		assert.Equal(t, 500, failure.GetCode(svc.Deactivate(context.Background(), staff, "pat-1")))
	})
}

func TestPatientService_GetAll(t *testing.T) {
	repo, svc := newService(t)

	repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Patient{{ID: "pat-1", DateOfBirth: "1990-04-12"}}, nil)

	res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})

	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalPage)
	require.Len(t, res.Patients, 1)
	assert.Equal(t, "1990-04-12", res.Patients[0].DateOfBirth)
}

package dto_test

import (
	"testing"

	"clinic/internal/domains/doctor/model"
	"clinic/internal/domains/doctor/model/dto"
	"clinic/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closed() *bool {
	v := false

	return &v
}

func TestSetScheduleRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		entries []dto.ScheduleEntry
		wantErr bool
	}{
		{
			name:    "regular week",
			entries: []dto.ScheduleEntry{{Day: "Monday", StartTime: "09:00", EndTime: "17:00"}, {Day: "Friday", StartTime: "09:00", EndTime: "12:30"}},
		},
		{
			name:    "empty template",
			entries: []dto.ScheduleEntry{},
		},
		{
			name:    "closed day may have equal times",
			entries: []dto.ScheduleEntry{{Day: "Sunday", StartTime: "00:00", EndTime: "00:00", IsAvailable: closed()}},
		},
		{
			name:    "unknown weekday",
			entries: []dto.ScheduleEntry{{Day: "monday", StartTime: "09:00", EndTime: "17:00"}},
			wantErr: true,
		},
		{
			name:    "duplicate weekday",
			entries: []dto.ScheduleEntry{{Day: "Monday", StartTime: "09:00", EndTime: "12:00"}, {Day: "Monday", StartTime: "13:00", EndTime: "17:00"}},
			wantErr: true,
		},
		{
			name:    "unpadded clock",
			entries: []dto.ScheduleEntry{{Day: "Monday", StartTime: "9:00", EndTime: "17:00"}},
			wantErr: true,
		},
		{
			name:    "end before start",
			entries: []dto.ScheduleEntry{{Day: "Monday", StartTime: "17:00", EndTime: "09:00"}},
			wantErr: true,
		},
		{
			name:    "empty window",
			entries: []dto.ScheduleEntry{{Day: "Monday", StartTime: "09:00", EndTime: "09:00"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := dto.SetScheduleRequest{Schedules: tt.entries}

			err := validator.ValidateStruct(&req)
			if err == nil {
				err = req.Check()
			}

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetScheduleRequest_ToModels(t *testing.T) {
	req := dto.SetScheduleRequest{Schedules: []dto.ScheduleEntry{
		{Day: "Monday", StartTime: "09:00", EndTime: "12:00"},
		{Day: "Tuesday", StartTime: "09:00", EndTime: "12:00", IsAvailable: closed()},
	}}

	models := req.ToModels("doc-1", "user-doc")

	require.Len(t, models, 2)
	assert.Equal(t, "doc-1", models[0].DoctorID)
	assert.True(t, models[0].IsAvailable)
	assert.False(t, models[1].IsAvailable)
	assert.NotEqual(t, models[0].ID, models[1].ID)
	assert.Equal(t, "user-doc", models[1].CreatedBy)
}

func TestUpsertDoctorRequest_ToFields(t *testing.T) {
	experience := 0
	req := dto.UpsertDoctorRequest{Specialization: "  Dermatology ", Experience: &experience}

	fields := req.ToFields()

	assert.Equal(t, map[string]any{
		model.FieldSpecialization: "Dermatology",
		model.FieldExperience:     0,
	}, fields)
}

func TestFromScheduleModels_WeekOrder(t *testing.T) {
	res := dto.FromScheduleModels([]model.Schedule{{Day: "Sunday"}, {Day: "Wednesday"}, {Day: "Monday"}})

	days := make([]string, len(res))
	for i, r := range res {
		days[i] = r.Day
	}

	assert.Equal(t, []string{"Monday", "Wednesday", "Sunday"}, days)
}

package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"clinic/shared/constant"
	"clinic/shared/dto"
	"clinic/shared/model"
	"clinic/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2030, 1, 2, 12, 0, 0, 0, time.UTC)

	metadata := &dto.Metadata{}
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		CreatedBy:  "staff@clinic.test",
		ModifiedBy: "doctor@clinic.test",
	})

	assert.Equal(t, createdAt.In(timezone.GetLocation()).Format(constant.DateFormat), metadata.CreatedAt)
	assert.Equal(t, modifiedAt.In(timezone.GetLocation()).Format(constant.DateFormat), metadata.ModifiedAt)
	assert.Equal(t, "staff@clinic.test", metadata.CreatedBy)
	assert.Equal(t, "doctor@clinic.test", metadata.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name:     "all parameters",
			query:    "?page=2&limit=20&sort_by=appointment_date&sort_dir=asc",
			expected: dto.QueryParams{Page: 2, Limit: 20, SortBy: "appointment_date", SortDir: dto.SortDirAsc},
		},
		{
			name:           "defaults",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "no defaults",
			expected: dto.QueryParams{},
		},
		{
			name:           "invalid numbers fall back to defaults",
			query:          "?page=-1&limit=abc",
			defaultRequest: true,
			expected:       dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "unknown sort direction ignored",
			query:    "?sort_dir=sideways",
			expected: dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/appointments"+tt.query, nil)

			params := &dto.QueryParams{}
			params.FromRequest(req, tt.defaultRequest)

			assert.Equal(t, tt.expected, *params)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "doctor_id", Value: "d-1", Operator: dto.FilterOperatorEq, Table: "appointments"},
			dto.Filter{Field: "status", Value: "cancelled", Operator: dto.FilterOperatorNotEq, Table: "appointments"},
			dto.Filter{Field: "slot_time", ArgName: "slot", Value: []string{"09:00", "09:30"}, Operator: dto.FilterOperatorIn},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(appointments.doctor_id = :doctor_id AND appointments.status != :status AND slot_time IN (:slot_0, :slot_1))", where)
	assert.Equal(t, map[string]any{"doctor_id": "d-1", "status": "cancelled", "slot_0": "09:00", "slot_1": "09:30"}, args)
}

func TestFilterGroup_DefaultsToAnd(t *testing.T) {
	group := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "doctor_id", Value: "d-1", Operator: dto.FilterOperatorEq},
			dto.Filter{Field: "appointment_date", Value: "2030-01-07", Operator: dto.FilterOperatorEq},
		},
	}

	where, _ := group.GetWhereClause()

	assert.Equal(t, "(doctor_id = :doctor_id AND appointment_date = :appointment_date)", where)
}

func TestFilter_Operators(t *testing.T) {
	tests := []struct {
		name     string
		filter   dto.Filter
		expected string
	}{
		{name: "like", filter: dto.Filter{Field: "name", Value: "ali", Operator: dto.FilterOperatorLike}, expected: "LOWER(name) LIKE LOWER(:name)"},
		{name: "less or equal", filter: dto.Filter{Field: "slot_time", Value: "12:00", Operator: dto.FilterOperatorLessEq}, expected: "slot_time <= :slot_time"},
		{name: "greater or equal", filter: dto.Filter{Field: "slot_time", Value: "09:00", Operator: dto.FilterOperatorGreaterEq}, expected: "slot_time >= :slot_time"},
		{name: "is null", filter: dto.Filter{Field: "notes", Operator: dto.FilterIsNull}, expected: "notes IS NULL"},
		{name: "is not null", filter: dto.Filter{Field: "notes", Table: "appointments", Operator: dto.FilterIsNotNull}, expected: "appointments.notes IS NOT NULL"},
		{name: "empty in matches nothing", filter: dto.Filter{Field: "status", Value: []string{}, Operator: dto.FilterOperatorIn}, expected: "FALSE"},
		{name: "in with a raw list", filter: dto.Filter{Field: "status", Value: "'booked', 'confirmed'", Operator: dto.FilterOperatorIn}, expected: "status IN ('booked', 'confirmed')"},
		{name: "plain query", filter: dto.Filter{Value: "deleted_at IS NULL", Operator: dto.FilterPlainQuery}, expected: "(deleted_at IS NULL)"},
		{name: "unknown", filter: dto.Filter{Field: "notes", Operator: "between"}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, _ := tt.filter.GetWhereClause()
			assert.Equal(t, tt.expected, where)
		})
	}
}

func TestFilterGroup_SkipsEmptyClauses(t *testing.T) {
	group := dto.FilterGroup{
		Filters: []any{
			dto.FilterGroup{Operator: dto.FilterGroupOperatorOr},
			dto.Filter{Field: "doctor_id", Value: "d-1", Operator: dto.FilterOperatorEq},
			dto.Filter{Field: "notes", Operator: "between"},
			"not a filter",
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(doctor_id = :doctor_id)", where)
	assert.Equal(t, map[string]any{"doctor_id": "d-1"}, args)
}

func TestFilterGroup_Nested(t *testing.T) {
	group := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "doctor_id", Value: "d-1", Operator: dto.FilterOperatorEq},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{Field: "status", ArgName: "booked", Value: "booked", Operator: dto.FilterOperatorEq},
					dto.Filter{Field: "status", ArgName: "confirmed", Value: "confirmed", Operator: dto.FilterOperatorEq},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(doctor_id = :doctor_id AND (status = :booked OR status = :confirmed))", where)
	assert.Len(t, args, 3)
}

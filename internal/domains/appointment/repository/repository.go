package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"clinic/infras/otel"
	"clinic/infras/postgres"
	"clinic/internal/domains/appointment/model"
	gDto "clinic/shared/dto"
	gModel "clinic/shared/model"
	gRepo "clinic/shared/repository"
)

type Appointment interface {
	Insert(ctx context.Context, model model.Appointment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Appointment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Appointment, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	BookedTimes(ctx context.Context, doctorID, date string) ([]string, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Appointment]
}

func New(db *postgres.Connection, otel otel.Otel) Appointment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Appointment](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// Insert surfaces the active-slot unique index as model.ErrSlotTaken. The index, not the
// caller's earlier read, decides which of several concurrent admissions wins.
func (r *repositoryImpl) Insert(ctx context.Context, appointment model.Appointment) error {
	err := r.Repository.Insert(ctx, appointment)
	if postgres.IsUniqueViolation(err, model.ActiveSlotConstraint) {
		return fmt.Errorf("%w: %w", model.ErrSlotTaken, err)
	}

	return err //nolint:wrapcheck
}

// BookedTimes lists the slot times held by non-cancelled bookings of a doctor on one day.
func (r *repositoryImpl) BookedTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	models, err := r.GetAll(ctx, gDto.QueryParams{}, ActiveSlotFilter(doctorID, date), model.FieldTime)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	times := make([]string, len(models))
	for i, mod := range models {
		times[i] = mod.Time
	}

	return times, nil
}

// ActiveSlotFilter matches non-cancelled bookings of a doctor on one calendar day.
func ActiveSlotFilter(doctorID, date string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldDoctorID,
				Value:    doctorID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldDate,
				Value:    gModel.Date(date),
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldStatus,
				Value:    model.StatusCancelled,
				Operator: gDto.FilterOperatorNotEq,
				Table:    model.TableName,
			},
		},
	}
}

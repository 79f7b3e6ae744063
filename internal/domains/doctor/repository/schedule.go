package repository

//go:generate go run go.uber.org/mock/mockgen -source=./schedule.go -destination=../mocks/schedule_mock.go -package=mocks

import (
	"context"
	"fmt"

	"clinic/infras/otel"
	"clinic/infras/postgres"
	"clinic/internal/domains/doctor/model"
	"clinic/shared/constant"
	gDto "clinic/shared/dto"
	gRepo "clinic/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Schedule interface {
	GetByDoctor(ctx context.Context, doctorID string) ([]model.Schedule, error)
	GetDay(ctx context.Context, doctorID, day string) (model.Schedule, error)
	Replace(ctx context.Context, doctorID string, schedules []model.Schedule) error
}

type scheduleRepositoryImpl struct {
	gRepo.Repository[model.Schedule]
	otel otel.Otel
}

func NewSchedule(db *postgres.Connection, otel otel.Otel) Schedule {
	return &scheduleRepositoryImpl{
		Repository: gRepo.NewRepository[model.Schedule](model.ScheduleEntityName, model.ScheduleTableName, model.ScheduleFieldID, db, otel),
		otel:       otel,
	}
}

func byDoctor(doctorID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.ScheduleFieldDoctorID,
				Value:    doctorID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.ScheduleTableName,
			},
		},
	}
}

func (r *scheduleRepositoryImpl) GetByDoctor(ctx context.Context, doctorID string) ([]model.Schedule, error) {
	return r.GetAll(ctx, gDto.QueryParams{}, byDoctor(doctorID)) //nolint:wrapcheck
}

// GetDay returns a zero Schedule when the template has no record for day.
func (r *scheduleRepositoryImpl) GetDay(ctx context.Context, doctorID, day string) (model.Schedule, error) {
	filter := byDoctor(doctorID)
	filter.Filters = append(filter.Filters, gDto.Filter{
		Field:    model.ScheduleFieldDay,
		Value:    day,
		Operator: gDto.FilterOperatorEq,
		Table:    model.ScheduleTableName,
	})

	return r.Get(ctx, filter) //nolint:wrapcheck
}

// Replace swaps the whole template in one transaction; readers see the old or the new one, never a mix.
func (r *scheduleRepositoryImpl) Replace(ctx context.Context, doctorID string, schedules []model.Schedule) error {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".doctor_schedule.Replace")
	defer scope.End()

	err := r.WithTx(ctx, func(sqltx *sqlx.Tx) error {
		if err := r.DeleteTx(ctx, sqltx, byDoctor(doctorID)); err != nil {
			return err //nolint:wrapcheck
		}

		return r.InsertBulkTx(ctx, sqltx, schedules) //nolint:wrapcheck
	})
	if err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to replace schedule: %w", err)
	}

	return nil
}

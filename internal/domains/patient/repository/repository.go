package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"clinic/infras/otel"
	"clinic/infras/postgres"
	"clinic/internal/domains/patient/model"
	gDto "clinic/shared/dto"
	gRepo "clinic/shared/repository"
)

type Patient interface {
	Insert(ctx context.Context, model model.Patient) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Patient, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Patient, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Patient]
}

func New(db *postgres.Connection, otel otel.Otel) Patient {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Patient](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

func (r *repositoryImpl) Insert(ctx context.Context, patient model.Patient) error {
	err := r.Repository.Insert(ctx, patient)
	if postgres.IsUniqueViolation(err, model.UserConstraint) {
		return fmt.Errorf("%w: %w", model.ErrProfileExists, err)
	}

	return err //nolint:wrapcheck
}

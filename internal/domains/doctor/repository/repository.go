package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"clinic/infras/otel"
	"clinic/infras/postgres"
	"clinic/internal/domains/doctor/model"
	gDto "clinic/shared/dto"
	gRepo "clinic/shared/repository"
)

type Doctor interface {
	Insert(ctx context.Context, model model.Doctor) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Doctor, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Doctor, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Doctor]
}

func New(db *postgres.Connection, otel otel.Otel) Doctor {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Doctor](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// Insert reports a second profile for the same account as model.ErrProfileExists.
func (r *repositoryImpl) Insert(ctx context.Context, doctor model.Doctor) error {
	err := r.Repository.Insert(ctx, doctor)
	if postgres.IsUniqueViolation(err, model.UserConstraint) {
		return fmt.Errorf("%w: %w", model.ErrProfileExists, err)
	}

	return err //nolint:wrapcheck
}

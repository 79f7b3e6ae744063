package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"clinic/infras/otel"
	"clinic/infras/postgres"
	"clinic/internal/domains/user/model"
	gDto "clinic/shared/dto"
	gRepo "clinic/shared/repository"
)

type User interface {
	Insert(ctx context.Context, model model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.User, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}

// Insert reports a duplicate email as model.ErrEmailTaken.
func (r *repositoryImpl) Insert(ctx context.Context, user model.User) error {
	err := r.Repository.Insert(ctx, user)
	if postgres.IsUniqueViolation(err, model.EmailConstraint) {
		return fmt.Errorf("%w: %w", model.ErrEmailTaken, err)
	}

	return err //nolint:wrapcheck
}

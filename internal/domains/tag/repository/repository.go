package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"sala/infras/otel"
	"sala/infras/postgres"
	"sala/internal/domains/tag/model"
	"sala/shared/constant"
	gDto "sala/shared/dto"
	"sala/shared/logger"
	gRepo "sala/shared/repository"
)

type Tag interface {
	Insert(ctx context.Context, model model.Tag) (int, error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Tag, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Tag, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Tag]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Tag {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Tag](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// Insert overrides the generic insert because tag ids are
// database-assigned serials.
func (repo *repositoryImpl) Insert(ctx context.Context, mod model.Tag) (id int, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".tag.Insert")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(
		"INSERT INTO %s (%s, created_at, modified_at, created_by, modified_by) VALUES (:name, :created_at, :modified_at, :created_by, :modified_by) RETURNING id",
		model.TableName, model.FieldName,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := repo.db.Write.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &id, mod)
	if err != nil {
		logger.ErrorWithStack(err)

		return 0, fmt.Errorf("failed to insert data (%s): %w", model.EntityName, err)
	}

	return id, nil
}

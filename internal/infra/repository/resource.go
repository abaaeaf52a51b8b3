package repository

import (
	"context"
	"log/slog"

	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/infra"
	"club-scheduler/internal/infra/repository/converter"

	"github.com/google/uuid"
)

const (
	getResourceSQL = `SELECT ` + converter.ResourceColumns + ` FROM resources WHERE id = $1`

	createResourceSQL = `INSERT INTO resources (` + converter.ResourceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
)

type ResourceRepository struct {
	db     DBTX
	logger *slog.Logger
}

func NewResourceRepository(db DBTX, logger *slog.Logger) *ResourceRepository {
	return &ResourceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ResourceRepository) Get(ctx context.Context, id uuid.UUID) (*resource.Resource, error) {
	res, err := queryOne[converter.ResourceRow](ctx, r.db, converter.ResourceToDomain, getResourceSQL, id)
	if err != nil {
		return nil, infra.ClassifyPgErr(r.logger, "failed to get resource", err)
	}
	return res, nil
}

func (r *ResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	params, err := converter.ResourceParams(res)
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode resource", err)
	}
	if _, err := r.db.Exec(ctx, createResourceSQL, params...); err != nil {
		return infra.ClassifyPgErr(r.logger, "failed to create resource", err)
	}
	return nil
}

package mcp

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

// SchemaRepo describes the body stats tables to assistants.
type SchemaRepo interface {
	GetBodystatsColumns(ctx context.Context) ([]SchemaColumn, error)
}

// SchemaColumn is one column of a body stats table. Field order follows the query.
type SchemaColumn struct {
	TableSchema string
	TableName   string
	ColumnName  string
	DataType    string
	IsNullable  string
	ColumnDef   *string
}

var bodystatsTables = []string{
	"subject",
	"measurement",
	"progress_photo",
	"exercise_type",
	"workout_session",
	"analysis_recommendation",
}

type poolSchemaRepo struct {
	pool *pgxpool.Pool
}

func NewPoolSchemaRepo(pool *pgxpool.Pool) SchemaRepo {
	return &poolSchemaRepo{pool: pool}
}

func (r *poolSchemaRepo) GetBodystatsColumns(ctx context.Context) (_ []SchemaColumn, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.mcp.schema_columns")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.pool.Query(
		ctx,
		`
			SELECT table_schema, table_name, column_name, data_type, is_nullable, column_default
			FROM information_schema.columns
			WHERE table_schema = current_schema()
				AND table_name = ANY($1)
			ORDER BY table_name, ordinal_position;`,
		bodystatsTables,
	)
	if err != nil {
		return nil, fmt.Errorf("schema columns [query]: %w", err)
	}

	cols, err := pgx.CollectRows(rows, pgx.RowToStructByPos[SchemaColumn])
	if err != nil {
		return nil, fmt.Errorf("schema columns [collect]: %w", err)
	}
	return cols, nil
}

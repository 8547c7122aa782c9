package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/adaptation"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
	"github.com/2beens/coachstats/pkg"
)

var ErrNoAnalysis = errors.New("no analysis found")

const DefaultHistoryLimit = 20

// HistoryRepo keeps every stored recommendation. The whole recommendation is
// kept as a JSON payload, priority and adapt flag are duplicated for querying.
type HistoryRepo struct {
	db *pgxpool.Pool
}

func NewHistoryRepo(db *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{
		db: db,
	}
}

func (r *HistoryRepo) Add(ctx context.Context, rec *adaptation.Recommendation) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.analysis.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", rec.SubjectID))
	span.SetAttributes(attribute.String("priority", string(rec.AdaptationPriority)))

	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("recommendation id [%s]: %w", rec.ID, err)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO analysis_recommendation
				(id, subject_id, adaptation_priority, should_adapt_workout, payload, generated_at)
				VALUES ($1, $2, $3, $4, $5, $6);`,
		id, rec.SubjectID, string(rec.AdaptationPriority), rec.ShouldAdaptWorkout, payload, rec.GeneratedAt,
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return bodystats.ErrSubjectNotFound
		}
		return fmt.Errorf("insert recommendation: %w", err)
	}

	return nil
}

// Latest returns the most recent recommendation, ErrNoAnalysis if there is none.
func (r *HistoryRepo) Latest(ctx context.Context, subjectID string) (_ *adaptation.Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.analysis.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	recs, err := r.List(ctx, subjectID, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNoAnalysis
	}
	return &recs[0], nil
}

// List returns up to limit recommendations, newest first.
func (r *HistoryRepo) List(ctx context.Context, subjectID string, limit int) (_ []adaptation.Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.analysis.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", subjectID))

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT payload FROM analysis_recommendation
			WHERE subject_id = $1
			ORDER BY generated_at DESC
			LIMIT $2;`,
		subjectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recommendations [query]: %w", err)
	}
	defer rows.Close()

	return rows2recommendations(rows)
}

// LastAnalysisAt returns the generation time of the latest stored
// recommendation, nil if the subject was never analyzed.
func (r *HistoryRepo) LastAnalysisAt(ctx context.Context, subjectID string) (_ *time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.analysis.last_at")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var last *time.Time
	err = r.db.QueryRow(
		ctx,
		`SELECT MAX(generated_at) FROM analysis_recommendation WHERE subject_id = $1`,
		subjectID,
	).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("last analysis [query row]: %w", err)
	}
	return last, nil
}

func rows2recommendations(rows pgx.Rows) ([]adaptation.Recommendation, error) {
	recs := make([]adaptation.Recommendation, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("recommendations [rows scan]: %w", err)
		}
		var rec adaptation.Recommendation
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

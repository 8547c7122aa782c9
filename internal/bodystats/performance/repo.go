package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
	"github.com/2beens/coachstats/pkg"
)

type ListParams struct {
	SubjectID    string
	ExerciseName string
	From         *time.Time
	To           *time.Time
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, session SessionLog) (_ *SessionLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.performance.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", session.SubjectID))

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_session
				(subject_id, exercise_name, performed_at, max_weight_kg, total_volume, total_reps, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		session.SubjectID, session.ExerciseName, session.PerformedAt,
		session.MaxWeightKg, session.TotalVolume, session.TotalReps, session.CreatedAt,
	).Scan(&id)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, bodystats.ErrSubjectNotFound
		}
		if pkg.IsCheckViolationError(err) {
			return nil, bodystats.NewValidationError("session", "negative load, volume or reps")
		}
		return nil, fmt.Errorf("insert session: %w", err)
	}

	session.ID = id
	return &session, nil
}

// List returns the sessions of a subject, oldest first.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []SessionLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.performance.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", params.SubjectID))
	if params.ExerciseName != "" {
		span.SetAttributes(attribute.String("params.exercise", params.ExerciseName))
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, subject_id, exercise_name, performed_at, max_weight_kg, total_volume, total_reps, created_at
			FROM workout_session
			WHERE subject_id = $1
				AND ($2::text = '' OR exercise_name = $2)
				AND ($3::timestamptz IS NULL OR performed_at >= $3)
				AND ($4::timestamptz IS NULL OR performed_at < $4)
			ORDER BY performed_at ASC, id ASC;`,
		params.SubjectID, params.ExerciseName, params.From, params.To,
	)
	if err != nil {
		return nil, fmt.Errorf("sessions [query]: %w", err)
	}
	defer rows.Close()

	return r.rows2sessions(rows)
}

// MuscleGroups returns the exercise name -> muscle group table.
func (r *Repo) MuscleGroups(ctx context.Context) (_ map[string]string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.performance.muscle_groups")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT name, muscle_group FROM exercise_type`)
	if err != nil {
		return nil, fmt.Errorf("exercise types [query]: %w", err)
	}
	defer rows.Close()

	groups := make(map[string]string)
	for rows.Next() {
		var name, muscleGroup string
		if err := rows.Scan(&name, &muscleGroup); err != nil {
			return nil, fmt.Errorf("exercise types [rows scan]: %w", err)
		}
		groups[name] = muscleGroup
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *Repo) SetMuscleGroup(ctx context.Context, exerciseName, muscleGroup string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.performance.set_muscle_group")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if exerciseName == "" || muscleGroup == "" {
		return errors.New("exercise name and muscle group are required")
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO exercise_type (name, muscle_group) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET muscle_group = EXCLUDED.muscle_group;`,
		exerciseName, muscleGroup,
	)
	return err
}

func (r *Repo) rows2sessions(rows pgx.Rows) ([]SessionLog, error) {
	sessions := make([]SessionLog, 0)
	for rows.Next() {
		var s SessionLog
		if err := rows.Scan(
			&s.ID,
			&s.SubjectID,
			&s.ExerciseName,
			&s.PerformedAt,
			&s.MaxWeightKg,
			&s.TotalVolume,
			&s.TotalReps,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sessions [rows scan]: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

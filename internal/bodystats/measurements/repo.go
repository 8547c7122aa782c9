package measurements

import (
	"context"
	"encoding/json"
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

var (
	ErrMeasurementNotFound      = errors.New("measurement not found")
	ErrDuplicateMeasurementDate = errors.New("subject already has a measurement on that date")
	ErrSubjectNotFound          = bodystats.ErrSubjectNotFound
)

// Repo stores measurement records. Records are never updated in place,
// a correction is a delete followed by a new record.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) UpsertSubject(ctx context.Context, subject bodystats.Subject) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.upsert_subject")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now()
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO subject (id, sex, created_at) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET sex = EXCLUDED.sex;`,
		subject.ID, string(subject.Sex), subject.CreatedAt,
	)
	if err != nil {
		if pkg.IsCheckViolationError(err) {
			return bodystats.NewValidationError("sex", fmt.Sprintf("unsupported [%s]", subject.Sex))
		}
		return fmt.Errorf("upsert subject: %w", err)
	}
	return nil
}

func (r *Repo) GetSubject(ctx context.Context, id string) (_ *bodystats.Subject, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.get_subject")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", id))

	var subject bodystats.Subject
	var sex string
	err = r.db.QueryRow(
		ctx,
		`SELECT id, sex, created_at FROM subject WHERE id = $1`,
		id,
	).Scan(&subject.ID, &sex, &subject.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("subject [query row]: %w", err)
	}

	subject.Sex, err = bodystats.ParseSex(sex)
	if err != nil {
		return nil, fmt.Errorf("subject %s: %w", id, err)
	}

	return &subject, nil
}

func (r *Repo) Add(ctx context.Context, record Record) (_ *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", record.SubjectID))

	var skinfolds []byte
	if record.Skinfolds != nil {
		skinfolds, err = json.Marshal(record.Skinfolds)
		if err != nil {
			return nil, fmt.Errorf("marshal skinfolds: %w", err)
		}
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO measurement
				(subject_id, measured_at, measured_on, weight_kg, height_cm, neck_cm, chest_cm, waist_cm,
				 hip_cm, arm_cm, thigh_cm, calf_cm, muscle_mass_kg, skinfolds, notes, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING id;`,
		record.SubjectID, record.MeasuredAt, record.Day(),
		record.WeightKg, record.HeightCm, record.NeckCm, record.ChestCm, record.WaistCm,
		record.HipCm, record.ArmCm, record.ThighCm, record.CalfCm, record.MuscleMassKg,
		skinfolds, record.Notes, record.CreatedAt,
	).Scan(&id)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrDuplicateMeasurementDate
		}
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("insert measurement: %w", err)
	}

	record.ID = id
	return &record, nil
}

func (r *Repo) Get(ctx context.Context, subjectID string, id int) (_ *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+measurementColumns+`
			FROM measurement
			WHERE subject_id = $1 AND id = $2;`,
		subjectID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("measurement [query]: %w", err)
	}
	defer rows.Close()

	records, err := r.rows2records(rows)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, ErrMeasurementNotFound
	}

	return &records[0], nil
}

// List returns all measurements of a subject, newest first.
func (r *Repo) List(ctx context.Context, subjectID string) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", subjectID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+measurementColumns+`
			FROM measurement
			WHERE subject_id = $1
			ORDER BY measured_at DESC, id ASC;`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("measurements [query]: %w", err)
	}
	defer rows.Close()

	return r.rows2records(rows)
}

func (r *Repo) Delete(ctx context.Context, subjectID string, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM measurement WHERE subject_id = $1 AND id = $2`,
		subjectID, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMeasurementNotFound
	}
	return nil
}

// OldestMeasurementAt returns the date of the first measurement of the subject,
// nil if there is none.
func (r *Repo) OldestMeasurementAt(ctx context.Context, subjectID string) (_ *time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.measurements.oldest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var oldest *time.Time
	err = r.db.QueryRow(
		ctx,
		`SELECT MIN(measured_at) FROM measurement WHERE subject_id = $1`,
		subjectID,
	).Scan(&oldest)
	if err != nil {
		return nil, fmt.Errorf("oldest measurement [query row]: %w", err)
	}
	return oldest, nil
}

const measurementColumns = `id, subject_id, measured_at, weight_kg, height_cm, neck_cm, chest_cm, waist_cm,
				hip_cm, arm_cm, thigh_cm, calf_cm, muscle_mass_kg, skinfolds, notes, created_at`

func (r *Repo) rows2records(rows pgx.Rows) ([]Record, error) {
	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var skinfolds []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.SubjectID,
			&rec.MeasuredAt,
			&rec.WeightKg,
			&rec.HeightCm,
			&rec.NeckCm,
			&rec.ChestCm,
			&rec.WaistCm,
			&rec.HipCm,
			&rec.ArmCm,
			&rec.ThighCm,
			&rec.CalfCm,
			&rec.MuscleMassKg,
			&skinfolds,
			&rec.Notes,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("measurements [rows scan]: %w", err)
		}

		if len(skinfolds) > 0 {
			rec.Skinfolds = &Skinfolds{}
			if err := json.Unmarshal(skinfolds, rec.Skinfolds); err != nil {
				return nil, fmt.Errorf("unmarshal skinfolds for measurement %d: %w", rec.ID, err)
			}
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

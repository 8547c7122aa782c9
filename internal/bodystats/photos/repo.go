package photos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
	"github.com/2beens/coachstats/pkg"
)

// Repo is append only: photos are never updated or replaced.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, photo Photo) (_ *Photo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.photos.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", photo.SubjectID))
	span.SetAttributes(attribute.String("pose", photo.Pose()))

	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = time.Now()
	}
	photo.PoseID = photo.Pose()

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO progress_photo
				(subject_id, pose_id, captured_at, url, created_at)
				VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
		photo.SubjectID, photo.PoseID, photo.CapturedAt, photo.URL, photo.CreatedAt,
	).Scan(&id)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, bodystats.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("insert photo: %w", err)
	}

	photo.ID = id
	return &photo, nil
}

// List returns the photos of a subject in insertion order.
func (r *Repo) List(ctx context.Context, subjectID string) (_ []Photo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.photos.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", subjectID))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, subject_id, pose_id, captured_at, url, created_at
			FROM progress_photo
			WHERE subject_id = $1
			ORDER BY id ASC;`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("photos [query]: %w", err)
	}
	defer rows.Close()

	return rows2photos(rows)
}

func rows2photos(rows pgx.Rows) ([]Photo, error) {
	photos := make([]Photo, 0)
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.SubjectID, &p.PoseID, &p.CapturedAt, &p.URL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("photos [rows scan]: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return photos, nil
}

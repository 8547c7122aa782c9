package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/adaptation"
	"github.com/2beens/coachstats/internal/bodystats/composition"
	"github.com/2beens/coachstats/internal/bodystats/evolution"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/performance"
	"github.com/2beens/coachstats/internal/bodystats/photos"
)

// MeasurementsRepo provides subjects and their measurement history.
type MeasurementsRepo interface {
	GetSubject(ctx context.Context, id string) (*bodystats.Subject, error)
	List(ctx context.Context, subjectID string) ([]measurements.Record, error)
}

type PhotosRepo interface {
	List(ctx context.Context, subjectID string) ([]photos.Photo, error)
}

type SessionsRepo interface {
	List(ctx context.Context, params performance.ListParams) ([]performance.SessionLog, error)
}

// Analyzer runs the adaptation engine; the MCP tools only ever do dry runs.
type Analyzer interface {
	Analyze(ctx context.Context, subjectID string, dryRun bool) (*adaptation.Recommendation, error)
}

type CompositionCalculator interface {
	Compute(record measurements.Record, sex bodystats.Sex) (composition.Metrics, error)
}

// contextService provides body stats data to the tool handlers.
type contextService interface {
	GetSchema(ctx context.Context) (string, error)
	ComputeComposition(record measurements.Record, sex bodystats.Sex) (composition.Metrics, error)
	GetEvolution(ctx context.Context, subjectID string, mode evolution.Mode) (*evolution.MeasurementEvolution, error)
	GetPhotoTimeline(ctx context.Context, subjectID string) (photos.Timeline, error)
	GetPerformanceSummary(ctx context.Context, subjectID string, days int) ([]performance.Summary, error)
	GetRecommendation(ctx context.Context, subjectID string) (*adaptation.Recommendation, error)
}

type ContextServiceParams struct {
	Schema       SchemaRepo
	Measurements MeasurementsRepo
	Photos       PhotosRepo
	Sessions     SessionsRepo
	Analyzer     Analyzer
	Calculator   CompositionCalculator
	Now          func() time.Time
}

// ContextService holds dependencies and implements the body stats context logic.
type ContextService struct {
	schema       SchemaRepo
	measurements MeasurementsRepo
	photos       PhotosRepo
	sessions     SessionsRepo
	analyzer     Analyzer
	calculator   CompositionCalculator
	now          func() time.Time
}

func NewContextService(params ContextServiceParams) *ContextService {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &ContextService{
		schema:       params.Schema,
		measurements: params.Measurements,
		photos:       params.Photos,
		sessions:     params.Sessions,
		analyzer:     params.Analyzer,
		calculator:   params.Calculator,
		now:          now,
	}
}

// GetSchema returns the DB schema of the body stats tables as markdown.
func (s *ContextService) GetSchema(ctx context.Context) (string, error) {
	cols, err := s.schema.GetBodystatsColumns(ctx)
	if err != nil {
		return "", err
	}
	return formatBodystatsSchema(cols), nil
}

func formatBodystatsSchema(cols []SchemaColumn) string {
	if len(cols) == 0 {
		return "# Bodystats DB Schema\n\nNo bodystats tables found in the database.\n"
	}

	byTable := make(map[string][]SchemaColumn)
	for _, c := range cols {
		byTable[c.TableName] = append(byTable[c.TableName], c)
	}

	tableOrder := make([]string, 0, len(byTable))
	for t := range byTable {
		tableOrder = append(tableOrder, t)
	}
	sort.Strings(tableOrder)

	var b strings.Builder
	b.WriteString("# Bodystats DB Schema\n\n")
	b.WriteString("Tables: " + strings.Join(bodystatsTables, ", ") + " (schema: public).\n\n")

	for _, tableName := range tableOrder {
		b.WriteString("## ")
		b.WriteString(tableName)
		b.WriteString("\n\n| Column | Type | Nullable | Default |\n|--------|------|----------|--------|\n")
		for _, c := range byTable[tableName] {
			def := "-"
			if c.ColumnDef != nil && *c.ColumnDef != "" {
				def = *c.ColumnDef
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.ColumnName, c.DataType, c.IsNullable, def))
		}
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n\n") + "\n"
}

func (s *ContextService) ComputeComposition(record measurements.Record, sex bodystats.Sex) (composition.Metrics, error) {
	if err := record.Validate(); err != nil {
		return composition.Metrics{}, err
	}
	return s.calculator.Compute(record, sex)
}

// GetEvolution compares the subject's measurements, nil when fewer than two exist.
func (s *ContextService) GetEvolution(ctx context.Context, subjectID string, mode evolution.Mode) (*evolution.MeasurementEvolution, error) {
	subject, err := s.measurements.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	records, err := s.measurements.List(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return evolution.CompareHistory(records, subject.Sex, mode)
}

func (s *ContextService) GetPhotoTimeline(ctx context.Context, subjectID string) (photos.Timeline, error) {
	subjectPhotos, err := s.photos.List(ctx, subjectID)
	if err != nil {
		return photos.Timeline{}, err
	}
	return photos.BuildTimeline(subjectPhotos), nil
}

// GetPerformanceSummary aggregates the sessions of the last days days per exercise.
func (s *ContextService) GetPerformanceSummary(ctx context.Context, subjectID string, days int) ([]performance.Summary, error) {
	if days <= 0 {
		days = performance.DefaultWindowDays
	}
	from := performance.WindowStart(s.now(), days)
	sessions, err := s.sessions.List(ctx, performance.ListParams{
		SubjectID: subjectID,
		From:      &from,
	})
	if err != nil {
		return nil, err
	}
	return performance.AggregateByExercise(sessions)
}

// GetRecommendation runs the adaptation engine without storing or publishing.
func (s *ContextService) GetRecommendation(ctx context.Context, subjectID string) (*adaptation.Recommendation, error) {
	return s.analyzer.Analyze(ctx, subjectID, true)
}

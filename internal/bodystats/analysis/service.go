// Package analysis runs the adaptation decision engine against a subject's
// stored data, keeps the recommendation history and hands the recommendations
// that require a program change to the workout generation service.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/adaptation"
	"github.com/2beens/coachstats/internal/bodystats/evolution"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
	"github.com/2beens/coachstats/internal/bodystats/performance"
	"github.com/2beens/coachstats/internal/bodystats/timeline"
	"github.com/2beens/coachstats/internal/config"
	"github.com/2beens/coachstats/internal/telemetry/metrics"
	"github.com/2beens/coachstats/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=analysis_mocks_test.go -package=analysis_test

type measurementsRepo interface {
	GetSubject(ctx context.Context, id string) (*bodystats.Subject, error)
	List(ctx context.Context, subjectID string) ([]measurements.Record, error)
	OldestMeasurementAt(ctx context.Context, subjectID string) (*time.Time, error)
}

type sessionsRepo interface {
	List(ctx context.Context, params performance.ListParams) ([]performance.SessionLog, error)
	MuscleGroups(ctx context.Context) (map[string]string, error)
}

type historyRepo interface {
	Add(ctx context.Context, rec *adaptation.Recommendation) error
	Latest(ctx context.Context, subjectID string) (*adaptation.Recommendation, error)
	List(ctx context.Context, subjectID string, limit int) ([]adaptation.Recommendation, error)
	LastAnalysisAt(ctx context.Context, subjectID string) (*time.Time, error)
}

type recommendationCache interface {
	Get(ctx context.Context, subjectID string) (*adaptation.Recommendation, error)
	Set(ctx context.Context, rec *adaptation.Recommendation) error
}

type publisher interface {
	Publish(ctx context.Context, rec *adaptation.Recommendation) error
}

type NewServiceParams struct {
	Measurements   measurementsRepo
	Sessions       sessionsRepo
	History        historyRepo
	Cache          recommendationCache
	Publisher      publisher
	Engine         *adaptation.Engine
	WindowDays     int
	MetricsManager *metrics.Manager
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

type Service struct {
	measurements   measurementsRepo
	sessions       sessionsRepo
	history        historyRepo
	cache          recommendationCache
	publisher      publisher
	engine         *adaptation.Engine
	windowDays     int
	metricsManager *metrics.Manager
	now            func() time.Time
	newID          func() string
}

func NewService(params NewServiceParams) *Service {
	s := &Service{
		measurements:   params.Measurements,
		sessions:       params.Sessions,
		history:        params.History,
		cache:          params.Cache,
		publisher:      params.Publisher,
		engine:         params.Engine,
		windowDays:     params.WindowDays,
		metricsManager: params.MetricsManager,
		now:            params.Now,
		newID:          params.NewID,
	}
	if s.engine == nil {
		s.engine = adaptation.NewEngine(adaptation.DefaultThresholds(), nil)
	}
	if s.windowDays <= 0 {
		s.windowDays = performance.DefaultWindowDays
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// NewEngine builds the decision engine from the analysis config section.
func NewEngine(cfg config.Analysis) (*adaptation.Engine, error) {
	polarity, err := evolution.DefaultPolarity().WithOverrides(cfg.Polarity)
	if err != nil {
		return nil, fmt.Errorf("polarity overrides: %w", err)
	}
	thresholds := adaptation.Thresholds{
		MaterialReversalPercent: cfg.MaterialReversalPercent,
		NoisePercent:            cfg.NoisePercent,
		NoiseAbsolute:           cfg.NoiseAbsolute,
		RecentAnalysisDays:      cfg.RecentAnalysisDays,
		StaleAnalysisDays:       cfg.StaleAnalysisDays,
		DecliningShare:          cfg.DecliningShare,
	}
	return adaptation.NewEngine(thresholds, polarity), nil
}

// Analyze gathers the subject's measurements and recent sessions and runs the
// decision engine. Unless dryRun is set, the recommendation is stored, cached
// and, when the program should change, published.
func (s *Service) Analyze(ctx context.Context, subjectID string, dryRun bool) (_ *adaptation.Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.analyze")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("subject", subjectID))
	span.SetAttributes(attribute.Bool("dry_run", dryRun))

	start := time.Now()
	now := s.now().UTC()

	subject, err := s.measurements.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	records, err := s.measurements.List(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	evo, err := evolution.CompareHistory(records, subject.Sex, evolution.ModeFirstVsLatest)
	if err != nil {
		return nil, fmt.Errorf("evolution: %w", err)
	}

	from := performance.WindowStart(now, s.windowDays)
	sessions, err := s.sessions.List(ctx, performance.ListParams{
		SubjectID: subjectID,
		From:      &from,
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	summaries, err := performance.AggregateByExercise(sessions)
	if err != nil {
		return nil, fmt.Errorf("performance: %w", err)
	}

	muscleGroups, err := s.sessions.MuscleGroups(ctx)
	if err != nil {
		log.Errorf("analysis [%s]: muscle groups unavailable: %s", subjectID, err)
		muscleGroups = map[string]string{}
	}

	daysSince, err := s.daysSinceLastAnalysis(ctx, subjectID, now)
	if err != nil {
		return nil, err
	}

	rec, err := s.engine.Decide(adaptation.Input{
		SubjectID:             subjectID,
		Evolution:             evo,
		Performance:           summaries,
		DaysSinceLastAnalysis: daysSince,
		MuscleGroups:          muscleGroups,
		Now:                   now,
	})
	if err != nil {
		return nil, fmt.Errorf("decide: %w", err)
	}

	s.metricsManager.CounterAnalyses.WithLabelValues(string(rec.AdaptationPriority)).Inc()
	s.metricsManager.HistogramAnalysisDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("priority", string(rec.AdaptationPriority)))

	if dryRun {
		return rec, nil
	}

	rec.ID = s.newID()
	if err := s.history.Add(ctx, rec); err != nil {
		return nil, fmt.Errorf("store recommendation: %w", err)
	}
	if err := s.cache.Set(ctx, rec); err != nil {
		log.Errorf("analysis [%s]: cache recommendation: %s", subjectID, err)
	}

	if rec.ShouldAdaptWorkout {
		// the recommendation is stored, a failed publish is only reported
		if err := s.publisher.Publish(ctx, rec); err != nil {
			log.Errorf("analysis [%s]: publish recommendation [%s]: %s", subjectID, rec.ID, err)
		}
	}

	log.Debugf("analysis [%s]: priority [%s], adapt [%t]", subjectID, rec.AdaptationPriority, rec.ShouldAdaptWorkout)
	return rec, nil
}

// daysSinceLastAnalysis counts from the latest stored recommendation, or from
// the first measurement when the subject was never analyzed.
func (s *Service) daysSinceLastAnalysis(ctx context.Context, subjectID string, now time.Time) (int, error) {
	last, err := s.history.LastAnalysisAt(ctx, subjectID)
	if err != nil {
		return 0, fmt.Errorf("last analysis: %w", err)
	}
	if last == nil {
		last, err = s.measurements.OldestMeasurementAt(ctx, subjectID)
		if err != nil {
			return 0, fmt.Errorf("oldest measurement: %w", err)
		}
	}
	if last == nil {
		return 0, nil
	}

	days := timeline.DaysBetween(*last, now)
	if days < 0 {
		return 0, nil
	}
	return days, nil
}

// Latest returns the latest stored recommendation, from the cache when possible.
func (s *Service) Latest(ctx context.Context, subjectID string) (_ *adaptation.Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cached, err := s.cache.Get(ctx, subjectID)
	if err != nil {
		log.Errorf("analysis [%s]: get cached recommendation: %s", subjectID, err)
	}
	if cached != nil {
		span.SetAttributes(attribute.Bool("cached", true))
		return cached, nil
	}

	rec, err := s.history.Latest(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrNoAnalysis) {
			return nil, ErrNoAnalysis
		}
		return nil, fmt.Errorf("latest recommendation: %w", err)
	}

	if err := s.cache.Set(ctx, rec); err != nil {
		log.Errorf("analysis [%s]: cache recommendation: %s", subjectID, err)
	}
	return rec, nil
}

func (s *Service) History(ctx context.Context, subjectID string, limit int) (_ []adaptation.Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.analysis.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.history.List(ctx, subjectID, limit)
}

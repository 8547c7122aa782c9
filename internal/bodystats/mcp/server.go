package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the body stats tools: schema, body composition,
// measurement evolution, photo timeline, performance summary, adaptation recommendation.
// Served over stdio by cmd/bodystats_mcp and mounted at /mcp by the main service.
func NewServer(service *ContextService) *mcp.Server {
	h := NewHandler(service)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "bodystats-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_bodystats_schema",
		Description: "Returns the DB schema of the body stats tables (subject, measurement, progress_photo, exercise_type, workout_session, analysis_recommendation): columns, types, nullable, default.",
	}, h.GetBodystatsSchemaTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "compute_body_composition",
		Description: "Computes BMI, estimated body fat (US Navy method), fat mass and lean mass from raw measurements. Args: sex; optional weight_kg, height_cm, neck_cm, waist_cm, hip_cm. Metrics that cannot be computed are null.",
	}, h.ComputeBodyCompositionTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_measurement_evolution",
		Description: "Returns the changes (absolute, percent, direction) of every tracked metric between two measurements of a subject. Arg: subject_id; optional mode: first (first vs latest) or previous (previous vs latest).",
	}, h.GetMeasurementEvolutionTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_photo_timeline",
		Description: "Returns a subject's progress photos per pose (newest first, with elapsed time between photos) and per month. Arg: subject_id.",
	}, h.GetPhotoTimelineTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_performance_summary",
		Description: "Returns per-exercise workout stats (max, min, avg weight, volume, reps, trend) over the last days. Args: subject_id; optional days (default 30).",
	}, h.GetPerformanceSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_adaptation_recommendation",
		Description: "Runs the adaptation analysis of a subject without storing it: strengths, deficits, muscle groups to focus, adaptation priority and whether the workout program should be regenerated. Arg: subject_id.",
	}, h.GetAdaptationRecommendationTool())

	return s
}

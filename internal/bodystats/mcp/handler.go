package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2beens/coachstats/internal/bodystats"
	"github.com/2beens/coachstats/internal/bodystats/evolution"
	"github.com/2beens/coachstats/internal/bodystats/measurements"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

// GetBodystatsSchemaTool returns the MCP tool handler for get_bodystats_schema.
func (h *Handler) GetBodystatsSchemaTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		text, err := h.service.GetSchema(ctx)
		if err != nil {
			return errorResult("Error fetching schema: " + err.Error()), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	}
}

// CompositionInput is the input for compute_body_composition.
type CompositionInput struct {
	Sex      string   `json:"sex" jsonschema:"Biological sex: male or female"`
	WeightKg *float64 `json:"weight_kg,omitempty" jsonschema:"Body weight in kilos"`
	HeightCm *float64 `json:"height_cm,omitempty" jsonschema:"Height in centimeters"`
	NeckCm   *float64 `json:"neck_cm,omitempty" jsonschema:"Neck circumference in centimeters"`
	WaistCm  *float64 `json:"waist_cm,omitempty" jsonschema:"Waist circumference in centimeters"`
	HipCm    *float64 `json:"hip_cm,omitempty" jsonschema:"Hip circumference in centimeters (required for females)"`
}

// ComputeBodyCompositionTool returns the MCP tool handler for compute_body_composition.
func (h *Handler) ComputeBodyCompositionTool() func(context.Context, *mcp.CallToolRequest, CompositionInput) (*mcp.CallToolResult, any, error) {
	return func(_ context.Context, _ *mcp.CallToolRequest, in CompositionInput) (*mcp.CallToolResult, any, error) {
		sex, err := bodystats.ParseSex(in.Sex)
		if err != nil {
			return errorResult("Invalid sex: use male or female"), nil, nil
		}
		record := measurements.Record{
			SubjectID:  "mcp",
			MeasuredAt: time.Now(),
			WeightKg:   in.WeightKg,
			HeightCm:   in.HeightCm,
			NeckCm:     in.NeckCm,
			WaistCm:    in.WaistCm,
			HipCm:      in.HipCm,
		}
		m, err := h.service.ComputeComposition(record, sex)
		if err != nil {
			return errorResult("Error computing composition: " + err.Error()), nil, nil
		}
		return jsonResult(m), nil, nil
	}
}

// EvolutionInput is the input for get_measurement_evolution.
type EvolutionInput struct {
	SubjectID string `json:"subject_id" jsonschema:"Subject (student) id"`
	Mode      string `json:"mode,omitempty" jsonschema:"first (first vs latest, default) or previous (previous vs latest)"`
}

// GetMeasurementEvolutionTool returns the MCP tool handler for get_measurement_evolution.
func (h *Handler) GetMeasurementEvolutionTool() func(context.Context, *mcp.CallToolRequest, EvolutionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in EvolutionInput) (*mcp.CallToolResult, any, error) {
		if in.SubjectID == "" {
			return errorResult("Missing subject_id"), nil, nil
		}
		evo, err := h.service.GetEvolution(ctx, in.SubjectID, evolution.Mode(in.Mode))
		if err != nil {
			return errorResult("Error computing evolution: " + err.Error()), nil, nil
		}
		if evo == nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: "At least two measurements are needed to compute the evolution."}},
			}, nil, nil
		}
		return jsonResult(evo), nil, nil
	}
}

// SubjectInput is the input for the per-subject tools.
type SubjectInput struct {
	SubjectID string `json:"subject_id" jsonschema:"Subject (student) id"`
}

// GetPhotoTimelineTool returns the MCP tool handler for get_photo_timeline.
func (h *Handler) GetPhotoTimelineTool() func(context.Context, *mcp.CallToolRequest, SubjectInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SubjectInput) (*mcp.CallToolResult, any, error) {
		if in.SubjectID == "" {
			return errorResult("Missing subject_id"), nil, nil
		}
		timeline, err := h.service.GetPhotoTimeline(ctx, in.SubjectID)
		if err != nil {
			return errorResult("Error fetching photos: " + err.Error()), nil, nil
		}
		return jsonResult(timeline), nil, nil
	}
}

// PerformanceInput is the input for get_performance_summary.
type PerformanceInput struct {
	SubjectID string `json:"subject_id" jsonschema:"Subject (student) id"`
	Days      int    `json:"days,omitempty" jsonschema:"Window size in days, default 30"`
}

// GetPerformanceSummaryTool returns the MCP tool handler for get_performance_summary.
func (h *Handler) GetPerformanceSummaryTool() func(context.Context, *mcp.CallToolRequest, PerformanceInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in PerformanceInput) (*mcp.CallToolResult, any, error) {
		if in.SubjectID == "" {
			return errorResult("Missing subject_id"), nil, nil
		}
		if in.Days < 0 {
			return errorResult("Invalid days: must be positive"), nil, nil
		}
		summaries, err := h.service.GetPerformanceSummary(ctx, in.SubjectID, in.Days)
		if err != nil {
			return errorResult("Error aggregating sessions: " + err.Error()), nil, nil
		}
		return jsonResult(summaries), nil, nil
	}
}

// GetAdaptationRecommendationTool returns the MCP tool handler for get_adaptation_recommendation.
func (h *Handler) GetAdaptationRecommendationTool() func(context.Context, *mcp.CallToolRequest, SubjectInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SubjectInput) (*mcp.CallToolResult, any, error) {
		if in.SubjectID == "" {
			return errorResult("Missing subject_id"), nil, nil
		}
		rec, err := h.service.GetRecommendation(ctx, in.SubjectID)
		if err != nil {
			return errorResult("Error running the analysis: " + err.Error()), nil, nil
		}
		return jsonResult(rec), nil, nil
	}
}

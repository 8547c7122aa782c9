package adaptation

type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities from none (0) to high (3). Unknown values rank -1.
func (p Priority) Rank() int {
	switch p {
	case PriorityNone:
		return 0
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return -1
	}
}

// ShouldAdapt tells whether the workout program should be regenerated.
func (p Priority) ShouldAdapt() bool {
	return p == PriorityMedium || p == PriorityHigh
}

// Thresholds tune the decision rules. Use DefaultThresholds and override.
type Thresholds struct {
	// MaterialReversalPercent is the share of the baseline an unfavorable
	// change must exceed to count as a reversal.
	MaterialReversalPercent float64
	// A change is noise while |delta| <= max(NoisePercent% of |baseline|, NoiseAbsolute).
	NoisePercent  float64
	NoiseAbsolute float64
	// Below RecentAnalysisDays nothing is recommended unless something went wrong.
	RecentAnalysisDays int
	// At StaleAnalysisDays the program is due for adaptation.
	StaleAnalysisDays int
	// DecliningShare of the tracked exercises trending down makes the
	// adaptation due regardless of the elapsed time.
	DecliningShare float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaterialReversalPercent: 3,
		NoisePercent:            1,
		NoiseAbsolute:           0.5,
		RecentAnalysisDays:      14,
		StaleAnalysisDays:       30,
		DecliningShare:          0.5,
	}
}

// WithDefaults fills zero fields with the default values.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.MaterialReversalPercent <= 0 {
		t.MaterialReversalPercent = d.MaterialReversalPercent
	}
	if t.NoisePercent <= 0 {
		t.NoisePercent = d.NoisePercent
	}
	if t.NoiseAbsolute <= 0 {
		t.NoiseAbsolute = d.NoiseAbsolute
	}
	if t.RecentAnalysisDays <= 0 {
		t.RecentAnalysisDays = d.RecentAnalysisDays
	}
	if t.StaleAnalysisDays <= 0 {
		t.StaleAnalysisDays = d.StaleAnalysisDays
	}
	if t.DecliningShare <= 0 {
		t.DecliningShare = d.DecliningShare
	}
	return t
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vedant461/Eurekathon-ChainIQ/internal/domain"

	"github.com/google/uuid"
)

// InsightService wraps the narrative generator. Every method degrades to a
// deterministic, locally computed answer when the generator is unavailable:
// generator failures are operational color, never tracker failures.
type InsightService struct {
	Gen     NarrativeGenerator
	Rollup  *RollupService
	Metrics MetricRepository
	Log     *slog.Logger
}

func NewInsightService(gen NarrativeGenerator, rollup *RollupService, metrics MetricRepository) *InsightService {
	return &InsightService{Gen: gen, Rollup: rollup, Metrics: metrics, Log: slog.Default()}
}

// BottleneckInsight analyzes the current worst bottleneck.
func (s *InsightService) BottleneckInsight(ctx context.Context) (string, error) {
	bottlenecks, err := s.Rollup.Bottlenecks(ctx, 5)
	if err != nil {
		return "", err
	}
	if len(bottlenecks) == 0 {
		return "No data available.", nil
	}
	top := bottlenecks[0]
	failRate := 0.0
	if top.TotalEvents > 0 {
		failRate = round1(float64(top.FailCount) / float64(top.TotalEvents) * 100)
	}

	prompt := fmt.Sprintf(`You are a Supply Chain Analyst. Analyze this data issue:
Node: %s
Process: %s
Average Delay: %.1f hours
Failure Rate: %.1f%%

Provide a concise 3-sentence root cause analysis and recommendation.`,
		top.NodeName, top.ProcessType, top.AvgVariance, failRate)

	if text, err := s.generate(ctx, prompt); err == nil {
		return text, nil
	}
	return fmt.Sprintf(
		"Automated analysis: %s at %s is running %.1f hours behind on average with a %.1f%% failure rate. Review capacity and scheduling at this stage before it delays downstream batches.",
		top.ProcessType, top.NodeName, top.AvgVariance, failRate), nil
}

type SimulationRequest struct {
	TargetMetricID string
	Delta          float64
}

type SimulationResult struct {
	SimulationID           string  `json:"simulation_id"`
	Target                 string  `json:"target"`
	DeltaApplied           float64 `json:"delta_applied"`
	PropagationCoefficient float64 `json:"propagation_coefficient"`
	ProjectedImpactScore   float64 `json:"projected_impact_score"`
	Analysis               string  `json:"ai_analysis"`
}

// Simulate computes a what-if adjustment's propagated impact on the L1 score.
// The propagation coefficient is the product of weights along the path to the
// root (L3 weight x L2 weight); the narrative text is optional garnish.
func (s *InsightService) Simulate(ctx context.Context, req SimulationRequest) (SimulationResult, error) {
	metric, err := s.Metrics.GetByID(ctx, req.TargetMetricID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return SimulationResult{}, domain.ErrMetricNotFound
		}
		return SimulationResult{}, err
	}

	coeff := metric.Weight
	if metric.Level == domain.LevelLeaf && metric.ParentID != "" {
		if parent, err := s.Metrics.GetByID(ctx, metric.ParentID); err == nil {
			coeff *= parent.Weight
		}
	}

	result := SimulationResult{
		SimulationID:           uuid.NewString(),
		Target:                 metric.Name,
		DeltaApplied:           req.Delta,
		PropagationCoefficient: coeff,
		ProjectedImpactScore:   round2(req.Delta * coeff),
	}

	prompt := fmt.Sprintf(`Simulation: Adjusting %s by %.2f.
Context: This metric contributes to parent %s with a propagation coefficient of %.2f.

Predict the downstream impact on Supply Chain Reliability and provide a strategic recommendation.`,
		metric.Name, req.Delta, metric.ParentID, coeff)

	if text, err := s.generate(ctx, prompt); err == nil {
		result.Analysis = text
	} else {
		result.Analysis = fmt.Sprintf(
			"AI simulation unavailable. Adjusting %s by %.2f propagates a %.2f change to its executive score (coefficient %.2f).",
			metric.Name, req.Delta, result.ProjectedImpactScore, coeff)
	}
	return result, nil
}

var fallbackProcesses = []string{"Raw Material Sourcing", "Production", "Quality Check", "Logistics", "Delivery"}

// GenerateProcesses suggests likely process steps for a supplied good. The
// generator is asked for a JSON array; anything unparseable falls back to a
// fixed list.
func (s *InsightService) GenerateProcesses(ctx context.Context, suppliedGood string) []string {
	prompt := fmt.Sprintf(`List 5 standard supply chain process steps for: %s.
Return a JSON array of strings only. Example: ["Harvesting", "Processing", "Transport"].`, suppliedGood)

	content, err := s.generate(ctx, prompt)
	if err != nil {
		return fallbackProcesses
	}
	if idx := strings.Index(content, "```"); idx >= 0 {
		parts := strings.Split(content, "```")
		if len(parts) >= 2 {
			content = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[1]), "json"))
		}
	}
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return fallbackProcesses
	}
	var processes []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &processes); err != nil || len(processes) == 0 {
		return fallbackProcesses
	}
	return processes
}

func (s *InsightService) generate(ctx context.Context, prompt string) (string, error) {
	if s.Gen == nil {
		return "", errors.New("narrative generator not configured")
	}
	text, err := s.Gen.Generate(ctx, prompt)
	if err != nil {
		s.Log.Warn("narrative generation failed", "error", err)
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty narrative response")
	}
	return text, nil
}

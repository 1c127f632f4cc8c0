package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	text string
	err  error

	lastPrompt string
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.lastPrompt = prompt
	return g.text, g.err
}

func newTestInsight(gen NarrativeGenerator, facts *stubFactRepo) *InsightService {
	metrics := reliabilityHierarchy()
	rollup := NewRollupService(metrics, facts, 5.0)
	return NewInsightService(gen, rollup, metrics)
}

func TestBottleneckInsightNoData(t *testing.T) {
	svc := newTestInsight(&stubGenerator{}, &stubFactRepo{})
	text, err := svc.BottleneckInsight(context.Background())
	if err != nil {
		t.Fatalf("BottleneckInsight: %v", err)
	}
	if text != "No data available." {
		t.Fatalf("text = %q", text)
	}
}

func TestBottleneckInsightUsesGenerator(t *testing.T) {
	gen := &stubGenerator{text: "Transit congestion at the port is the root cause."}
	facts := &stubFactRepo{processStats: []ProcessStat{
		{NodeName: "Rotterdam Port", ProcessType: "Customs", AvgVariance: 7.2, TotalEvents: 10, FailCount: 4},
	}}
	svc := newTestInsight(gen, facts)

	text, err := svc.BottleneckInsight(context.Background())
	if err != nil {
		t.Fatalf("BottleneckInsight: %v", err)
	}
	if text != gen.text {
		t.Fatalf("text = %q, want generator output", text)
	}
	if !strings.Contains(gen.lastPrompt, "Rotterdam Port") || !strings.Contains(gen.lastPrompt, "Customs") {
		t.Fatalf("prompt missing bottleneck detail: %q", gen.lastPrompt)
	}
}

func TestBottleneckInsightFallsBack(t *testing.T) {
	facts := &stubFactRepo{processStats: []ProcessStat{
		{NodeName: "Plant A", ProcessType: "Assembly", AvgVariance: 9.5, TotalEvents: 4, FailCount: 1},
	}}
	svc := newTestInsight(&stubGenerator{err: errors.New("connection refused")}, facts)

	text, err := svc.BottleneckInsight(context.Background())
	if err != nil {
		t.Fatalf("BottleneckInsight: %v", err)
	}
	if !strings.Contains(text, "Assembly") || !strings.Contains(text, "Plant A") {
		t.Fatalf("fallback text missing detail: %q", text)
	}
}

func TestSimulatePropagatesLeafThroughParentWeight(t *testing.T) {
	svc := newTestInsight(&stubGenerator{err: errors.New("down")}, &stubFactRepo{})

	result, err := svc.Simulate(context.Background(), SimulationRequest{
		TargetMetricID: "M1.1.1",
		Delta:          -2.0,
	})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	// Leaf weight 0.6 times category weight 0.5.
	if result.PropagationCoefficient != 0.3 {
		t.Fatalf("coefficient = %v, want 0.3", result.PropagationCoefficient)
	}
	if result.ProjectedImpactScore != -0.6 {
		t.Fatalf("impact = %v, want -0.6", result.ProjectedImpactScore)
	}
	if result.Target != "Transit Delay" {
		t.Fatalf("target = %q", result.Target)
	}
	if result.SimulationID == "" || result.Analysis == "" {
		t.Fatalf("result missing id or analysis: %+v", result)
	}
}

func TestSimulateUnknownMetric(t *testing.T) {
	svc := newTestInsight(&stubGenerator{}, &stubFactRepo{})
	if _, err := svc.Simulate(context.Background(), SimulationRequest{TargetMetricID: "M9"}); err == nil {
		t.Fatal("expected error for unknown metric")
	}
}

func TestGenerateProcessesParsesJSONArray(t *testing.T) {
	gen := &stubGenerator{text: "```json\n[\"Harvesting\", \"Drying\", \"Roasting\"]\n```"}
	svc := newTestInsight(gen, &stubFactRepo{})

	got := svc.GenerateProcesses(context.Background(), "coffee beans")
	want := []string{"Harvesting", "Drying", "Roasting"}
	if len(got) != len(want) {
		t.Fatalf("processes = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("processes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateProcessesFallsBackOnGarbage(t *testing.T) {
	for _, text := range []string{"", "not json at all", "[1, 2, 3"} {
		gen := &stubGenerator{text: text}
		svc := newTestInsight(gen, &stubFactRepo{})
		got := svc.GenerateProcesses(context.Background(), "widgets")
		if len(got) != len(fallbackProcesses) || got[0] != fallbackProcesses[0] {
			t.Fatalf("text %q: processes = %v, want fallback", text, got)
		}
	}
}

func TestGenerateProcessesNilGenerator(t *testing.T) {
	svc := newTestInsight(nil, &stubFactRepo{})
	got := svc.GenerateProcesses(context.Background(), "widgets")
	if len(got) != len(fallbackProcesses) {
		t.Fatalf("processes = %v, want fallback", got)
	}
}

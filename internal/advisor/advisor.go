// Package advisor asks a Gemini model whether a planned cleaning step
// is safe. Advice never gates the pipeline: any failure degrades to
// *core.AdvisoryUnavailableError and the caller proceeds with a
// warning.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/leapstack-labs/leapclean/pkg/core"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// generator produces one text completion for a prompt. Wrapping the
// SDK behind this keeps the parsing path testable offline.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// Gemini is the genai-backed core.Advisor.
type Gemini struct {
	gen    generator
	logger *slog.Logger
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 1000,
	})
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// New creates a Gemini advisor. An empty model selects DefaultModel.
func New(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("advisor API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{gen: &genaiGenerator{client: client, model: model}, logger: logger}, nil
}

// Validate asks the model to evaluate one planned step.
func (a *Gemini) Validate(ctx context.Context, step, description string, columns []string, datasetContext map[string]any) (*core.Advisory, error) {
	prompt := buildPrompt(step, description, columns, datasetContext)

	reply, err := a.gen.generate(ctx, prompt)
	if err != nil {
		return nil, &core.AdvisoryUnavailableError{Cause: err}
	}
	a.logger.Debug("advisory reply", "step", step, "chars", len(reply))

	verdict, err := parseVerdict(reply)
	if err != nil {
		return nil, &core.AdvisoryUnavailableError{Cause: err}
	}

	return &core.Advisory{
		Step:           step,
		Action:         description,
		IsRecommended:  verdict.recommended(),
		Warnings:       verdict.warnings(),
		Recommendation: verdict.recommendation(),
	}, nil
}

func buildPrompt(step, description string, columns []string, datasetContext map[string]any) string {
	ctxJSON, _ := json.MarshalIndent(datasetContext, "", "  ")
	var b strings.Builder
	b.WriteString("You are a data preprocessing expert. Review this preprocessing step and decide if it's safe and beneficial.\n\n")
	b.WriteString("DATASET CONTEXT:\n")
	b.Write(ctxJSON)
	b.WriteString("\n\nPREPROCESSING STEP:\n")
	fmt.Fprintf(&b, "- Step Type: %s\n", step)
	fmt.Fprintf(&b, "- Description: %s\n", description)
	fmt.Fprintf(&b, "- Affected Columns: %s\n", strings.Join(columns, ", "))
	b.WriteString("\nIMPORTANT: If columns will be DROPPED, list them explicitly. Analyze if this will:\n")
	b.WriteString("1. Cause information loss?\n2. Affect model performance?\n3. Create data quality issues?\n")
	b.WriteString("\nEvaluate this action:\n")
	b.WriteString("1. Is it a good idea? (yes/no)\n")
	b.WriteString("2. Any risks or warnings? (list them, especially column drops)\n")
	b.WriteString("3. Recommendation (brief 1-2 sentences)\n")
	b.WriteString("\nFormat as JSON with keys: \"is_good\", \"risks\", \"recommendation\"\n")
	return b.String()
}

// verdict is the model's reply with the lenient typing replies come
// back in: is_good may be a bool or a yes/no string, risks may be a
// list or a newline-joined string.
type verdict struct {
	IsGood         json.RawMessage `json:"is_good"`
	Risks          json.RawMessage `json:"risks"`
	Recommendation string          `json:"recommendation"`
}

func parseVerdict(reply string) (*verdict, error) {
	payload := extractJSON(reply)
	v := &verdict{}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return nil, fmt.Errorf("unparsable advisory reply: %w", err)
	}
	return v, nil
}

// extractJSON strips a markdown code fence when the model wraps its
// JSON in one.
func extractJSON(reply string) string {
	if idx := strings.Index(reply, "```json"); idx >= 0 {
		rest := reply[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(reply, "```"); idx >= 0 {
		rest := reply[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	return strings.TrimSpace(reply)
}

func (v *verdict) recommended() bool {
	if len(v.IsGood) == 0 {
		return true
	}
	var b bool
	if err := json.Unmarshal(v.IsGood, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(v.IsGood, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "true", "y":
			return true
		}
		return false
	}
	return true
}

func (v *verdict) warnings() []string {
	if len(v.Risks) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(v.Risks, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(v.Risks, &s); err == nil {
		var out []string
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	}
	return nil
}

func (v *verdict) recommendation() string {
	if v.Recommendation == "" {
		return "Proceed with caution"
	}
	return v.Recommendation
}

// Noop is the advisor used when no API key is configured; it reports
// every step as unavailable.
type Noop struct{}

// Validate always degrades to *core.AdvisoryUnavailableError.
func (Noop) Validate(context.Context, string, string, []string, map[string]any) (*core.Advisory, error) {
	return nil, &core.AdvisoryUnavailableError{Cause: fmt.Errorf("no advisor configured")}
}

var (
	_ core.Advisor = (*Gemini)(nil)
	_ core.Advisor = Noop{}
)

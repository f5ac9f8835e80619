package extractor

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/smartor/case-ledger/internal/core/domain"
	"github.com/smartor/case-ledger/internal/port"
)

const defaultModel = "gemini-2.0-flash"

// GeminiExtractor delegates natural-language understanding to the Gemini
// API. It is the only component allowed to see unstructured model output;
// everything past this boundary is typed.
type GeminiExtractor struct {
	client *genai.Client
	model  string
}

func NewGeminiExtractor(ctx context.Context, apiKey, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model}, nil
}

const extractInstruction = `You are transcribing consumable-material usage in an operating room.
From the input, extract every (item, quantity) pair.
Item names must be copied verbatim from this catalog when they match:
%s
Respond with ONLY a strict JSON array, no prose, no code fences:
[{"item": "...", "qty": ...}]`

func (g *GeminiExtractor) Extract(ctx context.Context, u port.Utterance, knownItems []string) ([]domain.Candidate, error) {
	instruction := fmt.Sprintf(extractInstruction, strings.Join(knownItems, ", "))

	parts := []*genai.Part{genai.NewPartFromText(instruction)}
	if u.IsVoice() {
		parts = append(parts, genai.NewPartFromBytes(u.Audio, u.AudioMIME))
	} else {
		parts = append(parts, genai.NewPartFromText("Input: "+u.Text))
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini extraction: %w", err)
	}

	return ParseCandidates(resp.Text())
}

func (g *GeminiExtractor) SummarizeCase(ctx context.Context, surgeon, procedure string, totals domain.CaseTotals, entries []domain.LogEntry) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize operating-room case %s: procedure %q by %s.\n", totals.CaseID, procedure, surgeon)
	fmt.Fprintf(&b, "Recorded entries: %d, total material cost: %s.\n", totals.EntryCount, totals.TotalCost.StringFixed(2))
	for category, cost := range totals.CostByCategory {
		fmt.Fprintf(&b, "- %s: %s\n", category, cost.StringFixed(2))
	}
	b.WriteString("Timeline (newest first):\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s] %s x%s (%s)\n", e.Source, e.Item, e.Qty.String(), e.Cost.StringFixed(2))
	}
	b.WriteString("Provide ICD-10 and ICD-9-CM codes and a short material cost review as a table.")

	return g.generateText(ctx, b.String())
}

func (g *GeminiExtractor) SuggestPickList(ctx context.Context, surgeon, procedure string) (string, error) {
	prompt := fmt.Sprintf(
		"As an expert operating-room nurse: %s is about to perform %q. "+
			"Recommend the consumable pick list to prepare, with preliminary ICD-10 and ICD-9-CM codes.",
		surgeon, procedure)
	return g.generateText(ctx, prompt)
}

func (g *GeminiExtractor) generateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no completion returned")
	}
	return text, nil
}

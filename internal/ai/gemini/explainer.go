package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/intern-matcher/internal/ai"
	"github.com/spigell/intern-matcher/internal/matching"
	"github.com/spigell/intern-matcher/internal/util"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxSuggestions      = 3
	systemInstruction   = "You explain deterministic internship rankings. Answer with JSON only."
)

// Explainer produces ai.Explanation values with Gemini.
type Explainer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Explainer = (*Explainer)(nil)

func NewExplainer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Explainer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Explainer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

type candidatePayload struct {
	ID                string   `json:"id"`
	Skills            []string `json:"skills"`
	Location          string   `json:"location,omitempty"`
	SectorInterest    string   `json:"sector_interest,omitempty"`
	Category          string   `json:"category,omitempty"`
	PastParticipation bool     `json:"past_participation"`
	Qualification     string   `json:"qualification,omitempty"`
}

type matchPayload struct {
	InternshipID   string   `json:"internship_id"`
	Rank           int      `json:"rank"`
	Score          float64  `json:"score"`
	Sector         string   `json:"sector,omitempty"`
	Location       string   `json:"location,omitempty"`
	RequiredSkills []string `json:"required_skills"`
	MatchedSkills  []string `json:"matched_skills"`
}

func (e *Explainer) Explain(ctx context.Context, candidate matching.Candidate, results []matching.MatchResult) (*ai.Explanation, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("gemini explainer has no generator")
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("candidate %s has no ranked internships to explain", candidate.ID)
	}

	prompt, err := buildPrompt(candidate, results)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content request",
		zap.String("candidate_id", candidate.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.String("candidate_id", candidate.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, e.maxLogLen)),
	)

	explanation, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	explanation.CandidateID = candidate.ID
	explanation.Raw = raw
	return explanation, nil
}

func buildPrompt(candidate matching.Candidate, results []matching.MatchResult) (string, error) {
	category := ""
	if candidate.Category != matching.CategoryUnknown {
		category = candidate.Category.String()
	}

	candidateJSON, err := json.MarshalIndent(candidatePayload{
		ID:                candidate.ID,
		Skills:            nonNil(candidate.Skills),
		Location:          candidate.Location,
		SectorInterest:    candidate.SectorInterest,
		Category:          category,
		PastParticipation: candidate.PastParticipation,
		Qualification:     candidate.Qualification,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate payload: %w", err)
	}

	matches := make([]matchPayload, 0, len(results))
	for _, r := range results {
		matches = append(matches, matchPayload{
			InternshipID:   r.InternshipID,
			Rank:           r.Rank,
			Score:          r.Score,
			Sector:         r.Sector,
			Location:       r.Location,
			RequiredSkills: nonNil(r.RequiredSkills),
			MatchedSkills:  nonNil(r.Breakdown.MatchedSkills),
		})
	}
	matchesJSON, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal matches payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Candidate:\n{{CANDIDATE_JSON}}\n\nMatches:\n{{MATCHES_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{CANDIDATE_JSON}}", string(candidateJSON))
	prompt = strings.ReplaceAll(prompt, "{{MATCHES_JSON}}", string(matchesJSON))
	return prompt, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func parseResponse(raw string) (*ai.Explanation, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	summary := coerceString(data["summary"])
	if summary == "" {
		return nil, fmt.Errorf("parse gemini response: summary is empty")
	}

	return &ai.Explanation{
		Summary:     summary,
		Suggestions: coerceStrings(data["suggestions"], maxSuggestions),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// coerceStrings accepts a list or a single newline separated string.
func coerceStrings(v any, limit int) []string {
	var items []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			items = append(items, coerceString(item))
		}
	case string:
		items = strings.Split(val, "\n")
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(item), "-*"))
		if item == "" {
			continue
		}
		result = append(result, item)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

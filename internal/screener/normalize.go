package screener

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/eazyai/screener/internal/extraction"
)

// Composite score weights. The model's own "score" field is ignored; the
// composite is always recomputed so the verdict rests on controlled inputs.
const (
	weightSkills     = 0.35
	weightDomain     = 0.20
	weightExperience = 0.10
	weightJD         = 0.35
)

// normalize turns a raw judge response into a fully populated analysis. The
// JD similarity always comes from the oracle, never from the model. An error
// means the response was not parseable JSON at all; every other defect is
// repaired in place.
func normalize(raw string, contact extraction.Contact, jdRole string, jdSimilarity float64, filename string) (CandidateAnalysis, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return CandidateAnalysis{}, fmt.Errorf("parse judge response: %w", err)
	}

	analysis := CandidateAnalysis{
		Name:  identity(data["name"], contact.Name),
		Email: identity(data["email"], contact.Email),
		Phone: identity(data["phone"], contact.Phone),

		// The judge reads the full JD, so its own role answer wins over
		// the batch-level role when it gave one.
		JDRole: identity(data["jd_role"], jdRole),

		SkillsMatch:     coerceScore(data["skills_match"]),
		DomainMatch:     coerceScore(data["domain_match"]),
		ExperienceMatch: coerceScore(data["experience_match"]),
		JDSimilarity:    jdSimilarity,

		Fitment:      truncateNarrative(coerceString(data["fitment"])),
		Summary5Line: truncateNarrative(coerceString(data["summary_5_lines"])),

		RedFlags:          coerceList(data["red_flags"], maxListItems),
		MissingGaps:       coerceList(data["missing_gaps"], maxListItems),
		FraudDetected:     coerceBool(data["fraud_detected"]),
		ReasonsIfRejected: coerceList(data["reasons_if_rejected"], maxListItems),
		Recommendation:    truncateNarrative(coerceString(data["recommendation"])),
		Highlights:        coerceList(data["highlights"], maxListHighlights),

		Verdict: coerceVerdict(data["verdict"]),

		ResumeFile: filename,
	}

	analysis.Score = compositeScore(analysis)

	if analysis.Fitment == "" {
		analysis.Fitment = defaultFitment(analysis.Score)
	}
	if analysis.Summary5Line == "" {
		analysis.Summary5Line = defaultFitment(analysis.Score)
	}

	return analysis, nil
}

func compositeScore(a CandidateAnalysis) float64 {
	composite := a.SkillsMatch*weightSkills +
		a.DomainMatch*weightDomain +
		a.ExperienceMatch*weightExperience +
		a.JDSimilarity*weightJD
	return round2(composite)
}

func defaultFitment(score float64) string {
	switch {
	case score >= 75:
		return "Strong candidate matching most position requirements."
	case score >= 50:
		return "Potential candidate with partial requirement coverage."
	default:
		return "Limited match against the position requirements."
	}
}

// identity prefers the model's answer but falls back to the value extracted
// from the resume text when the model returned a placeholder.
func identity(v any, extracted string) string {
	s := coerceString(v)
	if isPlaceholder(s) {
		return extracted
	}
	return s
}

func isPlaceholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "none", "null", "empty":
		return true
	}
	return false
}

// extractJSON strips markdown code fences that models habitually wrap JSON
// responses in.
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

// coerceScore accepts numbers or numeric strings and clamps the result into
// [0, 100]. Anything unparseable scores 0.
func coerceScore(v any) float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return round2(f)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
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

// listDelimiters is tried in priority order when a list arrives as a single
// delimited string.
var listDelimiters = []string{";", ",", "\n", "|"}

// coerceList accepts a native array, a delimited string, or garbage, and
// always produces a clean capped slice. Placeholder entries are dropped.
func coerceList(v any, limit int) []string {
	var items []string

	switch val := v.(type) {
	case []any:
		for _, item := range val {
			items = append(items, coerceString(item))
		}
	case []string:
		items = val
	case string:
		items = splitDelimited(val)
	default:
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if isPlaceholder(item) {
			continue
		}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}

	return out
}

func splitDelimited(s string) []string {
	for _, delim := range listDelimiters {
		if strings.Contains(s, delim) {
			return strings.Split(s, delim)
		}
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []string{s}
}

func coerceVerdict(v any) string {
	switch strings.ToLower(coerceString(v)) {
	case VerdictShortlist:
		return VerdictShortlist
	case VerdictReject:
		return VerdictReject
	default:
		return VerdictReview
	}
}

func truncateNarrative(s string) string {
	runes := []rune(s)
	if len(runes) <= maxNarrativeLen {
		return s
	}
	return string(runes[:maxNarrativeLen]) + "..."
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package screener

import (
	"strings"

	_ "embed"
)

//go:embed prompt.md
var promptTemplate string

// jdPromptLimit bounds how much JD text goes into each evaluation prompt.
// The similarity oracle already compares the full texts; the judge only
// needs enough context to score against.
const jdPromptLimit = 1500

func buildPrompt(cfg JobConfig, resumeExcerpt string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job Description:\n{{JD}}\n\nResume:\n{{RESUME}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{JD}}", truncateRunes(cfg.JD, jdPromptLimit),
		"{{ROLE}}", orUnset(cfg.Role),
		"{{DOMAIN}}", orUnset(cfg.Domain),
		"{{SKILLS}}", orUnset(cfg.Skills),
		"{{EXPERIENCE_RANGE}}", orUnset(cfg.ExperienceRange),
		"{{RESUME}}", resumeExcerpt,
	)

	return replacer.Replace(template)
}

func orUnset(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

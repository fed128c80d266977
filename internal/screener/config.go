package screener

import "fmt"

// Default verdict thresholds. A sub-score falling below its minimum forces a
// rejection regardless of the composite score.
const (
	defaultJDThreshold         = 60
	defaultSkillsThreshold     = 65
	defaultDomainThreshold     = 50
	defaultExperienceThreshold = 55
	defaultShortlistThreshold  = 75
	defaultRejectThreshold     = 40
)

// JobConfig describes the position a batch of resumes is screened against.
type JobConfig struct {
	JD              string `json:"jd" mapstructure:"jd"`
	Role            string `json:"role" mapstructure:"role"`
	Domain          string `json:"domain" mapstructure:"domain"`
	Skills          string `json:"skills" mapstructure:"skills"`
	ExperienceRange string `json:"experience_range" mapstructure:"experience_range"`

	JDThreshold         float64 `json:"jd_threshold" mapstructure:"jd_threshold"`
	SkillsThreshold     float64 `json:"skills_threshold" mapstructure:"skills_threshold"`
	DomainThreshold     float64 `json:"domain_threshold" mapstructure:"domain_threshold"`
	ExperienceThreshold float64 `json:"experience_threshold" mapstructure:"experience_threshold"`
	ShortlistThreshold  float64 `json:"shortlist_threshold" mapstructure:"shortlist_threshold"`
	RejectThreshold     float64 `json:"reject_threshold" mapstructure:"reject_threshold"`

	// TopN forces the N highest-scoring candidates to "shortlist" after
	// per-candidate classification. Zero disables the override.
	TopN int `json:"top_n" mapstructure:"top_n"`
}

// DefaultJobConfig returns a config with standard thresholds and no JD. The
// caller must still set JD before use.
func DefaultJobConfig() JobConfig {
	return JobConfig{
		ExperienceRange:     "0-1 yrs",
		JDThreshold:         defaultJDThreshold,
		SkillsThreshold:     defaultSkillsThreshold,
		DomainThreshold:     defaultDomainThreshold,
		ExperienceThreshold: defaultExperienceThreshold,
		ShortlistThreshold:  defaultShortlistThreshold,
		RejectThreshold:     defaultRejectThreshold,
	}
}

// Validate rejects configs that cannot produce a meaningful verdict.
func (c JobConfig) Validate() error {
	if c.JD == "" {
		return fmt.Errorf("job description is required")
	}
	if c.TopN < 0 {
		return fmt.Errorf("top_n must not be negative, got %d", c.TopN)
	}

	thresholds := map[string]float64{
		"jd_threshold":         c.JDThreshold,
		"skills_threshold":     c.SkillsThreshold,
		"domain_threshold":     c.DomainThreshold,
		"experience_threshold": c.ExperienceThreshold,
		"shortlist_threshold":  c.ShortlistThreshold,
		"reject_threshold":     c.RejectThreshold,
	}
	for name, v := range thresholds {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be within [0, 100], got %v", name, v)
		}
	}

	return nil
}

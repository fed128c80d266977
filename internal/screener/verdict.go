package screener

import "sort"

// hardExperienceFloor rejects regardless of configured thresholds. It backs
// the prompt rule that grossly mismatched experience is disqualifying.
const hardExperienceFloor = 40

// classifyVerdicts assigns final verdicts to all candidates. Without a TopN
// override the input order is preserved; with one, candidates are re-ranked
// by score descending and the first TopN are forced to "shortlist". The
// model's own verdict is advisory only; thresholds always win.
func classifyVerdicts(candidates []CandidateAnalysis, cfg JobConfig) []CandidateAnalysis {
	out := make([]CandidateAnalysis, len(candidates))
	copy(out, candidates)

	for i := range out {
		out[i].Verdict = classify(out[i], cfg)
	}

	if cfg.TopN > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score > out[j].Score
		})
		for i := 0; i < cfg.TopN && i < len(out); i++ {
			out[i].Verdict = VerdictShortlist
		}
	}

	return out
}

func classify(c CandidateAnalysis, cfg JobConfig) string {
	if c.ExperienceMatch < hardExperienceFloor {
		return VerdictReject
	}

	belowMinimum := c.JDSimilarity < cfg.JDThreshold ||
		c.SkillsMatch < cfg.SkillsThreshold ||
		c.DomainMatch < cfg.DomainThreshold ||
		c.ExperienceMatch < cfg.ExperienceThreshold

	if belowMinimum || c.Score < cfg.RejectThreshold {
		return VerdictReject
	}

	if c.Score >= cfg.ShortlistThreshold {
		return VerdictShortlist
	}

	return VerdictReview
}

// countVerdicts tallies the final verdict distribution.
func countVerdicts(candidates []CandidateAnalysis) (shortlisted, inReview, rejected int) {
	for _, c := range candidates {
		switch c.Verdict {
		case VerdictShortlist:
			shortlisted++
		case VerdictReject:
			rejected++
		default:
			inReview++
		}
	}
	return shortlisted, inReview, rejected
}

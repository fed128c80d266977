package screener

// Verdict values assigned to a screened candidate.
const (
	VerdictShortlist = "shortlist"
	VerdictReview    = "review"
	VerdictReject    = "reject"
)

// Caps applied during normalization. Oversized model output is trimmed, not
// rejected.
const (
	maxListHighlights = 15
	maxListItems      = 10
	maxNarrativeLen   = 500
)

// CandidateAnalysis is one screened resume. Every field is guaranteed to be
// populated after normalization: scores are clamped to [0,100], lists are
// capped and narrative fields fall back to score-based defaults.
type CandidateAnalysis struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	JDRole string `json:"jd_role"`

	SkillsMatch     float64 `json:"skills_match"`
	DomainMatch     float64 `json:"domain_match"`
	ExperienceMatch float64 `json:"experience_match"`
	JDSimilarity    float64 `json:"jd_similarity"`
	Score           float64 `json:"score"`

	Fitment      string `json:"fitment"`
	Summary5Line string `json:"summary_5_lines"`

	RedFlags          []string `json:"red_flags"`
	MissingGaps       []string `json:"missing_gaps"`
	FraudDetected     bool     `json:"fraud_detected"`
	ReasonsIfRejected []string `json:"reasons_if_rejected"`
	Recommendation    string   `json:"recommendation"`
	Highlights        []string `json:"highlights"`

	Verdict string `json:"verdict"`

	ResumeFile     string  `json:"resume_file"`
	ProcessingTime float64 `json:"processing_time"`
	RecruiterNotes string  `json:"recruiter_notes"`
}

// BatchResult is the outcome of screening one batch of resumes.
type BatchResult struct {
	SessionID  string              `json:"session_id"`
	Candidates []CandidateAnalysis `json:"candidates"`

	TotalResumes int `json:"total_resumes"`
	Shortlisted  int `json:"shortlisted"`
	InReview     int `json:"in_review"`
	Rejected     int `json:"rejected"`

	ProcessingTime   float64 `json:"processing_time"`
	AvgTimePerResume float64 `json:"avg_time_per_resume"`
}

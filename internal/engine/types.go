package engine

import "time"

// --- Tool input ---

// MatchInput is the raw argument set shared by both matching tools.
// Numeric optionals are pointers: zero experience and an absent field
// must stay distinguishable.
type MatchInput struct {
	ResumeText     string `json:"resumeText" jsonschema:"Plain resume text to match against job postings"`
	UserExperience *int   `json:"userExperience,omitempty" jsonschema:"Total years of professional experience (0-50)"`
	Keywords       string `json:"keywords,omitempty" jsonschema:"Comma-separated skill or title filters (e.g. golang, kubernetes, backend)"`
	Location       string `json:"location,omitempty" jsonschema:"Comma-separated location filters (e.g. Berlin, Remote, United States)"`
	StartDate      string `json:"startDate,omitempty" jsonschema:"Earliest posting date, YYYY-MM-DD; must be paired with endDate"`
	EndDate        string `json:"endDate,omitempty" jsonschema:"Latest posting date, YYYY-MM-DD; must be paired with startDate"`
	Page           *int   `json:"page,omitempty" jsonschema:"Result page to fetch (1-1000)"`
	SortBy         string `json:"sortBy,omitempty" jsonschema:"Sort order: similarity (default) or date"`
}

// ToolRequest is the sanitized form of MatchInput, produced only after
// validation passes: fields trimmed, empty strings meaning absent,
// sortBy lower-cased.
type ToolRequest struct {
	ResumeText     string
	UserExperience *int
	Keywords       string
	Location       string
	StartDate      string
	EndDate        string
	Page           *int
	SortBy         string
}

// --- Backend wire types ---

// BackendResponse is the job-matching backend payload on success.
type BackendResponse struct {
	Matches         []JobMatch       `json:"matches"`
	TotalMatches    int              `json:"total_matches"`
	Page            int              `json:"page"`
	TotalPages      int              `json:"total_pages"`
	HasMore         bool             `json:"has_more"`
	ExtractedSkills []string         `json:"extracted_skills"`
	UserExperience  int              `json:"user_experience"`
	Processing      ResumeProcessing `json:"resume_processing"`
}

// ResumeProcessing describes how the backend handled the uploaded resume.
type ResumeProcessing struct {
	Filename        string `json:"filename"`
	ParsingMethod   string `json:"parsing_method"`
	EnhancementUsed bool   `json:"enhancement_used"`
	OriginalLength  int    `json:"original_length"`
	EnhancedLength  int    `json:"enhanced_length"`
}

// JobMatch is one backend-supplied match, read-only.
type JobMatch struct {
	JobTitle           string  `json:"job_title"`
	CompanyName        string  `json:"company_name"`
	Location           string  `json:"location"`
	SimilarityScore    float64 `json:"similarity_score"`
	JobLink            string  `json:"job_link"`
	FirstPublished     string  `json:"first_published"`
	MinExperienceYears *int    `json:"min_experience_years"`
	Salary             string  `json:"salary"`
	JobType            string  `json:"job_type"`
	ChunkText          string  `json:"chunk_text"`
}

// --- Display types ---

// NormalizedJob is the display-ready projection of one match. The ID falls
// back to company+title+index and is not unique across backend calls;
// nothing may key on it.
type NormalizedJob struct {
	ID              string
	Title           string
	Company         string
	Location        string
	MatchPercent    int
	Band            string // high, medium, low
	ApplyURL        string
	PostedRelative  string
	ExperienceLabel string
	Salary          string
	JobType         string
	Description     string
	Skills          []string
	SummaryPoints   []string
}

// MatchReport is the transformer output: jobs in backend order plus
// pass-through metadata. Owned by one render call, never persisted.
type MatchReport struct {
	Jobs       []NormalizedJob
	Meta       ReportMeta
	Processing ResumeProcessing
}

// ReportMeta carries backend pagination and extraction fields plus the
// rate-limit quota as of this call.
type ReportMeta struct {
	Total      int
	Page       int
	TotalPages int
	HasMore    bool
	Skills     []string
	Experience int
	Keywords   string
	Quota      Decision
}

// --- Artifact envelope ---

// Envelope is the uniform JSON wrapper returned to the calling client.
// Every path — success, validation error, rate limit, backend error —
// produces this same shape.
type Envelope struct {
	RenderAsArtifact   bool         `json:"render_as_artifact"`
	SuppressCommentary bool         `json:"suppress_commentary"`
	Artifact           Artifact     `json:"artifact"`
	Content            string       `json:"content"`
	Metadata           EnvelopeMeta `json:"metadata"`
	Performance        Performance  `json:"performance"`
}

// Artifact tells the calling client how to render Content.
type Artifact struct {
	Type  string `json:"type"` // always text/markdown
	ID    string `json:"id"`
	Title string `json:"title"`
}

// EnvelopeMeta summarizes the call outcome for programmatic consumers.
type EnvelopeMeta struct {
	Tool            string     `json:"tool"`
	Status          string     `json:"status"`
	TotalMatches    int        `json:"total_matches"`
	Page            int        `json:"page"`
	TotalPages      int        `json:"total_pages"`
	HasMore         bool       `json:"has_more"`
	ExtractedSkills []string   `json:"extracted_skills,omitempty"`
	UserExperience  *int       `json:"user_experience,omitempty"`
	Error           *ErrorInfo `json:"error,omitempty"`
}

// Envelope status values.
const (
	StatusSuccess        = "success"
	StatusValidation     = "validation_error"
	StatusRateLimited    = "rate_limited"
	StatusBackendError   = "backend_error"
	StatusTransportError = "transport_error"
)

// ErrorInfo mirrors the error taxonomy in envelope metadata.
type ErrorInfo struct {
	Type   string   `json:"type"`
	Status int      `json:"status,omitempty"` // upstream HTTP status, backend errors only
	Detail []string `json:"detail,omitempty"` // validation rule violations
}

// Performance carries per-call diagnostics.
type Performance struct {
	RequestID  string    `json:"request_id"`
	DurationMS int64     `json:"duration_ms"`
	RateLimit  QuotaInfo `json:"rate_limit"`
}

// QuotaInfo is the rate-limit view exposed to callers.
type QuotaInfo struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

package engine

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func sampleReport(n int) *MatchReport {
	jobs := make([]NormalizedJob, 0, n)
	for i := 0; i < n; i++ {
		jobs = append(jobs, NormalizedJob{
			ID:              fmt.Sprintf("job_role-%d_%d", i, i),
			Title:           fmt.Sprintf("Backend Engineer %d", i),
			Company:         fmt.Sprintf("Company %d", i),
			Location:        "Berlin",
			MatchPercent:    90 - i,
			Band:            BandHigh,
			ApplyURL:        fmt.Sprintf("https://jobs.example.com/role-%d", i),
			PostedRelative:  "Today",
			ExperienceLabel: "3 years",
			Skills:          []string{"Go", "SQL"},
			SummaryPoints:   []string{"Build services", "Own deployments"},
		})
	}
	return &MatchReport{
		Jobs: jobs,
		Meta: ReportMeta{
			Total:      n,
			Page:       1,
			TotalPages: 1,
			Skills:     []string{"Go", "SQL"},
			Quota:      Decision{Allowed: true, Remaining: 9, Limit: 10, ResetTime: time.Now()},
		},
		Processing: ResumeProcessing{
			Filename:       "resume.txt",
			ParsingMethod:  "text",
			OriginalLength: 900,
			EnhancedLength: 900,
		},
	}
}

// indexRows re-parses the match index table out of rendered markdown.
func indexRows(t *testing.T, markdown string) [][]string {
	t.Helper()
	idx := strings.Index(markdown, "## 🗂️ Match Index")
	if idx < 0 {
		t.Fatalf("no index section in document:\n%s", markdown)
	}

	var rows [][]string
	lines := strings.Split(markdown[idx:], "\n")
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, "|") {
			if len(rows) > 0 {
				break
			}
			continue
		}
		cells := strings.Split(strings.Trim(line, "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, cells)
	}
	if len(rows) < 2 {
		t.Fatalf("index table too short: %d rows", len(rows))
	}
	return rows[2:] // drop header and separator
}

func TestIndexTableRoundTrip(t *testing.T) {
	const n = 7
	report := sampleReport(n)
	md := MatchDocument(report, ModeIndexOnly).Markdown()

	rows := indexRows(t, md)
	if len(rows) != n {
		t.Fatalf("parsed %d rows, want %d", len(rows), n)
	}
	// The renderer must keep caller order: rank i+1 in row i.
	for i, row := range rows {
		if row[0] != fmt.Sprint(i+1) {
			t.Errorf("row %d rank = %q, want %d", i, row[0], i+1)
		}
		if want := fmt.Sprintf("Company %d", i); row[1] != want {
			t.Errorf("row %d company = %q, want %q", i, row[1], want)
		}
	}
}

func TestMatchDocumentModes(t *testing.T) {
	report := sampleReport(2)

	full := MatchDocument(report, ModeFull).Markdown()
	if !strings.Contains(full, "# 🎯 Resume Match Results") {
		t.Error("full document missing title")
	}
	if !strings.Contains(full, "### 1. Backend Engineer 0 — Company 0") {
		t.Error("full document missing per-job detail section")
	}
	if !strings.Contains(full, "🛠️ Required Skills") {
		t.Error("full document missing skills section")
	}
	if !strings.Contains(full, "⚙️ Processing Summary") {
		t.Error("full document missing processing summary")
	}

	index := MatchDocument(report, ModeIndexOnly).Markdown()
	if !strings.Contains(index, "# 📋 Jobs To Apply") {
		t.Error("index document missing title")
	}
	if strings.Contains(index, "### 1.") {
		t.Error("index document must not contain detail sections")
	}
	if !strings.Contains(index, "⚙️ Processing Summary") {
		t.Error("index document missing processing summary")
	}
}

func TestMatchDocumentEmpty(t *testing.T) {
	report := sampleReport(0)

	for _, mode := range []string{ModeFull, ModeIndexOnly} {
		md := MatchDocument(report, mode).Markdown()
		if !strings.Contains(md, "# 🔍 No Matching Jobs Found") {
			t.Errorf("mode %s: missing no-matches title", mode)
		}
		if !strings.Contains(md, "🤔 Possible Causes") || !strings.Contains(md, "🛠️ Troubleshooting Tips") {
			t.Errorf("mode %s: missing troubleshooting content", mode)
		}
		if !strings.Contains(md, "🔜 Coming Soon") {
			t.Errorf("mode %s: missing coming-soon note", mode)
		}
	}
}

func TestValidationDocument(t *testing.T) {
	md := ValidationDocument([]string{"resumeText is required", "page must be between 1 and 1000"}).Markdown()
	if !strings.Contains(md, "# ⚠️ Invalid Request") {
		t.Error("missing title")
	}
	if !strings.Contains(md, "- resumeText is required") {
		t.Error("missing violation bullet")
	}
}

func TestRateLimitDocument(t *testing.T) {
	reset := time.Date(2026, 8, 25, 12, 30, 0, 0, time.UTC)
	md := RateLimitDocument(Decision{Limit: 10, RequestCount: 10, ResetTime: reset}).Markdown()
	if !strings.Contains(md, "# ⏳ Rate Limit Reached") {
		t.Error("missing title")
	}
	if !strings.Contains(md, "2026-08-25T12:30:00Z") {
		t.Errorf("missing reset time, got:\n%s", md)
	}
}

func TestBackendErrorDocumentByStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantTitle string
	}{
		{401, "# 🔐 Authentication Failed"},
		{400, "# 📄 File Processing Failed"},
		{413, "# 📦 Resume Too Large"},
		{422, "# 🧾 Invalid Parameters"},
		{500, "# 💥 Backend Server Error"},
		{503, "# ❓ Unexpected Backend Response"},
	}
	for _, tt := range tests {
		md := BackendErrorDocument(tt.status, nil).Markdown()
		if !strings.Contains(md, tt.wantTitle) {
			t.Errorf("status %d: missing %q in:\n%s", tt.status, tt.wantTitle, md)
		}
	}
}

func TestBackendErrorDocumentDumpsDetail(t *testing.T) {
	md := BackendErrorDocument(422, map[string]any{"detail": "page out of range"}).Markdown()
	if !strings.Contains(md, "```json") || !strings.Contains(md, "page out of range") {
		t.Errorf("422 document missing detail dump:\n%s", md)
	}
}

package engine

import (
	"testing"
	"time"
)

func TestMatchPercent(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0.873, 87},
		{0.875, 88},
		{0.999, 100},
		{1.0, 100},
		{0.404, 40},
		{0, 0},
	}
	for _, tt := range tests {
		if got := matchPercent(tt.score); got != tt.want {
			t.Errorf("matchPercent(%v) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestMatchBand(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{100, BandHigh},
		{70, BandHigh},
		{69, BandMedium},
		{40, BandMedium},
		{39, BandLow},
		{0, BandLow},
	}
	for _, tt := range tests {
		if got := matchBand(tt.percent); got != tt.want {
			t.Errorf("matchBand(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}

func TestJobID(t *testing.T) {
	tests := []struct {
		name  string
		match JobMatch
		index int
		want  string
	}{
		{
			name:  "slug from link path",
			match: JobMatch{JobLink: "https://example.com/jobs/senior-go-engineer"},
			index: 0,
			want:  "job_senior-go-engineer_0",
		},
		{
			name:  "trailing slash ignored",
			match: JobMatch{JobLink: "https://example.com/jobs/backend-dev/"},
			index: 2,
			want:  "job_backend-dev_2",
		},
		{
			name:  "company and title fallback",
			match: JobMatch{CompanyName: "Acme Corp", JobTitle: "Go Engineer"},
			index: 3,
			want:  "job_acme_corp_go_engineer_3",
		},
		{
			name:  "bare origin falls back",
			match: JobMatch{JobLink: "https://example.com/", CompanyName: "Acme", JobTitle: "Dev"},
			index: 1,
			want:  "job_acme_dev_1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jobID(tt.match, tt.index); got != tt.want {
				t.Errorf("jobID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelativeDateLabel(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  string
	}{
		{"2025-06-15", "Today"},
		{"2025-06-14", "Yesterday"},
		{"2025-06-12", "3 days ago"},
		{"2025-06-08", "1 week ago"},
		{"2025-06-01", "2 weeks ago"},
		{"2025-05-16", "1 month ago"},
		{"2025-01-15", "5 months ago"},
		{"2024-06-20", "12 months ago"},
		{"2024-06-14", "June 14, 2024"},
		{"2025-06-13T08:30:00Z", "2 days ago"},
		{"not-a-date", "Recently posted"},
		{"", "Recently posted"},
	}
	for _, tt := range tests {
		if got := relativeDateLabel(tt.value, now); got != tt.want {
			t.Errorf("relativeDateLabel(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestExperienceLabel(t *testing.T) {
	if got := experienceLabel(nil); got != "Not specified" {
		t.Errorf("experienceLabel(nil) = %q, want %q", got, "Not specified")
	}
	if got := experienceLabel(intptr(5)); got != "5 years" {
		t.Errorf("experienceLabel(5) = %q, want %q", got, "5 years")
	}
	if got := experienceLabel(intptr(0)); got != "0 years" {
		t.Errorf("experienceLabel(0) = %q, want %q", got, "0 years")
	}
}

func TestTransform(t *testing.T) {
	resp := &BackendResponse{
		Matches: []JobMatch{
			{
				JobTitle:        "Senior Go Engineer",
				CompanyName:     "Acme",
				Location:        "Berlin",
				SimilarityScore: 0.873,
				JobLink:         "https://example.com/jobs/senior-go-engineer",
				ChunkText:       "Job Summary: Build services. Required Skills: Go, Kubernetes",
			},
			{
				JobTitle:           "Data Engineer",
				CompanyName:        "Globex",
				SimilarityScore:    0.41,
				MinExperienceYears: intptr(3),
			},
		},
		TotalMatches:    27,
		Page:            2,
		TotalPages:      3,
		HasMore:         true,
		ExtractedSkills: []string{"go", "sql"},
		UserExperience:  6,
		Processing:      ResumeProcessing{Filename: "resume.txt", ParsingMethod: "text", OriginalLength: 900},
	}
	quota := Decision{Allowed: true, Remaining: 7, Limit: 10}
	report := Transform(resp, ToolRequest{Keywords: "golang, backend"}, quota)

	if len(report.Jobs) != 2 {
		t.Fatalf("Transform() produced %d jobs, want 2", len(report.Jobs))
	}
	first, second := report.Jobs[0], report.Jobs[1]
	if first.Title != "Senior Go Engineer" || second.Title != "Data Engineer" {
		t.Errorf("Transform() reordered jobs: %q, %q", first.Title, second.Title)
	}
	if first.MatchPercent != 87 || first.Band != BandHigh {
		t.Errorf("first job percent/band = %d/%q, want 87/%q", first.MatchPercent, first.Band, BandHigh)
	}
	if second.MatchPercent != 41 || second.Band != BandMedium {
		t.Errorf("second job percent/band = %d/%q, want 41/%q", second.MatchPercent, second.Band, BandMedium)
	}
	if first.ID != "job_senior-go-engineer_0" {
		t.Errorf("first job ID = %q", first.ID)
	}
	if len(first.Skills) != 2 || first.Skills[0] != "Go" {
		t.Errorf("first job skills = %v, want [Go Kubernetes]", first.Skills)
	}
	if second.ExperienceLabel != "3 years" {
		t.Errorf("second job experience = %q, want %q", second.ExperienceLabel, "3 years")
	}
	if second.PostedRelative != "Recently posted" {
		t.Errorf("missing date label = %q, want %q", second.PostedRelative, "Recently posted")
	}

	meta := report.Meta
	if meta.Total != 27 || meta.Page != 2 || meta.TotalPages != 3 || !meta.HasMore {
		t.Errorf("meta pagination = %+v", meta)
	}
	if meta.Keywords != "golang, backend" || meta.Experience != 6 {
		t.Errorf("meta pass-through = %+v", meta)
	}
	if meta.Quota.Remaining != 7 {
		t.Errorf("meta quota remaining = %d, want 7", meta.Quota.Remaining)
	}
	if report.Processing.OriginalLength != 900 {
		t.Errorf("processing pass-through = %+v", report.Processing)
	}
}

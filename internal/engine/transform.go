package engine

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// Match banding thresholds over the integer percentage.
const (
	bandHighMin   = 70
	bandMediumMin = 40
)

// Band labels drive the indicator choice in rendering.
const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"
)

// Transform projects a backend response into display-ready jobs plus
// pass-through metadata. Backend ordering is preserved; nothing here
// re-sorts.
func Transform(resp *BackendResponse, req ToolRequest, quota Decision) *MatchReport {
	now := time.Now()
	jobs := make([]NormalizedJob, 0, len(resp.Matches))
	for i, m := range resp.Matches {
		jobs = append(jobs, normalizeJob(m, i, now))
	}
	return &MatchReport{
		Jobs: jobs,
		Meta: ReportMeta{
			Total:      resp.TotalMatches,
			Page:       resp.Page,
			TotalPages: resp.TotalPages,
			HasMore:    resp.HasMore,
			Skills:     resp.ExtractedSkills,
			Experience: resp.UserExperience,
			Keywords:   req.Keywords,
			Quota:      quota,
		},
		Processing: resp.Processing,
	}
}

func normalizeJob(m JobMatch, index int, now time.Time) NormalizedJob {
	percent := matchPercent(m.SimilarityScore)
	return NormalizedJob{
		ID:              jobID(m, index),
		Title:           strings.TrimSpace(m.JobTitle),
		Company:         strings.TrimSpace(m.CompanyName),
		Location:        strings.TrimSpace(m.Location),
		MatchPercent:    percent,
		Band:            matchBand(percent),
		ApplyURL:        strings.TrimSpace(m.JobLink),
		PostedRelative:  relativeDateLabel(m.FirstPublished, now),
		ExperienceLabel: experienceLabel(m.MinExperienceYears),
		Salary:          strings.TrimSpace(m.Salary),
		JobType:         strings.TrimSpace(m.JobType),
		Description:     strings.TrimSpace(m.ChunkText),
		Skills:          ExtractRequiredSkills(m.ChunkText),
		SummaryPoints:   ExtractSummaryPoints(m.ChunkText),
	}
}

func matchPercent(score float64) int {
	return int(math.Round(score * 100))
}

func matchBand(percent int) string {
	switch {
	case percent >= bandHighMin:
		return BandHigh
	case percent >= bandMediumMin:
		return BandMedium
	default:
		return BandLow
	}
}

// jobID builds a display id from the apply link's last path segment,
// falling back to company+title. Not unique across backend calls;
// nothing may key on it.
func jobID(m JobMatch, index int) string {
	slug := linkSlug(m.JobLink)
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(m.CompanyName+"_"+m.JobTitle, " ", "_"))
	}
	return fmt.Sprintf("job_%s_%d", slug, index)
}

func linkSlug(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segs[len(segs)-1]
}

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// relativeDateLabel maps a posting date onto a coarse human label,
// switching to an absolute date past a year. Unparsable or missing
// values read "Recently posted".
func relativeDateLabel(value string, now time.Time) string {
	published, ok := parsePublished(value)
	if !ok {
		return "Recently posted"
	}
	days := int(now.Sub(published).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return agoLabel(days/7, "week")
	case days <= 365:
		return agoLabel(days/30, "month")
	default:
		return published.Format("January 2, 2006")
	}
}

func parsePublished(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func agoLabel(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func experienceLabel(years *int) string {
	if years == nil {
		return "Not specified"
	}
	return fmt.Sprintf("%d years", *years)
}

package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/resumatch/resumatch-mcp/internal/engine/render"
)

// Render modes for match documents.
const (
	ModeFull      = "full"
	ModeIndexOnly = "index-only"
)

// Band indicators for match tables.
func bandIndicator(band string) string {
	switch band {
	case BandHigh:
		return "🟢"
	case BandMedium:
		return "🟡"
	default:
		return "🔴"
	}
}

// MatchDocument builds the success document for a report. ModeFull adds a
// detail section per job; ModeIndexOnly stops after the index table. A
// report with no jobs yields the fixed no-matches document in either mode.
func MatchDocument(report *MatchReport, mode string) render.Document {
	if len(report.Jobs) == 0 {
		return emptyDocument(report)
	}

	title := "🎯 Resume Match Results"
	if mode == ModeIndexOnly {
		title = "📋 Jobs To Apply"
	}

	doc := render.Document{Title: title}
	doc.Sections = append(doc.Sections, summarySections(report)...)
	doc.Sections = append(doc.Sections, indexSections(report.Jobs)...)

	if mode == ModeFull {
		for i, job := range report.Jobs {
			doc.Sections = append(doc.Sections, jobDetailSections(job, i+1)...)
		}
	}

	doc.Sections = append(doc.Sections, processingSections(report.Processing)...)
	doc.Sections = append(doc.Sections, backendMetaSections(report.Meta)...)
	return doc
}

func summarySections(report *MatchReport) []render.Section {
	m := report.Meta

	skills := "None detected"
	if len(m.Skills) > 0 {
		skills = TruncateRunes(strings.Join(m.Skills, ", "), 200, "…")
	}
	experience := "Not provided"
	if m.Experience > 0 {
		experience = fmt.Sprintf("%d years", m.Experience)
	}
	keywords := "None"
	if m.Keywords != "" {
		keywords = m.Keywords
	}

	return []render.Section{
		render.Heading{Text: "📊 Match Summary"},
		render.Fields{Pairs: [][2]string{
			{"Total Matches", strconv.Itoa(m.Total)},
			{"Page", fmt.Sprintf("%d of %d", m.Page, m.TotalPages)},
			{"Extracted Skills", skills},
			{"Your Experience", experience},
			{"Keywords", keywords},
			{"Requests Remaining", fmt.Sprintf("%d of %d", m.Quota.Remaining, m.Quota.Limit)},
		}},
	}
}

// indexHeader is the fixed column set of the match index table.
var indexHeader = []string{"#", "Company", "Title", "Match", "Location", "Experience", "Posted", "Apply"}

func indexSections(jobs []NormalizedJob) []render.Section {
	rows := make([][]string, 0, len(jobs))
	for i, j := range jobs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			j.Company,
			j.Title,
			fmt.Sprintf("%s %d%%", bandIndicator(j.Band), j.MatchPercent),
			j.Location,
			j.ExperienceLabel,
			j.PostedRelative,
			render.Link("Apply", j.ApplyURL),
		})
	}
	return []render.Section{
		render.Heading{Text: "🗂️ Match Index"},
		render.Table{Header: indexHeader, Rows: rows},
	}
}

func jobDetailSections(j NormalizedJob, rank int) []render.Section {
	salary := j.Salary
	if salary == "" {
		salary = "Not specified"
	}
	jobType := j.JobType
	if jobType == "" {
		jobType = "Not specified"
	}

	sections := []render.Section{
		render.Heading{Level: 3, Text: fmt.Sprintf("%d. %s — %s", rank, j.Title, j.Company)},
		render.Fields{Pairs: [][2]string{
			{"Match", fmt.Sprintf("%s %d%% (%s)", bandIndicator(j.Band), j.MatchPercent, j.Band)},
			{"Location", j.Location},
			{"Salary", salary},
			{"Job Type", jobType},
			{"Posted", j.PostedRelative},
			{"Experience", j.ExperienceLabel},
			{"Apply", render.Link(j.ID, j.ApplyURL)},
		}},
	}

	if len(j.Skills) > 0 {
		sections = append(sections,
			render.Heading{Level: 4, Text: "🛠️ Required Skills"},
			render.Bullets{Items: j.Skills},
		)
	}
	if len(j.SummaryPoints) > 0 {
		sections = append(sections,
			render.Heading{Level: 4, Text: "📝 Job Summary"},
			render.Bullets{Items: j.SummaryPoints},
		)
	}
	// Raw description stands in when the chunk text had no markers to mine.
	if len(j.Skills) == 0 && len(j.SummaryPoints) == 0 && j.Description != "" {
		sections = append(sections,
			render.Heading{Level: 4, Text: "📝 Description"},
			render.Paragraph(TruncateAtWord(j.Description, 300)),
		)
	}
	return sections
}

func processingSections(p ResumeProcessing) []render.Section {
	enhanced := "No"
	if p.EnhancementUsed {
		enhanced = "Yes"
	}
	return []render.Section{
		render.Heading{Text: "⚙️ Processing Summary"},
		render.Fields{Pairs: [][2]string{
			{"Filename", p.Filename},
			{"Parsing Method", p.ParsingMethod},
			{"Enhancement Used", enhanced},
			{"Original Length", fmt.Sprintf("%d characters", p.OriginalLength)},
			{"Enhanced Length", fmt.Sprintf("%d characters", p.EnhancedLength)},
		}},
	}
}

func backendMetaSections(m ReportMeta) []render.Section {
	hasMore := "No"
	if m.HasMore {
		hasMore = "Yes"
	}
	return []render.Section{
		render.Heading{Text: "📡 Backend Metadata"},
		render.Fields{Pairs: [][2]string{
			{"Page", strconv.Itoa(m.Page)},
			{"Total Pages", strconv.Itoa(m.TotalPages)},
			{"More Results", hasMore},
		}},
	}
}

// emptyDocument is the fixed zero-matches document, identical for both
// tool modes.
func emptyDocument(report *MatchReport) render.Document {
	doc := render.Document{Title: "🔍 No Matching Jobs Found"}
	doc.Sections = append(doc.Sections,
		render.Paragraph("The backend processed your resume but found no job postings matching your profile and filters."),
		render.Heading{Text: "🤔 Possible Causes"},
		render.Bullets{Items: []string{
			"Filters (keywords, location, date range) are too narrow",
			"The resume text is missing the skills recruiters search for",
			"Few postings in this niche were indexed recently",
		}},
		render.Heading{Text: "🛠️ Troubleshooting Tips"},
		render.Bullets{Items: []string{
			"Drop or broaden the keywords and location filters",
			"Widen the date range, or remove startDate/endDate entirely",
			"Add a skills section with concrete technologies to the resume",
			"Try sortBy=date to surface the freshest postings",
		}},
	)
	doc.Sections = append(doc.Sections, processingSections(report.Processing)...)
	doc.Sections = append(doc.Sections,
		render.Heading{Text: "🔜 Coming Soon"},
		render.Paragraph("Saved-search alerts will notify you when new postings match this resume."),
	)
	return doc
}

// ValidationDocument lists every rule violation found in the request.
func ValidationDocument(violations []string) render.Document {
	return render.Document{
		Title: "⚠️ Invalid Request",
		Sections: []render.Section{
			render.Paragraph("The request was rejected before any matching was attempted."),
			render.Heading{Text: "🚫 Problems Found"},
			render.Bullets{Items: violations},
			render.Heading{Text: "🛠️ How To Fix"},
			render.Bullets{Items: []string{
				"Provide resumeText as plain text within the allowed length",
				"Keep keywords and location as short comma-separated lists",
				"Use YYYY-MM-DD for both startDate and endDate, at most a year apart",
			}},
		},
	}
}

// RateLimitDocument explains a denied call and when the window reopens.
func RateLimitDocument(d Decision) render.Document {
	return render.Document{
		Title: "⏳ Rate Limit Reached",
		Sections: []render.Section{
			render.Paragraph("This session has used its matching quota. The request was rejected before any matching was attempted."),
			render.Fields{Pairs: [][2]string{
				{"Limit", fmt.Sprintf("%d requests per minute", d.Limit)},
				{"Used", strconv.Itoa(d.RequestCount)},
				{"Remaining", strconv.Itoa(d.Remaining)},
				{"Resets At", d.ResetTime.UTC().Format(time.RFC3339)},
			}},
			render.Paragraph("Wait for the reset time and retry. The quota applies per session, not per resume."),
		},
	}
}

// BackendErrorDocument maps an upstream failure status onto a user-facing
// title, message and suggestion set.
func BackendErrorDocument(status int, data map[string]any) render.Document {
	var (
		title       string
		message     string
		suggestions []string
	)
	switch status {
	case 401:
		title = "🔐 Authentication Failed"
		message = "The matching backend rejected this server's credentials."
		suggestions = []string{
			"Verify the configured backend API key",
			"Confirm the key has not expired or been rotated",
		}
	case 400:
		title = "📄 File Processing Failed"
		message = "The backend could not process the uploaded resume."
		suggestions = []string{
			"Make sure resumeText is plain text, not binary data",
			"Remove unusual control characters and retry",
		}
	case 413:
		title = "📦 Resume Too Large"
		message = "The backend refused the upload because the resume is too large."
		suggestions = []string{
			"Shorten the resume text and retry",
			"Trim long project descriptions to their essentials",
		}
	case 422:
		title = "🧾 Invalid Parameters"
		message = "The backend rejected one or more request parameters."
		suggestions = []string{
			"Check the filter values against the detail below",
			"Retry without optional filters to isolate the offending field",
		}
	case 500:
		title = "💥 Backend Server Error"
		message = "The matching backend hit an internal error."
		suggestions = []string{
			"Retry in a few minutes",
			"Report the request id if the error persists",
		}
	default:
		title = "❓ Unexpected Backend Response"
		message = fmt.Sprintf("The matching backend returned an unexpected status (%d).", status)
		suggestions = []string{
			"Retry the request",
			"Report the request id if the error persists",
		}
	}

	doc := render.Document{Title: title}
	doc.Sections = append(doc.Sections,
		render.Paragraph(message),
		render.Heading{Text: "💡 Suggestions"},
		render.Bullets{Items: suggestions},
	)
	// 422 bodies name the offending fields; dump them verbatim.
	if status == 422 && len(data) > 0 {
		if raw, err := json.MarshalIndent(data, "", "  "); err == nil {
			doc.Sections = append(doc.Sections,
				render.Heading{Text: "🔎 Backend Detail"},
				render.Code{Lang: "json", Body: string(raw)},
			)
		}
	}
	return doc
}

// TransportErrorDocument covers network failures and timeouts, where no
// upstream status exists.
func TransportErrorDocument() render.Document {
	return render.Document{
		Title: "📡 Backend Unreachable",
		Sections: []render.Section{
			render.Paragraph("The matching backend did not answer within the allowed time."),
			render.Heading{Text: "💡 Suggestions"},
			render.Bullets{Items: []string{
				"Retry the request; transient network failures are common",
				"Check the backend status page if retries keep failing",
			}},
		},
	}
}

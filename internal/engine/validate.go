package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Validation limits shared by both tools.
const (
	minWordCount       = 10
	maxCharRun         = 20 // a 21st consecutive repeat rejects
	maxExperienceYears = 50
	keywordsMaxChars   = 500
	keywordsMaxItems   = 50
	locationMaxChars   = 5000
	locationMaxItems   = 100
	listItemMinChars   = 2
	listItemMaxChars   = 50
	maxPage            = 1000
	dateLayout         = "2006-01-02"
	maxDateSpanDays    = 365
)

// earliestPostingDate bounds startDate/endDate from below.
var earliestPostingDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// resumeSectionWords is the vocabulary for the soft content check: a resume
// mentioning none of these is suspicious but still accepted.
var resumeSectionWords = []string{
	"experience", "education", "skills", "summary", "employment",
	"projects", "certifications", "work", "objective",
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	dateRe       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validate applies every field rule to in and collects all violations
// instead of stopping at the first. It never panics: an internal panic is
// converted to a single generic violation.
func Validate(in MatchInput, minLen, maxLen int) (ok bool, violations []string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("validator panic", slog.Any("panic", r))
			ok = false
			violations = []string{"invalid request parameters"}
		}
	}()

	violations = append(violations, validateResumeText(in.ResumeText, minLen, maxLen)...)

	if in.UserExperience != nil && (*in.UserExperience < 0 || *in.UserExperience > maxExperienceYears) {
		violations = append(violations, fmt.Sprintf("userExperience must be between 0 and %d", maxExperienceYears))
	}

	violations = append(violations, validateList("keywords", in.Keywords, keywordsMaxChars, keywordsMaxItems)...)
	violations = append(violations, validateList("location", in.Location, locationMaxChars, locationMaxItems)...)
	violations = append(violations, validateDates(in.StartDate, in.EndDate, time.Now().UTC())...)

	if in.Page != nil && (*in.Page < 1 || *in.Page > maxPage) {
		violations = append(violations, fmt.Sprintf("page must be between 1 and %d", maxPage))
	}

	if s := strings.TrimSpace(in.SortBy); s != "" {
		switch strings.ToLower(s) {
		case "similarity", "date":
		default:
			violations = append(violations, "sortBy must be one of: similarity, date")
		}
	}

	return len(violations) == 0, violations
}

// Validate runs the field rules with the engine's configured resume bounds.
func (e *Engine) Validate(in MatchInput) (bool, []string) {
	return Validate(in, e.cfg.ResumeMinLen, e.cfg.ResumeMaxLen)
}

func validateResumeText(text string, minLen, maxLen int) []string {
	if strings.TrimSpace(text) == "" {
		return []string{"resumeText is required"}
	}

	var out []string
	n := utf8.RuneCountInString(text)
	switch {
	case n < minLen:
		out = append(out, fmt.Sprintf("resumeText is too short: %d characters (minimum %d)", n, minLen))
	case n > maxLen:
		out = append(out, fmt.Sprintf("resumeText is too long: %d characters (maximum %d)", n, maxLen))
	}

	// Whitespace padding must not count toward the minimum.
	collapsed := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if n >= minLen && utf8.RuneCountInString(collapsed) < minLen {
		out = append(out, "resumeText is below the minimum length once whitespace is collapsed")
	}

	if longestRun(text) > maxCharRun {
		out = append(out, fmt.Sprintf("resumeText repeats a single character more than %d times in a row", maxCharRun))
	}

	if len(strings.Fields(text)) < minWordCount {
		out = append(out, fmt.Sprintf("resumeText must contain at least %d words", minWordCount))
	}

	if !containsResumeVocabulary(text) {
		slog.Debug("resume text mentions no standard section words")
	}

	return out
}

// longestRun returns the length of the longest run of one repeated rune.
func longestRun(s string) int {
	var last rune
	run, max := 0, 0
	for _, r := range s {
		if r == last {
			run++
		} else {
			last, run = r, 1
		}
		if run > max {
			max = run
		}
	}
	return max
}

func containsResumeVocabulary(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range resumeSectionWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func validateList(field, raw string, maxChars, maxItems int) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var out []string
	if utf8.RuneCountInString(raw) > maxChars {
		out = append(out, fmt.Sprintf("%s must be at most %d characters", field, maxChars))
	}

	items := splitList(raw)
	if len(items) == 0 || len(items) > maxItems {
		out = append(out, fmt.Sprintf("%s must contain between 1 and %d comma-separated items", field, maxItems))
	}
	for _, it := range items {
		if n := utf8.RuneCountInString(it); n < listItemMinChars || n > listItemMaxChars {
			out = append(out, fmt.Sprintf("%s item %q must be %d-%d characters", field, it, listItemMinChars, listItemMaxChars))
		}
	}
	return out
}

// splitList splits a comma-separated value, dropping empty segments.
func splitList(raw string) []string {
	var items []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// validateDates checks each date independently, then the pair jointly.
// The dates must come together, in order, spanning at most a year.
func validateDates(start, end string, now time.Time) []string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil
	}

	var out []string
	if start == "" || end == "" {
		out = append(out, "startDate and endDate must be provided together")
	}

	latest := now.AddDate(2, 0, 0)
	var from, to time.Time
	fromOK, toOK := false, false
	if start != "" {
		var errs []string
		from, errs = parsePostingDate("startDate", start, latest)
		fromOK = len(errs) == 0
		out = append(out, errs...)
	}
	if end != "" {
		var errs []string
		to, errs = parsePostingDate("endDate", end, latest)
		toOK = len(errs) == 0
		out = append(out, errs...)
	}

	if fromOK && toOK {
		switch {
		case !from.Before(to):
			out = append(out, "startDate must be before endDate")
		case to.Sub(from) > maxDateSpanDays*24*time.Hour:
			out = append(out, fmt.Sprintf("date range must not exceed %d days", maxDateSpanDays))
		}
	}
	return out
}

func parsePostingDate(field, value string, latest time.Time) (time.Time, []string) {
	if !dateRe.MatchString(value) {
		return time.Time{}, []string{fmt.Sprintf("%s must use YYYY-MM-DD format", field)}
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, []string{fmt.Sprintf("%s is not a real calendar date", field)}
	}
	if t.Before(earliestPostingDate) || t.After(latest) {
		return time.Time{}, []string{fmt.Sprintf("%s must fall between 2020-01-01 and %s", field, latest.Format(dateLayout))}
	}
	return t, nil
}

// Sanitize normalizes a validated input into the request sent upstream:
// trims string fields, lower-cases sortBy. Empty strings mean absent.
// Call only after Validate reports ok.
func Sanitize(in MatchInput) ToolRequest {
	return ToolRequest{
		ResumeText:     strings.TrimSpace(in.ResumeText),
		UserExperience: in.UserExperience,
		Keywords:       strings.TrimSpace(in.Keywords),
		Location:       strings.TrimSpace(in.Location),
		StartDate:      strings.TrimSpace(in.StartDate),
		EndDate:        strings.TrimSpace(in.EndDate),
		Page:           in.Page,
		SortBy:         strings.ToLower(strings.TrimSpace(in.SortBy)),
	}
}

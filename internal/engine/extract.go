package engine

import (
	"regexp"
	"strings"
)

// chunk_text is free text from the backend; these extractions are
// best-effort pattern mining, not parsing. Absent markers yield empty
// lists, never errors.

const maxSummaryPoints = 5

var (
	requiredSkillsRe = regexp.MustCompile(`(?i)required skills?:[ \t]*(.+)`)
	jobSummaryRe     = regexp.MustCompile(`(?i)job summary:`)
	summaryPointRe   = regexp.MustCompile(`(?i)point\s*\d+\s*:`)
	sentenceEndRe    = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
)

// ExtractRequiredSkills pulls the comma-separated list following a
// "Required Skills:" marker.
func ExtractRequiredSkills(chunk string) []string {
	m := requiredSkillsRe.FindStringSubmatch(chunk)
	if m == nil {
		return nil
	}
	var skills []string
	for _, s := range strings.Split(m[1], ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// ExtractSummaryPoints pulls bullets from the "Job Summary:" block,
// preferring enumerated "PointN:" markers, else splitting on sentence
// boundaries capped at maxSummaryPoints.
func ExtractSummaryPoints(chunk string) []string {
	loc := jobSummaryRe.FindStringIndex(chunk)
	if loc == nil {
		return nil
	}
	block := chunk[loc[1]:]
	// The summary runs until the next labeled section, if any.
	if skills := requiredSkillsRe.FindStringIndex(block); skills != nil {
		block = block[:skills[0]]
	}
	block = strings.TrimSpace(block)
	if block == "" {
		return nil
	}

	if markers := summaryPointRe.FindAllStringIndex(block, -1); len(markers) > 0 {
		var points []string
		for i, m := range markers {
			end := len(block)
			if i+1 < len(markers) {
				end = markers[i+1][0]
			}
			if p := strings.TrimSpace(block[m[1]:end]); p != "" {
				points = append(points, p)
			}
		}
		return points
	}

	var points []string
	for _, s := range sentenceEndRe.Split(block, -1) {
		if s = strings.TrimSpace(s); s != "" {
			points = append(points, s)
		}
		if len(points) == maxSummaryPoints {
			break
		}
	}
	return points
}

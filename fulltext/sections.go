package fulltext

import (
	"regexp"
	"strings"
)

// Key paper sections worth sending to the summarizer, in output order.
var sectionOrder = []string{"introduction", "related_work", "method", "conclusion"}

var sectionTitles = map[string]string{
	"introduction": "Introduction",
	"related_work": "Related Work",
	"method":       "Method",
	"conclusion":   "Conclusion",
}

// Heading patterns match lines like "1. Introduction", "Introduction",
// "2 Related Work".
var sectionPatterns = map[string][]*regexp.Regexp{
	"introduction": {
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?introduction\s*$`),
	},
	"related_work": {
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?related\s+works?\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?background\s*$`),
	},
	"method": {
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?methods?\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?methodology\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?approach\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?proposed\s+method\s*$`),
	},
	"conclusion": {
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?conclusions?\s*$`),
		regexp.MustCompile(`(?i)^\s*(?:\d+\.?\s*)?discussion\s+and\s+conclusion\s*$`),
	},
}

// numberedHeading matches any other numbered section heading, which ends
// the section currently being collected.
var numberedHeading = regexp.MustCompile(`^\s*\d+\.?\s+[A-Z]`)

const maxSectionChars = 8000

// ExtractKeySections scans extracted paper text for the Introduction,
// Related Work, Method and Conclusion sections and returns them joined
// with "=== Title ===" markers. Returns "" when no section was found, in
// which case the caller should keep the full text.
func ExtractKeySections(text string) string {
	lines := strings.Split(text, "\n")
	sections := map[string]string{}

	current := ""
	var buf []string

	flush := func() {
		if current != "" && len(buf) > 0 {
			sections[current] = strings.Join(buf, "\n")
		}
		current = ""
		buf = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if name := matchSection(trimmed); name != "" {
			flush()
			current = name
			buf = []string{trimmed}
			continue
		}

		if current == "" {
			continue
		}

		// Any other numbered heading closes the section, except that a
		// Conclusion is allowed to run to the end of the text.
		if numberedHeading.MatchString(trimmed) && current != "conclusion" {
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()

	if len(sections) == 0 {
		return ""
	}

	var parts []string
	for _, key := range sectionOrder {
		body, ok := sections[key]
		if !ok {
			continue
		}
		parts = append(parts, "=== "+sectionTitles[key]+" ===\n"+truncateRunes(body, maxSectionChars))
	}
	return strings.Join(parts, "\n\n")
}

// truncateRunes cuts s to max runes, never mid-sequence, and marks the
// cut for the summarizer.
func truncateRunes(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max]) + "\n\n[truncated]"
}

func matchSection(line string) string {
	for name, patterns := range sectionPatterns {
		for _, re := range patterns {
			if re.MatchString(line) {
				return name
			}
		}
	}
	return ""
}

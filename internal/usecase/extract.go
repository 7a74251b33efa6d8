package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-formatter/internal/domain"
	"resume-formatter/internal/logger"
	"resume-formatter/internal/model"
)

// Limits applied to list-like sections.
const (
	maxSkills      = 12
	maxEducation   = 3
	maxExperience  = 5
	minSummaryLen  = 5
	bulletJoin     = "\n• "
	bulletPrefix   = "• "
	detailPrefix   = "  - "
	contactJoin    = " | "
	languagesJoin  = ", "
	bulletMarkers  = "•*-–·"
	emptyTextError = "resume text is required: paste the full text of your résumé"
)

var (
	nameRe    = regexp.MustCompile(`(?im)\bname\b[ \t]*[:\-]?[ \t]*([^\n]*)`)
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe   = regexp.MustCompile(`(?:\+\d{1,3}[ \-]?)?(?:\(\d{2,5}\)|\d{2,5})[ \-.]?\d{3,5}[ \-.]?\d{3,5}`)
	roleRe    = regexp.MustCompile(`(?i)\brole\b`)
	listSepRe = regexp.MustCompile(`[,;\n]`)

	summaryHeading    = headingRe("objective", "summary")
	skillsHeading     = headingRe("skills")
	experienceHeading = headingRe("experience")
	educationHeading  = headingRe("education")
	languagesHeading  = headingRe("languages")

	skillsStop     = headingRe("experience", "education", "languages", "objective")
	educationStop  = headingRe("skills", "experience", "languages")
	experienceStop = headingRe("education", "skills", "languages")
	languagesStop  = headingRe("skills", "experience", "education")

	anyHeading = headingRe("objective", "summary", "skills", "experience", "education", "languages")
)

// headingQualifiers are the words allowed before a section label on a
// heading line ("Work Experience", "Technical Skills").
var headingQualifiers = []string{
	"work", "professional", "employment", "career", "relevant", "technical", "key", "core",
	"soft", "hard", "programming", "language", "spoken", "academic", "educational", "executive",
	"personal", "additional", "other", "research", "industry", "volunteer",
}

// headingRe matches a section heading at the start of a line: up to two
// qualifier words, one of the labels, then a colon, a dash followed by
// a blank, or the end of the line. "Objective-C" and "strong
// communication skills" are not headings.
func headingRe(labels ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:(?:` + strings.Join(headingQualifiers, "|") + `)[ \t]+){0,2}(?:` +
		strings.Join(labels, "|") + `)[ \t]*(?::[ \t]*|[\-–](?:[ \t]+|$)|$)`)
}

// Extract pulls the resume fields out of free text. Only an empty text is an
// error; anything else yields a record whose missing fields are empty and
// whose Name is never empty.
func Extract(text, targetRole string) (model.ExtractedFields, error) {
	if strings.TrimSpace(text) == "" {
		return model.ExtractedFields{}, domain.NewError("extract", domain.ErrInvalidInput, emptyTextError, nil)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	targetRole = strings.TrimSpace(targetRole)

	f := model.ExtractedFields{
		Name:       extractName(text),
		Contact:    extractContact(text),
		Skills:     extractList(sectionBody(text, skillsHeading, skillsStop), maxSkills, bulletJoin),
		Experience: formatExperience(sectionBody(text, experienceHeading, experienceStop)),
		Education:  extractLines(sectionBody(text, educationHeading, educationStop), maxEducation),
		Languages:  extractList(sectionBody(text, languagesHeading, languagesStop), 0, languagesJoin),
		Summary:    extractSummary(text, targetRole),
	}
	logger.Debug().Str("name", f.Name).Msg("extracted resume fields")
	return f, nil
}

func extractName(text string) string {
	for _, m := range nameRe.FindAllStringSubmatch(text, -1) {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return model.DefaultName
}

func extractContact(text string) string {
	email := emailRe.FindString(text)
	phone := strings.TrimSpace(phoneRe.FindString(text))
	switch {
	case email != "" && phone != "":
		return email + contactJoin + phone
	case email != "":
		return email
	default:
		return phone
	}
}

func extractSummary(text, targetRole string) string {
	summary := ""
	if s := summaryLine(text); utf8.RuneCountInString(s) > minSummaryLen {
		summary = s
	}
	if summary == "" {
		summary = model.DefaultSummary(targetRole)
	}
	if targetRole != "" && !roleRe.MatchString(summary) {
		summary += " Seeking " + targetRole + " role to apply technical skills and contribute to organizational growth."
	}
	return summary
}

// summaryLine returns the content of the first Objective or Summary
// heading. A bare heading takes the next non-empty line unless that line
// opens another section.
func summaryLine(text string) string {
	loc := summaryHeading.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	line, after, _ := strings.Cut(rest, "\n")
	if line = strings.TrimSpace(line); line != "" {
		return line
	}
	for _, l := range strings.Split(after, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if anyHeading.MatchString(l) {
			return ""
		}
		return l
	}
	return ""
}

// sectionBody returns the text between the first start heading and the next
// stop heading after it, or the end of text.
func sectionBody(text string, start, stop *regexp.Regexp) string {
	loc := start.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	end := len(text)
	for _, s := range stop.FindAllStringIndex(text, -1) {
		if s[0] >= loc[1] {
			end = s[0]
			break
		}
	}
	return strings.TrimSpace(text[loc[1]:end])
}

func stripBullet(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), bulletMarkers))
}

func isBulleted(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return strings.ContainsRune(bulletMarkers, r)
}

// extractList splits on commas, semicolons and newlines. limit <= 0 keeps
// every entry.
func extractList(body string, limit int, sep string) string {
	if body == "" {
		return ""
	}
	var items []string
	for _, part := range listSepRe.Split(body, -1) {
		if item := stripBullet(part); item != "" {
			items = append(items, item)
		}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return strings.Join(items, sep)
}

func extractLines(body string, limit int) string {
	if body == "" {
		return ""
	}
	var lines []string
	for _, l := range strings.Split(body, "\n") {
		if l = stripBullet(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > limit {
		lines = lines[:limit]
	}
	return strings.Join(lines, bulletJoin)
}

// formatExperience groups lines into entries. A line starting with an
// upper-case letter opens a new entry; its first line becomes a bullet and
// the following lines are indented details.
func formatExperience(body string) string {
	if body == "" {
		return ""
	}
	var blocks [][]string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(line)
		if len(blocks) == 0 || unicode.IsUpper(r) {
			if len(blocks) == maxExperience {
				break
			}
			blocks = append(blocks, nil)
		}
		blocks[len(blocks)-1] = append(blocks[len(blocks)-1], line)
	}

	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines := make([]string, 0, len(b))
		lines = append(lines, bulletPrefix+stripBullet(b[0]))
		for _, l := range b[1:] {
			if isBulleted(strings.TrimSpace(l)) {
				lines = append(lines, l)
				continue
			}
			lines = append(lines, detailPrefix+strings.TrimSpace(l))
		}
		out = append(out, strings.Join(lines, "\n"))
	}
	return strings.Join(out, "\n")
}

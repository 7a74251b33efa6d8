package usecase

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"resume-formatter/internal/model"
)

// Section labels of the labeled text document. ParseDocument recognises
// exactly this vocabulary, case-insensitively.
const (
	LabelName       = "NAME"
	LabelContact    = "CONTACT"
	LabelSummary    = "PROFESSIONAL SUMMARY"
	LabelSkills     = "SKILLS"
	LabelExperience = "WORK EXPERIENCE"
	LabelEducation  = "EDUCATION"
	LabelLanguages  = "LANGUAGES"
)

var labelLineRe = regexp.MustCompile(`(?i)^(` + strings.Join([]string{
	LabelName, LabelContact, LabelSummary, LabelSkills, LabelExperience, LabelEducation, LabelLanguages,
}, "|") + `):[ \t]*(.*)$`)

// Document is the labeled plain-text rendition of a resume.
type Document string

func (d Document) String() string { return string(d) }

// Render writes the labeled document. NAME and PROFESSIONAL SUMMARY are
// always present; the other sections only when they have content.
func Render(f model.ExtractedFields) Document {
	f = withDefaults(f)
	var b strings.Builder
	section := func(label, inline string) {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(label + ":")
		if inline != "" {
			b.WriteString(" " + inline)
		}
	}

	section(LabelName, f.Name)
	if f.Contact != "" {
		section(LabelContact, f.Contact)
	}
	section(LabelSummary, f.Summary)
	if f.Skills != "" {
		section(LabelSkills, "")
		b.WriteString("\n" + bulletPrefix + f.Skills)
	}
	if f.Experience != "" {
		section(LabelExperience, "")
		b.WriteString("\n" + f.Experience)
	}
	if f.Education != "" {
		section(LabelEducation, "")
		b.WriteString("\n" + bulletPrefix + f.Education)
	}
	if f.Languages != "" {
		section(LabelLanguages, f.Languages)
	}
	return Document(b.String())
}

// ParseDocument reads a labeled document back into fields. Each section
// runs from its label to the next label or the end of the text.
func ParseDocument(doc Document) model.ExtractedFields {
	sections := map[string][]string{}
	current := ""
	for _, line := range strings.Split(strings.ReplaceAll(doc.String(), "\r\n", "\n"), "\n") {
		if m := labelLineRe.FindStringSubmatch(line); m != nil {
			current = strings.ToUpper(m[1])
			if _, seen := sections[current]; seen {
				// Only the first occurrence of a label counts.
				current = ""
				continue
			}
			sections[current] = []string{m[2]}
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	body := func(label string) string {
		return strings.TrimSpace(strings.Join(sections[label], "\n"))
	}

	f := model.ExtractedFields{
		Name:       body(LabelName),
		Contact:    body(LabelContact),
		Summary:    body(LabelSummary),
		Skills:     strings.TrimPrefix(body(LabelSkills), bulletPrefix),
		Experience: body(LabelExperience),
		Education:  strings.TrimPrefix(body(LabelEducation), bulletPrefix),
		Languages:  body(LabelLanguages),
	}
	if f.Name == "" {
		f.Name = model.DefaultName
	}
	return f
}

//go:embed templates/resume.html
var resumeTemplateSrc string

//go:embed templates/style.css
var resumeStyle string

var resumeTemplate = template.Must(template.New("resume").Parse(resumeTemplateSrc))

type markupData struct {
	model.ExtractedFields
	CSS template.CSS
}

// ToMarkup builds the styled HTML page for the renderer. Section text is
// HTML-escaped by the template.
func ToMarkup(f model.ExtractedFields) (string, error) {
	var buf bytes.Buffer
	if err := resumeTemplate.Execute(&buf, markupData{ExtractedFields: withDefaults(f), CSS: template.CSS(resumeStyle)}); err != nil {
		return "", fmt.Errorf("execute resume template: %w", err)
	}
	return buf.String(), nil
}

func withDefaults(f model.ExtractedFields) model.ExtractedFields {
	if f.Name == "" {
		f.Name = model.DefaultName
	}
	if f.Summary == "" {
		f.Summary = model.DefaultSummary("")
	}
	return f
}

package model

// ExtractedFields is the structured view of a pasted resume. Every field is
// optional; list-like fields are already joined in their display form.
type ExtractedFields struct {
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	Summary    string `json:"summary"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
	Languages  string `json:"languages"`
}

// Defaults used when a field could not be extracted.
const (
	DefaultName        = "Applicant"
	DefaultSummaryArea = "multiple areas"
)

// DefaultSummary is the synthesized summary for a resume without an
// objective line.
func DefaultSummary(targetRole string) string {
	area := targetRole
	if area == "" {
		area = DefaultSummaryArea
	}
	return "Dedicated professional with strong expertise in " + area + "."
}

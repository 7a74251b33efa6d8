package domain

import "time"

// Artifact is a rendered resume persisted in the artifact store.
type Artifact struct {
	Name        string    `json:"file_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	DownloadURL string    `json:"download_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenerateRequest is one paid generation: the gateway payment id plus the
// pasted resume text and how to reach the applicant.
type GenerateRequest struct {
	PaymentID  string `json:"payment_id"`
	ResumeText string `json:"resume_text"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	TargetRole string `json:"target_role,omitempty"`
}

// Payment gateway statuses that mean the funds are secured.
const (
	PaymentCaptured   = "captured"
	PaymentAuthorized = "authorized"
)

// PaymentSecured reports whether a gateway status allows generation.
func PaymentSecured(status string) bool {
	return status == PaymentCaptured || status == PaymentAuthorized
}

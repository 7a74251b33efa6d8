package usecase

import (
	"context"

	"resume-formatter/internal/domain"
)

// PaymentVerifier reports the gateway status of a payment.
type PaymentVerifier interface {
	PaymentStatus(ctx context.Context, paymentID string) (string, error)
}

// Renderer turns a styled HTML page into a PDF.
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// ArtifactStore persists rendered files by name. Get returns an error
// matching domain.ErrNotFound for unknown names.
type ArtifactStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// Notifier delivers a finished artifact to the applicant.
type Notifier interface {
	SendArtifact(ctx context.Context, to string, artifact domain.Artifact, data []byte) error
}

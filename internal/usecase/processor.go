package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"resume-formatter/internal/domain"
	"resume-formatter/internal/logger"
	"resume-formatter/internal/model"

	"github.com/google/uuid"
)

const (
	contentTypePDF  = "application/pdf"
	notifyTimeout   = 30 * time.Second
	maxPaymentIDLen = 40

	// MaxResumeTextLen bounds resume_text in characters.
	MaxResumeTextLen = 50000
)

var (
	artifactNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	paymentIDRe    = regexp.MustCompile(`^pay_[A-Za-z0-9]+$`)
	unsafeIDRe     = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// Processor runs the paid generation pipeline: verify the payment, extract
// the fields, render the PDF, store it and optionally mail it.
type Processor struct {
	payments       PaymentVerifier
	renderer       Renderer
	store          ArtifactStore
	notifier       Notifier
	downloadPrefix string
	now            func() time.Time
}

// Option customises a Processor.
type Option func(*Processor)

// WithNotifier mails every generated artifact to the request's email.
func WithNotifier(n Notifier) Option {
	return func(p *Processor) { p.notifier = n }
}

// WithDownloadPrefix sets the prefix of the download links handed back.
func WithDownloadPrefix(prefix string) Option {
	return func(p *Processor) { p.downloadPrefix = prefix }
}

// WithClock overrides the time source used for artifact names.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(payments PaymentVerifier, r Renderer, store ArtifactStore, opts ...Option) *Processor {
	p := &Processor{
		payments:       payments,
		renderer:       r,
		store:          store,
		downloadPrefix: "/download/",
		now:            time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Generate produces and stores the PDF for a paid request. Nothing is
// written unless the gateway reports the payment captured or authorized.
func (p *Processor) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.Artifact, error) {
	const op = "generate"
	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" {
		return nil, domain.NewError(op, domain.ErrInvalidInput, "payment_id is required: complete the payment before generating", nil)
	}
	if !paymentIDRe.MatchString(paymentID) {
		return nil, domain.NewError(op, domain.ErrInvalidInput, "payment_id is malformed: expected the pay_... id from checkout", nil)
	}
	log := logger.Ctx(ctx).With().Str("payment_id", paymentID).Logger()

	status, err := p.payments.PaymentStatus(ctx, paymentID)
	if err != nil {
		log.Warn().Err(err).Msg("payment verification failed")
		return nil, domain.NewError(op, domain.ErrPaymentUnverified, "payment could not be verified", err)
	}
	if !domain.PaymentSecured(status) {
		log.Warn().Str("status", status).Msg("payment not captured")
		return nil, domain.NewError(op, domain.ErrPaymentUnverified, fmt.Sprintf("payment is %q, not captured", status), nil)
	}

	if err := checkTextLength(op, req.ResumeText); err != nil {
		return nil, err
	}
	fields, err := Extract(req.ResumeText, req.TargetRole)
	if err != nil {
		return nil, err
	}
	html, err := ToMarkup(fields)
	if err != nil {
		log.Error().Err(err).Msg("building markup failed")
		return nil, domain.NewError(op, domain.ErrRendering, "", err)
	}
	pdf, err := p.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		log.Error().Err(err).Msg("pdf rendering failed")
		return nil, domain.NewError(op, domain.ErrRendering, "", err)
	}

	artifact := domain.Artifact{
		Name:        p.artifactName(paymentID),
		Size:        int64(len(pdf)),
		ContentType: contentTypePDF,
		CreatedAt:   p.now().UTC(),
	}
	artifact.DownloadURL = p.downloadPrefix + artifact.Name
	if err := p.store.Put(ctx, artifact.Name, pdf, contentTypePDF); err != nil {
		log.Error().Err(err).Str("file", artifact.Name).Msg("storing artifact failed")
		return nil, domain.NewError(op, domain.ErrStorage, "", err)
	}
	log.Info().Str("file", artifact.Name).Int64("size", artifact.Size).Str("name", fields.Name).Msg("resume generated")

	if p.notifier != nil && strings.TrimSpace(req.Email) != "" {
		p.notify(ctx, strings.TrimSpace(req.Email), artifact, pdf)
	}
	return &artifact, nil
}

// notify is best effort; failures are logged and never reach the caller.
func (p *Processor) notify(ctx context.Context, to string, artifact domain.Artifact, pdf []byte) {
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := p.notifier.SendArtifact(nctx, to, artifact, pdf); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("file", artifact.Name).Msg("mailing artifact failed")
		return
	}
	logger.Ctx(ctx).Info().Str("file", artifact.Name).Msg("artifact mailed")
}

// Preview is the payment-free path: it returns the labeled document and
// the fields it was built from.
func (p *Processor) Preview(text, targetRole string) (Document, model.ExtractedFields, error) {
	if err := checkTextLength("preview", text); err != nil {
		return "", model.ExtractedFields{}, err
	}
	fields, err := Extract(text, targetRole)
	if err != nil {
		return "", model.ExtractedFields{}, err
	}
	return Render(fields), fields, nil
}

func checkTextLength(op, text string) error {
	if utf8.RuneCountInString(text) > MaxResumeTextLen {
		return domain.NewError(op, domain.ErrInvalidInput,
			fmt.Sprintf("resume text is too long: keep it under %d characters", MaxResumeTextLen), nil)
	}
	return nil
}

// Fetch loads a stored artifact by its exact name.
func (p *Processor) Fetch(ctx context.Context, name string) ([]byte, error) {
	if !ValidArtifactName(name) {
		return nil, domain.NewError("fetch", domain.ErrNotFound, "file not found", nil)
	}
	data, err := p.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ValidArtifactName rejects names that could escape the store namespace.
func ValidArtifactName(name string) bool {
	return name != "" && !strings.Contains(name, "..") && artifactNameRe.MatchString(name)
}

func (p *Processor) artifactName(paymentID string) string {
	id := unsafeIDRe.ReplaceAllString(paymentID, "")
	if len(id) > maxPaymentIDLen {
		id = id[:maxPaymentIDLen]
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("resume_%d_%s_%s.pdf", p.now().UnixMilli(), id, suffix)
}

package notify

import (
	"context"
	"fmt"
	"io"

	"resume-formatter/internal/config"
	"resume-formatter/internal/domain"
	"resume-formatter/internal/logger"

	"gopkg.in/gomail.v2"
)

const subject = "Your formatted resume"

// Mailer sends generated artifacts as attachments over SMTP.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) message(to string, artifact domain.Artifact, data []byte) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hello,\n\nYour formatted resume is attached (%s).\nYou can also download it from %s\n",
		artifact.Name, artifact.DownloadURL))
	msg.Attach(artifact.Name,
		gomail.SetHeader(map[string][]string{"Content-Type": {artifact.ContentType}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}),
	)
	return msg
}

// SendArtifact dials the SMTP server and sends one message. gomail has no
// context support, so ctx is only checked before dialing.
func (m *Mailer) SendArtifact(ctx context.Context, to string, artifact domain.Artifact, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.message(to, artifact, data)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	logger.Ctx(ctx).Info().Str("to", to).Str("file_name", artifact.Name).Msg("resume mailed")
	return nil
}

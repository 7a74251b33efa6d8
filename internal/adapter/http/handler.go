package http

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"resume-formatter/internal/config"
	"resume-formatter/internal/domain"
	"resume-formatter/internal/logger"
	"resume-formatter/internal/model"
	"resume-formatter/internal/usecase"
	"resume-formatter/pkg/payment"

	"github.com/gofiber/fiber/v2"
)

const genericFailure = "failed to generate resume, please try again"

// Gateway is the part of the payment gateway the handlers use.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payment.Order, error)
	VerifyWebhook(body []byte, signature string) error
}

type Handler struct {
	processor *usecase.Processor
	gateway   Gateway
	payment   config.PaymentConfig
}

func NewHandler(p *usecase.Processor, g Gateway, cfg config.PaymentConfig) *Handler {
	return &Handler{processor: p, gateway: g, payment: cfg}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type createOrderReq struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func (h *Handler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if req.Amount == 0 {
		req.Amount = h.payment.Amount
	}
	if req.Currency == "" {
		req.Currency = h.payment.Currency
	}
	if req.Amount < 0 {
		return errorJSON(c, fiber.StatusBadRequest, "amount must be positive")
	}

	order, err := h.gateway.CreateOrder(c.UserContext(), req.Amount, req.Currency, req.Receipt)
	if err != nil {
		logger.Ctx(c.UserContext()).Error().Err(err).Msg("create order failed")
		return errorJSON(c, fiber.StatusBadGateway, "could not create payment order, please try again")
	}
	return c.JSON(order)
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Webhook acknowledges gateway events. Generation never depends on it;
// captured payments are only logged.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	body := c.Body()
	if err := h.gateway.VerifyWebhook(body, c.Get("X-Razorpay-Signature")); err != nil {
		logger.Ctx(c.UserContext()).Warn().Err(err).Msg("webhook rejected")
		return errorJSON(c, fiber.StatusBadRequest, "invalid signature")
	}
	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid payload")
	}
	if ev.Event == "payment.captured" {
		logger.Ctx(c.UserContext()).Info().
			Str("payment_id", ev.Payload.Payment.Entity.ID).
			Msg("payment captured")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	body := c.Body()
	if err := model.ValidateGenerateRequest(body); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	var req domain.GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid payload")
	}

	artifact, err := h.processor.Generate(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"file_name":    artifact.Name,
		"download_url": artifact.DownloadURL,
	})
}

func (h *Handler) Download(c *fiber.Ctx) error {
	name := c.Params("name")
	data, err := h.processor.Fetch(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "file not found or expired")
		}
		logger.Ctx(c.UserContext()).Error().Err(err).Str("file", name).Msg("download failed")
		return errorJSON(c, fiber.StatusInternalServerError, "could not read file, please try again")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(name)
	return c.Send(data)
}

type previewReq struct {
	ResumeText string `json:"resume_text"`
	TargetRole string `json:"target_role"`
}

// TestGenerate runs extraction and rendering without payment and
// returns the labeled document with the fields behind it.
func (h *Handler) TestGenerate(c *fiber.Ctx) error {
	var req previewReq
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid payload")
	}
	doc, fields, err := h.processor.Preview(req.ResumeText, strings.TrimSpace(req.TargetRole))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"formatted_resume": doc.String(),
		"fields":           fields,
	})
}

// writeError maps error kinds to status codes. Only input errors expose
// their message.
func writeError(c *fiber.Ctx, err error) error {
	log := logger.Ctx(c.UserContext())
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return errorJSON(c, fiber.StatusBadRequest, domain.Message(err, "invalid input"))
	case errors.Is(err, domain.ErrPaymentUnverified):
		return errorJSON(c, fiber.StatusPaymentRequired, "payment not verified")
	case errors.Is(err, domain.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "file not found or expired")
	default:
		log.Error().Err(err).Msg("request failed")
		return errorJSON(c, fiber.StatusInternalServerError, genericFailure)
	}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

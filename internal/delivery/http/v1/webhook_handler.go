package v1

import (
	"net/http"
	"strconv"
	"strings"

	"go-whatscv-backend/internal/delivery/http/response"
	"go-whatscv-backend/internal/domain"
	"go-whatscv-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	ingestionUC domain.IngestionUsecase
	verifyToken string
}

func NewWebhookHandler(r *gin.RouterGroup, ingestionUC domain.IngestionUsecase, verifyToken string) {
	handler := &WebhookHandler{ingestionUC: ingestionUC, verifyToken: verifyToken}

	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/twilio", handler.Twilio)
		webhooks.GET("/whatsapp-cloud", handler.VerifyCloud)
		webhooks.POST("/whatsapp-cloud", handler.Cloud)
	}
}

// Twilio godoc
// @Summary      Twilio-style inbound webhook
// @Description  Accepts a JSON or form-encoded inbound WhatsApp message with an optional media attachment
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        payload  body      domain.TwilioWebhookPayload  true  "Inbound message"
// @Success      200  {object}  response.Response{data=domain.IngestionResult}
// @Failure      500  {object}  response.Response
// @Router       /webhooks/twilio [post]
func (h *WebhookHandler) Twilio(c *gin.Context) {
	var payload domain.TwilioWebhookPayload

	ct := c.ContentType()
	if strings.Contains(ct, "json") {
		if err := c.ShouldBindJSON(&payload); err != nil {
			// Twilio retries on non-2xx; a malformed body will never improve,
			// so acknowledge and report the parse failure in the result.
			logger.Log.Warn("unparseable twilio webhook body", "error", err)
			response.Success(c, http.StatusOK, "Webhook received", domain.IngestionResult{OK: false, Ignored: true})
			return
		}
	} else {
		// Classic Twilio delivery is application/x-www-form-urlencoded.
		payload.Body = c.PostForm("Body")
		payload.From = c.PostForm("From")
		if url := c.PostForm("MediaUrl0"); url != "" {
			payload.Media = append(payload.Media, domain.TwilioMedia{URL: url})
		}
	}

	h.handle(c, payload.ToInbound())
}

// VerifyCloud godoc
// @Summary      WhatsApp Cloud webhook verification
// @Description  Meta subscription handshake, echoes hub.challenge on token match
// @Tags         webhooks
// @Produce      plain
// @Param        hub.mode          query  string  true  "Must be subscribe"
// @Param        hub.verify_token  query  string  true  "Shared verify token"
// @Param        hub.challenge     query  int     true  "Challenge to echo"
// @Success      200  {integer}  int
// @Failure      403  {object}   response.Response
// @Router       /webhooks/whatsapp-cloud [get]
func (h *WebhookHandler) VerifyCloud(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		response.Error(c, http.StatusForbidden, "Verification failed", nil)
		return
	}

	// Meta expects the raw challenge back, as an integer when numeric.
	if n, err := strconv.Atoi(challenge); err == nil {
		c.JSON(http.StatusOK, n)
		return
	}
	c.String(http.StatusOK, challenge)
}

// Cloud godoc
// @Summary      WhatsApp Cloud API inbound webhook
// @Description  Accepts the Cloud API event envelope and ingests the first message
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        payload  body      domain.CloudWebhookPayload  true  "Event envelope"
// @Success      200  {object}  response.Response{data=domain.IngestionResult}
// @Failure      500  {object}  response.Response
// @Router       /webhooks/whatsapp-cloud [post]
func (h *WebhookHandler) Cloud(c *gin.Context) {
	var payload domain.CloudWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Log.Warn("unparseable cloud webhook body", "error", err)
		response.Success(c, http.StatusOK, "Webhook received", domain.IngestionResult{OK: false, Ignored: true})
		return
	}

	msg := payload.FirstMessage()
	if msg == nil {
		// Status callbacks and other message-less events are acknowledged
		// so the platform does not retry them.
		response.Success(c, http.StatusOK, "Webhook received", domain.IngestionResult{OK: true, Ignored: true})
		return
	}

	h.handle(c, msg.ToInbound())
}

func (h *WebhookHandler) handle(c *gin.Context, msg domain.InboundMessage) {
	result, err := h.ingestionUC.HandleInbound(c, msg)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Webhook processed", result)
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/apply4me/internal/domain/errors"
	"github.com/polkiloo/apply4me/internal/server/http/dto"
)

const maxCallbackBody = 64 << 10

// PaymentHandler receives gateway callbacks.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Webhook handles POST /api/payments/webhook.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	params, err := callbackParams(c)
	if err != nil || len(params) == 0 {
		abortError(c, http.StatusBadRequest, "Invalid callback payload")
		return
	}

	result, err := h.facade.HandleCallback(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidSignature):
			abortError(c, http.StatusUnauthorized, "Invalid signature")
		case errors.Is(err, domainErrors.ErrMissingChargeID):
			abortError(c, http.StatusBadRequest, "Missing charge id")
		case errors.Is(err, domainErrors.ErrMissingStatus):
			abortError(c, http.StatusBadRequest, "Missing payment status")
		case errors.Is(err, domainErrors.ErrInvalidCallback):
			abortError(c, http.StatusBadRequest, "Invalid callback")
		case errors.Is(err, domainErrors.ErrUnknownPaymentStatus):
			abortError(c, http.StatusBadRequest, "Unknown payment status")
		case errors.Is(err, domainErrors.ErrNotFound):
			abortError(c, http.StatusNotFound, "Application not found")
		default:
			h.logger.Error("payment webhook failed", slog.String("error", err.Error()))
			abortError(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{
		Success:   true,
		Duplicate: result.Duplicate,
		Status:    string(result.PaymentStatus),
	})
}

// callbackParams flattens a JSON object or form body into string params.
// Nested JSON values such as metadata are kept as their compact JSON text.
func callbackParams(c *gin.Context) (map[string]string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBody)

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var raw map[string]any
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		params := make(map[string]string, len(raw))
		for k, v := range raw {
			s, err := scalarString(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			params[k] = s
		}
		return params, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	params := make(map[string]string, len(c.Request.PostForm))
	for k, values := range c.Request.PostForm {
		if len(values) > 0 {
			params[k] = values[0]
		}
	}
	return params, nil
}

func scalarString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case map[string]any, []any:
		raw, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}
